// Package single regenerates one FBS source or activity set by writing a
// restricted scratch method and handing it to the FBS engine.
package single

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/ceda-group/align-cli/internal/compare"
	"github.com/ceda-group/align-cli/internal/method"
)

// Engine generates an FBS output from a method definition. The real engine is
// an external numerical system; FileEngine adapts its harmonized CSV export
// for offline runs.
type Engine interface {
	Generate(ctx context.Context, methodName, configDir string) (compare.Matrix, error)
}

// Runner builds scratch methods restricted to one source.
type Runner struct {
	Loader     *method.Loader
	Engine     Engine
	ScratchDir string
}

// Run restricts the named method to one source (and optionally one activity
// set), writes the scratch method YAML, and invokes the engine on it. Scratch
// files are iteration artifacts, not meant to be committed.
func (r *Runner) Run(ctx context.Context, methodName, sourceName, activitySet string) (compare.Matrix, error) {
	resolved, err := r.Loader.Resolve(methodName)
	if err != nil {
		return nil, err
	}

	restricted, scratchName, err := Restrict(resolved, methodName, sourceName, activitySet)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.ScratchDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "single: create scratch dir %s", r.ScratchDir)
	}

	data, err := yaml.Marshal(restricted)
	if err != nil {
		return nil, eris.Wrap(err, "single: marshal scratch method")
	}
	scratchPath := filepath.Join(r.ScratchDir, scratchName+".yaml")
	if err := os.WriteFile(scratchPath, data, 0o644); err != nil {
		return nil, eris.Wrapf(err, "single: write scratch method %s", scratchPath)
	}

	return r.Engine.Generate(ctx, scratchName, r.ScratchDir)
}

// Restrict deep-copies a resolved config down to one source and optionally
// one activity set, and derives the scratch method name. Unknown names error
// with what is available.
func Restrict(resolved map[string]any, methodName, sourceName, activitySet string) (map[string]any, string, error) {
	config := method.CopyConfig(resolved)

	sources, _ := config["source_names"].(map[string]any)
	sc, ok := sources[sourceName]
	if !ok {
		return nil, "", eris.Errorf("single: source %s not in method %s; available: %v",
			sourceName, methodName, mapKeys(sources))
	}

	if activitySet != "" {
		scm, _ := sc.(map[string]any)
		activitySets, _ := scm["activity_sets"].(map[string]any)
		asc, ok := activitySets[activitySet]
		if !ok {
			return nil, "", eris.Errorf("single: activity set %s not in source %s; available: %v",
				activitySet, sourceName, mapKeys(activitySets))
		}
		scm["activity_sets"] = map[string]any{activitySet: asc}
	}

	config["source_names"] = map[string]any{sourceName: sc}

	suffix := sourceName
	if activitySet != "" {
		suffix = sourceName + "_" + activitySet
	}
	return config, fmt.Sprintf("%s_single_%s", methodName, suffix), nil
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
