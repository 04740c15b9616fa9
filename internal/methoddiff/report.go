package methoddiff

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Report is the YAML diff document written by the diff command.
type Report struct {
	BaselineMethod string        `yaml:"baseline_method"`
	TestMethod     string        `yaml:"test_method"`
	ConfigDiff     []Entry       `yaml:"config_diff"`
	MappingDiff    []MappingDiff `yaml:"mapping_diff"`
}

// BuildReport assembles the YAML document. Set-like list changes are reduced
// to their ListSummary so the document stays compact.
func BuildReport(baselineMethod, testMethod string, entries []Entry, mappingDiffs []MappingDiff) *Report {
	configDiff := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == KindChanged && e.Left != nil && e.Right != nil {
			if lv, ok := (*e.Left).([]any); ok {
				if rv, ok := (*e.Right).([]any); ok {
					e.ListSummary = SummarizeLists(lv, rv)
					e.Left, e.Right = nil, nil
				}
			}
		}
		configDiff = append(configDiff, e)
	}
	if mappingDiffs == nil {
		mappingDiffs = []MappingDiff{}
	}
	return &Report{
		BaselineMethod: baselineMethod,
		TestMethod:     testMethod,
		ConfigDiff:     configDiff,
		MappingDiff:    mappingDiffs,
	}
}

// WriteYAML writes the report to path, overwriting any previous run.
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "methoddiff: marshal report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "methoddiff: write report %s", path)
	}
	return nil
}

// FormatEntries renders config diff entries for the terminal.
func FormatEntries(entries []Entry) string {
	if len(entries) == 0 {
		return "  (no differences)"
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("  %s  [%s]", e.Path, e.Kind)
		if e.Left != nil {
			line += fmt.Sprintf("  left=%v", *e.Left)
		}
		if e.Right != nil {
			line += fmt.Sprintf("  right=%v", *e.Right)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatMappingDiffs renders mapping diff entries for the terminal.
func FormatMappingDiffs(diffs []MappingDiff) string {
	if len(diffs) == 0 {
		return "  (no mapping differences)"
	}
	lines := make([]string, 0, len(diffs))
	for _, d := range diffs {
		line := fmt.Sprintf("  %s  [%s]  %s", d.Name, d.Where, d.Summary)
		if len(d.AddedSectors) > 0 {
			line += fmt.Sprintf("  added=%v", d.AddedSectors)
		}
		if len(d.RemovedSectors) > 0 {
			line += fmt.Sprintf("  removed=%v", d.RemovedSectors)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// DefaultOutputPath derives the report filename from both method names.
func DefaultOutputPath(baselineMethod, testMethod string) string {
	base := fmt.Sprintf("%s_vs_%s_diffs.yaml", baselineMethod, testMethod)
	return strings.NewReplacer("/", "_", "\\", "_").Replace(base)
}
