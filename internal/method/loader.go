// Package method resolves named FBS method definitions into flat configs.
//
// A method is a YAML file at transform/<domain>/<name>.yaml. Its optional
// "include" key names parent methods (a string or a list) that are resolved
// recursively and deep-merged in file order; the method's own keys are applied
// last, so later overrides win.
package method

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// includeKey is the directive consumed during resolution; it never appears in
// a resolved config.
const includeKey = "include"

// Loader resolves method names to YAML files under TransformDir.
type Loader struct {
	TransformDir string
}

// Path returns the YAML path for a method name. The transform root is checked
// first, then each domain subdirectory in sorted order, so resolution is
// deterministic when a name exists in more than one domain.
func (l *Loader) Path(name string) (string, error) {
	direct := filepath.Join(l.TransformDir, name+".yaml")
	if fileExists(direct) {
		return direct, nil
	}

	entries, err := os.ReadDir(l.TransformDir)
	if err != nil {
		return "", eris.Wrapf(err, "method: read transform dir %s", l.TransformDir)
	}

	var domains []string
	for _, e := range entries {
		if e.IsDir() {
			domains = append(domains, e.Name())
		}
	}
	sort.Strings(domains)

	for _, domain := range domains {
		p := filepath.Join(l.TransformDir, domain, name+".yaml")
		if fileExists(p) {
			return p, nil
		}
	}

	return "", &UnknownMethodError{Method: name, TransformDir: l.TransformDir}
}

// Resolve loads a method and expands its include chain into one flat config.
func (l *Loader) Resolve(name string) (map[string]any, error) {
	return l.resolve(name, nil)
}

func (l *Loader) resolve(name string, stack []string) (map[string]any, error) {
	for _, seen := range stack {
		if seen == name {
			chain := append(append([]string{}, stack...), name)
			return nil, &CyclicIncludeError{Chain: chain}
		}
	}

	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "method: read %s", path)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "method: parse %s", path)
	}

	includes, err := popIncludes(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "method: %s", name)
	}

	resolved := map[string]any{}
	for _, inc := range includes {
		parent, err := l.resolve(inc, append(stack, name))
		if err != nil {
			return nil, err
		}
		mergeInto(resolved, parent)
	}
	mergeInto(resolved, raw)

	return resolved, nil
}

// popIncludes removes the include directive from raw and returns the parent
// method names in file order.
func popIncludes(raw map[string]any) ([]string, error) {
	v, ok := raw[includeKey]
	if !ok {
		return nil, nil
	}
	delete(raw, includeKey)

	switch inc := v.(type) {
	case string:
		return []string{inc}, nil
	case []any:
		names := make([]string, 0, len(inc))
		for _, item := range inc {
			s, ok := item.(string)
			if !ok {
				return nil, eris.Errorf("include entry %v is not a method name", item)
			}
			names = append(names, s)
		}
		return names, nil
	default:
		return nil, eris.Errorf("include must be a method name or list of names, got %T", v)
	}
}

// mergeInto applies overlay onto base. Maps merge recursively; scalars and
// lists replace.
func mergeInto(base map[string]any, overlay map[string]any) {
	for key, ov := range overlay {
		if bm, ok := base[key].(map[string]any); ok {
			if om, ok := ov.(map[string]any); ok {
				mergeInto(bm, om)
				continue
			}
		}
		base[key] = copyValue(ov)
	}
}

// CopyConfig returns a deep copy of a resolved config, safe to restrict or
// rewrite without touching the original.
func CopyConfig(config map[string]any) map[string]any {
	out, _ := copyValue(config).(map[string]any)
	return out
}

// copyValue deep-copies a parsed YAML value so resolved configs never alias
// a parent method's maps.
func copyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
