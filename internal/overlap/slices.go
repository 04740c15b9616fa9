package overlap

import (
	"sort"
	"strings"
)

// ExtractSlices enumerates every slice of a resolved method config: one per
// (source, activity set), or one per source when it declares no activity sets.
// Output is sorted by slice ID.
func ExtractSlices(methodName string, config map[string]any) []Slice {
	sources, _ := config["source_names"].(map[string]any)

	var slices []Slice
	for _, sourceName := range sortedKeys(sources) {
		sc, _ := sources[sourceName].(map[string]any)
		activitySets, _ := sc["activity_sets"].(map[string]any)

		if len(activitySets) == 0 {
			sel, _ := sc["selection_fields"].(map[string]any)
			slices = append(slices, Slice{
				ID:                sourceName,
				SourceName:        sourceName,
				Method:            methodName,
				Flows:             selectionList(sel, "FlowName"),
				PrimaryActivities: primaryActivities(sel),
			})
			continue
		}

		for _, setName := range sortedKeys(activitySets) {
			asc, _ := activitySets[setName].(map[string]any)
			sel, _ := asc["selection_fields"].(map[string]any)
			slices = append(slices, Slice{
				ID:                sourceName + "." + setName,
				SourceName:        sourceName,
				ActivitySet:       setName,
				Method:            methodName,
				Flows:             selectionList(sel, "FlowName"),
				PrimaryActivities: primaryActivities(sel),
			})
		}
	}

	sort.Slice(slices, func(i, j int) bool { return slices[i].ID < slices[j].ID })
	return slices
}

// primaryActivities reads selection_fields.PrimaryActivity, which may be a
// string, a list, or an "Activity: SubActivity" map. Map entries render as
// "key: value", or just the key when the value is empty.
func primaryActivities(sel map[string]any) []string {
	raw, ok := sel["PrimaryActivity"]
	if !ok {
		return nil
	}

	var labels []string
	switch v := raw.(type) {
	case string:
		labels = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				labels = append(labels, s)
			}
		}
	case map[string]any:
		for _, k := range sortedKeys(v) {
			if sub, ok := v[k].(string); ok && sub != "" {
				labels = append(labels, k+": "+sub)
			} else {
				labels = append(labels, k)
			}
		}
	default:
		return nil
	}

	out := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(strings.SplitN(label, "#", 2)[0])
		if label != "" {
			out = append(out, label)
		}
	}
	return out
}

func selectionList(sel map[string]any, key string) []string {
	raw, ok := sel[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
