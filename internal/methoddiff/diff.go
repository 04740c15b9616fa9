// Package methoddiff computes structural diffs between two resolved FBS
// method configs and between the sector-mapping files they reference.
package methoddiff

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Kind classifies a diff entry relative to the baseline config.
type Kind string

const (
	KindRemoved Kind = "removed" // key only in baseline
	KindAdded   Kind = "added"   // key only in test
	KindChanged Kind = "changed" // key in both with different values
)

// kindRank orders report categories: baseline-only, then test-only, then changed.
var kindRank = map[Kind]int{KindRemoved: 0, KindAdded: 1, KindChanged: 2}

// Entry is one difference between two resolved configs, addressed by dotted
// path. Left and Right are boxed so zero values (false, 0, "") still marshal;
// a nil pointer means that side has no value at all.
type Entry struct {
	Path        string       `yaml:"path"`
	Kind        Kind         `yaml:"kind"`
	Left        *any         `yaml:"left,omitempty"`
	Right       *any         `yaml:"right,omitempty"`
	ListSummary *ListSummary `yaml:"list_summary,omitempty"`
}

// box wraps a diff value for an Entry side.
func box(v any) *any { return &v }

// ListSummary is the compact form of a set-like list change.
type ListSummary struct {
	OnlyInBaseline []any `yaml:"only_in_baseline"`
	OnlyInTest     []any `yaml:"only_in_test"`
}

// Diff deep-diffs two resolved method configs. Keys beginning with "_" are
// skipped, lists compare set-like (order-independent), and entries come back
// in deterministic category order: removed, added, changed, each sorted by path.
// Diffing a config against itself yields nil.
func Diff(baseline, test map[string]any) []Entry {
	var out []Entry
	walk(baseline, test, "", &out)
	sort.SliceStable(out, func(i, j int) bool {
		if kindRank[out[i].Kind] != kindRank[out[j].Kind] {
			return kindRank[out[i].Kind] < kindRank[out[j].Kind]
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func walk(left, right any, path string, out *[]Entry) {
	lm, lIsMap := left.(map[string]any)
	rm, rIsMap := right.(map[string]any)
	if lIsMap && rIsMap {
		walkMaps(lm, rm, path, out)
		return
	}

	ll, lIsList := left.([]any)
	rl, rIsList := right.([]any)
	if lIsList && rIsList {
		if !listsSetEqual(ll, rl) {
			*out = append(*out, Entry{Path: pathOrRoot(path), Kind: KindChanged, Left: box(ll), Right: box(rl)})
		}
		return
	}

	if !reflect.DeepEqual(left, right) {
		*out = append(*out, Entry{Path: pathOrRoot(path), Kind: KindChanged, Left: box(left), Right: box(right)})
	}
}

func walkMaps(left, right map[string]any, path string, out *[]Entry) {
	keys := map[string]struct{}{}
	for k := range left {
		keys[k] = struct{}{}
	}
	for k := range right {
		keys[k] = struct{}{}
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, key := range sorted {
		if len(key) > 0 && key[0] == '_' {
			continue
		}
		sub := key
		if path != "" {
			sub = path + "." + key
		}
		lv, inLeft := left[key]
		rv, inRight := right[key]
		switch {
		case !inLeft:
			*out = append(*out, Entry{Path: sub, Kind: KindAdded, Right: box(rv)})
		case !inRight:
			*out = append(*out, Entry{Path: sub, Kind: KindRemoved, Left: box(lv)})
		default:
			walk(lv, rv, sub, out)
		}
	}
}

func pathOrRoot(path string) string {
	if path == "" {
		return "."
	}
	return path
}

// SummarizeLists reduces a set-like list change to the items unique to each
// side, preserving input order.
func SummarizeLists(left, right []any) *ListSummary {
	leftSet := canonicalSet(left)
	rightSet := canonicalSet(right)

	summary := &ListSummary{OnlyInBaseline: []any{}, OnlyInTest: []any{}}
	for _, item := range left {
		if _, ok := rightSet[canonicalItem(item)]; !ok {
			summary.OnlyInBaseline = append(summary.OnlyInBaseline, item)
		}
	}
	for _, item := range right {
		if _, ok := leftSet[canonicalItem(item)]; !ok {
			summary.OnlyInTest = append(summary.OnlyInTest, item)
		}
	}
	return summary
}

func listsSetEqual(left, right []any) bool {
	ls := canonicalSet(left)
	rs := canonicalSet(right)
	if len(ls) != len(rs) {
		return false
	}
	for k := range ls {
		if _, ok := rs[k]; !ok {
			return false
		}
	}
	return true
}

func canonicalSet(items []any) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[canonicalItem(item)] = struct{}{}
	}
	return set
}

// canonicalItem encodes one list item for set membership. JSON gives sorted
// map keys, so equal nested structures encode identically.
func canonicalItem(item any) string {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprintf("%#v", item)
	}
	return string(b)
}
