package methoddiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		baseline map[string]any
		test     map[string]any
		want     []Entry
	}{
		{
			name:     "both empty",
			baseline: map[string]any{},
			test:     map[string]any{},
			want:     nil,
		},
		{
			name:     "identical",
			baseline: map[string]any{"target_year": 2023, "geoscale": "national"},
			test:     map[string]any{"target_year": 2023, "geoscale": "national"},
			want:     nil,
		},
		{
			name:     "added key",
			baseline: map[string]any{"a": 1},
			test:     map[string]any{"a": 1, "b": 2},
			want:     []Entry{{Path: "b", Kind: KindAdded, Right: box(2)}},
		},
		{
			name:     "removed key",
			baseline: map[string]any{"a": 1, "b": 2},
			test:     map[string]any{"a": 1},
			want:     []Entry{{Path: "b", Kind: KindRemoved, Left: box(2)}},
		},
		{
			name:     "changed scalar",
			baseline: map[string]any{"target_year": 2023},
			test:     map[string]any{"target_year": 2024},
			want:     []Entry{{Path: "target_year", Kind: KindChanged, Left: box(2023), Right: box(2024)}},
		},
		{
			name:     "nested path",
			baseline: map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}},
			test:     map[string]any{"a": map[string]any{"b": map[string]any{"c": 2}}},
			want:     []Entry{{Path: "a.b.c", Kind: KindChanged, Left: box(1), Right: box(2)}},
		},
		{
			name:     "type change map to scalar",
			baseline: map[string]any{"a": map[string]any{"b": 1}},
			test:     map[string]any{"a": "flat"},
			want:     []Entry{{Path: "a", Kind: KindChanged, Left: box(map[string]any{"b": 1}), Right: box("flat")}},
		},
		{
			name:     "lists compare set-like",
			baseline: map[string]any{"acts": []any{"a", "b", "c"}},
			test:     map[string]any{"acts": []any{"c", "b", "a"}},
			want:     nil,
		},
		{
			name:     "list membership change",
			baseline: map[string]any{"acts": []any{"a", "b"}},
			test:     map[string]any{"acts": []any{"a", "c"}},
			want: []Entry{{
				Path: "acts", Kind: KindChanged,
				Left: box([]any{"a", "b"}), Right: box([]any{"a", "c"}),
			}},
		},
		{
			name:     "list of maps order-independent",
			baseline: map[string]any{"rules": []any{map[string]any{"x": 1}, map[string]any{"y": 2}}},
			test:     map[string]any{"rules": []any{map[string]any{"y": 2}, map[string]any{"x": 1}}},
			want:     nil,
		},
		{
			name:     "underscore keys skipped",
			baseline: map[string]any{"_comment": "old", "a": 1},
			test:     map[string]any{"_comment": "new", "_note": "x", "a": 1},
			want:     nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Diff(tt.baseline, tt.test))
		})
	}
}

func TestDiffCategoryOrder(t *testing.T) {
	t.Parallel()
	baseline := map[string]any{
		"zz_gone":  1,
		"aa_gone":  1,
		"modified": "old",
	}
	test := map[string]any{
		"new_key":  2,
		"modified": "new",
	}

	entries := Diff(baseline, test)
	require.Len(t, entries, 4)

	// Removed first (sorted by path), then added, then changed.
	assert.Equal(t, "aa_gone", entries[0].Path)
	assert.Equal(t, KindRemoved, entries[0].Kind)
	assert.Equal(t, "zz_gone", entries[1].Path)
	assert.Equal(t, KindRemoved, entries[1].Kind)
	assert.Equal(t, "new_key", entries[2].Path)
	assert.Equal(t, KindAdded, entries[2].Kind)
	assert.Equal(t, "modified", entries[3].Path)
	assert.Equal(t, KindChanged, entries[3].Kind)
}

func TestDiffSelfIsEmpty(t *testing.T) {
	t.Parallel()
	config := map[string]any{
		"target_year": 2023,
		"source_names": map[string]any{
			"EPA_GHGI_T_2_1": map[string]any{
				"activity_sets": map[string]any{
					"electric_power": map[string]any{
						"selection_fields": map[string]any{
							"PrimaryActivity": []any{"Electric Power"},
						},
					},
				},
			},
		},
	}
	assert.Empty(t, Diff(config, config))
}

func TestSummarizeLists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		left, right  []any
		wantBaseline []any
		wantTest     []any
	}{
		{
			name: "disjoint",
			left: []any{"a", "b"}, right: []any{"c"},
			wantBaseline: []any{"a", "b"}, wantTest: []any{"c"},
		},
		{
			name: "overlap",
			left: []any{"a", "b"}, right: []any{"b", "c"},
			wantBaseline: []any{"a"}, wantTest: []any{"c"},
		},
		{
			name: "equal sets",
			left: []any{"a", "b"}, right: []any{"b", "a"},
			wantBaseline: []any{}, wantTest: []any{},
		},
		{
			name: "empty left",
			left: nil, right: []any{"a"},
			wantBaseline: []any{}, wantTest: []any{"a"},
		},
		{
			name: "nested maps by structure",
			left: []any{map[string]any{"x": 1}}, right: []any{map[string]any{"x": 2}},
			wantBaseline: []any{map[string]any{"x": 1}}, wantTest: []any{map[string]any{"x": 2}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SummarizeLists(tt.left, tt.right)
			assert.Equal(t, tt.wantBaseline, got.OnlyInBaseline)
			assert.Equal(t, tt.wantTest, got.OnlyInTest)
		})
	}
}
