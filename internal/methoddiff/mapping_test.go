package methoddiff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCrosswalk(t *testing.T, dir, name, content string) {
	t.Helper()
	path := ResolveCrosswalkPath(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectSectorMappingNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config map[string]any
		want   []string
	}{
		{
			name:   "empty config",
			config: map[string]any{},
			want:   []string{},
		},
		{
			name:   "no mappings",
			config: map[string]any{"target_year": 2023},
			want:   []string{},
		},
		{
			name: "nested under sources and activity sets",
			config: map[string]any{
				"source_names": map[string]any{
					"EPA_GHGI_T_2_1": map[string]any{
						"activity_to_sector_mapping": "EPA_GHGI",
						"activity_sets": map[string]any{
							"power": map[string]any{
								"activity_to_sector_mapping": "EPA_GHGI_power",
							},
						},
					},
					"EPA_GHGI_T_3_64": map[string]any{
						"activity_to_sector_mapping": "EPA_GHGI",
					},
				},
			},
			want: []string{"EPA_GHGI", "EPA_GHGI_power"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CollectSectorMappingNames(tt.config))
		})
	}
}

func TestCollectSectorMappingsBySource(t *testing.T) {
	t.Parallel()
	config := map[string]any{
		"source_names": map[string]any{
			"EPA_GHGI_T_2_1": map[string]any{
				"activity_to_sector_mapping": "EPA_GHGI",
			},
			"stateio": map[string]any{
				// Nested FBS source with its own source_names block.
				"source_names": map[string]any{
					"EPA_StateGHGI": map[string]any{
						"activity_to_sector_mapping": "EPA_StateGHGI",
					},
				},
			},
			"no_mapping": map[string]any{"geoscale": "national"},
		},
	}

	got := CollectSectorMappingsBySource(config)
	assert.Equal(t, map[string]string{
		"EPA_GHGI_T_2_1": "EPA_GHGI",
		"EPA_StateGHGI":  "EPA_StateGHGI",
	}, got)
}

func TestResolveCrosswalkPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		filepath.Join("xw", "NAICS_Crosswalk_EPA_GHGI.csv"),
		ResolveCrosswalkPath("xw", "EPA_GHGI"),
	)
}

func TestDiffMappingRows(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeCrosswalk(t, dir, "old", "ActivitySourceName,Activity,Sector\nEPA_GHGI,Electric Power,221100\nEPA_GHGI,Cement,327310\n")
	writeCrosswalk(t, dir, "new", "ActivitySourceName,Activity,Sector\nEPA_GHGI,Electric Power,221100\nEPA_GHGI,Lime,327410\n")

	added, removed, err := DiffMappingRows(
		ResolveCrosswalkPath(dir, "old"),
		ResolveCrosswalkPath(dir, "new"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"327410"}, added)
	assert.Equal(t, []string{"327310"}, removed)
}

func TestDiffMappingRowsNoSectorColumn(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeCrosswalk(t, dir, "bad", "Activity,Code\nx,1\n")
	writeCrosswalk(t, dir, "ok", "Activity,Sector\nx,1\n")

	_, _, err := DiffMappingRows(
		ResolveCrosswalkPath(dir, "bad"),
		ResolveCrosswalkPath(dir, "ok"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Sector column")
}

func TestDiffSectorMappings(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeCrosswalk(t, dir, "EPA_GHGI", "Activity,Sector\nElectric Power,221100\nCement,327310\n")
	writeCrosswalk(t, dir, "EPA_GHGI_edit", "Activity,Sector\nElectric Power,221100\nLime,327410\n")

	baseline := map[string]any{
		"source_names": map[string]any{
			"EPA_GHGI_T_2_1": map[string]any{"activity_to_sector_mapping": "EPA_GHGI"},
			"EPA_GHGI_T_4_46": map[string]any{
				"activity_to_sector_mapping": "dropped_mapping",
			},
		},
	}
	test := map[string]any{
		"source_names": map[string]any{
			"EPA_GHGI_T_2_1": map[string]any{"activity_to_sector_mapping": "EPA_GHGI_edit"},
		},
	}

	diffs, err := DiffSectorMappings(dir, baseline, test)
	require.NoError(t, err)
	require.Len(t, diffs, 4)

	// Name-level presence entries, sorted by mapping name.
	assert.Equal(t, "EPA_GHGI", diffs[0].Name)
	assert.Equal(t, "only in baseline", diffs[0].Where)
	assert.Equal(t, "EPA_GHGI_edit", diffs[1].Name)
	assert.Equal(t, "only in test", diffs[1].Where)
	assert.Equal(t, "dropped_mapping", diffs[2].Name)
	assert.Equal(t, "only in baseline", diffs[2].Where)

	// The switched source gets a row-level delta.
	assert.Equal(t, "EPA_GHGI -> EPA_GHGI_edit", diffs[3].Name)
	assert.Equal(t, "both", diffs[3].Where)
	assert.Contains(t, diffs[3].Summary, "EPA_GHGI_T_2_1 switched mapping")
	assert.Equal(t, []string{"327410"}, diffs[3].AddedSectors)
	assert.Equal(t, []string{"327310"}, diffs[3].RemovedSectors)
}

func TestDiffSectorMappingsSharedName(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeCrosswalk(t, dir, "EPA_GHGI", "Activity,Sector\nElectric Power,221100\nCement,327310\n")

	config := map[string]any{
		"source_names": map[string]any{
			"EPA_GHGI_T_2_1": map[string]any{"activity_to_sector_mapping": "EPA_GHGI"},
		},
	}

	diffs, err := DiffSectorMappings(dir, config, config)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "both", diffs[0].Where)
	assert.Equal(t, "2 sector rows (same mapping file for both)", diffs[0].Summary)
}

func TestDiffSectorMappingsMissingFile(t *testing.T) {
	t.Parallel()
	config := map[string]any{
		"source_names": map[string]any{
			"src": map[string]any{"activity_to_sector_mapping": "nowhere"},
		},
	}

	diffs, err := DiffSectorMappings(t.TempDir(), config, config)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "missing file", diffs[0].Summary)
}
