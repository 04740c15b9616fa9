package compare

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadHarmonizedFBS(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "fbs.csv", `Gas,Sector,MetaSources,CO2e
CH4,221100,EPA_GHGI_T_3_64.natural_gas,10.5
CH4,486000,EPA_GHGI_T_3_64.natural_gas,2.5
CO2,221100,EPA_GHGI_T_2_1.electric_power,100
`)

	fbs, err := LoadHarmonizedFBS(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"EPA_GHGI_T_2_1.electric_power", "EPA_GHGI_T_3_64.natural_gas"}, fbs.SliceIDs())

	m, err := fbs.SliceMatrix(context.Background(), "EPA_GHGI_T_3_64.natural_gas")
	require.NoError(t, err)
	assert.InDelta(t, 13.0, m.GasTotal("CH4"), 1e-9)
	assert.Zero(t, m.GasTotal("CO2"))
	assert.InDelta(t, 10.5, m["CH4"]["221100"], 1e-9)
}

func TestSliceMatrixUnknownSlice(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "fbs.csv", "gas,sector,metasources,co2e\nCO2,221100,known.set,1\n")

	fbs, err := LoadHarmonizedFBS(path)
	require.NoError(t, err)

	_, err = fbs.SliceMatrix(context.Background(), "removed.set")
	var rerr *SliceReconstructionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "removed.set", rerr.Slice)
	assert.Equal(t, "fbs has no rows for slice", rerr.Reason)
}

func TestLoadHarmonizedFBSRaggedRow(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "fbs.csv", `Gas,Sector,MetaSources,CO2e
CH4,221100,EPA_GHGI_T_3_64.natural_gas,10.5
CH4,221100
`)

	_, err := LoadHarmonizedFBS(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "2 fields, expected 4")
}

func TestLoadHarmonizedFBSMissingColumn(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "fbs.csv", "gas,sector,co2e\nCO2,221100,1\n")

	_, err := LoadHarmonizedFBS(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing metasources column")
}

func TestLoadRegistryMatrix(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "registry.csv", `emissions_source,221100,486000
ch4_natural_gas_systems,8.25,4.75
co2_electric_power,1500,
`)

	rm, err := LoadRegistryMatrix(path)
	require.NoError(t, err)

	vec, err := rm.SourceVector(context.Background(), "ch4_natural_gas_systems")
	require.NoError(t, err)
	assert.InDelta(t, 13.0, vec.Total(), 1e-9)
	assert.InDelta(t, 8.25, vec["221100"], 1e-9)

	// Empty cells are absent, not zero entries.
	vec, err = rm.SourceVector(context.Background(), "co2_electric_power")
	require.NoError(t, err)
	assert.Len(t, vec, 1)
	assert.InDelta(t, 1500.0, vec.Total(), 1e-9)
}

func TestSourceVectorUnknownSource(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "registry.csv", "emissions_source,221100\nknown,1\n")

	rm, err := LoadRegistryMatrix(path)
	require.NoError(t, err)

	_, err = rm.SourceVector(context.Background(), "gone")
	var rerr *SliceReconstructionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "gone", rerr.Source)
	assert.Equal(t, "registry has no row for source", rerr.Reason)
}

func TestLoadRegistryMatrixBadHeader(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "registry.csv", "source,221100\nx,1\n")

	_, err := LoadRegistryMatrix(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with emissions_source")
}

func TestProvidersHonorCancellation(t *testing.T) {
	t.Parallel()
	fbsPath := writeFile(t, "fbs.csv", "gas,sector,metasources,co2e\nCO2,221100,s.a,1\n")
	fbs, err := LoadHarmonizedFBS(fbsPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fbs.SliceMatrix(ctx, "s.a")
	assert.ErrorIs(t, err, context.Canceled)
}
