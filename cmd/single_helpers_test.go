package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceda-group/align-cli/internal/compare"
)

func TestWriteSliceCSV(t *testing.T) {
	t.Parallel()
	matrix := compare.Matrix{
		"CO2": {"221100": 100, "327310": 40.5},
		"CH4": {"221100": 5},
	}

	path := filepath.Join(t.TempDir(), "out", "fbs_single_test.csv")
	require.NoError(t, writeSliceCSV(path, matrix))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"gas", "sector", "co2e"},
		{"CH4", "221100", "5"},
		{"CO2", "221100", "100"},
		{"CO2", "327310", "40.5"},
	}, records)
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0", formatAmount(0))
	assert.Equal(t, "12.5", formatAmount(12.5))
	assert.Equal(t, "1e+06", formatAmount(1e6))
	assert.Equal(t, "-3.25", formatAmount(-3.25))
}

func TestSortedGases(t *testing.T) {
	t.Parallel()
	matrix := compare.Matrix{"N2O": {}, "CH4": {}, "CO2": {}}
	assert.Equal(t, []string{"CH4", "CO2", "N2O"}, sortedGases(matrix))
}
