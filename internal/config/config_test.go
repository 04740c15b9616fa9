package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "transform", cfg.Paths.TransformDir)
	assert.Equal(t, "crosswalk", cfg.Paths.CrosswalkDir)
	assert.Equal(t, "output", cfg.Paths.OutputDir)
	assert.Equal(t, "scratch", cfg.Paths.ScratchDir)
	assert.Equal(t, "GHG_national_CEDA_2023", cfg.Method.Default)
	assert.Equal(t, "data/registry_index.csv", cfg.Registry.Index)
	assert.Equal(t, "data/registry_matrix.csv", cfg.Registry.Matrix)
	assert.Equal(t, "allocated_emissions_registry", cfg.Registry.Dataset)
	assert.Equal(t, "data/fbs_harmonized.csv", cfg.FBS.Harmonized)
	assert.Empty(t, cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
paths:
  transform_dir: methods/transform
method:
  default: GHG_state_CEDA_2023
store:
  database_url: runs.db
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "methods/transform", cfg.Paths.TransformDir)
	assert.Equal(t, "GHG_state_CEDA_2023", cfg.Method.Default)
	assert.Equal(t, "runs.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, "output", cfg.Paths.OutputDir)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ALIGN_METHOD_DEFAULT", "GHG_national_CEDA_2024")
	t.Setenv("ALIGN_PATHS_OUTPUT_DIR", "/tmp/align-out")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "GHG_national_CEDA_2024", cfg.Method.Default)
	assert.Equal(t, "/tmp/align-out", cfg.Paths.OutputDir)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "console"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
