// Package config loads align-cli configuration from file and environment and
// installs the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Method   MethodConfig   `yaml:"method" mapstructure:"method"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	FBS      FBSConfig      `yaml:"fbs" mapstructure:"fbs"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// PathsConfig locates the repo directories the tools read and write.
type PathsConfig struct {
	TransformDir string `yaml:"transform_dir" mapstructure:"transform_dir"`
	CrosswalkDir string `yaml:"crosswalk_dir" mapstructure:"crosswalk_dir"`
	OutputDir    string `yaml:"output_dir" mapstructure:"output_dir"`
	ScratchDir   string `yaml:"scratch_dir" mapstructure:"scratch_dir"`
}

// MethodConfig names the default FBS method.
type MethodConfig struct {
	Default string `yaml:"default" mapstructure:"default"`
}

// RegistryConfig locates the registry exports.
type RegistryConfig struct {
	Index   string `yaml:"index" mapstructure:"index"`
	Matrix  string `yaml:"matrix" mapstructure:"matrix"`
	Dataset string `yaml:"dataset" mapstructure:"dataset"`
}

// FBSConfig locates the harmonized FBS export consumed by comparisons.
type FBSConfig struct {
	Harmonized string `yaml:"harmonized" mapstructure:"harmonized"`
}

// StoreConfig configures the optional run-history database.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and ALIGN_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ALIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("paths.transform_dir", "transform")
	v.SetDefault("paths.crosswalk_dir", "crosswalk")
	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("paths.scratch_dir", "scratch")
	v.SetDefault("method.default", "GHG_national_CEDA_2023")
	v.SetDefault("registry.index", "data/registry_index.csv")
	v.SetDefault("registry.matrix", "data/registry_matrix.csv")
	v.SetDefault("registry.dataset", "allocated_emissions_registry")
	v.SetDefault("fbs.harmonized", "data/fbs_harmonized.csv")
	v.SetDefault("store.database_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
