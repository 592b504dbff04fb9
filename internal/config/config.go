// Package config loads application configuration from file and environment
// and installs the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dirtybirdnj/vt-geodata/internal/water"
)

// Config holds the full application configuration.
type Config struct {
	Thresholds water.Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Cutout     CutoutConfig     `yaml:"cutout" mapstructure:"cutout"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the edit-ledger database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PathsConfig holds default file locations for command inputs and outputs.
type PathsConfig struct {
	OutputDir  string `yaml:"output_dir" mapstructure:"output_dir"`
	LedgerFile string `yaml:"ledger_file" mapstructure:"ledger_file"`
}

// CutoutConfig configures the town trim stage.
type CutoutConfig struct {
	PlanFile    string `yaml:"plan_file" mapstructure:"plan_file"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the configuration for values no command can run with.
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	th := c.Thresholds
	if th.BigLakeMinArea <= 0 || th.UnnamedLargeMinArea <= 0 || th.SmallPondMaxArea <= 0 {
		problems = append(problems, "thresholds must be positive")
	}
	if th.SmallPondMaxArea >= th.BigLakeMinArea {
		problems = append(problems, "thresholds.small_pond_max_area must be below thresholds.big_lake_min_area")
	}
	if th.RiverMinElongation < 1 {
		problems = append(problems, "thresholds.river_min_elongation must be >= 1")
	}

	if c.Cutout.Concurrency < 1 || c.Cutout.Concurrency > 32 {
		problems = append(problems, "cutout.concurrency must be between 1 and 32")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VTGEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	th := water.DefaultThresholds()
	v.SetDefault("thresholds.big_lake_min_area", th.BigLakeMinArea)
	v.SetDefault("thresholds.unnamed_large_min_area", th.UnnamedLargeMinArea)
	v.SetDefault("thresholds.small_pond_max_area", th.SmallPondMaxArea)
	v.SetDefault("thresholds.river_min_elongation", th.RiverMinElongation)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "vt-geodata.db")
	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("paths.ledger_file", "water_edits.json")
	v.SetDefault("cutout.plan_file", "")
	v.SetDefault("cutout.concurrency", 4)
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
