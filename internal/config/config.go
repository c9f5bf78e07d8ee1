// Package config loads application configuration from a yaml file and
// ATLAS_-prefixed environment variables.
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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Geo      GeoConfig      `yaml:"geo" mapstructure:"geo"`
	Priority PriorityConfig `yaml:"priority" mapstructure:"priority"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Refresh  RefreshConfig  `yaml:"refresh" mapstructure:"refresh"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the snapshot cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file path
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SourceConfig configures the upstream workbook export.
type SourceConfig struct {
	Workbook         string `yaml:"workbook" mapstructure:"workbook"` // path or URL
	Format           string `yaml:"format" mapstructure:"format"`     // xlsx or csv; "" infers from the path
	Sheet            string `yaml:"sheet" mapstructure:"sheet"`
	ParticipantSheet string `yaml:"participant_sheet" mapstructure:"participant_sheet"`
	SkipRows         int    `yaml:"skip_rows" mapstructure:"skip_rows"`
	MappingPath      string `yaml:"mapping_path" mapstructure:"mapping_path"`
	UserAgent        string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeoConfig configures district boundary lookup.
type GeoConfig struct {
	DistrictShapefile string `yaml:"district_shapefile" mapstructure:"district_shapefile"`
}

// PriorityConfig sets the default priority criteria for the CLI and the
// initial HTTP session.
type PriorityConfig struct {
	HighSTH          bool `yaml:"high_sth" mapstructure:"high_sth"`
	HighENI          bool `yaml:"high_eni" mapstructure:"high_eni"`
	Untrained        bool `yaml:"untrained" mapstructure:"untrained"`
	FundamentalsOnly bool `yaml:"fundamentals_only" mapstructure:"fundamentals_only"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// RefreshConfig configures the background snapshot refresh loop.
type RefreshConfig struct {
	IntervalMins int `yaml:"interval_mins" mapstructure:"interval_mins"` // 0 disables
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "atlas.db")
	v.SetDefault("source.sheet", "School Training Status")
	v.SetDefault("source.participant_sheet", "Participant Detail")
	v.SetDefault("source.user_agent", "atlas-cli/1.0")
	v.SetDefault("source.timeout_secs", 60)
	v.SetDefault("priority.high_sth", true)
	v.SetDefault("priority.high_eni", true)
	v.SetDefault("priority.untrained", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("refresh.interval_mins", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
