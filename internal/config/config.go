// Package config loads application configuration and initializes logging.
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
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Classify ClassifyConfig `yaml:"classify" mapstructure:"classify"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the saved-area database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// DataConfig points at the input datasets and reference files.
type DataConfig struct {
	StatsPath    string `yaml:"stats_path" mapstructure:"stats_path"`
	BoundaryPath string `yaml:"boundary_path" mapstructure:"boundary_path"`
	PointsPath   string `yaml:"points_path" mapstructure:"points_path"`
	UnitCostPath string `yaml:"unit_cost_path" mapstructure:"unit_cost_path"`
	TaxonomyPath string `yaml:"taxonomy_path" mapstructure:"taxonomy_path"`
	PalettePath  string `yaml:"palette_path" mapstructure:"palette_path"`
	StatsSJIS    bool   `yaml:"stats_sjis" mapstructure:"stats_sjis"`
}

// ClassifyConfig holds the default classification request.
type ClassifyConfig struct {
	Year  string `yaml:"year" mapstructure:"year"`
	Month string `yaml:"month" mapstructure:"month"`
	Field string `yaml:"field" mapstructure:"field"`
}

// FetchConfig configures remote dataset downloads.
type FetchConfig struct {
	StatsURL     string  `yaml:"stats_url" mapstructure:"stats_url"`
	BoundaryURL  string  `yaml:"boundary_url" mapstructure:"boundary_url"`
	DestDir      string  `yaml:"dest_dir" mapstructure:"dest_dir"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxRetries   int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxArchiveMB int64   `yaml:"max_archive_mb" mapstructure:"max_archive_mb"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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
	v.SetDefault("store.database_url", "atlas.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("classify.field", "building_count")
	v.SetDefault("data.stats_sjis", true)
	v.SetDefault("fetch.dest_dir", "data")
	v.SetDefault("fetch.rate_per_sec", 2.0)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.user_agent", "atlas-cli/1.0")
	v.SetDefault("fetch.max_archive_mb", 512)

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
