// Package config loads configuration and initializes the global logger.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Model  ModelConfig  `yaml:"model" mapstructure:"model"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ModelConfig selects and configures the extraction model provider.
type ModelConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"`
	GeminiKey      string `yaml:"gemini_key" mapstructure:"gemini_key"`
	GeminiModel    string `yaml:"gemini_model" mapstructure:"gemini_model"`
	AnthropicKey   string `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	AnthropicModel string `yaml:"anthropic_model" mapstructure:"anthropic_model"`
}

// FetchConfig configures webpage text acquisition.
type FetchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SearchConfig configures the company website resolver.
type SearchConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// BatchConfig configures batch ingestion.
type BatchConfig struct {
	MaxConcurrent  int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields a command mode depends on.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}

	needsModel := false
	switch mode {
	case "ingest", "batch":
		needsModel = true
	case "serve":
		needsModel = true
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "cleanup":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if needsModel {
		switch c.Model.Provider {
		case "gemini":
			if c.Model.GeminiKey == "" {
				problems = append(problems, "model.gemini_key is required")
			}
		case "anthropic":
			if c.Model.AnthropicKey == "" {
				problems = append(problems, "model.anthropic_key is required")
			}
		default:
			problems = append(problems, "model.provider must be gemini or anthropic")
		}
	}

	if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 20 {
		problems = append(problems, "batch.max_concurrent must be between 1 and 20")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from .env, config file, and environment.
func Load() (*Config, error) {
	// Optional .env for local development; real env vars win.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DRONEDIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "directory.db")
	v.SetDefault("model.provider", "gemini")
	v.SetDefault("model.gemini_model", "gemini-1.5-flash")
	v.SetDefault("model.anthropic_model", "claude-haiku-4-5-20251001")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("search.base_url", "https://html.duckduckgo.com/html/")
	v.SetDefault("batch.max_concurrent", 3)
	v.SetDefault("batch.requests_per_sec", 0.5)
	v.SetDefault("server.port", 8000)
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
