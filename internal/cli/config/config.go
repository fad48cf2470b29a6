// Package config loads wildebeest's CLI configuration surface (spec.md
// §6) from a config file and environment, using the same viper-based
// layering the original tooling used for its project config.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	analyzerconfig "github.com/wildebeest-nlp/wildebeest/internal/analyzer/config"
)

// Config is the on-disk/environment configuration for the wildebeest CLI
// and its optional report-API server and history store.
type Config struct {
	Analyzer AnalyzerConfig `mapstructure:"analyzer" yaml:"analyzer"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
}

// AnalyzerConfig mirrors spec.md §6's configuration surface exactly;
// ToParams converts it to analyzer/config.Params for analyzerconfig.New.
type AnalyzerConfig struct {
	MaxExamples            int    `mapstructure:"max_examples" yaml:"max_examples"`
	MaxLocations           int    `mapstructure:"max_locations" yaml:"max_locations"`
	ShowAllCategories      bool   `mapstructure:"show_all_categories" yaml:"show_all_categories"`
	FirstFieldIsSentenceID bool   `mapstructure:"first_field_is_sentence_id" yaml:"first_field_is_sentence_id"`
	LanguageCode           string `mapstructure:"language_code" yaml:"language_code"`
	LongTokenMin           int    `mapstructure:"long_token_min" yaml:"long_token_min"`
}

// ServerConfig configures the optional report-API server (internal/web).
type ServerConfig struct {
	Port      int    `mapstructure:"port" yaml:"port"`
	Host      string `mapstructure:"host" yaml:"host"`
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`

	// RateLimitRedisAddr, when set, backs the /auth/token rate limiter
	// with a Redis sliding window shared across serve instances instead
	// of the default single-process in-memory token bucket.
	RateLimitRedisAddr string `mapstructure:"rate_limit_redis_addr" yaml:"rate_limit_redis_addr"`
}

// HistoryConfig configures the optional run-history store
// (internal/historystore): a Postgres DSN for shared deployments, or a
// SQLite file path for a single-machine CLI install.
type HistoryConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // "postgres" or "sqlite"
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// Load reads wildebeest.yml/.yaml from the current directory (falling
// back to defaults when absent) and environment variables prefixed
// WILDEBEEST_.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("analyzer.max_examples", analyzerconfig.DefaultMaxExamples)
	v.SetDefault("analyzer.max_locations", analyzerconfig.DefaultMaxLocations)
	v.SetDefault("analyzer.long_token_min", analyzerconfig.DefaultLongTokenMin)
	v.SetDefault("server.port", 8088)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.dsn", "wildebeest.db")

	v.SetConfigName("wildebeest")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WILDEBEEST")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ToParams converts the CLI-layer config into the core's validation
// input; analyzerconfig.New applies the actual clamping/warning logic.
func (c AnalyzerConfig) ToParams() analyzerconfig.Params {
	return analyzerconfig.Params{
		MaxExamples:            c.MaxExamples,
		MaxLocations:           c.MaxLocations,
		ShowAllCategories:      c.ShowAllCategories,
		FirstFieldIsSentenceID: c.FirstFieldIsSentenceID,
		LanguageCode:           c.LanguageCode,
		LongTokenMin:           c.LongTokenMin,
	}
}

// InProject reports whether the current directory holds a wildebeest
// config file.
func InProject() bool {
	if _, err := os.Stat("wildebeest.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("wildebeest.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot walks upward from the working directory looking for a
// wildebeest config file.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "wildebeest.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "wildebeest.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a wildebeest project (no wildebeest.yml found)")
		}
		dir = parent
	}
}
