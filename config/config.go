// Package config loads the service configuration from the environment.
//
// Variables use the PEOPLE_REPORTS_ prefix and "__" between nesting levels:
//
//	PEOPLE_REPORTS_SERVER__PORT=8080          -> server.port
//	PEOPLE_REPORTS_DATABASE__DRIVER=postgres  -> database.driver
//	PEOPLE_REPORTS_REPORTS__RANKING=dense_rank
//
// A .env file in the working directory is loaded first if present. Anything
// not set keeps the value from Default(). Command-line flags in cmd/ are
// applied on top of the result.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every configuration variable.
const EnvPrefix = "PEOPLE_REPORTS_"

// Config is the root configuration object for the application.
type Config struct {
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Logging  LoggingConfig  `koanf:"logging" validate:"required"`
	Reports  ReportsConfig  `koanf:"reports" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
type ServerConfig struct {
	Port               int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout        time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig selects the storage backend. Path is used by sqlite, URL
// by postgres; memory needs neither.
type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres memory"`
	Path   string `koanf:"path" validate:"required_if=Driver sqlite"`
	URL    string `koanf:"url" validate:"required_if=Driver postgres"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// ReportsConfig tunes the top-earners report.
type ReportsConfig struct {
	Ranking string `koanf:"ranking" validate:"oneof=rank dense_rank"`
	TopRank int    `koanf:"top_rank" validate:"min=1"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       15 * time.Second,
			IdleTimeout:        60 * time.Second,
			ShutdownTimeout:    30 * time.Second,
			CORSAllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./people.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Reports: ReportsConfig{
			Ranking: "rank",
			TopRank: 3,
		},
	}
}

// Load reads PEOPLE_REPORTS_* variables over the defaults and validates the
// result.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field. Call it again after applying flag overrides.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
