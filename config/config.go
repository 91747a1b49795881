package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Matching  MatchingConfig
	Session   SessionConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MatchingConfig holds the product resolution thresholds
type MatchingConfig struct {
	ResolveFloor float64 `mapstructure:"resolve_floor"`
	SearchFloor  float64 `mapstructure:"search_floor"`
	AmbiguityGap float64 `mapstructure:"ambiguity_gap"`
	MaxOptions   int     `mapstructure:"max_options"`
	SearchLimit  int     `mapstructure:"search_limit"`
	FoldAccents  bool    `mapstructure:"fold_accents"`
}

// SessionConfig holds where pending disambiguations are kept
type SessionConfig struct {
	Store    string        `mapstructure:"store"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// CatalogConfig holds the catalog snapshot location
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/quevendi/")

	// Environment variable settings
	v.SetEnvPrefix("QUEVENDI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Matching defaults
	v.SetDefault("matching.resolve_floor", 40.0)
	v.SetDefault("matching.search_floor", 50.0)
	v.SetDefault("matching.ambiguity_gap", 10.0)
	v.SetDefault("matching.max_options", 4)
	v.SetDefault("matching.search_limit", 10)
	v.SetDefault("matching.fold_accents", true)

	// Session defaults
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.redis_url", "")
	v.SetDefault("session.ttl", "10m")

	// Catalog defaults
	v.SetDefault("catalog.path", "./catalog.yaml")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Matching.ResolveFloor <= 0 || config.Matching.SearchFloor <= 0 {
		return fmt.Errorf("matching floors must be positive")
	}

	if config.Matching.AmbiguityGap <= 0 {
		return fmt.Errorf("matching ambiguity gap must be positive, got: %v", config.Matching.AmbiguityGap)
	}

	if config.Matching.MaxOptions < 2 {
		return fmt.Errorf("matching max options must be at least 2, got: %d", config.Matching.MaxOptions)
	}

	if config.Matching.SearchLimit <= 0 {
		return fmt.Errorf("matching search limit must be positive, got: %d", config.Matching.SearchLimit)
	}

	if config.Session.Store != "memory" && config.Session.Store != "redis" {
		return fmt.Errorf("session store must be 'memory' or 'redis', got: %s", config.Session.Store)
	}

	if config.Session.Store == "redis" && config.Session.RedisURL == "" {
		return fmt.Errorf("redis URL is required when session store is 'redis' (set QUEVENDI_SESSION_REDIS_URL)")
	}

	if config.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got: %s", config.Session.TTL)
	}

	if config.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required (set QUEVENDI_CATALOG_PATH)")
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("rate limit per IP must be positive, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
