package config

import (
	"testing"
	"time"
)

// validConfig returns a configuration that passes validation
func validConfig() *Config {
	return &Config{
		Matching: MatchingConfig{
			ResolveFloor: 40,
			SearchFloor:  50,
			AmbiguityGap: 10,
			MaxOptions:   4,
			SearchLimit:  10,
		},
		Session: SessionConfig{
			Store: "memory",
			TTL:   10 * time.Minute,
		},
		Catalog: CatalogConfig{
			Path: "./catalog.yaml",
		},
		RateLimit: RateLimitConfig{
			PerIP: 100,
		},
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Matching.ResolveFloor != 40 {
			t.Errorf("Matching.ResolveFloor = %v, want 40", cfg.Matching.ResolveFloor)
		}
		if cfg.Matching.SearchFloor != 50 {
			t.Errorf("Matching.SearchFloor = %v, want 50", cfg.Matching.SearchFloor)
		}
		if cfg.Matching.AmbiguityGap != 10 {
			t.Errorf("Matching.AmbiguityGap = %v, want 10", cfg.Matching.AmbiguityGap)
		}
		if cfg.Matching.MaxOptions != 4 {
			t.Errorf("Matching.MaxOptions = %d, want 4", cfg.Matching.MaxOptions)
		}
		if cfg.Matching.SearchLimit != 10 {
			t.Errorf("Matching.SearchLimit = %d, want 10", cfg.Matching.SearchLimit)
		}
		if !cfg.Matching.FoldAccents {
			t.Error("Matching.FoldAccents = false, want true")
		}
		if cfg.Session.Store != "memory" {
			t.Errorf("Session.Store = %s, want memory", cfg.Session.Store)
		}
		if cfg.Session.TTL != 10*time.Minute {
			t.Errorf("Session.TTL = %v, want 10m", cfg.Session.TTL)
		}
		if cfg.Catalog.Path != "./catalog.yaml" {
			t.Errorf("Catalog.Path = %s, want ./catalog.yaml", cfg.Catalog.Path)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.Log.Level != "info" {
			t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		t.Setenv("QUEVENDI_SERVER_PORT", "9090")
		t.Setenv("QUEVENDI_SERVER_ENVIRONMENT", "production")
		t.Setenv("QUEVENDI_MATCHING_RESOLVE_FLOOR", "45")
		t.Setenv("QUEVENDI_MATCHING_AMBIGUITY_GAP", "5")
		t.Setenv("QUEVENDI_MATCHING_FOLD_ACCENTS", "false")
		t.Setenv("QUEVENDI_SESSION_STORE", "redis")
		t.Setenv("QUEVENDI_SESSION_REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("QUEVENDI_SESSION_TTL", "2m")
		t.Setenv("QUEVENDI_CATALOG_PATH", "/data/catalog.json")
		t.Setenv("QUEVENDI_RATELIMIT_PER_IP", "200")
		t.Setenv("QUEVENDI_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Matching.ResolveFloor != 45 {
			t.Errorf("Matching.ResolveFloor = %v, want 45", cfg.Matching.ResolveFloor)
		}
		if cfg.Matching.AmbiguityGap != 5 {
			t.Errorf("Matching.AmbiguityGap = %v, want 5", cfg.Matching.AmbiguityGap)
		}
		if cfg.Matching.FoldAccents {
			t.Error("Matching.FoldAccents = true, want false")
		}
		if cfg.Session.Store != "redis" {
			t.Errorf("Session.Store = %s, want redis", cfg.Session.Store)
		}
		if cfg.Session.RedisURL != "redis://localhost:6379/0" {
			t.Errorf("Session.RedisURL = %s, want redis://localhost:6379/0", cfg.Session.RedisURL)
		}
		if cfg.Session.TTL != 2*time.Minute {
			t.Errorf("Session.TTL = %v, want 2m", cfg.Session.TTL)
		}
		if cfg.Catalog.Path != "/data/catalog.json" {
			t.Errorf("Catalog.Path = %s, want /data/catalog.json", cfg.Catalog.Path)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
		}
	})

	t.Run("fails validation for invalid session store", func(t *testing.T) {
		t.Setenv("QUEVENDI_SESSION_STORE", "invalid")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid session store")
		}
	})

	t.Run("fails validation when redis URL missing for redis store", func(t *testing.T) {
		t.Setenv("QUEVENDI_SESSION_STORE", "redis")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(validConfig()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero resolve floor", func(c *Config) { c.Matching.ResolveFloor = 0 }},
		{"negative search floor", func(c *Config) { c.Matching.SearchFloor = -1 }},
		{"zero ambiguity gap", func(c *Config) { c.Matching.AmbiguityGap = 0 }},
		{"single option", func(c *Config) { c.Matching.MaxOptions = 1 }},
		{"zero search limit", func(c *Config) { c.Matching.SearchLimit = 0 }},
		{"unknown session store", func(c *Config) { c.Session.Store = "disk" }},
		{"redis without URL", func(c *Config) { c.Session.Store = "redis" }},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"empty catalog path", func(c *Config) { c.Catalog.Path = "" }},
		{"zero rate limit", func(c *Config) { c.RateLimit.PerIP = 0 }},
	}

	for _, tt := range tests {
		t.Run("fails for "+tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("validate() error = nil, want error")
			}
		})
	}

	t.Run("validates redis store with URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Session.Store = "redis"
		cfg.Session.RedisURL = "redis://localhost:6379"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid redis config", err)
		}
	})
}
