package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults to load, got error: %v", err)
	}

	if cfg.API.BaseURL != "https://data912.com" {
		t.Errorf("expected default base URL, got '%s'", cfg.API.BaseURL)
	}
	if cfg.API.CacheTTLSec != 20 {
		t.Errorf("expected 20s cache TTL by default, got %d", cfg.API.CacheTTLSec)
	}
	if cfg.Pricing.RiskFreeRate != 0.35 {
		t.Errorf("expected default risk-free rate 0.35, got %v", cfg.Pricing.RiskFreeRate)
	}
	if cfg.Server.Port != "8000" {
		t.Errorf("expected default port 8000, got '%s'", cfg.Server.Port)
	}
	if len(cfg.Tickers) == 0 {
		t.Error("expected a default ticker list")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	_ = os.Setenv("BYMA_SERVER_PORT", "9000")
	defer func() { _ = os.Unsetenv("BYMA_SERVER_PORT") }()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("expected env override port 9000, got '%s'", cfg.Server.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("api:\n  rate_per_second: 10\npricing:\n  risk_free_rate: 0.5\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.RatePerSecond != 10 {
		t.Errorf("expected rate_per_second 10 from file, got %d", cfg.API.RatePerSecond)
	}
	if cfg.Pricing.RiskFreeRate != 0.5 {
		t.Errorf("expected risk_free_rate 0.5 from file, got %v", cfg.Pricing.RiskFreeRate)
	}
	// Untouched keys keep their defaults.
	if cfg.API.RetryCount != 3 {
		t.Errorf("expected default retry_count 3, got %d", cfg.API.RetryCount)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base URL", func(c *Config) { c.API.BaseURL = "" }},
		{"zero rate limit", func(c *Config) { c.API.RatePerSecond = 0 }},
		{"negative risk-free rate", func(c *Config) { c.Pricing.RiskFreeRate = -0.1 }},
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"no tickers", func(c *Config) { c.Tickers = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
