package gymdesk

import (
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/gymdesk/storage"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://api.gym.example"
	return cfg
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Credential.TTL != 60*time.Second {
		t.Fatalf("expected 60s credential ttl, got %v", cfg.Credential.TTL)
	}
	if cfg.Credential.TokenKey != "userToken" || cfg.Credential.GymKey != "gymId" {
		t.Fatalf("unexpected key names %+v", cfg.Credential)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("expected 15s backend timeout, got %v", cfg.API.Timeout)
	}
	if cfg.API.LoginPath != "/api/auth/login" {
		t.Fatalf("unexpected login path %q", cfg.API.LoginPath)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected default config without BaseURL to be invalid")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{"valid", func(c *Config) {}, true},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, false},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://gym.example" }, false},
		{"login path without slash", func(c *Config) { c.API.LoginPath = "api/auth/login" }, false},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }, false},
		{"zero ttl", func(c *Config) { c.Credential.TTL = 0 }, false},
		{"same keys", func(c *Config) { c.Credential.GymKey = c.Credential.TokenKey }, false},
		{"blank token key", func(c *Config) { c.Credential.TokenKey = " " }, false},
		{"prefix with space", func(c *Config) { c.Credential.KeyPrefix = "g d" }, false},
		{"audit zero buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }, false},
		{"latency without metrics", func(c *Config) { c.Metrics.EnableLatencyHistograms = true }, false},
		{"latency with metrics", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.EnableLatencyHistograms = true
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatalf("expected invalid config")
			}
		})
	}
}

func TestStorageKeysScopedToOrigin(t *testing.T) {
	cfg := validConfig()
	cfg.API.BaseURL = "https://API.gym.example/v1/"
	keys := cfg.StorageKeys()
	want := storage.Keys{Prefix: "gd", Origin: "https://api.gym.example", Token: "userToken", Gym: "gymId"}
	if keys != want {
		t.Fatalf("unexpected keys %+v", keys)
	}
}

func TestBuildRequiresStoreAndSingleUse(t *testing.T) {
	if _, err := New().WithConfig(validConfig()).Build(); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}

	store, err := storage.NewMemoryStore(storage.Keys{})
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	b := New().WithConfig(validConfig()).WithStore(store)
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()
	if _, err := b.Build(); !errors.Is(err, ErrBuilderUsed) {
		t.Fatalf("expected ErrBuilderUsed, got %v", err)
	}
}
