package gymdesk

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/gymdesk/api"
	"github.com/MrEthical07/gymdesk/storage"
)

// Config holds every engine setting. Start from [DefaultConfig] and override fields.
type Config struct {
	API        APIConfig
	Credential CredentialConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL   string
	LoginPath string
	// Timeout bounds each request made by the engine's default HTTP client. Zero disables it.
	Timeout time.Duration
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig controls how the credential is persisted.
type CredentialConfig struct {
	// TTL is the absolute lifetime of the persisted credential, counted from login.
	TTL       time.Duration
	TokenKey  string
	GymKey    string
	KeyPrefix string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the settings the console ships with. BaseURL is left empty.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			LoginPath: api.DefaultLoginPath,
			Timeout:   15 * time.Second,
		},
		Credential: CredentialConfig{
			TTL:       60 * time.Second,
			TokenKey:  storage.DefaultTokenKey,
			GymKey:    storage.DefaultGymKey,
			KeyPrefix: storage.DefaultPrefix,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// StorageKeys returns the storage key names for this configuration, scoped to the
// API origin.
func (c Config) StorageKeys() storage.Keys {
	return storage.Keys{
		Prefix: c.Credential.KeyPrefix,
		Origin: storage.Origin(c.API.BaseURL),
		Token:  c.Credential.TokenKey,
		Gym:    c.Credential.GymKey,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// API
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API BaseURL must be set")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("API BaseURL must be an absolute http(s) URL")
	}
	if !strings.HasPrefix(c.API.LoginPath, "/") {
		return errors.New("API LoginPath must start with '/'")
	}
	if c.API.Timeout < 0 {
		return errors.New("API Timeout must be >= 0")
	}

	// Credential
	if c.Credential.TTL <= 0 {
		return errors.New("Credential TTL must be > 0")
	}
	if c.Credential.TTL < time.Millisecond {
		return errors.New("Credential TTL must be at least 1ms")
	}
	if strings.TrimSpace(c.Credential.TokenKey) == "" || strings.TrimSpace(c.Credential.GymKey) == "" {
		return errors.New("Credential TokenKey and GymKey must be set")
	}
	if c.Credential.TokenKey == c.Credential.GymKey {
		return errors.New("Credential TokenKey and GymKey must differ")
	}
	if strings.ContainsAny(c.Credential.KeyPrefix, " \t\n") {
		return errors.New("Credential KeyPrefix must not contain whitespace")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
