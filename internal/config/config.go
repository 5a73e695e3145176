package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config represents the console configuration structure
type Config struct {
	Environment string `default:"prod"`
	LogLevel    string `split_words:"true" default:"info"`

	APIURL        string        `envconfig:"API_URL" default:"http://localhost:8080"`
	CredentialTTL time.Duration `split_words:"true" default:"60s"`

	Store       string `default:"bolt"`
	BoltPath    string `split_words:"true" default:"gymdesk.db"`
	RedisAddr   string `split_words:"true" default:"localhost:6379"`
	RedisPrefix string `split_words:"true" default:"gd"`
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	config := new(Config)
	if err := envconfig.Process("gymdesk", config); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// IsEnvProduction checks whether the console runs in production mode
func (config *Config) IsEnvProduction() bool {
	return strings.ToLower(config.Environment) == "prod"
}

func (config *Config) validate() error {
	config.Store = strings.ToLower(strings.TrimSpace(config.Store))
	switch config.Store {
	case StoreBolt, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want bolt, redis or memory)", config.Store)
	}
	if config.Store == StoreBolt && config.BoltPath == "" {
		return fmt.Errorf("bolt store requires GYMDESK_BOLT_PATH")
	}
	if config.Store == StoreRedis && config.RedisAddr == "" {
		return fmt.Errorf("redis store requires GYMDESK_REDIS_ADDR")
	}
	if config.CredentialTTL <= 0 {
		return fmt.Errorf("credential ttl must be > 0")
	}
	return nil
}
