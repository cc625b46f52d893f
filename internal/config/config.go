package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// BlacklistMemory keeps revoked tokens in process memory.
	BlacklistMemory = "memory"
	// BlacklistRedis keeps revoked tokens in Redis.
	BlacklistRedis = "redis"

	// DefaultJWTSecret is only acceptable for local demos.
	DefaultJWTSecret = "starwars_secret"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"3001"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"starwars_secret"`
	SwaggerHost string `env:"SWAGGER_HOST"`

	MasterUsername string        `env:"MASTER_USERNAME" envDefault:"Rogerio"`
	MasterPassword string        `env:"MASTER_PASSWORD" envDefault:"123456"`
	UserTokenTTL   time.Duration `env:"USER_TOKEN_TTL" envDefault:"1h"`
	MasterTokenTTL time.Duration `env:"MASTER_TOKEN_TTL" envDefault:"2h"`

	BlacklistBackend       string        `env:"BLACKLIST_BACKEND" envDefault:"memory"`
	BlacklistSweepInterval time.Duration `env:"BLACKLIST_SWEEP_INTERVAL" envDefault:"5m"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration values the server cannot run with.
func (c *Config) Validate() error {
	switch c.BlacklistBackend {
	case BlacklistMemory, BlacklistRedis:
	default:
		return fmt.Errorf("unknown blacklist backend %q", c.BlacklistBackend)
	}
	if c.MasterUsername == "" || c.MasterPassword == "" {
		return fmt.Errorf("master username and password must be set")
	}
	if c.UserTokenTTL <= 0 || c.MasterTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.BlacklistSweepInterval <= 0 {
		return fmt.Errorf("blacklist sweep interval must be positive")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must not be empty")
	}
	return nil
}

// UsesDefaultSecret reports whether the fallback signing key is in use.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}
