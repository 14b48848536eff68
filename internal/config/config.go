package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	API     APIConfig
	State   StateConfig
	Redis   RedisConfig
	StubAPI StubAPIConfig
}

type APIConfig struct {
	BaseURL string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"STOREFRONT_API_TIMEOUT" envDefault:"15s"`
	// TunnelBypassHeader is sent with every request when set, e.g.
	// "ngrok-skip-browser-warning: true" for tunnelled dev backends.
	TunnelBypassHeader string `env:"STOREFRONT_TUNNEL_BYPASS_HEADER" envDefault:""`
}

type StateConfig struct {
	// Backend selects where cart/session snapshots persist: "file" or "redis".
	Backend string `env:"STOREFRONT_STATE_BACKEND" envDefault:"file"`
	Dir     string `env:"STOREFRONT_STATE_DIR" envDefault:""`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type StubAPIConfig struct {
	Port      int           `env:"STUBAPI_PORT" envDefault:"8080"`
	JWTSecret string        `env:"STUBAPI_JWT_SECRET" envDefault:"dev-only-secret"`
	JWTExpiry time.Duration `env:"STUBAPI_JWT_EXPIRATION" envDefault:"24h"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
