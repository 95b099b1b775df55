package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full application configuration, read from the
// environment.
type Config struct {
	Port          string        `env:"PORT" envDefault:":8080"`
	DBPath        string        `env:"DB_PATH" envDefault:"./data/turf/turf.db"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"your-secret-key-change-in-production"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	SmoothWindow  int           `env:"SMOOTH_WINDOW" envDefault:"3"`
	DrainInterval time.Duration `env:"DRAIN_INTERVAL" envDefault:"15s"`
	RateLimit     int           `env:"RATE_LIMIT" envDefault:"300"`
	RateWindow    time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
