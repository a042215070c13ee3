package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration, read from the environment
type Config struct {
	// Server
	Port string `env:"PORT" envDefault:"3000" validate:"required,numeric"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`
	LogFile   string `env:"LOG_FILE"`

	// Geolocation provider: "maxmind", "ip2location", "csv", "mysql" or "redis"
	GeoProvider       string `env:"GEO_PROVIDER" envDefault:"maxmind" validate:"oneof=maxmind ip2location csv mysql redis"`
	GeoIPDBPath       string `env:"GEOIP_DB_PATH" envDefault:"./data/GeoLite2-City.mmdb"`
	IP2LocationDBPath string `env:"IP2LOCATION_DB_PATH" envDefault:"./data/IP2LOCATION-LITE-DB11.BIN"`
	GeoCSVPath        string `env:"GEO_CSV_PATH" envDefault:"./data/voter_locations.csv"`

	// MySQL Data Source Name, required by the mysql provider
	MySQLDSN string `env:"MYSQL_DSN" validate:"required_if=GeoProvider mysql"`

	// Redis (redis provider and redis rate limiter)
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0,lte=15"`

	// Rate limiting: RateLimit requests per RateLimitWindow seconds per client
	RateLimitType   string `env:"RATE_LIMITER_TYPE" envDefault:"memory" validate:"oneof=memory redis"`
	RateLimit       int    `env:"RATE_LIMIT" envDefault:"10" validate:"gt=0"`
	RateLimitWindow int    `env:"RATE_LIMIT_WINDOW" envDefault:"1" validate:"gt=0"`
}

// Load reads a .env file when present (local development), then the
// environment. In production/Docker the variables are set directly.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv parses and validates the process environment without touching .env
func FromEnv() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// RequestsPerSecond is the effective per-client rate.
// Example: 10 requests per 5 seconds = 2.0 req/s
func (c *Config) RequestsPerSecond() float64 {
	return float64(c.RateLimit) / float64(c.RateLimitWindow)
}
