package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver  string
	DBSource  string
	Port      string
	JWTSecret string
	JWTTTL    time.Duration

	// CartBackend selects where carts live: "db" or "mock".
	CartBackend  string
	MockDelay    time.Duration
	MaxAddresses int

	RateRPS   float64
	RateBurst int

	// AMQPURL enables the RabbitMQ order event publisher when set.
	AMQPURL string

	AdminEmail    string
	AdminPassword string
	SeedFile      string

	LogLevel  string
	LogFormat string
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBSource:      getEnv("DB_SOURCE", "pedeai.db"),
		Port:          getEnv("PORT", "8000"),
		JWTSecret:     getEnv("JWT_SECRET", "changeme"),
		CartBackend:   getEnv("CART_BACKEND", "db"),
		AMQPURL:       os.Getenv("AMQP_URL"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SeedFile:      getEnv("SEED_FILE", "seed/catalog.yaml"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MockDelay, err = getDuration("MOCK_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.MaxAddresses, err = getInt("MAX_ADDRESSES", 2); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = getInt("RATE_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.RateRPS, err = getFloat("RATE_RPS", 10); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	switch c.CartBackend {
	case "db", "mock":
	default:
		return fmt.Errorf("CART_BACKEND must be db or mock, got %q", c.CartBackend)
	}
	if c.MaxAddresses < 1 {
		return fmt.Errorf("MAX_ADDRESSES must be at least 1")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
