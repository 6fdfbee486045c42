package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL          string
	RedisAddr            string
	Port                 string
	AppEnv               string
	JWTSecret            string
	OtelExporterEndpoint string

	// RemoteTimeout bounds one remote confirmation of a wishlist mutation.
	RemoteTimeout   time.Duration
	CatalogCacheTTL time.Duration
	SessionTTL      time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	Breaker BreakerConfig
}

type BreakerConfig struct {
	FailureRatio float64
	MinRequests  uint32
	OpenTimeout  time.Duration
}

// Load reads configuration from environment variables.
// It applies defaults for "local" environments but enforces strictness for others.
func Load() (Config, error) {
	cfg := Config{
		Port:                 os.Getenv("PORT"),
		AppEnv:               os.Getenv("APP_ENV"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		OtelExporterEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		KafkaTopic:           os.Getenv("KAFKA_TOPIC"),
		KafkaBrokers:         splitList(os.Getenv("KAFKA_BROKERS")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" {
		if cfg.AppEnv == "local" {
			cfg.JWTSecret = "dev-secret-do-not-use-in-prod"
		} else {
			return Config{}, errors.New("JWT_SECRET is required")
		}
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "production"
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "wishlist.changed"
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		return Config{}, errors.New("REDIS_ADDR is required")
	}

	var err error
	if cfg.RemoteTimeout, err = duration("WISHLIST_REMOTE_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CatalogCacheTTL, err = duration("CATALOG_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = duration("SESSION_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.Breaker, err = loadBreaker(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadBreaker() (BreakerConfig, error) {
	b := BreakerConfig{FailureRatio: 0.5, MinRequests: 5}

	var err error
	if b.OpenTimeout, err = duration("BREAKER_OPEN_TIMEOUT", 30*time.Second); err != nil {
		return BreakerConfig{}, err
	}
	if v := os.Getenv("BREAKER_FAILURE_RATIO"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil || ratio <= 0 || ratio > 1 {
			return BreakerConfig{}, fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %q", v)
		}
		b.FailureRatio = ratio
	}
	if v := os.Getenv("BREAKER_MIN_REQUESTS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return BreakerConfig{}, fmt.Errorf("BREAKER_MIN_REQUESTS: %w", err)
		}
		b.MinRequests = uint32(n)
	}
	return b, nil
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
