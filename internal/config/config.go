package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration shared by both binaries. Each binary
// reads the fields it needs.
type Config struct {
	ServiceName string
	Environment string
	HTTPAddr    string
	LogLevel    string

	JWTSecret     string
	TokenTTL      time.Duration
	AdminName     string
	AdminEmail    string
	AdminPassword string

	PostgresURL   string
	KafkaBrokers  []string
	OutboxTopic   string
	EventsEnabled bool
	RedisAddr     string
	NotifyGroup   string
	OTelEndpoint  string
}

// Load reads the environment. service names the binary when SERVICE_NAME is
// unset.
func Load(service string) (Config, error) {
	ttl, err := envInt("TOKEN_TTL_SECONDS", 3600)
	if err != nil {
		return Config{}, err
	}
	if ttl <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL_SECONDS must be positive, got %d", ttl)
	}

	var brokers []string
	for _, value := range strings.Split(env("KAFKA_ADDR", "localhost:9092"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}

	return Config{
		ServiceName: env("SERVICE_NAME", service),
		Environment: env("APP_ENV", "development"),
		HTTPAddr:    env("HTTP_ADDR", ":3000"),
		LogLevel:    env("LOG_LEVEL", "info"),

		JWTSecret:     env("JWT_SECRET", "dev-secret"),
		TokenTTL:      time.Duration(ttl) * time.Second,
		AdminName:     env("ADMIN_NAME", "Admin"),
		AdminEmail:    env("ADMIN_EMAIL", "admin@foodhub.local"),
		AdminPassword: env("ADMIN_PASSWORD", "admin123"),

		PostgresURL:   os.Getenv("PG_URL"),
		KafkaBrokers:  brokers,
		OutboxTopic:   env("OUTBOX_TOPIC", "order.events"),
		EventsEnabled: envBool("EVENTS_ENABLED", false),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		NotifyGroup:   env("NOTIFY_GROUP", "notification-service"),
		OTelEndpoint:  os.Getenv("OTEL_ENDPOINT"),
	}, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return v, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
