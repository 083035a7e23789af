// Package config reads the process configuration from the environment. A
// .env file in the working directory is loaded best-effort first, so local
// runs do not need exported variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

type Config struct {
	Port        string
	Environment string

	// StoreBackend selects the persistence backend: postgres or local.
	StoreBackend   string
	DatabaseURL    string
	LocalStorePath string

	KafkaBrokers []string

	AdminToken          string
	WhatsAppVerifyToken string
	PixWebhookSecret    string
	WhatsAppAPIURL      string

	TrashRetention     time.Duration
	TrashSweepInterval time.Duration
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:                envOr("PORT", "3000"),
		Environment:         envOr("ENVIRONMENT", "development"),
		StoreBackend:        envOr("STORE_BACKEND", BackendPostgres),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		LocalStorePath:      envOr("LOCAL_STORE_PATH", "data/ropeartlab.json"),
		AdminToken:          os.Getenv("ADMIN_TOKEN"),
		WhatsAppVerifyToken: os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		PixWebhookSecret:    os.Getenv("PIX_WEBHOOK_SECRET"),
		WhatsAppAPIURL:      os.Getenv("WHATSAPP_API_URL"),
		TrashRetention:      daysOr("TRASH_RETENTION_DAYS", 30),
		TrashSweepInterval:  durationOr("TRASH_SWEEP_INTERVAL", time.Hour),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func daysOr(key string, fallback int) time.Duration {
	days := fallback
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	return time.Duration(days) * 24 * time.Hour
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
