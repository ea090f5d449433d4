package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	// RedisAddr enables the asynq notification queue; empty falls back to the
	// log dispatcher.
	RedisAddr string
	// RetentionWindow is added to a job's completion date to produce its
	// archive date.
	RetentionWindow time.Duration
	// PaymentFailureRate is the simulated collaborator's failure fraction.
	PaymentFailureRate float64

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getenv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getenv("SMTP_PORT", "465"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			getenv("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			getenv("DB_HOST", "localhost"),
			getenv("DB_PORT", "5432"),
			getenv("DB_NAME", "juba"),
		)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	retention := getenv("RETENTION_WINDOW", "24h")
	d, err := time.ParseDuration(retention)
	if err != nil {
		return nil, fmt.Errorf("invalid RETENTION_WINDOW %q: %w", retention, err)
	}
	cfg.RetentionWindow = d

	rate := getenv("PAYMENT_FAILURE_RATE", "0.1")
	f, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_FAILURE_RATE %q: %w", rate, err)
	}
	cfg.PaymentFailureRate = f

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
