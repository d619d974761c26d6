package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Host          string
	Port          string
	DBConn        string
	LogLevel      string
	JWTSecret     string
	JWTExpiration time.Duration
	JWTAlgorithm  string
	WebhookSecret string

	// SMTP settings for credit notifications; notifications are disabled
	// when SMTPHost is empty.
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	// Seed users created on startup if absent.
	TestAdminEmail    string
	TestAdminPassword string
	TestUserEmail     string
	TestUserPassword  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	expSeconds, err := strconv.Atoi(getEnv("JWT_EXPIRATION", "3600"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION: %w", err)
	}

	cfg := &Config{
		Host:          getEnv("HOST", "0.0.0.0"),
		Port:          getEnv("PORT", "8080"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5432 user=admin password=admin dbname=payments sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", "gfdmhghif38yrf9ew0jkf32"),
		JWTExpiration: time.Duration(expSeconds) * time.Second,
		JWTAlgorithm:  getEnv("JWT_ALGORITHM", "HS256"),
		WebhookSecret: getEnv("WEBHOOK_SECRET", "gfdmhghif38yrf9ew0jkf32"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "noreply@payments.local"),

		TestAdminEmail:    getEnv("TEST_ADMIN_EMAIL", "admin@test.com"),
		TestAdminPassword: getEnv("TEST_ADMIN_PASSWORD", "admin123"),
		TestUserEmail:     getEnv("TEST_USER_EMAIL", "user@test.com"),
		TestUserPassword:  getEnv("TEST_USER_PASSWORD", "user123"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if cfg.JWTExpiration <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
