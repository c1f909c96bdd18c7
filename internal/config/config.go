package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates the service settings.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Webhook  WebhookConfig
	LogLevel string
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig describes the agent-config store. An empty URL selects the
// in-memory store.
type DatabaseConfig struct {
	URL string
}

// WebhookConfig bounds the outbound call to a business's workflow endpoint.
type WebhookConfig struct {
	Timeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	webhook, err := loadWebhookConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Database: DatabaseConfig{URL: strings.TrimSpace(os.Getenv("DATABASE_URL"))},
		Webhook:  webhook,
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

func loadWebhookConfig() (WebhookConfig, error) {
	seconds := 30
	if override, err := parseOptionalIntEnv("WEBHOOK_TIMEOUT"); err != nil {
		return WebhookConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return WebhookConfig{}, fmt.Errorf("WEBHOOK_TIMEOUT must be at least 1 second, got %d", *override)
		}
		seconds = *override
	}

	return WebhookConfig{Timeout: time.Duration(seconds) * time.Second}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
