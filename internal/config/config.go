// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Run modes for receiving platform updates.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Classifier providers.
const (
	ProviderOpenAI = "openai"
	ProviderHTTP   = "http"
)

// Config holds all application configuration.
type Config struct {
	BotToken string
	Mode     string
	Port     string
	DBPath   string // empty = in-memory session store

	ClassifierProvider string
	OpenAIAPIKey       string
	SentimentModel     string
	ClassifierAddr     string

	FlowTimeout    time.Duration
	PollTimeoutSec int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:           os.Getenv("TELEGRAM_BOT_TOKEN"),
		Mode:               getEnv("MODE", ModePolling),
		Port:               getEnv("PORT", "8080"),
		DBPath:             getEnv("DB_PATH", ""),
		ClassifierProvider: getEnv("CLASSIFIER_PROVIDER", ProviderOpenAI),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		SentimentModel:     getEnv("SENTIMENT_MODEL", "gpt-4o-mini"),
		ClassifierAddr:     getEnv("CLASSIFIER_ADDR", ""),
		FlowTimeout:        getEnvDuration("FLOW_TIMEOUT", 10*time.Minute),
		PollTimeoutSec:     getEnvInt("POLL_TIMEOUT_SEC", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Mode != ModePolling && c.Mode != ModeWebhook {
		return fmt.Errorf("MODE must be %q or %q, got %q", ModePolling, ModeWebhook, c.Mode)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.ClassifierProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai classifier")
		}
		if c.SentimentModel == "" {
			return fmt.Errorf("SENTIMENT_MODEL cannot be empty")
		}
	case ProviderHTTP:
		if c.ClassifierAddr == "" {
			return fmt.Errorf("CLASSIFIER_ADDR is required for the http classifier")
		}
	default:
		return fmt.Errorf("CLASSIFIER_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderHTTP, c.ClassifierProvider)
	}
	if c.FlowTimeout <= 0 {
		return fmt.Errorf("FLOW_TIMEOUT must be > 0")
	}
	if c.PollTimeoutSec <= 0 {
		return fmt.Errorf("POLL_TIMEOUT_SEC must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
