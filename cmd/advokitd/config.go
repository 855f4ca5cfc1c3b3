package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration loaded from environment variables.
type Config struct {
	// Server
	Port      string
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	// Provider selection
	Provider string
	Model    string

	// API Keys
	AnthropicKey string
	OpenAIKey    string

	// Progress store
	TTL           time.Duration
	SweepInterval time.Duration

	// Gateway
	StreamInterval time.Duration

	// Research
	SearchResults int
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load() // Load .env file if present

	cfg := &Config{
		Port:           getEnvOrDefault("ADVOKIT_PORT", "8080"),
		LogLevel:       getEnvOrDefault("ADVOKIT_LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("ADVOKIT_LOG_FORMAT", "text"),
		Provider:       os.Getenv("ADVOKIT_PROVIDER"),
		Model:          os.Getenv("ADVOKIT_MODEL"),
		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		TTL:            getEnvDurationOrDefault("ADVOKIT_JOB_TTL", 10*time.Minute),
		SweepInterval:  getEnvDurationOrDefault("ADVOKIT_SWEEP_INTERVAL", 5*time.Minute),
		StreamInterval: getEnvDurationOrDefault("ADVOKIT_STREAM_INTERVAL", 500*time.Millisecond),
		SearchResults:  getEnvIntOrDefault("ADVOKIT_SEARCH_RESULTS", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("ADVOKIT_PROVIDER is required (anthropic, openai, or mock)")
	}

	switch c.Provider {
	case "anthropic":
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for anthropic provider")
		}
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai provider")
		}
	case "mock":
		// No credentials needed; useful for local frontend development.
	default:
		return fmt.Errorf("unknown provider: %s (must be anthropic, openai, or mock)", c.Provider)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
