package config

import (
	"os"
	"strconv"

	"adinsight/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	AI       AIConfig
	Database DatabaseConfig
	Server   ServerConfig
	Data     DataConfig
	Workflow WorkflowConfig
}

// AIConfig holds text generation settings
type AIConfig struct {
	AnthropicKey string
	Model        string
	MaxTokens    int
	Temperature  float64
	MaxRetries   int
}

// DatabaseConfig holds the optional report ledger connection.
// An empty URL disables persistence.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds dataset input settings
type DataConfig struct {
	FilePath string
}

// WorkflowConfig holds orchestration settings
type WorkflowConfig struct {
	MaxReplans int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, errors.ConfigInvalid("ANTHROPIC_API_KEY is required")
	}

	cfg := &Config{
		AI: AIConfig{
			AnthropicKey: key,
			Model:        getEnvOrDefault("LLM_MODEL", "claude-sonnet-4-0"),
			MaxTokens:    getEnvIntOrDefault("MAX_TOKENS", 4096),
			Temperature:  getEnvFloatOrDefault("TEMPERATURE", 0.0),
			MaxRetries:   getEnvIntOrDefault("LLM_MAX_RETRIES", 3),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Data: DataConfig{
			FilePath: getEnvOrDefault("DATA_FILE", "data/fb_ads_data.csv"),
		},
		Workflow: WorkflowConfig{
			MaxReplans: getEnvIntOrDefault("MAX_REPLANS", 2),
		},
	}

	if cfg.Workflow.MaxReplans < 0 {
		return nil, errors.ConfigInvalid("MAX_REPLANS must be >= 0")
	}
	if cfg.AI.MaxTokens <= 0 {
		return nil, errors.ConfigInvalid("MAX_TOKENS must be > 0")
	}
	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
