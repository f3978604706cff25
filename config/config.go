package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

// Config is the runtime configuration, derived from environment variables.
type Config struct {
	BotToken            string
	MenuImagePath       string
	AdminPassphraseHash string
	Moderation          bool
	LogLevel            zerolog.Level
	OpsAddr             string
	Storage             StorageConfig
	AI                  AIConfig
}

// StorageConfig selects and parameterizes the catalog store backend.
type StorageConfig struct {
	// Backend is "file" or "firebase".
	Backend               string
	DataDir               string
	ServiceAccountKeyPath string
	DatabaseURL           string
}

// AIConfig parameterizes the recommendation relay.
type AIConfig struct {
	// Provider is "proxy" or "openai".
	Provider  string
	URL       string
	Model     string
	MaxTokens int
	OpenAIKey string
}

const (
	defaultDataDir   = "data"
	defaultMenuImage = "menu.jpg"
	defaultOpsAddr   = ":8080"
	defaultAIModel   = "gpt-4o"
	defaultAITokens  = 4096
)

// Load reads configuration from the environment, applying defaults and
// validating what cannot be defaulted.
func Load() (Config, error) {
	cfg := Config{
		BotToken:            os.Getenv("TELEGRAM_BOT_TOKEN"),
		MenuImagePath:       getEnv("MENU_IMAGE_PATH", defaultMenuImage),
		AdminPassphraseHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		Moderation:          true,
		LogLevel:            zerolog.InfoLevel,
		OpsAddr:             getEnv("OPS_ADDR", defaultOpsAddr),
		Storage: StorageConfig{
			Backend:               getEnv("STORAGE_BACKEND", "file"),
			DataDir:               getEnv("DATA_DIR", defaultDataDir),
			ServiceAccountKeyPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_KEY_PATH"),
			DatabaseURL:           os.Getenv("FIREBASE_DATABASE_URL"),
		},
		AI: AIConfig{
			Provider:  getEnv("AI_PROVIDER", "proxy"),
			URL:       os.Getenv("AI_URL"),
			Model:     getEnv("AI_MODEL", defaultAIModel),
			MaxTokens: defaultAITokens,
			OpenAIKey: os.Getenv("OPENAI_API_KEY"),
		},
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	if v := os.Getenv("MODERATION"); v != "" {
		moderation, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MODERATION: %w", err)
		}
		cfg.Moderation = moderation
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := zerolog.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if v := os.Getenv("AI_MAX_TOKENS"); v != "" {
		tokens, err := strconv.Atoi(v)
		if err != nil || tokens <= 0 {
			return Config{}, fmt.Errorf("invalid AI_MAX_TOKENS: must be a positive integer")
		}
		cfg.AI.MaxTokens = tokens
	}

	switch cfg.Storage.Backend {
	case "file":
	case "firebase":
		if cfg.Storage.ServiceAccountKeyPath == "" {
			return Config{}, fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_KEY_PATH environment variable not set")
		}
		if cfg.Storage.DatabaseURL == "" {
			return Config{}, fmt.Errorf("FIREBASE_DATABASE_URL environment variable not set")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_BACKEND: must be 'file' or 'firebase'")
	}

	switch cfg.AI.Provider {
	case "proxy":
		if cfg.AI.URL == "" {
			return Config{}, fmt.Errorf("AI_URL environment variable not set")
		}
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return Config{}, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	default:
		return Config{}, fmt.Errorf("invalid AI_PROVIDER: must be 'proxy' or 'openai'")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
