package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinHistory retention cap can never be smaller than the prompt window
const MinHistory = 6

// Chat store backends
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Gemini backends
const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
)

// Config application configuration
type Config struct {
	GeminiAPIKey         string
	GeminiModel          string
	GeminiEmbeddingModel string
	GeminiBaseURL        string
	GeminiBackend        string
	GeminiTimeout        time.Duration
	HTTPAddr             string
	TelegramToken        string
	ChatStore            string
	ChatDBPath           string
	MaxHistory           int
	SessionIdleTTL       time.Duration
	RulesFile            string
	KnowledgeFile        string
	LogLevel             string
}

// Load reads the environment; a .env file is used when present
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		GeminiAPIKey:         strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:          "gemini-1.5-flash-latest",
		GeminiEmbeddingModel: "text-embedding-004",
		GeminiBaseURL:        "https://generativelanguage.googleapis.com/v1beta",
		GeminiBackend:        BackendREST,
		GeminiTimeout:        20 * time.Second,
		HTTPAddr:             ":8080",
		TelegramToken:        strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		ChatStore:            StoreMemory,
		ChatDBPath:           "data/chat.db",
		MaxHistory:           50,
		SessionIdleTTL:       24 * time.Hour,
		RulesFile:            os.Getenv("KEYWORD_RULES_FILE"),
		KnowledgeFile:        os.Getenv("KNOWLEDGE_FILE"),
		LogLevel:             "info",
	}

	setString(&config.GeminiModel, "GEMINI_MODEL")
	setString(&config.GeminiEmbeddingModel, "GEMINI_EMBEDDING_MODEL")
	setString(&config.GeminiBaseURL, "GEMINI_BASE_URL")
	setString(&config.GeminiBackend, "GEMINI_BACKEND")
	setString(&config.HTTPAddr, "HTTP_ADDR")
	setString(&config.ChatStore, "CHAT_STORE")
	setString(&config.ChatDBPath, "CHAT_DB_PATH")
	setString(&config.LogLevel, "LOG_LEVEL")

	if err := setDuration(&config.GeminiTimeout, "GEMINI_TIMEOUT"); err != nil {
		return nil, err
	}
	if err := setDuration(&config.SessionIdleTTL, "SESSION_IDLE_TTL"); err != nil {
		return nil, err
	}

	if raw := os.Getenv("MAX_HISTORY"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("MAX_HISTORY has invalid format: %v", err)
		}
		config.MaxHistory = parsed
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	if c.MaxHistory < MinHistory {
		return fmt.Errorf("MAX_HISTORY must be at least %d, got %d", MinHistory, c.MaxHistory)
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive")
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be positive")
	}

	switch c.GeminiBackend {
	case BackendREST, BackendSDK:
	default:
		return fmt.Errorf("GEMINI_BACKEND must be %q or %q, got %q", BackendREST, BackendSDK, c.GeminiBackend)
	}

	switch c.ChatStore {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("CHAT_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, c.ChatStore)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s has invalid format: %v", key, err)
	}
	*dst = parsed
	return nil
}
