// Package config provides configuration for the chatbot server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the server configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Storage
	StorageBackend   string // "sqlite" or "firestore"
	DatabaseURL      string
	FirestoreProject string

	// Completion provider (Hugging Face inference)
	HFAPIKey  string
	HFBaseURL string

	// Turn-based provider (Gemini)
	GeminiAPIKey  string
	GeminiBaseURL string

	// Provider behaviour
	LLMMode         string // "MOCK" swaps every provider for the local mock
	DefaultProvider string
	ProviderTimeout time.Duration

	// Context assembly
	HistoryMaxTurns    int
	HistoryTokenBudget int

	// Reply policy (Rego); empty uses the built-in policy
	ReplyPolicyFile string

	// WebSocket settings
	WSPingInterval   time.Duration
	WSWriteTimeout   time.Duration
	WSReadTimeout    time.Duration
	WSMaxMessageSize int64

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:           getEnvInt("HTTP_PORT", 8080),
		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", "sqlite")),
		DatabaseURL:        getEnv("DATABASE_URL", "file:chatbot.db?cache=shared&mode=rwc"),
		FirestoreProject:   getEnv("FIRESTORE_PROJECT", ""),
		HFAPIKey:           getEnv("HF_API_KEY", ""),
		HFBaseURL:          getEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", ""),
		LLMMode:            strings.ToUpper(getEnv("LLM_MODE", "")),
		DefaultProvider:    getEnv("DEFAULT_PROVIDER", "completion"),
		ProviderTimeout:    time.Duration(getEnvInt("PROVIDER_TIMEOUT_MS", 30000)) * time.Millisecond,
		HistoryMaxTurns:    getEnvInt("HISTORY_MAX_TURNS", 20),
		HistoryTokenBudget: getEnvInt("HISTORY_TOKEN_BUDGET", 0),
		ReplyPolicyFile:    getEnv("REPLY_POLICY_FILE", ""),
		WSPingInterval:     time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WSWriteTimeout:     time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		WSReadTimeout:      time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		WSMaxMessageSize:   int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

// MockMode reports whether providers should be replaced by the local mock.
func (c *Config) MockMode() bool {
	return c.LLMMode == "MOCK"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
