package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the agent binaries.
type Config struct {
	BindAddr         string
	MetricsNamespace string
	ShutdownTimeout  time.Duration
	AllowAnyOrigin   bool

	DatabaseURL string

	LLMProvider     string
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	GoogleAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string

	HistoryLimit    int
	GenerateTimeout time.Duration
	MaxInputChars   int

	RecallEnabled bool
	RecallTopK    int

	DefaultUserID string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "intel_agent"),
		AllowAnyOrigin:   false,
		DatabaseURL:      envTrimmed("DATABASE_URL"),
		// Default is mock for offline operation; the selection itself stays
		// permissive and logs its fallback.
		LLMProvider:     envOrDefault("LLM_PROVIDER", "mock"),
		OpenAIAPIKey:    envTrimmed("OPENAI_API_KEY"),
		OpenAIModel:     envTrimmed("OPENAI_MODEL"),
		AnthropicAPIKey: envTrimmed("ANTHROPIC_API_KEY"),
		AnthropicModel:  envTrimmed("ANTHROPIC_MODEL"),
		GoogleAPIKey:    envTrimmed("GOOGLE_API_KEY"),
		GeminiModel:     envTrimmed("GEMINI_MODEL"),
		GeminiBaseURL:   envTrimmed("GEMINI_BASE_URL"),
		HistoryLimit:    5,
		GenerateTimeout: 60 * time.Second,
		MaxInputChars:   2000,
		RecallEnabled:   true,
		RecallTopK:      3,
		ShutdownTimeout: 15 * time.Second,
		DefaultUserID:   envOrDefault("APP_DEFAULT_USER_ID", "user_123"),
	}

	var err error
	cfg.HistoryLimit, err = intFromEnv("APP_HISTORY_LIMIT", cfg.HistoryLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerateTimeout, err = durationFromEnv("APP_GENERATE_TIMEOUT", cfg.GenerateTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxInputChars, err = intFromEnv("APP_MAX_INPUT_CHARS", cfg.MaxInputChars)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RecallEnabled, err = boolFromEnv("RECALL_ENABLED", cfg.RecallEnabled)
	if err != nil {
		return Config{}, err
	}
	cfg.RecallTopK, err = intFromEnv("RECALL_TOP_K", cfg.RecallTopK)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.HistoryLimit <= 0 {
		return Config{}, fmt.Errorf("APP_HISTORY_LIMIT must be positive")
	}
	if cfg.GenerateTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_GENERATE_TIMEOUT must be at least 1s")
	}
	if cfg.MaxInputChars <= 0 {
		return Config{}, fmt.Errorf("APP_MAX_INPUT_CHARS must be positive")
	}
	if cfg.RecallTopK <= 0 {
		return Config{}, fmt.Errorf("RECALL_TOP_K must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
