package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LLMProvider != "mock" {
		t.Fatalf("LLMProvider = %q, want mock", cfg.LLMProvider)
	}
	if cfg.HistoryLimit != 5 {
		t.Fatalf("HistoryLimit = %d, want 5", cfg.HistoryLimit)
	}
	if cfg.GenerateTimeout != 60*time.Second {
		t.Fatalf("GenerateTimeout = %v, want 60s", cfg.GenerateTimeout)
	}
	if cfg.MaxInputChars != 2000 {
		t.Fatalf("MaxInputChars = %d, want 2000", cfg.MaxInputChars)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty default", cfg.DatabaseURL)
	}
	if !cfg.RecallEnabled {
		t.Fatalf("RecallEnabled = false, want true by default")
	}
	if cfg.DefaultUserID != "user_123" {
		t.Fatalf("DefaultUserID = %q, want user_123", cfg.DefaultUserID)
	}
}

func TestLoadUsesExplicitValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("APP_HISTORY_LIMIT", "12")
	t.Setenv("APP_GENERATE_TIMEOUT", "90s")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/agent")
	t.Setenv("RECALL_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLMProvider != "anthropic" {
		t.Fatalf("LLMProvider = %q, want anthropic", cfg.LLMProvider)
	}
	if cfg.HistoryLimit != 12 {
		t.Fatalf("HistoryLimit = %d, want 12", cfg.HistoryLimit)
	}
	if cfg.GenerateTimeout != 90*time.Second {
		t.Fatalf("GenerateTimeout = %v, want 90s", cfg.GenerateTimeout)
	}
	if cfg.DatabaseURL != "postgres://localhost:5432/agent" {
		t.Fatalf("DatabaseURL = %q, want explicit value", cfg.DatabaseURL)
	}
	if cfg.RecallEnabled {
		t.Fatalf("RecallEnabled = true, want false")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"APP_HISTORY_LIMIT", "0"},
		{"APP_HISTORY_LIMIT", "not-a-number"},
		{"APP_GENERATE_TIMEOUT", "500ms"},
		{"APP_MAX_INPUT_CHARS", "-1"},
		{"RECALL_TOP_K", "0"},
		{"RECALL_ENABLED", "maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() accepted %s=%s, want error", tc.key, tc.value)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_METRICS_NAMESPACE",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_HISTORY_LIMIT",
		"APP_GENERATE_TIMEOUT",
		"APP_MAX_INPUT_CHARS",
		"APP_DEFAULT_USER_ID",
		"DATABASE_URL",
		"LLM_PROVIDER",
		"OPENAI_API_KEY",
		"OPENAI_MODEL",
		"ANTHROPIC_API_KEY",
		"ANTHROPIC_MODEL",
		"GOOGLE_API_KEY",
		"GEMINI_MODEL",
		"GEMINI_BASE_URL",
		"RECALL_ENABLED",
		"RECALL_TOP_K",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
