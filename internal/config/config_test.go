package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestGetEnvAsBoolOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal bool
		expected   bool
	}{
		{"true word", "true", false, true},
		{"one", "1", false, true},
		{"off", "off", true, false},
		{"garbage keeps default", "maybe", true, true},
		{"empty keeps default", "", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tc.envValue)

			result := getEnvAsBoolOrDefault("TEST_BOOL", tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestGetEnvListOrDefault(t *testing.T) {
	t.Setenv("TEST_LIST", " a.com, ,b.com ,")
	got := getEnvListOrDefault("TEST_LIST", []string{"x"})
	if len(got) != 2 || got[0] != "a.com" || got[1] != "b.com" {
		t.Errorf("Expected [a.com b.com], got %v", got)
	}

	t.Setenv("TEST_LIST", " , ")
	got = getEnvListOrDefault("TEST_LIST", []string{"x"})
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("Expected default, got %v", got)
	}
}

func TestGetEnvAsPositiveIntOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected int
	}{
		{"parses positive", "5", 5},
		{"zero uses default", "0", 168},
		{"negative uses default", "-3", 168},
		{"non-numeric uses default", "abc", 168},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_POSITIVE_INT", tc.envValue)

			result := getEnvAsPositiveIntOrDefault("TEST_POSITIVE_INT", 168)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestLoad_NonPositiveSessionTTLUsesDefault(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SESSION_TTL_HOURS", "0")

	cfg := Load()

	if cfg.SessionTTL != 168*time.Hour {
		t.Errorf("Expected default 168h TTL, got %v", cfg.SessionTTL)
	}
}

func TestLoad_MissingAPIKeyIsNotFatal(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("GOOGLE_CLIENT_ID", "")

	cfg := Load()

	if cfg.GeminiConfigured() {
		t.Error("Expected Gemini to be reported as not configured")
	}
	if cfg.GoogleConfigured() {
		t.Error("Expected Google sign-in to be reported as not configured")
	}
	if !cfg.SessionSecretRandom || len(cfg.SessionSecret) != 64 {
		t.Errorf("Expected a random 32-byte hex secret, got %q", cfg.SessionSecret)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("Expected default model, got %q", cfg.GeminiModel)
	}
}

func TestLoad_ReadsValues(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("GEMINI_API_KEY", "  key-123 ")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("GOOGLE_CLIENT_ID", "client")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg := Load()

	if cfg.GeminiAPIKey != "key-123" {
		t.Errorf("Expected trimmed API key, got %q", cfg.GeminiAPIKey)
	}
	if cfg.SessionSecret != "s3cret" || cfg.SessionSecretRandom {
		t.Errorf("Expected configured secret, got %q", cfg.SessionSecret)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("Expected 2h TTL, got %v", cfg.SessionTTL)
	}
	if !cfg.GoogleConfigured() {
		t.Error("Expected Google sign-in to be configured")
	}
}

func TestLoad_ProductionRequiresSessionSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing SESSION_SECRET in production")
		}
	}()

	Load()
}
