package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:           "./test.db",
		CongressAPIKey:   "congress-key",
		CongressAPIBase:  "https://api.congress.gov/v3",
		BlueskyHost:      "https://bsky.social",
		BlueskyHandle:    "bot.example.com",
		BlueskyPassword:  "app-password",
		AnthropicAPIKey:  "anthropic-key",
		AnthropicModel:   "claude-3-haiku-20240307",
		BatchSize:        10,
		MaxPostAttempts:  5,
		RetryMaxAttempts: 3,
		RetryBaseDelayMS: 2000,
		Port:             "8080",
		UserAgent:        "Test Agent",
		Timezone:         "UTC",
		Debug:            true,
		Version:          "test-version",
		Command:          "publish",
		Date:             "2025-09-08",
		MaxItems:         4,
		DryRun:           true,
	}

	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected DB path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.CongressAPIKey != "congress-key" {
		t.Errorf("Expected Congress API key 'congress-key', got '%s'", cfg.CongressAPIKey)
	}
	if cfg.BlueskyHandle != "bot.example.com" {
		t.Errorf("Expected Bluesky handle 'bot.example.com', got '%s'", cfg.BlueskyHandle)
	}
	if cfg.AnthropicModel != "claude-3-haiku-20240307" {
		t.Errorf("Expected Anthropic model 'claude-3-haiku-20240307', got '%s'", cfg.AnthropicModel)
	}
	if cfg.BatchSize != 10 {
		t.Errorf("Expected batch size 10, got %d", cfg.BatchSize)
	}
	if cfg.MaxPostAttempts != 5 {
		t.Errorf("Expected max post attempts 5, got %d", cfg.MaxPostAttempts)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Errorf("Expected retry max attempts 3, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.Command != "publish" {
		t.Errorf("Expected command 'publish', got '%s'", cfg.Command)
	}
	if cfg.Date != "2025-09-08" {
		t.Errorf("Expected date '2025-09-08', got '%s'", cfg.Date)
	}
	if cfg.MaxItems != 4 {
		t.Errorf("Expected max items 4, got %d", cfg.MaxItems)
	}
	if !cfg.DryRun {
		t.Error("Expected dry run to be enabled")
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
