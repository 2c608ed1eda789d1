// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// DEFAULTS TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Services.BackendURL != "http://127.0.0.1:8080" {
		t.Errorf("BackendURL = %q", cfg.Services.BackendURL)
	}
	if cfg.Services.KnowledgeURL != "http://127.0.0.1:8081" {
		t.Errorf("KnowledgeURL = %q", cfg.Services.KnowledgeURL)
	}
	if cfg.Services.FeedbackURL != "http://127.0.0.1:8082" {
		t.Errorf("FeedbackURL = %q", cfg.Services.FeedbackURL)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should default to enabled")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", cfg.UI.Theme)
	}
	if !cfg.UI.ShowTimestamps {
		t.Error("timestamps should default to shown")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestSetDefaults_FillsMissing(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.Services.BackendURL == "" || cfg.Services.KnowledgeURL == "" || cfg.Services.FeedbackURL == "" {
		t.Error("SetDefaults should fill empty service URLs")
	}
	if cfg.UI.Theme == "" {
		t.Error("SetDefaults should fill the theme")
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"https allowed", func(c *Config) { c.Services.BackendURL = "https://kb.example.com" }, false},
		{"auto theme", func(c *Config) { c.UI.Theme = "auto" }, false},
		{"bad scheme", func(c *Config) { c.Services.BackendURL = "ftp://example.com" }, true},
		{"missing scheme", func(c *Config) { c.Services.FeedbackURL = "example.com" }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "ui.theme", Message: "bad value"}
	if err.Error() != "ui.theme: bad value" {
		t.Errorf("Error() = %q", err.Error())
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("KBCHAT_BACKEND_URL", "http://backend.test")
	t.Setenv("KBCHAT_KNOWLEDGE_URL", "http://knowledge.test")
	t.Setenv("KBCHAT_FEEDBACK_URL", "http://feedback.test")
	t.Setenv("KBCHAT_CACHE", "false")
	t.Setenv("KBCHAT_CACHE_PATH", "/tmp/cache.db")
	t.Setenv("KBCHAT_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Services.BackendURL != "http://backend.test" {
		t.Errorf("BackendURL = %q", cfg.Services.BackendURL)
	}
	if cfg.Services.KnowledgeURL != "http://knowledge.test" {
		t.Errorf("KnowledgeURL = %q", cfg.Services.KnowledgeURL)
	}
	if cfg.Services.FeedbackURL != "http://feedback.test" {
		t.Errorf("FeedbackURL = %q", cfg.Services.FeedbackURL)
	}
	if cfg.Cache.Enabled {
		t.Error("KBCHAT_CACHE=false should disable the cache")
	}
	if cfg.Cache.Path != "/tmp/cache.db" {
		t.Errorf("Cache.Path = %q", cfg.Cache.Path)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

func TestApplyEnvOverrides_CacheZero(t *testing.T) {
	t.Setenv("KBCHAT_CACHE", "0")
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Cache.Enabled {
		t.Error("KBCHAT_CACHE=0 should disable the cache")
	}
}

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[services]
backend_url = "http://backend.local:9000"

[chat]
welcome_text = "Welcome to support"

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Services.BackendURL != "http://backend.local:9000" {
		t.Errorf("BackendURL = %q", cfg.Services.BackendURL)
	}
	// Unset values fall back to defaults.
	if cfg.Services.KnowledgeURL != "http://127.0.0.1:8081" {
		t.Errorf("KnowledgeURL = %q, want default", cfg.Services.KnowledgeURL)
	}
	if cfg.Chat.WelcomeText != "Welcome to support" {
		t.Errorf("WelcomeText = %q", cfg.Chat.WelcomeText)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

func TestLoadFromPath_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[ui]
theme = "neon"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("an invalid theme should fail validation")
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("a missing explicit config file is an error")
	}
}
