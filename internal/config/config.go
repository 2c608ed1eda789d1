// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// kbchat.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.kbchat/config.toml, falling back to built-in
// defaults when absent.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete kbchat configuration.
type Config struct {
	// Services configuration
	Services ServicesConfig `toml:"services"`

	// Cache configuration
	Cache CacheConfig `toml:"cache"`

	// Chat configuration
	Chat ChatConfig `toml:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// ServicesConfig contains the base URLs of the three external services.
type ServicesConfig struct {
	// BackendURL is the base URL of the conversational backend
	BackendURL string `toml:"backend_url"`
	// KnowledgeURL is the base URL of the article resolution service
	KnowledgeURL string `toml:"knowledge_url"`
	// FeedbackURL is the base URL of the feedback service
	FeedbackURL string `toml:"feedback_url"`
}

// CacheConfig contains resolution cache configuration.
type CacheConfig struct {
	// Enabled controls whether the local resolution cache is used
	Enabled bool `toml:"enabled"`
	// Path is the SQLite database path (empty = ~/.kbchat/resolutions.db)
	Path string `toml:"path"`
}

// ChatConfig contains conversation configuration.
type ChatConfig struct {
	// WelcomeText is the banner seeding a fresh conversation
	// (empty = built-in default)
	WelcomeText string `toml:"welcome_text"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// ShowTimestamps displays message timestamps in the transcript
	ShowTimestamps bool `toml:"show_timestamps"`
	// CompactMode uses a more compact transcript layout
	CompactMode bool `toml:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Services: ServicesConfig{
			BackendURL:   "http://127.0.0.1:8080",
			KnowledgeURL: "http://127.0.0.1:8081",
			FeedbackURL:  "http://127.0.0.1:8082",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the kbchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".kbchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultCachePath returns the default resolution cache database path.
func DefaultCachePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "resolutions.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to defaults
// when the file is absent. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# kbchat configuration file")
	fmt.Fprintln(file, "# Generated by kbchat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS & VALIDATION
// =============================================================================

// SetDefaults fills in any missing values with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Services.BackendURL == "" {
		c.Services.BackendURL = defaults.Services.BackendURL
	}
	if c.Services.KnowledgeURL == "" {
		c.Services.KnowledgeURL = defaults.Services.KnowledgeURL
	}
	if c.Services.FeedbackURL == "" {
		c.Services.FeedbackURL = defaults.Services.FeedbackURL
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		if path, err := DefaultCachePath(); err == nil {
			c.Cache.Path = path
		}
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	serviceURLs := []struct {
		field string
		value string
	}{
		{"services.backend_url", c.Services.BackendURL},
		{"services.knowledge_url", c.Services.KnowledgeURL},
		{"services.feedback_url", c.Services.FeedbackURL},
	}
	for _, svc := range serviceURLs {
		parsed, err := url.Parse(svc.value)
		if err != nil {
			return ValidationError{Field: svc.field, Message: fmt.Sprintf("invalid URL: %v", err)}
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return ValidationError{
				Field:   svc.field,
				Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", parsed.Scheme),
			}
		}
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		return ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		}
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - KBCHAT_BACKEND_URL: overrides services.backend_url
//   - KBCHAT_KNOWLEDGE_URL: overrides services.knowledge_url
//   - KBCHAT_FEEDBACK_URL: overrides services.feedback_url
//   - KBCHAT_CACHE: set to "0" or "false" to disable the resolution cache
//   - KBCHAT_CACHE_PATH: overrides cache.path
//   - KBCHAT_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("KBCHAT_BACKEND_URL"); v != "" {
		c.Services.BackendURL = v
	}
	if v := os.Getenv("KBCHAT_KNOWLEDGE_URL"); v != "" {
		c.Services.KnowledgeURL = v
	}
	if v := os.Getenv("KBCHAT_FEEDBACK_URL"); v != "" {
		c.Services.FeedbackURL = v
	}
	if v := os.Getenv("KBCHAT_CACHE"); v != "" {
		c.Cache.Enabled = v != "0" && strings.ToLower(v) != "false"
	}
	if v := os.Getenv("KBCHAT_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("KBCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
}
