// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for spendtalk.
//
// Configuration file locations (in order of precedence):
//   - ~/.spendtalk/config.toml
//   - Built-in defaults
//
// Environment variables override file values: SPENDTALK_API_URL,
// SPENDTALK_ENTRY_CODE, SPENDTALK_DEBUG, SPENDTALK_THEME.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete spendtalk configuration.
type Config struct {
	Version string `toml:"version"`

	// API configuration
	API APIConfig `toml:"api"`

	// Chat behavior configuration
	Chat ChatConfig `toml:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the consumption-analysis backend root.
	BaseURL string `toml:"base_url"`
	// EntryCode is the opaque code exchanged for a customer id.
	EntryCode string `toml:"entry_code"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
	// Device and DeviceVersion identify the client on initialization.
	Device        string `toml:"device"`
	DeviceVersion string `toml:"device_version"`
}

// ChatConfig contains conversation behavior settings.
type ChatConfig struct {
	// GoToURL is the destination of the quota notice's go-to action
	// when the turn carries no deep link of its own.
	GoToURL string `toml:"go_to_url"`
	// DebugTriggers enables the literal input substrings that simulate
	// failure states. Off in production.
	DebugTriggers bool `toml:"debug_triggers"`
}

// UIConfig contains display settings.
type UIConfig struct {
	// Theme selects the color theme: "auto", "dark", "light".
	Theme string `toml:"theme"`
	// TypingIntervalMs is the per-character reveal interval.
	TypingIntervalMs int `toml:"typing_interval_ms"`
	// CompactMode reduces vertical spacing between turns.
	CompactMode bool `toml:"compact_mode"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1.0",
		API: APIConfig{
			BaseURL:       "http://localhost:8080",
			TimeoutSecs:   30,
			Device:        "a,b",
			DeviceVersion: "1.0.0",
		},
		Chat: ChatConfig{
			GoToURL: "https://www.cathaybk.com.tw/cathaybk/",
		},
		UI: UIConfig{
			Theme:            "auto",
			TypingIntervalMs: 15,
		},
	}
}

// Timeout returns the API timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the spendtalk configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".spendtalk"), nil
}

// ConfigPath returns the path of the TOML configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the configuration directory if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file, applies environment overrides and
// validates the result. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies SPENDTALK_* environment variables on top of
// the loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SPENDTALK_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("SPENDTALK_ENTRY_CODE"); v != "" {
		c.API.EntryCode = v
	}
	if v := os.Getenv("SPENDTALK_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("SPENDTALK_DEBUG"); v != "" {
		c.Chat.DebugTriggers = v == "1" || strings.EqualFold(v, "true")
	}
}

// SetDefaults fills zero-valued fields with their defaults.
func (c *Config) SetDefaults() {
	def := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if c.API.Device == "" {
		c.API.Device = def.API.Device
	}
	if c.API.DeviceVersion == "" {
		c.API.DeviceVersion = def.API.DeviceVersion
	}
	if c.Chat.GoToURL == "" {
		c.Chat.GoToURL = def.Chat.GoToURL
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.TypingIntervalMs <= 0 {
		c.UI.TypingIntervalMs = def.UI.TypingIntervalMs
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		return fmt.Errorf("ui.theme must be auto, dark or light, got %q", c.UI.Theme)
	}
	return nil
}

// Save writes the configuration to its default location.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalConfig     *Config
	globalConfigMu   sync.RWMutex
	globalConfigOnce sync.Once
)

// Global returns the process-wide configuration, loading it on first
// use. Load failures fall back to defaults with a warning.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
