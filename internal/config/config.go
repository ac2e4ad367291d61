// Package config handles configuration for sidebuddy.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sidebuddy/sidebuddy/internal/models"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // "dark", "light", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// Config represents the user configuration
type Config struct {
	// BackendURL is the base URL of the podcast backend
	BackendURL string `json:"backend_url"`
	// BridgeTimeoutMs bounds every page-content and clipboard round trip
	BridgeTimeoutMs int `json:"bridge_timeout_ms"`
	// BackendTimeoutSec bounds each transcript or audio request
	BackendTimeoutSec int `json:"backend_timeout_sec"`
	// BridgeURL is the websocket address of a running host, used by --share
	// and --bridge
	BridgeURL string `json:"bridge_url"`
	// PanelOrigin is the origin this client announces to the host
	PanelOrigin string `json:"panel_origin"`
	// AllowedOrigins lists the panel origins a host accepts
	AllowedOrigins []string `json:"allowed_origins"`
	// WebpageContext uses the page as transcript context; when off the
	// sample text is used
	WebpageContext  bool                  `json:"webpage_context"`
	VoiceMap        models.VoiceMap       `json:"voice_map"`
	Transcript      models.TranscriptForm `json:"transcript"`
	CopyToClipboard bool                  `json:"copy_to_clipboard"`
	Verbose         bool                  `json:"verbose"`
	Markdown        MarkdownConfig        `json:"markdown,omitempty"`
}

// Defaults for the bridge transport
const (
	DefaultBridgeURL   = "ws://127.0.0.1:8765/bridge"
	DefaultListenAddr  = "127.0.0.1:8765"
	DefaultPanelOrigin = "chrome-extension://sidebuddy"
)

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BackendURL:      models.DefaultBackendURL,
		BridgeTimeoutMs:   models.DefaultBridgeTimeoutMs,
		BackendTimeoutSec: models.DefaultBackendTimeoutSec,
		BridgeURL:         DefaultBridgeURL,
		PanelOrigin:       DefaultPanelOrigin,
		AllowedOrigins:    []string{DefaultPanelOrigin},
		WebpageContext:    true,
		VoiceMap:          models.DefaultVoiceMap(),
		Transcript:        models.DefaultTranscriptForm(),
		CopyToClipboard:   false,
		Verbose:           false,
		Markdown:          DefaultMarkdownConfig(),
	}
}

// BridgeTimeout returns the bridge timeout as a duration, falling back to
// the default for non-positive values.
func (c Config) BridgeTimeout() time.Duration {
	ms := c.BridgeTimeoutMs
	if ms <= 0 {
		ms = models.DefaultBridgeTimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

// BackendTimeout returns the per-request backend timeout, falling back to
// the default for non-positive values.
func (c Config) BackendTimeout() time.Duration {
	sec := c.BackendTimeoutSec
	if sec <= 0 {
		sec = models.DefaultBackendTimeoutSec
	}
	return time.Duration(sec) * time.Second
}

// Validate checks the configuration for values that cannot work
func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url must not be empty")
	}
	if c.BridgeTimeoutMs < 0 {
		return fmt.Errorf("bridge_timeout_ms must not be negative, got %d", c.BridgeTimeoutMs)
	}
	if c.BackendTimeoutSec < 0 {
		return fmt.Errorf("backend_timeout_sec must not be negative, got %d", c.BackendTimeoutSec)
	}
	return c.Transcript.Validate()
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".sidebuddy")
	return configDir, nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetHistoryDir returns the directory holding saved episodes
func GetHistoryDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "history"), nil
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration at path. A missing file yields
// the defaults; fields absent from the file keep their default values.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the default path
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigTo(cfg, filepath.Join(configDir, "config.json"))
}

// SaveConfigTo saves the configuration to path
func SaveConfigTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
