package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sidebuddy/sidebuddy/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BackendURL != "http://127.0.0.1:8000" {
		t.Errorf("Expected default backend to be 'http://127.0.0.1:8000', got '%s'", cfg.BackendURL)
	}

	if cfg.BridgeTimeoutMs != 3000 {
		t.Errorf("Expected BridgeTimeoutMs to be 3000, got %d", cfg.BridgeTimeoutMs)
	}

	if !cfg.WebpageContext {
		t.Error("Expected WebpageContext to be on by default")
	}

	if cfg.Verbose != false {
		t.Errorf("Expected Verbose to be false, got %v", cfg.Verbose)
	}

	if cfg.VoiceMap["1"] != models.VoiceSpeaker1 || cfg.VoiceMap["2"] != models.VoiceSpeaker2 {
		t.Errorf("Unexpected default voice map: %v", cfg.VoiceMap)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_BridgeTimeout(t *testing.T) {
	tests := []struct {
		ms   int
		want time.Duration
	}{
		{1500, 1500 * time.Millisecond},
		{0, 3 * time.Second},
		{-5, 3 * time.Second},
	}

	for _, tt := range tests {
		cfg := Config{BridgeTimeoutMs: tt.ms}
		if got := cfg.BridgeTimeout(); got != tt.want {
			t.Errorf("BridgeTimeout() with %d ms = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestConfig_BackendTimeout(t *testing.T) {
	tests := []struct {
		sec  int
		want time.Duration
	}{
		{90, 90 * time.Second},
		{0, 10 * time.Minute},
		{-1, 10 * time.Minute},
	}

	for _, tt := range tests {
		cfg := Config{BackendTimeoutSec: tt.sec}
		if got := cfg.BackendTimeout(); got != tt.want {
			t.Errorf("BackendTimeout() with %d s = %v, want %v", tt.sec, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty backend", func(c *Config) { c.BackendURL = "" }, true},
		{"negative timeout", func(c *Config) { c.BridgeTimeoutMs = -1 }, true},
		{"negative backend timeout", func(c *Config) { c.BackendTimeoutSec = -1 }, true},
		{"bad creativity", func(c *Config) { c.Transcript.Creativity = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	if want := filepath.Join(tmpDir, ".sidebuddy", "config.json"); path != want {
		t.Errorf("GetConfigPath() = %s, want %s", path, want)
	}

	historyDir, err := GetHistoryDir()
	if err != nil {
		t.Fatalf("GetHistoryDir() returned error: %v", err)
	}
	if want := filepath.Join(tmpDir, ".sidebuddy", "history"); historyDir != want {
		t.Errorf("GetHistoryDir() = %s, want %s", historyDir, want)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, err := EnsureConfigDir()
	if err != nil {
		t.Fatalf("EnsureConfigDir() returned error: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Directory does not exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("Path is not a directory")
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("Directory permissions = %o, want 700", perm)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.BackendURL != models.DefaultBackendURL {
		t.Errorf("BackendURL = %s, want default", cfg.BackendURL)
	}
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	cfg := DefaultConfig()
	cfg.BackendURL = "http://podcast.local:9000"
	cfg.Verbose = true

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	configPath := filepath.Join(tmpDir, ".sidebuddy", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var saved Config
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("Failed to parse saved config: %v", err)
	}

	if saved.BackendURL != cfg.BackendURL {
		t.Errorf("BackendURL = %s, want %s", saved.BackendURL, cfg.BackendURL)
	}
	if saved.Verbose != cfg.Verbose {
		t.Errorf("Verbose = %v, want %v", saved.Verbose, cfg.Verbose)
	}
	if saved.Transcript.PodcastName != cfg.Transcript.PodcastName {
		t.Errorf("Transcript.PodcastName = %s, want %s", saved.Transcript.PodcastName, cfg.Transcript.PodcastName)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat config file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("File permissions = %o, want 600", perm)
	}
}

func TestLoadConfigFrom_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	partial := `{"backend_url": "http://other:8000", "transcript": {"word_count": 250}}`
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() returned error: %v", err)
	}

	if cfg.BackendURL != "http://other:8000" {
		t.Errorf("BackendURL = %s, want http://other:8000", cfg.BackendURL)
	}
	if cfg.Transcript.WordCount != 250 {
		t.Errorf("Transcript.WordCount = %d, want 250", cfg.Transcript.WordCount)
	}
	// Fields missing from the file keep their defaults
	if cfg.Transcript.OutputLanguage != "Vietnamese" {
		t.Errorf("Transcript.OutputLanguage = %s, want Vietnamese", cfg.Transcript.OutputLanguage)
	}
	if cfg.BridgeTimeoutMs != models.DefaultBridgeTimeoutMs {
		t.Errorf("BridgeTimeoutMs = %d, want default", cfg.BridgeTimeoutMs)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configDir := filepath.Join(tmpDir, ".sidebuddy")
	_ = os.MkdirAll(configDir, 0o700)

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{"invalid": json content`), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err == nil {
		t.Error("LoadConfig() with invalid JSON should return error")
	}

	if cfg.BackendURL != models.DefaultBackendURL {
		t.Errorf("BackendURL = %s, want default on error", cfg.BackendURL)
	}
}
