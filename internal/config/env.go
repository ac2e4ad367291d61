package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file
const (
	EnvBackendURL      = "SIDEBUDDY_BACKEND_URL"
	EnvBridgeTimeoutMs = "SIDEBUDDY_BRIDGE_TIMEOUT_MS"
	EnvBackendTimeout  = "SIDEBUDDY_BACKEND_TIMEOUT_SEC"
	EnvBridgeURL       = "SIDEBUDDY_BRIDGE_URL"
	EnvVerbose         = "SIDEBUDDY_VERBOSE"
)

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given) without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		slog.Debug("loaded environment file", "path", path)
	}
	return nil
}

// ApplyEnv returns cfg with environment overrides applied
func ApplyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.BackendURL = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvBridgeURL)); v != "" {
		cfg.BridgeURL = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvBridgeTimeoutMs)); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return cfg, fmt.Errorf("%s must be a positive integer, got %q", EnvBridgeTimeoutMs, v)
		}
		cfg.BridgeTimeoutMs = ms
	}

	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeout)); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec <= 0 {
			return cfg, fmt.Errorf("%s must be a positive integer, got %q", EnvBackendTimeout, v)
		}
		cfg.BackendTimeoutSec = sec
	}

	if v := strings.TrimSpace(os.Getenv(EnvVerbose)); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s must be a boolean, got %q", EnvVerbose, v)
		}
		cfg.Verbose = verbose
	}

	return cfg, nil
}

// Load reads .env, the config file at path (the default path when empty)
// and environment overrides, in that order of increasing precedence.
func Load(path string) (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return DefaultConfig(), err
	}

	var (
		cfg Config
		err error
	)
	if path == "" {
		cfg, err = LoadConfig()
	} else {
		cfg, err = LoadConfigFrom(path)
	}
	if err != nil {
		return cfg, err
	}

	return ApplyEnv(cfg)
}
