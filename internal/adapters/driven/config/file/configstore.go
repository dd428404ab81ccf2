// Package file is a TOML-backed configuration store for partlens.
// Configuration lives in ~/.partlens/config.toml; every field has a
// working default so a missing file is not an error.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the client settings.
type Config struct {
	// ServerURL is the base URL of the analysis backend.
	ServerURL string `toml:"server_url"`

	// PollIntervalSeconds is the polling transport's cadence.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`

	// LivenessTimeoutSeconds is the discrete-SSE silence window.
	LivenessTimeoutSeconds int `toml:"liveness_timeout_seconds"`

	// DropDir is the inbox directory for watch mode. Empty disables it
	// unless given on the command line.
	DropDir string `toml:"drop_dir"`

	// PreviewRows is how many data rows local spreadsheet previews show.
	PreviewRows int `toml:"preview_rows"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		ServerURL:              "http://localhost:8000",
		PollIntervalSeconds:    2,
		LivenessTimeoutSeconds: 60,
		PreviewRows:            5,
	}
}

// PollInterval returns the cadence as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// LivenessTimeout returns the silence window as a duration.
func (c Config) LivenessTimeout() time.Duration {
	return time.Duration(c.LivenessTimeoutSeconds) * time.Second
}

// DefaultDir returns ~/.partlens.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".partlens"), nil
}

// Load reads configuration from configDir/config.toml, applying defaults
// for anything unset. A missing file yields the defaults.
func Load(configDir string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(configDir, "config.toml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config: %w", err)
	}

	// Guard against zeroed-out values; they would stall the transports.
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = DefaultConfig().PollIntervalSeconds
	}
	if cfg.LivenessTimeoutSeconds <= 0 {
		cfg.LivenessTimeoutSeconds = DefaultConfig().LivenessTimeoutSeconds
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = DefaultConfig().PreviewRows
	}
	return cfg, nil
}

// Save writes configuration to configDir/config.toml, creating the
// directory when needed.
func Save(configDir string, cfg Config) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
