package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dmitrijs2005/pharmdesk/internal/timex"
)

// fileConfig is the on-disk shape shared by JSON and TOML files.
// Durations accept "2.6s" strings (and integer nanoseconds in JSON).
type fileConfig struct {
	APIOrigin     string          `json:"api_origin" toml:"api_origin"`
	PrefsPath     string          `json:"prefs_path" toml:"prefs_path"`
	LogPath       string          `json:"log_path" toml:"log_path"`
	LogLevel      string          `json:"log_level" toml:"log_level"`
	ToastDuration *timex.Duration `json:"toast_duration" toml:"toast_duration"`
	Brand         string          `json:"brand" toml:"brand"`
}

// parseFile overlays cfg with the values present in the file at path.
// Files ending in .toml are decoded as TOML, anything else as JSON.
// Keys missing from the file leave cfg untouched.
func parseFile(cfg *Config, path string) error {
	var fc fileConfig

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	overlay(&cfg.APIOrigin, fc.APIOrigin)
	overlay(&cfg.PrefsPath, fc.PrefsPath)
	overlay(&cfg.LogPath, fc.LogPath)
	overlay(&cfg.LogLevel, fc.LogLevel)
	overlay(&cfg.Brand, fc.Brand)
	if fc.ToastDuration != nil {
		cfg.ToastDuration = fc.ToastDuration.Duration
	}
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
