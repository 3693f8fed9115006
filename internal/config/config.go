// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and watches the driftchat configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/driftchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete driftchat configuration.
type Config struct {
	Version string `toml:"version"`

	Project ProjectConfig `toml:"project"`
	Room    RoomConfig    `toml:"room"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// ProjectConfig identifies the managed backend project.
type ProjectConfig struct {
	// APIKey is the project's public web API key.
	APIKey string `toml:"api_key"`
	// ProjectID is the backend project identifier.
	ProjectID string `toml:"project_id"`
	// StorageBucket is the blob bucket, usually "<project_id>.appspot.com".
	StorageBucket string `toml:"storage_bucket"`
}

// RoomConfig selects the chat room and tunes the message stream.
type RoomConfig struct {
	// ID is the room document ID to join.
	ID string `toml:"id"`
	// PollIntervalSecs is how often the stream polls for changes.
	PollIntervalSecs int `toml:"poll_interval_secs"`
	// HistoryLimit is the message window size kept in view.
	HistoryLimit int `toml:"history_limit"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme selects the color theme: "emerald" or "mono".
	Theme string `toml:"theme"`
	// ShowTimestamps toggles HH:MM stamps on message bubbles.
	ShowTimestamps bool `toml:"show_timestamps"`
	// MouseEnabled toggles mouse capture (needed for swipe-to-reply).
	MouseEnabled bool `toml:"mouse_enabled"`
	// ToastDurationSecs is how long notifications stay on screen.
	ToastDurationSecs int `toml:"toast_duration_secs"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	// Level is the zerolog level: "debug", "info", "warn", "error".
	Level string `toml:"level"`
	// Path overrides the log file location (empty = ~/.driftchat/debug.log).
	Path string `toml:"path"`
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Room: RoomConfig{
			ID:               "lobby",
			PollIntervalSecs: 2,
			HistoryLimit:     200,
		},
		UI: UIConfig{
			Theme:             "emerald",
			ShowTimestamps:    true,
			MouseEnabled:      true,
			ToastDurationSecs: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Path returns the config file location (~/.driftchat/config.toml).
func Path() (string, error) {
	dir, err := util.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load builds the effective configuration: defaults, then the config file if
// present, then environment overrides, then validation.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path, used by tests and --config.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies DRIFTCHAT_* environment variables on top of the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DRIFTCHAT_API_KEY"); v != "" {
		c.Project.APIKey = v
	}
	if v := os.Getenv("DRIFTCHAT_PROJECT_ID"); v != "" {
		c.Project.ProjectID = v
	}
	if v := os.Getenv("DRIFTCHAT_STORAGE_BUCKET"); v != "" {
		c.Project.StorageBucket = v
	}
	if v := os.Getenv("DRIFTCHAT_ROOM"); v != "" {
		c.Room.ID = v
	}
	if v := os.Getenv("DRIFTCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DRIFTCHAT_NO_MOUSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.UI.MouseEnabled = false
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks field values and normalizes what it can. The project block
// may be empty; commands that need the backend check for that themselves and
// point the user at `driftchat login`.
func (c *Config) Validate() error {
	var errs []error

	if c.Room.ID == "" {
		errs = append(errs, ValidationError{"room.id", "must not be empty"})
	}
	if c.Room.PollIntervalSecs < 1 {
		c.Room.PollIntervalSecs = 1
	}
	if c.Room.HistoryLimit < 10 {
		c.Room.HistoryLimit = 10
	}

	switch c.UI.Theme {
	case "emerald", "mono":
	default:
		errs = append(errs, ValidationError{"ui.theme", fmt.Sprintf("unknown theme %q", c.UI.Theme)})
	}
	if c.UI.ToastDurationSecs < 1 {
		c.UI.ToastDurationSecs = 1
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{"log.level", fmt.Sprintf("unknown level %q", c.Log.Level)})
	}

	// Project fields come as a set: either all empty (not logged in to a
	// project yet) or all present.
	p := c.Project
	set := 0
	for _, v := range []string{p.APIKey, p.ProjectID, p.StorageBucket} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		errs = append(errs, ValidationError{"project", "api_key, project_id, and storage_bucket must all be set together"})
	}

	return errors.Join(errs...)
}

// HasProject reports whether the backend project block is filled in.
func (c *Config) HasProject() bool {
	return c.Project.APIKey != "" && c.Project.ProjectID != "" && c.Project.StorageBucket != ""
}

// PollInterval returns the stream poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Room.PollIntervalSecs) * time.Second
}

// ToastDuration returns the toast lifetime as a duration.
func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.UI.ToastDurationSecs) * time.Second
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to its default location.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration as TOML, atomically.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# driftchat configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	// 0600: the project block contains the API key.
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
