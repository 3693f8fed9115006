// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging sets up the debug log. The TUI owns the terminal, so logs
// go to a file in the data directory instead of stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/morganforge/driftchat-tui/internal/util"
)

// Open returns a logger writing JSON lines to path at the given level. An
// empty path selects ~/.driftchat/debug.log.
func Open(path, level string) (zerolog.Logger, func() error, error) {
	if path == "" {
		dir, err := util.HomeDir()
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		path = filepath.Join(dir, "debug.log")
	}

	lvl, err := parseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	log := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return log, f.Close, nil
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
