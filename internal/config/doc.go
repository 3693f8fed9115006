// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and watches the driftchat configuration.
//
// Configuration precedence, lowest to highest:
//   - built-in defaults
//   - ~/.driftchat/config.toml
//   - DRIFTCHAT_* environment variables
//
// # Key Functions
//
//   - Load: defaults + TOML file + env overrides, validated
//   - Save: atomic TOML write
//   - Watch: fsnotify-based hot reload of the config file
package config
