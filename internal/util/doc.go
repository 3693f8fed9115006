// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across driftchat.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// String Utilities:
//   - TruncateWidth: display-width-aware truncation for terminal rendering
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//
// Paths:
//   - HomeDir: the driftchat data directory (~/.driftchat)
package util
