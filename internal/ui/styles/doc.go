// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the driftchat TUI.
//
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
// The Theme struct holds every pre-built style; screens take a *Theme and
// never construct colors themselves.
package styles
