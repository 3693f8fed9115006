// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the driftchat TUI.
//
// # Key Components
//
//   - Toast / ToastManager: non-blocking corner notifications
//   - Bubble: chat message bubble with reply quote and swipe translation
//   - Badge: avatar fallback rendered from the user's gradient and initial
//   - Composer: the message input with reply banner
package components
