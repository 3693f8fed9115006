// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gradient assigns a stable fallback gradient to each user.
//
// When a user has no avatar photo, their initial is rendered over a gradient
// picked from a fixed palette of ten pairs. The pick is a 32-bit hash of the
// user identifier modulo the palette size, so the same user always gets the
// same colors on every client.
package gradient

// Gradient is a two-stop color pair, given as hex colors for lipgloss.
type Gradient struct {
	From string
	To   string
}

// palette holds the ten predefined gradients. Order matters: changing it
// would reshuffle every user's colors.
var palette = [10]Gradient{
	{From: "#ec4899", To: "#6366f1"}, // pink -> indigo
	{From: "#06b6d4", To: "#a855f7"}, // cyan -> purple
	{From: "#22c55e", To: "#14b8a6"}, // green -> teal
	{From: "#f97316", To: "#eab308"}, // orange -> yellow
	{From: "#3b82f6", To: "#8b5cf6"}, // blue -> violet
	{From: "#f43f5e", To: "#d946ef"}, // rose -> fuchsia
	{From: "#14b8a6", To: "#3b82f6"}, // teal -> blue
	{From: "#d946ef", To: "#ec4899"}, // fuchsia -> pink
	{From: "#f59e0b", To: "#ef4444"}, // amber -> red
	{From: "#8b5cf6", To: "#6366f1"}, // violet -> indigo
}

// ForUser returns the gradient for the given identifier.
func ForUser(identifier string) Gradient {
	return palette[index(identifier)]
}

// index hashes the identifier into the palette.
// The hash is the classic djb-style `h*31 + c` expressed as shift-and-
// subtract, truncated to 32 bits at every step.
func index(identifier string) int {
	var h int32
	for _, r := range identifier {
		h = (h << 5) - h + int32(r)
	}
	if h < 0 {
		// Negate via int64: -MinInt32 does not fit in int32.
		return int(-int64(h)) % len(palette)
	}
	return int(h) % len(palette)
}
