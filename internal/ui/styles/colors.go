// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the driftchat TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Emerald - Brand color, own messages, success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// EmeraldDeep - Darker emerald for backgrounds
var EmeraldDeep = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#064E3B"}

// Cyan - Info, links, presence indicator
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, destructive toasts
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// RoseDeep - Darker rose for backgrounds
var RoseDeep = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#881337"}

// Amber - Warnings, pending state
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Headers, footers, toast backgrounds
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - Borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Sender names, labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Timestamps, hints
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// Own messages - emerald tones, right aligned
var OwnBubbleBg = lipgloss.AdaptiveColor{Light: "#D1FAE5", Dark: "#064E3B"}
var OwnBubbleFg = lipgloss.AdaptiveColor{Light: "#065F46", Dark: "#D1FAE5"}
var OwnBubbleBorder = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#10B981"}

// Other messages - neutral tones, left aligned
var OtherBubbleBg = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#313244"}
var OtherBubbleFg = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var OtherBubbleBorder = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#45475A"}

// Reply quote strip inside a bubble
var QuoteBar = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
var QuoteText = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// StatusIndicators are the glyphs used across toasts and status lines.
var StatusIndicators = struct {
	Success string
	Error   string
	Warning string
	Info    string
	Reply   string
	Pending string
}{
	Success: "✓",
	Error:   "✗",
	Warning: "⚠",
	Info:    "ℹ",
	Reply:   "↩",
	Pending: "◌",
}
