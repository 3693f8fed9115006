// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the driftchat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application. It detects the
// terminal's color capability once and builds every style up front.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Monochrome drops all color, for "mono" theme and dumb terminals.
	Monochrome bool

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER
	// ==========================================================================

	App    lipgloss.Style
	Header lipgloss.Style
	Title  lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLES
	// ==========================================================================

	OwnBubble    lipgloss.Style
	OtherBubble  lipgloss.Style
	SenderName   lipgloss.Style
	Timestamp    lipgloss.Style
	PendingMark  lipgloss.Style
	QuoteStrip   lipgloss.Style
	QuoteContent lipgloss.Style

	// ReplyIndicator is the arrow shown next to a bubble mid-swipe.
	ReplyIndicator lipgloss.Style

	// ==========================================================================
	// COMPOSER
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	ReplyBanner    lipgloss.Style

	// ==========================================================================
	// FORMS (auth, profile)
	// ==========================================================================

	FormBox      lipgloss.Style
	FormLabel    lipgloss.Style
	FormError    lipgloss.Style
	FormHint     lipgloss.Style
	ButtonActive lipgloss.Style
	ButtonIdle   lipgloss.Style

	// ==========================================================================
	// TOASTS
	// ==========================================================================

	ToastBox         lipgloss.Style
	ToastTitle       lipgloss.Style
	ToastDescription lipgloss.Style
}

// NewTheme builds a theme for the current terminal.
func NewTheme(name string) *Theme {
	output := termenv.DefaultOutput()
	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		HasTrueColor: output.Profile == termenv.TrueColor,
		ColorProfile: output.Profile,
		Monochrome:   name == "mono" || output.Profile == termenv.Ascii,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	if t.Monochrome {
		t.initMonoStyles()
		return
	}

	t.App = lipgloss.NewStyle()
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)
	t.Title = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.OwnBubble = lipgloss.NewStyle().
		Background(OwnBubbleBg).
		Foreground(OwnBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OwnBubbleBorder).
		Padding(0, 1)
	t.OtherBubble = lipgloss.NewStyle().
		Background(OtherBubbleBg).
		Foreground(OtherBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OtherBubbleBorder).
		Padding(0, 1)
	t.SenderName = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.PendingMark = lipgloss.NewStyle().
		Foreground(Amber)
	t.QuoteStrip = lipgloss.NewStyle().
		Foreground(QuoteBar).
		Bold(true)
	t.QuoteContent = lipgloss.NewStyle().
		Foreground(QuoteText).
		Italic(true)
	t.ReplyIndicator = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)
	t.ReplyBanner = lipgloss.NewStyle().
		Foreground(QuoteText).
		Background(SurfaceDim).
		Padding(0, 1)

	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Emerald).
		Padding(1, 2)
	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.FormError = lipgloss.NewStyle().
		Foreground(Rose)
	t.FormHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.ButtonActive = lipgloss.NewStyle().
		Background(Emerald).
		Foreground(TextInverse).
		Padding(0, 2).
		Bold(true)
	t.ButtonIdle = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 2)

	t.ToastBox = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 2)
	t.ToastTitle = lipgloss.NewStyle().
		Bold(true)
	t.ToastDescription = lipgloss.NewStyle().
		Foreground(TextSecondary)
}

// initMonoStyles keeps layout but drops color entirely.
func (t *Theme) initMonoStyles() {
	border := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		Padding(0, 1)

	t.App = lipgloss.NewStyle()
	t.Header = lipgloss.NewStyle().Padding(0, 1)
	t.Title = lipgloss.NewStyle().Bold(true)

	t.OwnBubble = border
	t.OtherBubble = border
	t.SenderName = lipgloss.NewStyle().Bold(true)
	t.Timestamp = lipgloss.NewStyle().Faint(true)
	t.PendingMark = lipgloss.NewStyle().Faint(true)
	t.QuoteStrip = lipgloss.NewStyle().Bold(true)
	t.QuoteContent = lipgloss.NewStyle().Italic(true)
	t.ReplyIndicator = lipgloss.NewStyle().Bold(true)

	t.InputContainer = border
	t.InputPrompt = lipgloss.NewStyle().Bold(true)
	t.ReplyBanner = lipgloss.NewStyle().Faint(true).Padding(0, 1)

	t.FormBox = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).Padding(1, 2)
	t.FormLabel = lipgloss.NewStyle()
	t.FormError = lipgloss.NewStyle().Bold(true)
	t.FormHint = lipgloss.NewStyle().Faint(true).Italic(true)
	t.ButtonActive = lipgloss.NewStyle().Reverse(true).Padding(0, 2).Bold(true)
	t.ButtonIdle = lipgloss.NewStyle().Padding(0, 2)

	t.ToastBox = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).Padding(0, 2)
	t.ToastTitle = lipgloss.NewStyle().Bold(true)
	t.ToastDescription = lipgloss.NewStyle()
}

// SetSize records the terminal dimensions for layout decisions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleMaxWidth is the widest a message bubble may render, leaving room for
// the swipe translation and alignment gutter.
func (t *Theme) BubbleMaxWidth() int {
	if t.Width <= 0 {
		return 60
	}
	w := t.Width * 2 / 3
	if w < 20 {
		w = 20
	}
	return w
}
