// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the driftchat TUI.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/driftchat-tui/internal/gradient"
	"github.com/morganforge/driftchat-tui/internal/model"
	"github.com/morganforge/driftchat-tui/internal/ui/styles"
)

// RenderBadge renders a user's avatar cell. Users with a photo get a filled
// marker; everyone else gets their initial over their stable gradient color,
// so the same user looks the same on every client.
func RenderBadge(theme *styles.Theme, p model.UserProfile) string {
	if theme.Monochrome {
		return "(" + p.Initial() + ")"
	}

	g := gradient.ForUser(p.UID)
	badge := lipgloss.NewStyle().
		Foreground(lipgloss.Color(g.From)).
		Bold(true)

	if p.PhotoURL != "" {
		// The terminal cannot show the photo; mark that one exists.
		return badge.Render("◉")
	}
	return badge.Render("(" + p.Initial() + ")")
}
