// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile implements the profile screen: display name editing and
// the profile-picture upload workflow.
package profile

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/driftchat-tui/internal/ui/components"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	self := m.session.Profile()
	b.WriteString(m.theme.Title.Render("Your profile") + "\n\n")
	b.WriteString(components.RenderBadge(m.theme, self) + " " + self.Email + "\n\n")

	b.WriteString(m.theme.FormLabel.Render("Display name") + "\n")
	b.WriteString(m.nameInput.View() + "\n\n")

	b.WriteString(m.theme.FormLabel.Render("Profile picture") + "\n")
	if url := m.uploader.DisplayedURL(); url != "" {
		b.WriteString(m.theme.FormHint.Render(url) + "\n")
	}
	b.WriteString(m.fileInput.View() + "\n\n")

	if m.saving || m.uploader.Busy() {
		b.WriteString(m.spinner.View() + " working...\n")
	}
	if m.status != "" {
		b.WriteString(m.theme.FormHint.Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.theme.FormHint.Render("tab: switch field  enter: apply  esc: back"))

	box := m.theme.FormBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
