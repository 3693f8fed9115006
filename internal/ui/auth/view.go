// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements the sign-in and sign-up screen.
package auth

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := "Sign in to driftchat"
	action := "sign in"
	other := "ctrl+s: create an account"
	if m.mode == ModeSignUp {
		title = "Create your account"
		action = "sign up"
		other = "ctrl+s: back to sign in"
	}
	b.WriteString(m.theme.Title.Render(title) + "\n\n")

	labels := []string{"Email", "Password", "Display name"}
	for i := 0; i < m.fieldCount(); i++ {
		b.WriteString(m.theme.FormLabel.Render(labels[i]) + "\n")
		b.WriteString(m.inputs[i].View() + "\n\n")
	}

	if m.submitting {
		b.WriteString(m.spinner.View() + " signing in...\n")
	} else {
		b.WriteString(m.theme.ButtonActive.Render("enter: "+action) + "\n")
	}

	if m.status != "" {
		style := m.theme.FormError
		if m.statusOK {
			style = m.theme.FormHint
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.theme.FormHint.Render(other))

	box := m.theme.FormBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
