// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the room screen: message list, swipe-to-reply,
// composer, and the live stream wiring.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/driftchat-tui/internal/ui/components"
)

// renderedBubble is one laid-out message with its height in rows.
type renderedBubble struct {
	id      string
	content string
	rows    int
}

// View implements tea.Model.
func (m Model) View() string {
	header := m.renderHeader()
	composer := m.composer.View(m.theme)

	bodyRows := m.height - lipgloss.Height(header) - lipgloss.Height(composer)
	if bodyRows < 1 {
		bodyRows = 1
	}

	bubbles := m.visibleBubbles(bodyRows)
	var lines []string
	for _, b := range bubbles {
		lines = append(lines, b.content)
	}
	body := strings.Join(lines, "\n")

	// Pad the body so the composer stays pinned to the bottom.
	if h := lipgloss.Height(body); h < bodyRows {
		body = strings.Repeat("\n", bodyRows-h) + body
	}

	return header + "\n" + body + "\n" + composer
}

func (m Model) renderHeader() string {
	self := m.session.Profile()
	left := m.theme.Title.Render("#" + m.roomID)
	right := components.RenderBadge(m.theme, self) + " " + self.DisplayName
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// visibleBubbles lays out the newest messages bottom-up into the given number
// of rows, honoring the scroll offset.
func (m Model) visibleBubbles(maxRows int) []renderedBubble {
	var out []renderedBubble
	rows := 0

	start := len(m.messages) - 1 - m.scroll
	for i := start; i >= 0; i-- {
		b := m.renderMessage(i)
		if rows+b.rows > maxRows && len(out) > 0 {
			break
		}
		out = append([]renderedBubble{b}, out...)
		rows += b.rows
		if rows >= maxRows {
			break
		}
	}
	return out
}

func (m Model) renderMessage(i int) renderedBubble {
	msg := m.messages[i]
	own := msg.SenderID == m.session.UID()

	b := components.Bubble{
		Message:       msg,
		SenderName:    m.senderName(msg.SenderID),
		Own:           own,
		ShowTimestamp: m.showTimestamps,
	}
	if ctrl, ok := m.controllers[msg.ID]; ok {
		b.SwipeOffset = ctrl.Offset()
		b.IndicatorVisible = ctrl.IndicatorVisible()
	}

	content := components.RenderBubble(m.theme, b, m.width)
	if i == m.selected {
		content = m.theme.ReplyIndicator.Render("▸") + "\n" + content
	}
	return renderedBubble{id: msg.ID, content: content, rows: lipgloss.Height(content)}
}

// hitTest maps a terminal row to the message rendered there, using the same
// layout View produces. Returns "" for rows outside any bubble.
func (m Model) hitTest(y int) string {
	header := m.renderHeader()
	composer := m.composer.View(m.theme)
	bodyRows := m.height - lipgloss.Height(header) - lipgloss.Height(composer)
	if bodyRows < 1 {
		return ""
	}

	bubbles := m.visibleBubbles(bodyRows)
	rows := 0
	for _, b := range bubbles {
		rows += b.rows
	}

	// First body row of the topmost bubble, accounting for bottom padding.
	row := lipgloss.Height(header) + (bodyRows - rows)
	for _, b := range bubbles {
		if y >= row && y < row+b.rows {
			return b.id
		}
		row += b.rows
	}
	return ""
}

