// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the driftchat TUI.
package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/driftchat-tui/internal/ui/styles"
	"github.com/morganforge/driftchat-tui/internal/util"
)

// maxMessageLen bounds a single message.
const maxMessageLen = 1000

// Composer is the message input line with an optional reply banner above it.
type Composer struct {
	input   textinput.Model
	replyTo string
	width   int
}

// NewComposer creates an empty composer.
func NewComposer() Composer {
	ti := textinput.New()
	ti.Placeholder = "Message"
	ti.CharLimit = maxMessageLen
	ti.Prompt = "> "
	ti.Focus()
	return Composer{input: ti}
}

// Update forwards terminal events to the text input.
func (c Composer) Update(msg tea.Msg) (Composer, tea.Cmd) {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// SetWidth sizes the input to the terminal.
func (c *Composer) SetWidth(width int) {
	c.width = width
	c.input.Width = width - 6
}

// Value returns the current draft text.
func (c Composer) Value() string { return c.input.Value() }

// Reset clears the draft and the reply target.
func (c *Composer) Reset() {
	c.input.Reset()
	c.replyTo = ""
}

// SetReplyTo arms the reply banner with the quoted snapshot text.
func (c *Composer) SetReplyTo(snapshot string) { c.replyTo = snapshot }

// ReplyTo returns the armed reply snapshot, "" when not replying.
func (c Composer) ReplyTo() string { return c.replyTo }

// CancelReply disarms the reply banner, keeping the draft.
func (c *Composer) CancelReply() { c.replyTo = "" }

// Focus gives the input keyboard focus.
func (c *Composer) Focus() { c.input.Focus() }

// Blur removes keyboard focus.
func (c *Composer) Blur() { c.input.Blur() }

// View renders the composer, reply banner first when armed.
func (c Composer) View(theme *styles.Theme) string {
	out := ""
	if c.replyTo != "" {
		banner := styles.StatusIndicators.Reply + " " +
			util.TruncateWidth(c.replyTo, max(c.width-8, 10)) +
			"  (esc to cancel)"
		out = theme.ReplyBanner.Render(banner) + "\n"
	}
	box := theme.InputContainer
	if c.width > 0 {
		box = box.Width(c.width - 2)
	}
	return out + box.Render(c.input.View())
}
