// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the driftchat TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/driftchat-tui/internal/model"
	"github.com/morganforge/driftchat-tui/internal/ui/styles"
	"github.com/morganforge/driftchat-tui/internal/util"
)

// swipePixelsPerColumn converts gesture offset units into terminal columns,
// so a full swipe (100 units) moves the bubble ten cells.
const swipePixelsPerColumn = 10

// replyQuoteMaxLen bounds the quoted snapshot line inside a bubble.
const replyQuoteMaxLen = 40

// Bubble describes one message render.
type Bubble struct {
	Message    model.Message
	SenderName string
	// Own selects right alignment and the emerald accent.
	Own bool
	// ShowTimestamp toggles the HH:MM stamp.
	ShowTimestamp bool
	// SwipeOffset is the live gesture offset for this bubble, in gesture
	// units (negative = dragged left). Zero when idle.
	SwipeOffset int
	// IndicatorVisible shows the reply arrow beside the bubble mid-swipe.
	IndicatorVisible bool
}

// RenderBubble renders a message bubble line block, aligned into width.
func RenderBubble(theme *styles.Theme, b Bubble, width int) string {
	style := theme.OtherBubble
	if b.Own {
		style = theme.OwnBubble
	}

	var lines []string

	// Quoted reply snapshot renders above the text, inside the bubble.
	if b.Message.IsReply() {
		quote := util.TruncateRunes(b.Message.ReplyTo, replyQuoteMaxLen)
		quote = strings.ReplaceAll(quote, "\n", " ")
		lines = append(lines,
			theme.QuoteStrip.Render("▌ ")+theme.QuoteContent.Render(quote))
	}

	lines = append(lines, b.Message.Text)

	// Meta line: sender, stamp, pending marker.
	var meta []string
	if !b.Own && b.SenderName != "" {
		meta = append(meta, theme.SenderName.Render(b.SenderName))
	}
	if b.ShowTimestamp {
		if stamp := b.Message.Stamp(); stamp != "" {
			meta = append(meta, theme.Timestamp.Render(stamp))
		}
	}
	if b.Message.Pending {
		meta = append(meta, theme.PendingMark.Render(styles.StatusIndicators.Pending))
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, " "))
	}

	box := style.MaxWidth(theme.BubbleMaxWidth()).Render(strings.Join(lines, "\n"))

	// The swipe drags the bubble horizontally; the indicator appears on the
	// side the bubble is moving toward once the drag is past the dead zone.
	shift := b.SwipeOffset / swipePixelsPerColumn
	box = applySwipe(theme, box, shift, b.IndicatorVisible)

	align := lipgloss.Left
	if b.Own {
		align = lipgloss.Right
	}
	if width <= 0 {
		return box
	}
	return lipgloss.PlaceHorizontal(width, align, box)
}

// applySwipe translates the rendered box by shift columns and attaches the
// reply indicator.
func applySwipe(theme *styles.Theme, box string, shift int, indicator bool) string {
	if shift == 0 && !indicator {
		return box
	}

	arrow := ""
	if indicator {
		arrow = theme.ReplyIndicator.Render(styles.StatusIndicators.Reply)
	}

	switch {
	case shift > 0:
		pad := strings.Repeat(" ", shift)
		prefix := pad
		if arrow != "" {
			// Arrow sits in the gap the bubble moved away from.
			prefix = arrow + strings.Repeat(" ", max(shift-1, 1))
		}
		return indentBlock(box, prefix)
	case shift < 0:
		suffix := ""
		if arrow != "" {
			suffix = " " + arrow
		}
		return appendBlock(box, suffix)
	default:
		return appendBlock(box, " "+arrow)
	}
}

// indentBlock prefixes every line of a multi-line block.
func indentBlock(block, prefix string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// appendBlock appends suffix to the first line of a block.
func appendBlock(block, suffix string) string {
	if suffix == "" {
		return block
	}
	lines := strings.Split(block, "\n")
	lines[0] += suffix
	return strings.Join(lines, "\n")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
