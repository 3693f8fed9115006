// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for room messages and user
// profiles.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in the shared room.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Text string `json:"text"`

	// ReplyTo is a text snapshot of the message being replied to. It is
	// denormalized on purpose: the quoted message may be deleted later and
	// the snapshot still renders.
	ReplyTo string `json:"reply_to,omitempty"`

	// Pending marks an optimistic message that has been sent but not yet
	// observed on the stream. Not persisted.
	Pending bool `json:"-"`
}

// NewMessage creates a message with a generated ID and the current time.
func NewMessage(senderID, text string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Timestamp: time.Now(),
		Text:      text,
	}
}

// NewReply creates a message quoting the given snapshot text.
func NewReply(senderID, text, replyTo string) *Message {
	msg := NewMessage(senderID, text)
	msg.ReplyTo = replyTo
	return msg
}

// IsReply reports whether the message carries a reply snapshot.
func (m *Message) IsReply() bool {
	return m.ReplyTo != ""
}

// IsEmpty reports whether the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Text) == 0
}

// Preview returns a truncated single-line preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// Stamp formats the message timestamp as HH:MM for bubble rendering.
func (m *Message) Stamp() string {
	if m.Timestamp.IsZero() {
		return ""
	}
	return m.Timestamp.Local().Format("15:04")
}
