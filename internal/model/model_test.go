// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for room messages and user
// profiles.
package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	m := NewMessage("u1", "hello")

	if m.ID == "" {
		t.Error("NewMessage() ID should be generated")
	}
	if m.SenderID != "u1" {
		t.Errorf("NewMessage() sender = %q, want %q", m.SenderID, "u1")
	}
	if m.Timestamp.IsZero() {
		t.Error("NewMessage() timestamp should be set")
	}
	if m.IsReply() {
		t.Error("NewMessage() should not be a reply")
	}
}

func TestNewMessageIDsAreUnique(t *testing.T) {
	a := NewMessage("u1", "one")
	b := NewMessage("u1", "two")
	if a.ID == b.ID {
		t.Errorf("two messages share ID %q", a.ID)
	}
}

func TestNewReply(t *testing.T) {
	m := NewReply("u1", "sure", "want to grab lunch?")

	if !m.IsReply() {
		t.Error("NewReply() should be a reply")
	}
	if m.ReplyTo != "want to grab lunch?" {
		t.Errorf("NewReply() snapshot = %q", m.ReplyTo)
	}
}

func TestMessagePreview(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"short text unchanged", "hi", 10, "hi"},
		{"long text truncated", "hello world", 8, "hello..."},
		{"unicode counts runes", "héllo wörld", 8, "héllo..."},
		{"tiny budget", "hello", 2, "he"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := (&Message{Text: tc.text}).Preview(tc.maxLen); got != tc.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tc.text, tc.maxLen, got, tc.want)
			}
		})
	}
}

// =============================================================================
// DISPLAY NAME VALIDATION
// =============================================================================

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"minimum length", "ab", "ab", nil},
		{"typical name", "Jesse M", "Jesse M", nil},
		{"trims whitespace", "  Jesse  ", "Jesse", nil},
		{"one rune too short", "a", "", ErrDisplayNameTooShort},
		{"empty too short", "", "", ErrDisplayNameTooShort},
		{"whitespace only too short", "   ", "", ErrDisplayNameTooShort},
		{"fifty runes ok", strings.Repeat("x", 50), strings.Repeat("x", 50), nil},
		{"fifty one runes too long", strings.Repeat("x", 51), "", ErrDisplayNameTooLong},
		{"multibyte counts runes not bytes", strings.Repeat("ü", 50), strings.Repeat("ü", 50), nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateDisplayName(tc.input)
			if err != tc.wantErr {
				t.Fatalf("ValidateDisplayName(%q) err = %v, want %v", tc.input, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ValidateDisplayName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestProfileInitial(t *testing.T) {
	tests := []struct {
		name    string
		profile UserProfile
		want    string
	}{
		{"from display name", UserProfile{DisplayName: "jesse", Email: "a@b.c"}, "J"},
		{"falls back to email", UserProfile{Email: "zoe@example.com"}, "Z"},
		{"nothing available", UserProfile{}, "?"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.profile.Initial(); got != tc.want {
				t.Errorf("Initial() = %q, want %q", got, tc.want)
			}
		})
	}
}
