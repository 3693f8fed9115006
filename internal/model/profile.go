// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for room messages and user
// profiles.
package model

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// USER PROFILE
// =============================================================================

// Display name bounds, counted in runes after NFC normalization.
const (
	MinDisplayNameLen = 2
	MaxDisplayNameLen = 50
)

var (
	ErrDisplayNameTooShort = errors.New("display name must be at least 2 characters")
	ErrDisplayNameTooLong  = errors.New("display name must be at most 50 characters")
)

// UserProfile is the per-user record mirrored in the document store.
// The identity provider owns UID, Email, DisplayName and PhotoURL; the
// document adds presence and bookkeeping fields.
type UserProfile struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`

	// Presence
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`

	// Bookkeeping
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Initial returns the single uppercase rune used by the avatar fallback.
// Prefers the display name, falls back to the email, then to "?".
func (p *UserProfile) Initial() string {
	for _, source := range []string{p.DisplayName, p.Email} {
		for _, r := range source {
			return strings.ToUpper(string(r))
		}
	}
	return "?"
}

// =============================================================================
// VALIDATION
// =============================================================================

// NormalizeDisplayName trims surrounding whitespace and applies NFC so that
// visually identical names compare and count the same way.
func NormalizeDisplayName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateDisplayName checks the 2-50 rune bound on a normalized name and
// returns the normalized form.
func ValidateDisplayName(name string) (string, error) {
	name = NormalizeDisplayName(name)
	n := len([]rune(name))
	if n < MinDisplayNameLen {
		return "", ErrDisplayNameTooShort
	}
	if n > MaxDisplayNameLen {
		return "", ErrDisplayNameTooLong
	}
	return name, nil
}
