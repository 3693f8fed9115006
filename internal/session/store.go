// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the signed-in user.
package session

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/morganforge/driftchat-tui/internal/util"
)

// ErrNoSession is returned by Load when no session has been saved.
var ErrNoSession = errors.New("no saved session")

// =============================================================================
// SESSION STORE
// =============================================================================

// Store persists the refresh token across runs. The token grants long-lived
// account access, so it is sealed with XChaCha20-Poly1305 under a random key
// held in a separate 0600 file. This keeps the token out of casual backups
// and grep, not out of the hands of root.
type Store struct {
	// Path is the sealed session file.
	Path string
	// KeyPath is the 32-byte key file.
	KeyPath string
}

// NewStore creates a store rooted in the driftchat data directory.
func NewStore() (*Store, error) {
	dir, err := util.HomeDir()
	if err != nil {
		return nil, err
	}
	return &Store{
		Path:    filepath.Join(dir, "session"),
		KeyPath: filepath.Join(dir, "session.key"),
	}, nil
}

// record is the plaintext sealed into the session file.
type record struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refresh_token"`
}

// Save seals the refresh token to disk.
func (s *Store) Save(email, refreshToken string) error {
	key, err := s.loadOrCreateKey()
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}

	plaintext, err := json.Marshal(record{Email: email, RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	// File layout: nonce || ciphertext.
	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	if err := util.AtomicWriteFile(s.Path, sealed, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Load opens the sealed session file. A missing file yields ErrNoSession; a
// corrupt or tampered file yields a decryption error.
func (s *Store) Load() (email, refreshToken string, err error) {
	sealed, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", "", ErrNoSession
	}
	if err != nil {
		return "", "", fmt.Errorf("read session file: %w", err)
	}

	key, err := os.ReadFile(s.KeyPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", "", ErrNoSession
	}
	if err != nil {
		return "", "", fmt.Errorf("read session key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", "", fmt.Errorf("init cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return "", "", errors.New("session file truncated")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", "", fmt.Errorf("unseal session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return "", "", fmt.Errorf("decode session: %w", err)
	}
	return rec.Email, rec.RefreshToken, nil
}

// Clear removes the sealed session file. The key file stays; it is reused by
// the next Save.
func (s *Store) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// loadOrCreateKey returns the sealing key, generating it on first use.
func (s *Store) loadOrCreateKey() ([]byte, error) {
	key, err := os.ReadFile(s.KeyPath)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("session key has %d bytes, want %d", len(key), chacha20poly1305.KeySize)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read session key: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	if err := util.AtomicWriteFile(s.KeyPath, key, 0o600); err != nil {
		return nil, fmt.Errorf("write session key: %w", err)
	}
	return key, nil
}
