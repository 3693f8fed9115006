// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the signed-in user.
package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return &Store{
		Path:    filepath.Join(dir, "session"),
		KeyPath: filepath.Join(dir, "session.key"),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Save("a@b.test", "refresh-token"))

	email, token, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "a@b.test", email)
	assert.Equal(t, "refresh-token", token)
}

func TestStoreTokenNotOnDiskInPlaintext(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save("a@b.test", "super-secret-refresh-token"))

	raw, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-refresh-token")
}

func TestStoreLoadWithoutSave(t *testing.T) {
	s := testStore(t)

	_, _, err := s.Load()

	require.ErrorIs(t, err, ErrNoSession)
}

func TestStoreClear(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save("a@b.test", "refresh-token"))

	require.NoError(t, s.Clear())

	_, _, err := s.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	// Clearing twice is fine.
	assert.NoError(t, s.Clear())
}

func TestStoreRejectsTamperedFile(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save("a@b.test", "refresh-token"))

	raw, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(s.Path, raw, 0o600))

	_, _, err = s.Load()
	require.Error(t, err)
}

func TestStoreKeyFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	s := testStore(t)
	require.NoError(t, s.Save("a@b.test", "refresh-token"))

	info, err := os.Stat(s.KeyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreKeyReuseAcrossSaves(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save("a@b.test", "first"))
	key1, err := os.ReadFile(s.KeyPath)
	require.NoError(t, err)

	require.NoError(t, s.Save("a@b.test", "second"))
	key2, err := os.ReadFile(s.KeyPath)
	require.NoError(t, err)

	assert.Equal(t, key1, key2, "key must not rotate on save")

	_, token, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}
