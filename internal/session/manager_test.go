// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the signed-in user.
package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/driftchat-tui/internal/avatar"
	"github.com/morganforge/driftchat-tui/internal/backend"
	"github.com/morganforge/driftchat-tui/internal/model"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeIdentity struct {
	signInErr  error
	refreshErr error
	updateErr  error

	creds backend.Credentials
	info  backend.AccountInfo

	signUpCalls       int
	verificationSent  int
	refreshCalls      int
	lastProfileUpdate backend.ProfileUpdate
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (backend.Credentials, error) {
	f.signUpCalls++
	return f.creds, nil
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (backend.Credentials, error) {
	if f.signInErr != nil {
		return backend.Credentials{}, f.signInErr
	}
	return f.creds, nil
}

func (f *fakeIdentity) SendEmailVerification(ctx context.Context, idToken string) error {
	f.verificationSent++
	return nil
}

func (f *fakeIdentity) UpdateAccountProfile(ctx context.Context, idToken string, update backend.ProfileUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.lastProfileUpdate = update
	return nil
}

func (f *fakeIdentity) Lookup(ctx context.Context, idToken string) (backend.AccountInfo, error) {
	return f.info, nil
}

func (f *fakeIdentity) Refresh(ctx context.Context, refreshToken string) (backend.Credentials, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return backend.Credentials{}, f.refreshErr
	}
	return backend.Credentials{
		UID:          f.creds.UID,
		IDToken:      "refreshed-token",
		RefreshToken: "rotated-refresh",
		ExpiresIn:    time.Hour,
	}, nil
}

type memStore struct {
	email   string
	token   string
	saved   int
	cleared int
}

func (s *memStore) Save(email, refreshToken string) error {
	s.email, s.token = email, refreshToken
	s.saved++
	return nil
}

func (s *memStore) Load() (string, string, error) {
	if s.token == "" {
		return "", "", ErrNoSession
	}
	return s.email, s.token, nil
}

func (s *memStore) Clear() error {
	s.email, s.token = "", ""
	s.cleared++
	return nil
}

func verifiedIdentity() *fakeIdentity {
	return &fakeIdentity{
		creds: backend.Credentials{
			UID:          "u1",
			Email:        "a@b.test",
			IDToken:      "token-1",
			RefreshToken: "refresh-1",
			ExpiresIn:    time.Hour,
		},
		info: backend.AccountInfo{
			UID:           "u1",
			Email:         "a@b.test",
			DisplayName:   "Ada",
			PhotoURL:      "https://example.test/a.png",
			EmailVerified: true,
		},
	}
}

func testManager(id *fakeIdentity, store *memStore) *Manager {
	m := NewManager(id, store, zerolog.Nop())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	return m
}

// =============================================================================
// TESTS
// =============================================================================

func TestSignInInstallsSession(t *testing.T) {
	id := verifiedIdentity()
	store := &memStore{}
	m := testManager(id, store)

	require.NoError(t, m.SignIn(context.Background(), "a@b.test", "pw"))

	assert.True(t, m.SignedIn())
	assert.Equal(t, "u1", m.UID())
	assert.Equal(t, "Ada", m.Profile().DisplayName)
	assert.Equal(t, "refresh-1", store.token, "refresh token persisted")
}

func TestSignInRejectsUnverifiedEmail(t *testing.T) {
	id := verifiedIdentity()
	id.info.EmailVerified = false
	store := &memStore{}
	m := testManager(id, store)

	err := m.SignIn(context.Background(), "a@b.test", "pw")

	require.ErrorIs(t, err, backend.ErrEmailNotVerified)
	assert.False(t, m.SignedIn())
	assert.Equal(t, 1, id.verificationSent, "verification mail re-sent")
	assert.Empty(t, store.token, "no session persisted")
}

func TestSignUpSetsNameAndSendsVerification(t *testing.T) {
	id := verifiedIdentity()
	m := testManager(id, &memStore{})

	require.NoError(t, m.SignUp(context.Background(), "a@b.test", "pw", "  Ada  "))

	assert.Equal(t, 1, id.signUpCalls)
	assert.Equal(t, 1, id.verificationSent)
	require.NotNil(t, id.lastProfileUpdate.DisplayName)
	assert.Equal(t, "Ada", *id.lastProfileUpdate.DisplayName, "display name normalized")
	assert.False(t, m.SignedIn(), "sign-up does not sign in")
}

func TestSignUpValidatesDisplayName(t *testing.T) {
	id := verifiedIdentity()
	m := testManager(id, &memStore{})

	err := m.SignUp(context.Background(), "a@b.test", "pw", "x")

	require.ErrorIs(t, err, model.ErrDisplayNameTooShort)
	assert.Zero(t, id.signUpCalls, "no account created")
}

func TestIDTokenCachedUntilNearExpiry(t *testing.T) {
	id := verifiedIdentity()
	m := testManager(id, &memStore{})
	require.NoError(t, m.SignIn(context.Background(), "a@b.test", "pw"))

	token, err := m.IDToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Zero(t, id.refreshCalls, "fresh token must not trigger refresh")
}

func TestIDTokenRefreshesNearExpiry(t *testing.T) {
	id := verifiedIdentity()
	store := &memStore{}
	m := testManager(id, store)
	require.NoError(t, m.SignIn(context.Background(), "a@b.test", "pw"))

	// Jump to one minute before expiry, inside the refresh skew.
	base := time.Date(2025, 6, 1, 12, 59, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	token, err := m.IDToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-token", token)
	assert.Equal(t, 1, id.refreshCalls)
	assert.Equal(t, "rotated-refresh", store.token, "rotated token persisted")
}

func TestIDTokenWhileSignedOut(t *testing.T) {
	m := testManager(verifiedIdentity(), &memStore{})

	_, err := m.IDToken(context.Background())

	require.ErrorIs(t, err, ErrNotSignedIn)
}

func TestRestoreResumesSavedSession(t *testing.T) {
	id := verifiedIdentity()
	store := &memStore{email: "a@b.test", token: "refresh-1"}
	m := testManager(id, store)

	require.NoError(t, m.Restore(context.Background()))

	assert.True(t, m.SignedIn())
	assert.Equal(t, 1, id.refreshCalls)
	assert.Equal(t, "u1", m.UID())
}

func TestRestoreWithoutSavedSession(t *testing.T) {
	m := testManager(verifiedIdentity(), &memStore{})

	err := m.Restore(context.Background())

	require.ErrorIs(t, err, ErrNoSession)
}

func TestRestoreClearsDeadSession(t *testing.T) {
	id := verifiedIdentity()
	id.refreshErr = backend.ErrUnauthenticated
	store := &memStore{email: "a@b.test", token: "revoked"}
	m := testManager(id, store)

	err := m.Restore(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, store.cleared, "stale session dropped")
}

func TestSignOutForgetsEverything(t *testing.T) {
	id := verifiedIdentity()
	store := &memStore{}
	m := testManager(id, store)
	require.NoError(t, m.SignIn(context.Background(), "a@b.test", "pw"))

	require.NoError(t, m.SignOut())

	assert.False(t, m.SignedIn())
	assert.Empty(t, m.UID())
	assert.Equal(t, 1, store.cleared)

	_, err := m.IDToken(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestUpdateProfileMirrorsAndNotifies(t *testing.T) {
	id := verifiedIdentity()
	m := testManager(id, &memStore{})
	require.NoError(t, m.SignIn(context.Background(), "a@b.test", "pw"))

	var seen []model.UserProfile
	m.Subscribe(func(p model.UserProfile) { seen = append(seen, p) })

	url := "https://example.test/new.png"
	require.NoError(t, m.UpdateProfile(context.Background(), avatar.ProfilePatch{PhotoURL: &url}))

	assert.Equal(t, url, m.Profile().PhotoURL)
	assert.Equal(t, "Ada", m.Profile().DisplayName, "untouched field survives")
	require.Len(t, seen, 1)
	assert.Equal(t, url, seen[0].PhotoURL)

	require.NotNil(t, id.lastProfileUpdate.PhotoURL)
	assert.Nil(t, id.lastProfileUpdate.DisplayName, "nil fields not patched")
}

func TestUpdateProfileFailureLeavesSnapshot(t *testing.T) {
	id := verifiedIdentity()
	m := testManager(id, &memStore{})
	require.NoError(t, m.SignIn(context.Background(), "a@b.test", "pw"))

	id.updateErr = assert.AnError
	url := "https://example.test/new.png"
	err := m.UpdateProfile(context.Background(), avatar.ProfilePatch{PhotoURL: &url})

	require.Error(t, err)
	assert.Equal(t, "https://example.test/a.png", m.Profile().PhotoURL)
}
