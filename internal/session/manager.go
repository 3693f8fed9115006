// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the signed-in user.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/morganforge/driftchat-tui/internal/avatar"
	"github.com/morganforge/driftchat-tui/internal/backend"
	"github.com/morganforge/driftchat-tui/internal/model"
)

// ErrNotSignedIn is returned by token and profile operations while no user is
// signed in.
var ErrNotSignedIn = errors.New("not signed in")

// refreshSkew is how long before token expiry a refresh is forced. Tokens are
// valid for an hour; refreshing early keeps a request from racing expiry.
const refreshSkew = 2 * time.Minute

// identityAPI is the slice of the identity client the manager needs. Satisfied
// by *backend.IdentityClient.
type identityAPI interface {
	SignUp(ctx context.Context, email, password string) (backend.Credentials, error)
	SignIn(ctx context.Context, email, password string) (backend.Credentials, error)
	SendEmailVerification(ctx context.Context, idToken string) error
	UpdateAccountProfile(ctx context.Context, idToken string, update backend.ProfileUpdate) error
	Lookup(ctx context.Context, idToken string) (backend.AccountInfo, error)
	Refresh(ctx context.Context, refreshToken string) (backend.Credentials, error)
}

// tokenStore persists the refresh token between runs. Satisfied by *Store.
type tokenStore interface {
	Save(email, refreshToken string) error
	Load() (email, refreshToken string, err error)
	Clear() error
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager holds the signed-in user and keeps their ID token fresh.
//
// It implements backend.TokenSource for the Firestore and storage clients and
// avatar.Identity for the profile-picture workflow.
type Manager struct {
	mu sync.Mutex

	identity identityAPI
	store    tokenStore
	log      zerolog.Logger
	now      func() time.Time

	// Current credentials; zero while signed out.
	idToken      string
	refreshToken string
	tokenExpiry  time.Time

	profile   model.UserProfile
	signedIn  bool
	observers []func(model.UserProfile)
}

// NewManager creates a manager backed by the given identity client and store.
func NewManager(identity identityAPI, store tokenStore, log zerolog.Logger) *Manager {
	return &Manager{
		identity: identity,
		store:    store,
		log:      log.With().Str("component", "session").Logger(),
		now:      time.Now,
	}
}

// =============================================================================
// ACCOUNT LIFECYCLE
// =============================================================================

// SignUp creates an account and queues the verification mail. The user is NOT
// signed in afterwards; they must verify their email and sign in.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName string) error {
	name, err := model.ValidateDisplayName(displayName)
	if err != nil {
		return err
	}

	creds, err := m.identity.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	if err := m.identity.UpdateAccountProfile(ctx, creds.IDToken, backend.ProfileUpdate{
		DisplayName: &name,
	}); err != nil {
		return err
	}
	if err := m.identity.SendEmailVerification(ctx, creds.IDToken); err != nil {
		return err
	}

	m.log.Info().Str("email", email).Msg("account created, verification mail sent")
	return nil
}

// SignIn exchanges email/password for a session. Unverified accounts are
// rejected with backend.ErrEmailNotVerified after re-sending the verification
// mail.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	creds, err := m.identity.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	return m.adopt(ctx, creds)
}

// Restore resumes the previous session from the persisted refresh token.
// Returns ErrNoSession when nothing was saved.
func (m *Manager) Restore(ctx context.Context) error {
	_, refreshToken, err := m.store.Load()
	if err != nil {
		return err
	}
	creds, err := m.identity.Refresh(ctx, refreshToken)
	if err != nil {
		// A revoked or expired refresh token means the saved session is
		// dead; drop it so the next start goes straight to the login form.
		if clearErr := m.store.Clear(); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("clear stale session")
		}
		return err
	}
	return m.adopt(ctx, creds)
}

// adopt verifies the account behind creds and installs it as the current
// session.
func (m *Manager) adopt(ctx context.Context, creds backend.Credentials) error {
	info, err := m.identity.Lookup(ctx, creds.IDToken)
	if err != nil {
		return err
	}
	if !info.EmailVerified {
		if err := m.identity.SendEmailVerification(ctx, creds.IDToken); err != nil {
			m.log.Warn().Err(err).Msg("re-send verification mail")
		}
		return backend.ErrEmailNotVerified
	}

	if err := m.store.Save(info.Email, creds.RefreshToken); err != nil {
		// Session still works for this run; it just won't survive a restart.
		m.log.Warn().Err(err).Msg("persist session")
	}

	m.mu.Lock()
	m.idToken = creds.IDToken
	m.refreshToken = creds.RefreshToken
	m.tokenExpiry = m.now().Add(creds.ExpiresIn)
	m.profile = model.UserProfile{
		UID:         info.UID,
		Email:       info.Email,
		DisplayName: info.DisplayName,
		PhotoURL:    info.PhotoURL,
	}
	m.signedIn = true
	m.mu.Unlock()

	m.log.Info().Str("uid", info.UID).Msg("signed in")
	m.notify()
	return nil
}

// SignOut forgets the session in memory and on disk.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	m.idToken = ""
	m.refreshToken = ""
	m.tokenExpiry = time.Time{}
	m.profile = model.UserProfile{}
	m.signedIn = false
	m.mu.Unlock()

	m.log.Info().Msg("signed out")
	return m.store.Clear()
}

// SignedIn reports whether a user is currently signed in.
func (m *Manager) SignedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signedIn
}

// Profile returns a snapshot of the signed-in user's profile.
func (m *Manager) Profile() model.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// UID returns the signed-in user's ID, or "" while signed out.
func (m *Manager) UID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile.UID
}

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// IDToken implements backend.TokenSource. It returns the cached token while
// it has comfortable lifetime left and refreshes it otherwise.
func (m *Manager) IDToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	if !m.signedIn {
		m.mu.Unlock()
		return "", ErrNotSignedIn
	}
	if m.now().Before(m.tokenExpiry.Add(-refreshSkew)) {
		token := m.idToken
		m.mu.Unlock()
		return token, nil
	}
	refreshToken := m.refreshToken
	email := m.profile.Email
	m.mu.Unlock()

	creds, err := m.identity.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.idToken = creds.IDToken
	m.refreshToken = creds.RefreshToken
	m.tokenExpiry = m.now().Add(creds.ExpiresIn)
	m.mu.Unlock()

	// Refresh tokens rotate; persist the new one.
	if err := m.store.Save(email, creds.RefreshToken); err != nil {
		m.log.Warn().Err(err).Msg("persist rotated refresh token")
	}
	return creds.IDToken, nil
}

// =============================================================================
// PROFILE UPDATES
// =============================================================================

// UpdateProfile implements avatar.Identity. It patches the identity-side
// profile, mirrors the change into the cached snapshot, and notifies
// subscribers.
func (m *Manager) UpdateProfile(ctx context.Context, patch avatar.ProfilePatch) error {
	token, err := m.IDToken(ctx)
	if err != nil {
		return err
	}
	err = m.identity.UpdateAccountProfile(ctx, token, backend.ProfileUpdate{
		DisplayName: patch.DisplayName,
		PhotoURL:    patch.PhotoURL,
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	if patch.DisplayName != nil {
		m.profile.DisplayName = *patch.DisplayName
	}
	if patch.PhotoURL != nil {
		m.profile.PhotoURL = *patch.PhotoURL
	}
	m.mu.Unlock()

	m.notify()
	return nil
}

// Subscribe registers fn to be called with the profile snapshot after every
// change. Callbacks run synchronously on the mutating goroutine.
func (m *Manager) Subscribe(fn func(model.UserProfile)) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// notify delivers the current snapshot to every observer, outside the lock.
func (m *Manager) notify() {
	m.mu.Lock()
	snapshot := m.profile
	observers := make([]func(model.UserProfile), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}
