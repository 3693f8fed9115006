// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend talks to the managed platform's public REST surfaces.
package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIdentity(t *testing.T, handler http.HandlerFunc) *IdentityClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewIdentityClient(testProject(), zerolog.Nop())
	c.BaseURL = srv.URL
	c.SecureTokenURL = srv.URL
	return c
}

func TestSignInReturnsCredentials(t *testing.T) {
	var gotBody map[string]any
	c := newTestIdentity(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "accounts:signInWithPassword")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"localId":"u1","email":"a@b.c","idToken":"tok","refreshToken":"ref","expiresIn":"3600"}`))
	})

	creds, err := c.SignIn(context.Background(), "a@b.c", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, "u1", creds.UID)
	assert.Equal(t, "tok", creds.IDToken)
	assert.Equal(t, "ref", creds.RefreshToken)
	assert.Equal(t, time.Hour, creds.ExpiresIn)
	assert.Equal(t, true, gotBody["returnSecureToken"])
}

func TestIdentityErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"email exists", "EMAIL_EXISTS", ErrEmailExists},
		{"email not found", "EMAIL_NOT_FOUND", ErrInvalidCredentials},
		{"invalid password", "INVALID_PASSWORD", ErrInvalidCredentials},
		{"new style credentials code", "INVALID_LOGIN_CREDENTIALS", ErrInvalidCredentials},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestIdentity(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":{"message":"` + tc.code + `"}}`))
			})

			_, err := c.SignIn(context.Background(), "a@b.c", "pw")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateAccountProfilePatchesOnlyGivenFields(t *testing.T) {
	var gotBody map[string]any
	c := newTestIdentity(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "accounts:update")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte("{}"))
	})

	photo := "https://cdn/p.png"
	err := c.UpdateAccountProfile(context.Background(), "tok", ProfileUpdate{PhotoURL: &photo})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn/p.png", gotBody["photoUrl"])
	assert.NotContains(t, gotBody, "displayName")
	assert.Equal(t, "tok", gotBody["idToken"])
}

func TestLookup(t *testing.T) {
	c := newTestIdentity(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[{"localId":"u1","email":"a@b.c","displayName":"Ada","photoUrl":"https://cdn/a.png","emailVerified":true}]}`))
	})

	info, err := c.Lookup(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", info.UID)
	assert.Equal(t, "Ada", info.DisplayName)
	assert.True(t, info.EmailVerified)
}

func TestLookupEmptyIsUnauthenticated(t *testing.T) {
	c := newTestIdentity(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[]}`))
	})

	_, err := c.Lookup(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRefresh(t *testing.T) {
	c := newTestIdentity(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/token")
		w.Write([]byte(`{"user_id":"u1","id_token":"tok2","refresh_token":"ref2","expires_in":"3600"}`))
	})

	creds, err := c.Refresh(context.Background(), "ref")
	require.NoError(t, err)
	assert.Equal(t, "tok2", creds.IDToken)
	assert.Equal(t, "ref2", creds.RefreshToken)
}
