// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend talks to the managed platform's public REST surfaces.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Default endpoints; tests point these at local servers.
const (
	defaultIdentityURL    = "https://identitytoolkit.googleapis.com/v1"
	defaultSecureTokenURL = "https://securetoken.googleapis.com/v1"
)

// Well-known identity error codes surfaced to the auth screen.
var (
	ErrEmailExists        = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
)

// =============================================================================
// IDENTITY CLIENT
// =============================================================================

// IdentityClient wraps the Identity Toolkit and securetoken REST APIs.
type IdentityClient struct {
	project Project
	run     runner

	// Endpoint overrides for tests.
	BaseURL        string
	SecureTokenURL string
}

// NewIdentityClient creates an identity client for the project.
func NewIdentityClient(project Project, log zerolog.Logger) *IdentityClient {
	return &IdentityClient{
		project:        project,
		run:            newRunner(log),
		BaseURL:        defaultIdentityURL,
		SecureTokenURL: defaultSecureTokenURL,
	}
}

// Credentials is the token bundle returned by sign-in flows.
type Credentials struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// AccountInfo is the identity-side profile snapshot from accounts:lookup.
type AccountInfo struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	EmailVerified bool
}

// credentialsResponse is the wire shape shared by signUp/signIn.
type credentialsResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (r credentialsResponse) credentials() Credentials {
	secs, _ := strconv.Atoi(r.ExpiresIn)
	return Credentials{
		UID:          r.LocalID,
		Email:        r.Email,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    time.Duration(secs) * time.Second,
	}
}

// =============================================================================
// ACCOUNT FLOWS
// =============================================================================

// SignUp creates an email/password account.
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (Credentials, error) {
	var resp credentialsResponse
	err := c.run.doJSON(ctx, "POST", c.endpoint("accounts:signUp"), nil, map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return Credentials{}, mapIdentityError(err)
	}
	return resp.credentials(), nil
}

// SignIn exchanges email/password for credentials.
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (Credentials, error) {
	var resp credentialsResponse
	err := c.run.doJSON(ctx, "POST", c.endpoint("accounts:signInWithPassword"), nil, map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return Credentials{}, mapIdentityError(err)
	}
	return resp.credentials(), nil
}

// SendEmailVerification queues the verification mail for the signed-in user.
func (c *IdentityClient) SendEmailVerification(ctx context.Context, idToken string) error {
	return c.run.doJSON(ctx, "POST", c.endpoint("accounts:sendOobCode"), nil, map[string]any{
		"requestType": "VERIFY_EMAIL",
		"idToken":     idToken,
	}, nil)
}

// SendPasswordReset queues the reset mail for the given address.
func (c *IdentityClient) SendPasswordReset(ctx context.Context, email string) error {
	return c.run.doJSON(ctx, "POST", c.endpoint("accounts:sendOobCode"), nil, map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// ProfileUpdate is a partial identity-profile write. Nil fields are left
// untouched.
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
}

// UpdateAccountProfile patches displayName and/or photoUrl on the account.
func (c *IdentityClient) UpdateAccountProfile(ctx context.Context, idToken string, update ProfileUpdate) error {
	payload := map[string]any{
		"idToken":           idToken,
		"returnSecureToken": false,
	}
	if update.DisplayName != nil {
		payload["displayName"] = *update.DisplayName
	}
	if update.PhotoURL != nil {
		payload["photoUrl"] = *update.PhotoURL
	}
	return c.run.doJSON(ctx, "POST", c.endpoint("accounts:update"), nil, payload, nil)
}

// Lookup fetches the identity-side profile for a token.
func (c *IdentityClient) Lookup(ctx context.Context, idToken string) (AccountInfo, error) {
	var resp struct {
		Users []struct {
			LocalID       string `json:"localId"`
			Email         string `json:"email"`
			DisplayName   string `json:"displayName"`
			PhotoURL      string `json:"photoUrl"`
			EmailVerified bool   `json:"emailVerified"`
		} `json:"users"`
	}
	err := c.run.doJSON(ctx, "POST", c.endpoint("accounts:lookup"), nil, map[string]any{
		"idToken": idToken,
	}, &resp)
	if err != nil {
		return AccountInfo{}, err
	}
	if len(resp.Users) == 0 {
		return AccountInfo{}, fmt.Errorf("lookup returned no account: %w", ErrUnauthenticated)
	}
	u := resp.Users[0]
	return AccountInfo{
		UID:           u.LocalID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		EmailVerified: u.EmailVerified,
	}, nil
}

// Refresh exchanges a refresh token for a fresh ID token.
func (c *IdentityClient) Refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	var resp struct {
		UserID       string `json:"user_id"`
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	url := fmt.Sprintf("%s/token?key=%s", c.SecureTokenURL, c.project.APIKey)
	err := c.run.doJSON(ctx, "POST", url, nil, map[string]any{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	}, &resp)
	if err != nil {
		return Credentials{}, err
	}
	secs, _ := strconv.Atoi(resp.ExpiresIn)
	return Credentials{
		UID:          resp.UserID,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    time.Duration(secs) * time.Second,
	}, nil
}

// endpoint builds an Identity Toolkit URL with the API key attached.
func (c *IdentityClient) endpoint(method string) string {
	return fmt.Sprintf("%s/%s?key=%s", c.BaseURL, method, c.project.APIKey)
}

// mapIdentityError folds the platform's well-known account codes into
// sentinel errors the auth screen can present.
func mapIdentityError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == "EMAIL_EXISTS":
		return ErrEmailExists
	case apiErr.Code == "EMAIL_NOT_FOUND",
		apiErr.Code == "INVALID_PASSWORD",
		apiErr.Code == "INVALID_LOGIN_CREDENTIALS":
		return ErrInvalidCredentials
	default:
		return err
	}
}
