// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend talks to the managed platform's public REST surfaces.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// SHARED HTTP CLIENT
// =============================================================================

const (
	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 30 * time.Second

	// defaultMaxRetries is the retry budget for transient failures.
	defaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff delay.
	retryMaxDelay = 8 * time.Second

	// maxResponseSize caps response bodies read into memory.
	maxResponseSize = 10 * 1024 * 1024
)

// sharedHTTPClient is the pooled client used by every sub-client.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// PROJECT CONFIGURATION
// =============================================================================

// Project is the public, non-secret platform bundle that identifies the app.
type Project struct {
	APIKey        string
	ProjectID     string
	StorageBucket string
}

// TokenSource supplies a fresh ID token for authorized requests.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token, used right after
// sign-in and in tests.
type StaticToken string

// IDToken implements TokenSource.
func (s StaticToken) IDToken(context.Context) (string, error) {
	return string(s), nil
}

// =============================================================================
// API ERRORS
// =============================================================================

// ErrUnauthenticated marks requests rejected for a missing or expired token.
var ErrUnauthenticated = errors.New("unauthenticated")

// APIError is a non-2xx platform response.
type APIError struct {
	Status  int
	Code    string // platform error code, e.g. "EMAIL_EXISTS"
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Temporary reports whether the error is worth retrying.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Unwrap folds auth failures into ErrUnauthenticated so callers can trigger
// a token refresh with errors.Is.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthenticated
	}
	return nil
}

// parseAPIError extracts the platform error envelope from a response body.
func parseAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Error.Message
		apiErr.Message = envelope.Error.Status
	}
	return apiErr
}

// =============================================================================
// REQUEST RUNNER
// =============================================================================

// httpDoer is the slice of http.Client the runner needs; tests swap it.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// runner issues JSON requests with bounded retries.
type runner struct {
	client     httpDoer
	maxRetries int
	baseDelay  time.Duration
	log        zerolog.Logger
}

func newRunner(log zerolog.Logger) runner {
	return runner{
		client:     sharedHTTPClient,
		maxRetries: defaultMaxRetries,
		baseDelay:  retryBaseDelay,
		log:        log,
	}
}

// doJSON sends the request and decodes a JSON response into out (if non-nil).
// Transient failures (network errors, 429, 5xx) retry with exponential
// backoff until the budget or the context runs out.
func (r runner) doJSON(ctx context.Context, method, url string, headers map[string]string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	return r.do(ctx, method, url, headers, body, "application/json", out)
}

// do is doJSON with a caller-provided raw body and content type.
func (r runner) do(ctx context.Context, method, url string, headers map[string]string, body []byte, contentType string, out any) error {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(r.baseDelay, attempt)
			r.log.Debug().Int("attempt", attempt).Dur("delay", delay).Str("url", url).
				Msg("retrying request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", contentType)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := parseAPIError(resp.StatusCode, respBody)
			if apiErr.Temporary() {
				lastErr = apiErr
				continue
			}
			return apiErr
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("request failed after %d attempts: %w", r.maxRetries+1, lastErr)
}

// backoffDelay computes the capped exponential backoff for an attempt.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base << (attempt - 1)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}

// authHeader builds the bearer header map for a token source.
func authHeader(ctx context.Context, tokens TokenSource) (map[string]string, error) {
	token, err := tokens.IDToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire id token: %w", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}
