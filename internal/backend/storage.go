// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend talks to the managed platform's public REST surfaces.
package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/morganforge/driftchat-tui/internal/avatar"
)

const defaultStorageURL = "https://firebasestorage.googleapis.com"

// =============================================================================
// STORAGE CLIENT
// =============================================================================

// StorageClient wraps the Cloud Storage for Firebase REST API. It satisfies
// avatar.BlobStore.
type StorageClient struct {
	project Project
	tokens  TokenSource
	run     runner

	// BaseURL override for tests.
	BaseURL string
}

// NewStorageClient creates a blob store client.
func NewStorageClient(project Project, tokens TokenSource, log zerolog.Logger) *StorageClient {
	return &StorageClient{
		project: project,
		tokens:  tokens,
		run:     newRunner(log),
		BaseURL: defaultStorageURL,
	}
}

// Upload writes the object under the given key and returns its reference.
func (c *StorageClient) Upload(ctx context.Context, key string, data []byte, contentType string) (avatar.BlobRef, error) {
	headers, err := c.storageAuth(ctx)
	if err != nil {
		return avatar.BlobRef{}, err
	}

	endpoint := fmt.Sprintf("%s/v0/b/%s/o?name=%s",
		c.BaseURL, c.project.StorageBucket, url.QueryEscape(key))
	var resp struct {
		Name   string `json:"name"`
		Bucket string `json:"bucket"`
	}
	if err := c.run.do(ctx, "POST", endpoint, headers, data, contentType, &resp); err != nil {
		return avatar.BlobRef{}, err
	}
	if resp.Bucket == "" {
		resp.Bucket = c.project.StorageBucket
	}
	if resp.Name == "" {
		resp.Name = key
	}
	return avatar.BlobRef{Bucket: resp.Bucket, Name: resp.Name}, nil
}

// DownloadURL resolves the durable, tokened URL for an uploaded object by
// reading its metadata.
func (c *StorageClient) DownloadURL(ctx context.Context, ref avatar.BlobRef) (string, error) {
	headers, err := c.storageAuth(ctx)
	if err != nil {
		return "", err
	}

	objectURL := fmt.Sprintf("%s/v0/b/%s/o/%s", c.BaseURL, ref.Bucket, url.PathEscape(ref.Name))
	var meta struct {
		DownloadTokens string `json:"downloadTokens"`
	}
	if err := c.run.doJSON(ctx, "GET", objectURL, headers, nil, &meta); err != nil {
		return "", err
	}

	token := meta.DownloadTokens
	if i := strings.IndexByte(token, ','); i >= 0 {
		token = token[:i]
	}
	return fmt.Sprintf("%s?alt=media&token=%s", objectURL, token), nil
}

// DeleteByURL removes the object a download URL points at. The URL must be
// one of ours; callers gate on avatar.ManagedStoragePrefix first.
func (c *StorageClient) DeleteByURL(ctx context.Context, rawURL string) error {
	headers, err := c.storageAuth(ctx)
	if err != nil {
		return err
	}

	objectURL, err := stripQuery(rawURL)
	if err != nil {
		return fmt.Errorf("parse object url: %w", err)
	}
	return c.run.doJSON(ctx, "DELETE", objectURL, headers, nil, nil)
}

// storageAuth builds the Firebase storage authorization header.
func (c *StorageClient) storageAuth(ctx context.Context) (map[string]string, error) {
	token, err := c.tokens.IDToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire id token: %w", err)
	}
	return map[string]string{"Authorization": "Firebase " + token}, nil
}

// stripQuery drops the query string (alt=media&token=...) from a download
// URL, leaving the bare object resource URL.
func stripQuery(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
