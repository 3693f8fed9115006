// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend talks to the managed platform's public REST surfaces.
package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/driftchat-tui/internal/avatar"
)

func newTestStorage(t *testing.T, handler http.HandlerFunc) *StorageClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewStorageClient(testProject(), StaticToken("tok-123"), zerolog.Nop())
	c.BaseURL = srv.URL
	return c
}

func TestUpload(t *testing.T) {
	var gotName, gotAuth, gotContentType string
	var gotBody []byte

	c := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("name")
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"name":"profile-pictures/u1/1.png","bucket":"drift-test.appspot.com"}`))
	})

	ref, err := c.Upload(context.Background(), "profile-pictures/u1/1.png", []byte("png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "profile-pictures/u1/1.png", gotName)
	assert.Equal(t, "Firebase tok-123", gotAuth)
	assert.Equal(t, "image/png", gotContentType)
	assert.Equal(t, []byte("png"), gotBody)
	assert.Equal(t, avatar.BlobRef{Bucket: "drift-test.appspot.com", Name: "profile-pictures/u1/1.png"}, ref)
}

func TestDownloadURLResolvesToken(t *testing.T) {
	c := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"downloadTokens":"tok-a,tok-b"}`))
	})

	url, err := c.DownloadURL(context.Background(), avatar.BlobRef{
		Bucket: "drift-test.appspot.com",
		Name:   "profile-pictures/u1/1.png",
	})
	require.NoError(t, err)

	assert.Contains(t, url, "alt=media")
	assert.Contains(t, url, "token=tok-a")
	assert.NotContains(t, url, "tok-b", "only the first download token is used")
	assert.Contains(t, url, "profile-pictures%2Fu1%2F1.png")
}

func TestDeleteByURLStripsQuery(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	c := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte("{}"))
	})

	url := c.BaseURL + "/v0/b/drift-test.appspot.com/o/profile-pictures%2Fu1%2F1.png?alt=media&token=t"
	require.NoError(t, c.DeleteByURL(context.Background(), url))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Contains(t, gotPath, "profile-pictures")
	assert.Empty(t, gotQuery, "alt/token query must be stripped before delete")
}
