// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package avatar implements the profile-picture upload workflow.
package avatar

import (
	"context"
	"time"
)

// ManagedStoragePrefix identifies blobs owned by the managed store. Only URLs
// with this prefix are eligible for old-asset cleanup.
const ManagedStoragePrefix = "https://firebasestorage.googleapis.com"

// =============================================================================
// FILE INPUT
// =============================================================================

// File is the user-selected image handed to SelectFile.
type File struct {
	Name     string
	MIMEType string
	Size     int64
	Data     []byte
}

// =============================================================================
// EXTERNAL COLLABORATORS
// =============================================================================

// ProfilePatch is a partial update to the identity-side profile. Nil fields
// are left untouched.
type ProfilePatch struct {
	DisplayName *string
	PhotoURL    *string
}

// Identity is the slice of the identity provider the uploader needs.
type Identity interface {
	// UpdateProfile applies the patch and returns once it is durable.
	UpdateProfile(ctx context.Context, patch ProfilePatch) error
}

// DocumentStore mirrors profile fields into the user document.
type DocumentStore interface {
	// UpdateUserDoc shallow-merges the patch into the user's document.
	UpdateUserDoc(ctx context.Context, uid string, patch map[string]any) error
}

// BlobRef identifies an uploaded object inside the blob store.
type BlobRef struct {
	Bucket string
	Name   string
}

// BlobStore is the managed object store.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (BlobRef, error)
	DownloadURL(ctx context.Context, ref BlobRef) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// ToastVariant selects the toast styling.
type ToastVariant int

const (
	ToastDefault ToastVariant = iota
	ToastDestructive
)

// Toast is a user-facing notification emitted by the workflow.
type Toast struct {
	Variant     ToastVariant
	Title       string
	Description string
}

// Notifier delivers toasts to the active screen.
type Notifier interface {
	Toast(t Toast)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(t Toast)

// Toast implements Notifier.
func (f NotifierFunc) Toast(t Toast) { f(t) }

// =============================================================================
// PREVIEW HANDLES
// =============================================================================

// PreviewHandle is the locally displayable stand-in for the image while the
// durable URL is not known yet. It owns a scarce resource and must be released
// exactly once on every exit path.
type PreviewHandle interface {
	// URL locates the preview for display.
	URL() string
	// Release frees the underlying resource. Safe to call more than once.
	Release()
}

// PreviewFactory creates preview handles for selected files.
type PreviewFactory interface {
	NewPreview(f File) (PreviewHandle, error)
}

// Clock abstracts wall-clock time so tests control storage key derivation.
type Clock func() time.Time
