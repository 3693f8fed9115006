// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package avatar implements the profile-picture upload workflow.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// VALIDATION RULES
// =============================================================================

// MaxFileSize caps uploads at 2 MiB.
const MaxFileSize = 2 * 1024 * 1024

// acceptedMIMETypes is the set of image types the blob store may receive.
var acceptedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

var (
	// ErrUploadInFlight rejects re-entry while a workflow is running.
	ErrUploadInFlight = errors.New("an upload is already in progress")
	// ErrInvalidFileType rejects files outside the accepted MIME set.
	ErrInvalidFileType = errors.New("invalid file type")
	// ErrFileTooLarge rejects files over MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")
)

// =============================================================================
// PHASES
// =============================================================================

// Phase tracks the workflow's progress through a single upload.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhasePreviewing
	PhaseUploading
	PhaseCommitting
	PhaseFailed
)

// String returns the phase name for logging and tests.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhasePreviewing:
		return "previewing"
	case PhaseUploading:
		return "uploading"
	case PhaseCommitting:
		return "committing"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// inFlight reports whether a workflow currently owns the session.
func (p Phase) inFlight() bool {
	switch p {
	case PhaseValidating, PhasePreviewing, PhaseUploading, PhaseCommitting:
		return true
	default:
		return false
	}
}

// =============================================================================
// UPLOADER
// =============================================================================

// Config wires the uploader to its collaborators.
type Config struct {
	UID      string
	Identity Identity
	Docs     DocumentStore
	Blobs    BlobStore
	Notify   Notifier
	Previews PreviewFactory

	// Now supplies wall-clock time for storage key derivation. Defaults to
	// time.Now.
	Now Clock

	Logger zerolog.Logger
}

// Uploader orchestrates one profile-picture replacement at a time.
// Methods are safe for concurrent use; the workflow itself runs in whichever
// goroutine calls SelectFile (typically a tea.Cmd).
type Uploader struct {
	mu sync.Mutex

	uid      string
	identity Identity
	docs     DocumentStore
	blobs    BlobStore
	notify   Notifier
	previews PreviewFactory
	now      Clock
	log      zerolog.Logger

	phase Phase

	// previousPhotoURL is the rollback target captured at workflow start.
	previousPhotoURL string

	// pending is the owned local preview resource; non-nil only while a
	// workflow is in flight past validation.
	pending PreviewHandle

	// displayed is what the avatar widget currently shows.
	displayed string

	// discarded is set when the owning screen unmounts. The running workflow
	// finishes its network operations but stops touching the display and
	// drops its notifications.
	discarded bool
}

// NewUploader creates an uploader for one profile session. The displayed
// preview starts as currentPhotoURL.
func NewUploader(cfg Config, currentPhotoURL string) *Uploader {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Uploader{
		uid:       cfg.UID,
		identity:  cfg.Identity,
		docs:      cfg.Docs,
		blobs:     cfg.Blobs,
		notify:    cfg.Notify,
		previews:  cfg.Previews,
		now:       now,
		log:       cfg.Logger,
		displayed: currentPhotoURL,
	}
}

// Phase returns the current workflow phase.
func (u *Uploader) Phase() Phase {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.phase
}

// Busy reports whether a workflow is in flight.
func (u *Uploader) Busy() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.phase.inFlight()
}

// DisplayedURL returns what the avatar widget should currently show.
func (u *Uploader) DisplayedURL() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.displayed
}

// =============================================================================
// WORKFLOW
// =============================================================================

// SelectFile runs the full upload workflow for the chosen file.
// currentPhotoURL is the identity profile's photo URL at the moment of
// selection; it is the rollback target and the old asset to clean up.
//
// The call blocks until the workflow settles, so drive it from a tea.Cmd.
func (u *Uploader) SelectFile(ctx context.Context, f File, currentPhotoURL string) error {
	u.mu.Lock()
	if u.phase.inFlight() {
		u.mu.Unlock()
		return ErrUploadInFlight
	}
	u.phase = PhaseValidating
	u.mu.Unlock()

	// Step 1: validate. Rejection leaves the displayed preview untouched.
	if err := validate(f); err != nil {
		u.settle(PhaseIdle)
		u.toastValidation(err)
		return err
	}

	// Step 2: snapshot the rollback target.
	u.mu.Lock()
	u.previousPhotoURL = currentPhotoURL
	u.mu.Unlock()

	// Step 3: local preview, shown immediately.
	handle, err := u.previews.NewPreview(f)
	if err != nil {
		return u.fail(fmt.Errorf("create preview: %w", err))
	}
	u.mu.Lock()
	u.pending = handle
	if !u.discarded {
		u.displayed = handle.URL()
	}
	u.phase = PhasePreviewing
	u.mu.Unlock()

	// Step 4: best-effort cleanup of the old managed asset. Failure is
	// logged and never aborts; an orphan blob beats a wedged user whose old
	// URL points at an inaccessible object.
	if strings.HasPrefix(currentPhotoURL, ManagedStoragePrefix) {
		if err := u.blobs.DeleteByURL(ctx, currentPhotoURL); err != nil {
			u.log.Warn().Err(err).Str("url", currentPhotoURL).
				Msg("old avatar cleanup failed, continuing")
		}
	}

	// Step 5: derive a unique storage key. The wall-clock component keeps
	// successive uploads distinct even when cleanup failed.
	key := fmt.Sprintf("profile-pictures/%s/%d.%s", u.uid, u.now().UnixMilli(), fileExtension(f.Name))

	// Step 6: upload and resolve the durable URL.
	u.settle(PhaseUploading)
	ref, err := u.blobs.Upload(ctx, key, f.Data, f.MIMEType)
	if err != nil {
		return u.fail(fmt.Errorf("upload %s: %w", key, err))
	}
	downloadURL, err := u.blobs.DownloadURL(ctx, ref)
	if err != nil {
		return u.fail(fmt.Errorf("resolve download url for %s: %w", key, err))
	}

	// Step 7: commit to the identity profile and the user document
	// concurrently. Both must succeed; divergence under partial failure is
	// accepted (an orphan blob at worst) and surfaced as one failure.
	if err := u.commit(ctx, downloadURL); err != nil {
		return u.fail(fmt.Errorf("commit photo url: %w", err))
	}

	// Step 8: the durable URL replaces the local preview.
	u.mu.Lock()
	if !u.discarded {
		u.displayed = downloadURL
	}
	u.releasePendingLocked()
	u.phase = PhaseIdle
	discarded := u.discarded
	u.mu.Unlock()

	if !discarded {
		u.notify.Toast(Toast{
			Title:       "Success",
			Description: "Profile picture updated successfully",
		})
	}
	u.log.Info().Str("key", key).Msg("avatar updated")
	return nil
}

// commit issues the two photo URL writes concurrently and waits for both.
func (u *Uploader) commit(ctx context.Context, downloadURL string) error {
	u.settle(PhaseCommitting)

	var wg sync.WaitGroup
	var profileErr, docErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		profileErr = u.identity.UpdateProfile(ctx, ProfilePatch{PhotoURL: &downloadURL})
	}()
	go func() {
		defer wg.Done()
		docErr = u.docs.UpdateUserDoc(ctx, u.uid, map[string]any{
			"photoURL":  downloadURL,
			"updatedAt": u.now().UTC().Format(time.RFC3339),
		})
	}()
	wg.Wait()

	return errors.Join(profileErr, docErr)
}

// fail is the single rollback path for steps 5-7: restore the displayed
// preview, release the local handle, notify, and settle in PhaseFailed.
// The next SelectFile starts fresh from there.
func (u *Uploader) fail(err error) error {
	u.log.Error().Err(err).Msg("avatar upload failed")

	u.mu.Lock()
	if !u.discarded {
		u.displayed = u.previousPhotoURL
	}
	u.releasePendingLocked()
	u.phase = PhaseFailed
	discarded := u.discarded
	u.mu.Unlock()

	if !discarded {
		u.notify.Toast(Toast{
			Variant:     ToastDestructive,
			Title:       "Error",
			Description: "Failed to update profile picture. Please try again.",
		})
	}
	return err
}

// Discard releases local resources when the owning screen unmounts. Network
// operations already in flight run to completion, but the workflow stops
// updating the display and drops any later notifications.
func (u *Uploader) Discard() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.discarded = true
	u.releasePendingLocked()
}

// =============================================================================
// INTERNALS
// =============================================================================

// settle moves to the given phase under the lock.
func (u *Uploader) settle(p Phase) {
	u.mu.Lock()
	u.phase = p
	u.mu.Unlock()
}

// releasePendingLocked releases the preview handle if one is held.
// Caller must hold u.mu.
func (u *Uploader) releasePendingLocked() {
	if u.pending != nil {
		u.pending.Release()
		u.pending = nil
	}
}

// toastValidation emits the corrective message for a validation failure.
func (u *Uploader) toastValidation(err error) {
	u.mu.Lock()
	discarded := u.discarded
	u.mu.Unlock()
	if discarded {
		return
	}

	switch {
	case errors.Is(err, ErrInvalidFileType):
		u.notify.Toast(Toast{
			Variant:     ToastDestructive,
			Title:       "Invalid file type",
			Description: "Please upload a valid image file (JPEG, PNG, or WebP)",
		})
	case errors.Is(err, ErrFileTooLarge):
		u.notify.Toast(Toast{
			Variant:     ToastDestructive,
			Title:       "File too large",
			Description: "Please upload an image smaller than 2MB",
		})
	}
}

// validate applies the MIME and size rules.
func validate(f File) error {
	if !acceptedMIMETypes[f.MIMEType] {
		return ErrInvalidFileType
	}
	if f.Size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// fileExtension returns the trailing extension of a filename, or "jpg" when
// there is none to be had.
func fileExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return "jpg"
	}
	return name[i+1:]
}
