// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package avatar implements the profile-picture upload workflow.
package avatar

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// =============================================================================
// TEMP-FILE PREVIEWS
// =============================================================================

// TempFilePreviews creates preview handles backed by files in the OS temp
// directory. Each handle owns its file and removes it on Release.
type TempFilePreviews struct {
	log zerolog.Logger
}

// NewTempFilePreviews creates a temp-file backed preview factory.
func NewTempFilePreviews(log zerolog.Logger) *TempFilePreviews {
	return &TempFilePreviews{log: log}
}

// NewPreview writes the file's bytes to a temp file and returns a handle
// locating it with a file:// URL.
func (p *TempFilePreviews) NewPreview(f File) (PreviewHandle, error) {
	tmp, err := os.CreateTemp("", "driftchat-avatar-*."+fileExtension(f.Name))
	if err != nil {
		return nil, fmt.Errorf("create preview file: %w", err)
	}
	if _, err := tmp.Write(f.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write preview file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("close preview file: %w", err)
	}
	return &tempFileHandle{path: tmp.Name(), log: p.log}, nil
}

// tempFileHandle owns one preview file on disk.
type tempFileHandle struct {
	once sync.Once
	path string
	log  zerolog.Logger
}

// URL locates the preview for display.
func (h *tempFileHandle) URL() string {
	return "file://" + h.path
}

// Release removes the backing file. Safe to call more than once.
func (h *tempFileHandle) Release() {
	h.once.Do(func() {
		if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
			h.log.Warn().Err(err).Str("path", h.path).Msg("preview cleanup failed")
		}
	})
}
