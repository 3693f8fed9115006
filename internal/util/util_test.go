// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across driftchat.
package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.json")

	if err := AtomicWriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("AtomicWriteFile() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("content = %q, want %q", got, "v1")
	}

	// Overwrite replaces the old content entirely.
	if err := AtomicWriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("AtomicWriteFile() overwrite error = %v", err)
	}
	got, _ = os.ReadFile(path)
	if string(got) != "v2" {
		t.Errorf("content after overwrite = %q, want %q", got, "v2")
	}

	// No temp droppings left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"fits", "hello", 10, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"unicode", "héllo wörld", 8, "héllo..."},
		{"tiny budget", "hello", 2, "he"},
		{"zero budget", "hello", 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateRunes(tc.s, tc.max); got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.s, tc.max, got, tc.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"fits", "hello", 10, "hello"},
		{"ascii truncated", "hello world", 8, "hello..."},
		{"cjk counts double", "世界世界", 5, "世..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateWidth(tc.s, tc.max)
			if got != tc.want {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tc.s, tc.max, got, tc.want)
			}
			if StringWidth(got) > tc.max {
				t.Errorf("TruncateWidth(%q, %d) width = %d, exceeds max", tc.s, tc.max, StringWidth(got))
			}
		})
	}
}
