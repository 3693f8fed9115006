// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the driftchat TUI.
package components

import (
	"testing"
	"time"

	"github.com/morganforge/driftchat-tui/internal/avatar"
)

func TestToastManagerNewestFirst(t *testing.T) {
	m := NewToastManager()
	m.AddStatus("first", "")
	m.AddStatus("second", "")

	toasts := m.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("got %d toasts, want 2", len(toasts))
	}
	if toasts[0].Title != "second" {
		t.Errorf("newest toast first, got %q", toasts[0].Title)
	}
}

func TestToastManagerCapsStack(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 10; i++ {
		m.AddStatus("t", "")
	}
	if got := len(m.Toasts()); got != 5 {
		t.Errorf("stack size = %d, want 5", got)
	}
}

func TestToastManagerTickDropsExpired(t *testing.T) {
	m := NewToastManager()
	m.Add(Toast{Title: "old", CreatedAt: time.Now().Add(-time.Minute), Duration: time.Second})
	m.AddStatus("fresh", "")

	remaining := m.Tick()
	if len(remaining) != 1 || remaining[0].Title != "fresh" {
		t.Errorf("Tick() = %v, want only the fresh toast", remaining)
	}
}

func TestToastManagerRemoveAndClear(t *testing.T) {
	m := NewToastManager()
	id := m.AddStatus("a", "")
	m.AddStatus("b", "")

	m.Remove(id)
	if got := len(m.Toasts()); got != 1 {
		t.Fatalf("after Remove: %d toasts, want 1", got)
	}

	m.Clear()
	if m.HasToasts() {
		t.Error("Clear() left toasts behind")
	}
}

func TestFromWorkflowVariantMapping(t *testing.T) {
	tests := []struct {
		name         string
		variant      avatar.ToastVariant
		wantKind     ToastKind
		wantDuration time.Duration
	}{
		{"default is success", avatar.ToastDefault, ToastKindSuccess, DefaultToastDuration},
		{"destructive is error", avatar.ToastDestructive, ToastKindError, ErrorToastDuration},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FromWorkflow(avatar.Toast{Variant: tc.variant, Title: "t", Description: "d"})
			if got.Kind != tc.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tc.wantKind)
			}
			if got.Duration != tc.wantDuration {
				t.Errorf("Duration = %v, want %v", got.Duration, tc.wantDuration)
			}
		})
	}
}
