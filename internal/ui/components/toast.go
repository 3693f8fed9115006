// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the driftchat TUI.
//
// This file implements non-blocking toasts in the style of lazygit's popup
// system. Toasts stack in the bottom-right corner and auto-dismiss, so the
// user keeps typing while upload results and errors are displayed.
package components

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/driftchat-tui/internal/avatar"
	"github.com/morganforge/driftchat-tui/internal/ui/styles"
	"github.com/morganforge/driftchat-tui/internal/util"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind selects the toast accent.
type ToastKind int

const (
	// ToastKindStatus is an informational toast.
	ToastKindStatus ToastKind = iota
	// ToastKindSuccess is a success toast.
	ToastKindSuccess
	// ToastKindError is a destructive/error toast, shown longer.
	ToastKindError
)

// Auto-dismiss durations per kind. Errors stay longer to be read.
const (
	DefaultToastDuration = 4 * time.Second
	ErrorToastDuration   = 8 * time.Second
)

// Toast is a single corner notification.
type Toast struct {
	ID          int
	Title       string
	Description string
	Kind        ToastKind
	CreatedAt   time.Time
	Duration    time.Duration
}

// IsExpired reports whether the toast should be dismissed.
func (t *Toast) IsExpired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

// FromWorkflow converts a workflow notification into a toast. Default-variant
// notifications render as success; destructive ones as errors.
func FromWorkflow(n avatar.Toast) Toast {
	kind := ToastKindSuccess
	duration := DefaultToastDuration
	if n.Variant == avatar.ToastDestructive {
		kind = ToastKindError
		duration = ErrorToastDuration
	}
	return Toast{
		Title:       n.Title,
		Description: n.Description,
		Kind:        kind,
		CreatedAt:   time.Now(),
		Duration:    duration,
	}
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the active toast stack. It is safe for concurrent use:
// workflow goroutines push toasts while the UI goroutine ticks and renders.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
}

// NewToastManager creates an empty manager.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, maxToasts: 5}
}

// Add pushes a toast onto the stack, newest first, and returns its ID.
func (m *ToastManager) Add(t Toast) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Duration == 0 {
		t.Duration = DefaultToastDuration
	}
	t.ID = m.nextID
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return t.ID
}

// AddStatus pushes an informational toast.
func (m *ToastManager) AddStatus(title, description string) int {
	return m.Add(Toast{Title: title, Description: description, Kind: ToastKindStatus})
}

// AddError pushes an error toast.
func (m *ToastManager) AddError(title, description string) int {
	return m.Add(Toast{Title: title, Description: description, Kind: ToastKindError, Duration: ErrorToastDuration})
}

// Remove dismisses a toast by ID.
func (m *ToastManager) Remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Tick drops expired toasts and returns the survivors.
func (m *ToastManager) Tick() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.IsExpired() {
			active = append(active, t)
		}
	}
	m.toasts = active
	return append([]Toast(nil), m.toasts...)
}

// Toasts returns a copy of the current stack.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Toast(nil), m.toasts...)
}

// HasToasts reports whether anything is on screen.
func (m *ToastManager) HasToasts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts) > 0
}

// Clear drops every toast, used when a screen unmounts.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg drives toast expiry.
type ToastTickMsg struct{ Time time.Time }

// ToastTickCmd schedules the next expiry check.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders one toast box.
func RenderToast(theme *styles.Theme, t Toast, width int) string {
	maxWidth := 50
	if width > 0 && width-6 < maxWidth {
		maxWidth = width - 6
	}
	if maxWidth < 24 {
		maxWidth = 24
	}

	var accent lipgloss.AdaptiveColor
	var icon string
	switch t.Kind {
	case ToastKindError:
		accent = styles.Rose
		icon = styles.StatusIndicators.Error
	case ToastKindSuccess:
		accent = styles.Emerald
		icon = styles.StatusIndicators.Success
	default:
		accent = styles.Cyan
		icon = styles.StatusIndicators.Info
	}

	title := theme.ToastTitle.Foreground(accent).Render(icon + " " + t.Title)
	body := title
	if t.Description != "" {
		desc := util.TruncateWidth(t.Description, maxWidth-4)
		body += "\n" + theme.ToastDescription.Render(desc)
	}

	return theme.ToastBox.
		BorderForeground(accent).
		MaxWidth(maxWidth).
		Render(body)
}

// RenderToastStack renders the stack into the bottom-right corner.
func RenderToastStack(theme *styles.Theme, toasts []Toast, width, height int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, RenderToast(theme, t, width))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)

	positioned := lipgloss.NewStyle().MarginRight(2).MarginBottom(1).Render(stack)
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom, positioned)
	}
	return positioned
}
