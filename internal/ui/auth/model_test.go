// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements the sign-in and sign-up screen.
package auth

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/driftchat-tui/internal/backend"
	"github.com/morganforge/driftchat-tui/internal/ui/styles"
)

type fakeSession struct {
	signIns   int
	signUps   int
	signInErr error
}

func (f *fakeSession) SignIn(ctx context.Context, email, password string) error {
	f.signIns++
	return f.signInErr
}

func (f *fakeSession) SignUp(ctx context.Context, email, password, displayName string) error {
	f.signUps++
	return nil
}

func runBatch(msg tea.Msg) []tea.Msg {
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		if c != nil {
			out = append(out, c())
		}
	}
	return out
}

func TestSubmitRequiresEmailAndPassword(t *testing.T) {
	m := New(styles.NewTheme("mono"), &fakeSession{})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.status)
}

func TestSignInSuccessEmitsSignedIn(t *testing.T) {
	session := &fakeSession{}
	m := New(styles.NewTheme("mono"), session)
	m.inputs[fieldEmail].SetValue("a@b.test")
	m.inputs[fieldPassword].SetValue("pw")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	var result tea.Msg
	for _, msg := range runBatch(cmd()) {
		if r, ok := msg.(resultMsg); ok {
			result = r
		}
	}
	require.NotNil(t, result)
	assert.Equal(t, 1, session.signIns)

	m, cmd = m.Update(result)
	require.NotNil(t, cmd)
	_, ok := cmd().(SignedInMsg)
	assert.True(t, ok, "successful sign-in must emit SignedInMsg")
}

func TestSignInFailureShowsFriendlyError(t *testing.T) {
	session := &fakeSession{signInErr: backend.ErrInvalidCredentials}
	m := New(styles.NewTheme("mono"), session)
	m.inputs[fieldEmail].SetValue("a@b.test")
	m.inputs[fieldPassword].SetValue("wrong")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	for _, msg := range runBatch(cmd()) {
		if r, ok := msg.(resultMsg); ok {
			m, _ = m.Update(r)
		}
	}

	assert.False(t, m.submitting)
	assert.Equal(t, "Invalid email or password.", m.status)
}

func TestSignUpReturnsToSignIn(t *testing.T) {
	session := &fakeSession{}
	m := New(styles.NewTheme("mono"), session)
	m = m.toggleMode()
	require.Equal(t, ModeSignUp, m.mode)

	m.inputs[fieldEmail].SetValue("a@b.test")
	m.inputs[fieldPassword].SetValue("pw")
	m.inputs[fieldDisplayName].SetValue("Ada")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	for _, msg := range runBatch(cmd()) {
		if r, ok := msg.(resultMsg); ok {
			m, _ = m.Update(r)
		}
	}

	assert.Equal(t, 1, session.signUps)
	assert.Equal(t, ModeSignIn, m.mode, "after sign-up the user verifies email and signs in")
	assert.Contains(t, m.status, "Check your email")
}

func TestModeToggleAdjustsFields(t *testing.T) {
	m := New(styles.NewTheme("mono"), &fakeSession{})
	assert.Equal(t, 2, m.fieldCount())
	m = m.toggleMode()
	assert.Equal(t, 3, m.fieldCount())
}
