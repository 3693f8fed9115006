// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements the sign-in and sign-up screen.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/driftchat-tui/internal/backend"
	"github.com/morganforge/driftchat-tui/internal/ui/styles"
)

// submitTimeout bounds a single auth round trip.
const submitTimeout = 30 * time.Second

// Mode selects between the two forms.
type Mode int

const (
	ModeSignIn Mode = iota
	ModeSignUp
)

// field indexes into the focus order.
type field int

const (
	fieldEmail field = iota
	fieldPassword
	fieldDisplayName
)

// Session is the slice of the session manager the screen uses.
type Session interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, displayName string) error
}

// SignedInMsg tells the root model to switch to the chat screen.
type SignedInMsg struct{}

// resultMsg carries the outcome of a submit.
type resultMsg struct {
	mode Mode
	err  error
}

// Model is the auth screen state.
type Model struct {
	theme   *styles.Theme
	session Session

	mode       Mode
	inputs     []textinput.Model
	focus      field
	submitting bool
	spinner    spinner.Model

	// status holds the error line or the post-signup hint.
	status   string
	statusOK bool

	width  int
	height int
}

// New creates the auth screen.
func New(theme *styles.Theme, session Session) Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	displayName := textinput.New()
	displayName.Placeholder = "display name"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		theme:   theme,
		session: session,
		mode:    ModeSignIn,
		inputs:  []textinput.Model{email, password, displayName},
		spinner: sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize records the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// fieldCount is how many inputs the current mode shows.
func (m Model) fieldCount() int {
	if m.mode == ModeSignUp {
		return 3
	}
	return 2
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			return m.moveFocus(1), nil
		case "shift+tab", "up":
			return m.moveFocus(-1), nil
		case "ctrl+s":
			return m.toggleMode(), nil
		case "enter":
			return m.submit()
		}

	case resultMsg:
		m.submitting = false
		if msg.err != nil {
			m.status = friendlyError(msg.err)
			m.statusOK = false
			return m, nil
		}
		if msg.mode == ModeSignUp {
			m.status = "Account created. Check your email, then sign in."
			m.statusOK = true
			m = m.switchMode(ModeSignIn)
			return m, nil
		}
		return m, func() tea.Msg { return SignedInMsg{} }

	case spinner.TickMsg:
		if m.submitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) moveFocus(delta int) Model {
	m.inputs[m.focus].Blur()
	n := m.fieldCount()
	m.focus = field((int(m.focus) + delta + n) % n)
	m.inputs[m.focus].Focus()
	return m
}

func (m Model) toggleMode() Model {
	if m.mode == ModeSignIn {
		return m.switchMode(ModeSignUp)
	}
	return m.switchMode(ModeSignIn)
}

func (m Model) switchMode(mode Mode) Model {
	m.mode = mode
	if int(m.focus) >= m.fieldCount() {
		m.inputs[m.focus].Blur()
		m.focus = fieldEmail
		m.inputs[m.focus].Focus()
	}
	return m
}

func (m Model) submit() (Model, tea.Cmd) {
	email := m.inputs[fieldEmail].Value()
	password := m.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		m.status = "Email and password are required."
		m.statusOK = false
		return m, nil
	}

	mode := m.mode
	displayName := m.inputs[fieldDisplayName].Value()
	session := m.session

	m.submitting = true
	m.status = ""

	submit := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		var err error
		if mode == ModeSignUp {
			err = session.SignUp(ctx, email, password, displayName)
		} else {
			err = session.SignIn(ctx, email, password)
		}
		return resultMsg{mode: mode, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, submit)
}

// friendlyError maps backend sentinels to user-facing text.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, backend.ErrEmailExists):
		return "That email is already registered."
	case errors.Is(err, backend.ErrEmailNotVerified):
		return "Email not verified. A new verification mail is on its way."
	default:
		return "Something went wrong. Please try again."
	}
}
