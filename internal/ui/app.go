// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui wires the driftchat screens into one Bubble Tea program.
//
// The App model owns the screen switch (auth -> chat <-> profile), the shared
// toast stack, and the lifecycle of the live message stream.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/morganforge/driftchat-tui/internal/backend"
	"github.com/morganforge/driftchat-tui/internal/config"
	"github.com/morganforge/driftchat-tui/internal/history"
	"github.com/morganforge/driftchat-tui/internal/session"
	"github.com/morganforge/driftchat-tui/internal/ui/auth"
	"github.com/morganforge/driftchat-tui/internal/ui/chat"
	"github.com/morganforge/driftchat-tui/internal/ui/components"
	"github.com/morganforge/driftchat-tui/internal/ui/profile"
	"github.com/morganforge/driftchat-tui/internal/ui/styles"
)

// screen identifies the active view.
type screen int

const (
	screenAuth screen = iota
	screenChat
	screenProfile
)

// App is the root Bubble Tea model.
type App struct {
	cfg       *config.Config
	theme     *styles.Theme
	toasts    *components.ToastManager
	log       zerolog.Logger
	session   *session.Manager
	firestore *backend.FirestoreClient
	storage   *backend.StorageClient
	cache     *history.Cache

	stream       *backend.MessageStream
	streamCancel context.CancelFunc

	active  screen
	auth    auth.Model
	chat    chat.Model
	profile profile.Model

	width  int
	height int
}

// NewApp builds the root model. cache may be nil when the local history
// database could not be opened.
func NewApp(cfg *config.Config, sess *session.Manager, fs *backend.FirestoreClient,
	st *backend.StorageClient, cache *history.Cache, log zerolog.Logger) *App {

	theme := styles.NewTheme(cfg.UI.Theme)
	app := &App{
		cfg:       cfg,
		theme:     theme,
		toasts:    components.NewToastManager(),
		log:       log,
		session:   sess,
		firestore: fs,
		storage:   st,
		cache:     cache,
		active:    screenAuth,
		auth:      auth.New(theme, sess),
	}
	if sess.SignedIn() {
		app.enterChat()
	}
	return app
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{components.ToastTickCmd()}
	switch a.active {
	case screenChat:
		cmds = append(cmds, a.chat.Init(), a.announcePresence(true))
	default:
		cmds = append(cmds, a.auth.Init())
	}
	return tea.Batch(cmds...)
}

// enterChat starts the message stream and builds the chat screen.
func (a *App) enterChat() {
	ctx, cancel := context.WithCancel(context.Background())
	a.streamCancel = cancel
	a.stream = backend.NewMessageStream(a.firestore, a.cfg.Room.ID, a.cfg.PollInterval(), a.log)
	go a.stream.Run(ctx)

	a.chat = chat.New(chat.Config{
		Theme:          a.theme,
		Session:        a.session,
		Store:          a.firestore,
		Cache:          a.cache,
		Events:         a.stream.Events(),
		Toasts:         a.toasts,
		Log:            a.log,
		RoomID:         a.cfg.Room.ID,
		HistoryLimit:   a.cfg.Room.HistoryLimit,
		ShowTimestamps: a.cfg.UI.ShowTimestamps,
	})
	a.chat.SetSize(a.width, a.height)
	a.active = screenChat
}

// shutdown stops the stream and marks the user offline, best effort.
func (a *App) shutdown() {
	if a.streamCancel != nil {
		a.streamCancel()
		a.stream.Close()
	}
	if a.session.SignedIn() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.firestore.UpdateUserDoc(ctx, a.session.UID(), map[string]any{
			"online":   false,
			"lastSeen": time.Now(),
		}); err != nil {
			a.log.Warn().Err(err).Msg("offline presence update failed")
		}
	}
}

// announcePresence mirrors the signed-in profile and online flag into the
// user document so other clients can render it.
func (a *App) announcePresence(online bool) tea.Cmd {
	if !a.session.SignedIn() {
		return nil
	}
	fs, p := a.firestore, a.session.Profile()
	log := a.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := fs.UpdateUserDoc(ctx, p.UID, map[string]any{
			"email":       p.Email,
			"displayName": p.DisplayName,
			"photoURL":    p.PhotoURL,
			"online":      online,
			"lastSeen":    time.Now(),
		})
		if err != nil {
			log.Warn().Err(err).Msg("presence update failed")
		}
		return nil
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.theme.SetSize(msg.Width, msg.Height)
		a.auth.SetSize(msg.Width, msg.Height)
		a.chat.SetSize(msg.Width, msg.Height)
		a.profile.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.shutdown()
			return a, tea.Quit
		case "ctrl+p":
			if a.active == screenChat {
				a.profile = profile.New(profile.Config{
					Theme:   a.theme,
					Session: a.session,
					Docs:    a.firestore,
					Blobs:   a.storage,
					Toasts:  a.toasts,
					Log:     a.log,
				})
				a.profile.SetSize(a.width, a.height)
				a.active = screenProfile
				return a, a.profile.Init()
			}
		}

	case components.ToastTickMsg:
		a.toasts.Tick()
		return a, components.ToastTickCmd()

	case auth.SignedInMsg:
		a.enterChat()
		return a, tea.Batch(a.chat.Init(), a.announcePresence(true))

	case profile.BackMsg:
		a.profile.Unmount()
		a.active = screenChat
		// The chat header may show a new name or photo now.
		return a, a.announcePresence(true)
	}

	var cmd tea.Cmd
	switch a.active {
	case screenAuth:
		a.auth, cmd = a.auth.Update(msg)
	case screenChat:
		a.chat, cmd = a.chat.Update(msg)
	case screenProfile:
		a.profile, cmd = a.profile.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	var frame string
	switch a.active {
	case screenAuth:
		frame = a.auth.View()
	case screenChat:
		frame = a.chat.View()
	case screenProfile:
		frame = a.profile.View()
	}

	if a.toasts.HasToasts() {
		frame += "\n" + components.RenderToastStack(a.theme, a.toasts.Toasts(), a.width, 0)
	}
	return frame
}
