// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the room screen: message list, swipe-to-reply,
// composer, and the live stream wiring.
package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/morganforge/driftchat-tui/internal/backend"
	"github.com/morganforge/driftchat-tui/internal/gesture"
	"github.com/morganforge/driftchat-tui/internal/history"
	"github.com/morganforge/driftchat-tui/internal/model"
	"github.com/morganforge/driftchat-tui/internal/ui/components"
	"github.com/morganforge/driftchat-tui/internal/ui/styles"
)

// replySnapshotLen bounds the quoted text captured when arming a reply.
const replySnapshotLen = 80

// swipeUnitsPerColumn maps terminal columns to gesture units: dragging ten
// columns is a full-travel swipe.
const swipeUnitsPerColumn = 10

// Session is the slice of the session manager the chat screen uses.
type Session interface {
	UID() string
	Profile() model.UserProfile
}

// Store is the slice of the document store the chat screen uses.
type Store interface {
	SendMessage(ctx context.Context, roomID string, msg *model.Message) error
	DeleteMessage(ctx context.Context, roomID, messageID string) error
	GetUserDoc(ctx context.Context, uid string) (model.UserProfile, error)
}

// Model is the chat screen state.
type Model struct {
	theme   *styles.Theme
	session Session
	store   Store
	cache   *history.Cache
	events  <-chan backend.StreamEvent
	toasts  *components.ToastManager
	log     zerolog.Logger

	roomID         string
	historyLimit   int
	showTimestamps bool

	composer components.Composer
	messages []model.Message

	// profiles caches sender display data; missing marks UIDs with no user
	// document so they are not refetched every event.
	profiles map[string]model.UserProfile
	missing  map[string]bool

	// Swipe state: one controller per message, created on first touch, plus
	// the ID of the bubble under the active drag.
	controllers map[string]*gesture.Controller
	dragID      string

	// selected is the keyboard cursor into messages; -1 means none.
	selected int
	// scroll is how many messages the view is scrolled up from the bottom.
	scroll int

	width  int
	height int
}

// Config carries the chat screen's collaborators and settings.
type Config struct {
	Theme          *styles.Theme
	Session        Session
	Store          Store
	Cache          *history.Cache
	Events         <-chan backend.StreamEvent
	Toasts         *components.ToastManager
	Log            zerolog.Logger
	RoomID         string
	HistoryLimit   int
	ShowTimestamps bool
}

// New creates the chat screen.
func New(cfg Config) Model {
	return Model{
		theme:          cfg.Theme,
		session:        cfg.Session,
		store:          cfg.Store,
		cache:          cfg.Cache,
		events:         cfg.Events,
		toasts:         cfg.Toasts,
		log:            cfg.Log.With().Str("component", "chat").Logger(),
		roomID:         cfg.RoomID,
		historyLimit:   cfg.HistoryLimit,
		showTimestamps: cfg.ShowTimestamps,
		composer:       components.NewComposer(),
		profiles:       make(map[string]model.UserProfile),
		missing:        make(map[string]bool),
		controllers:    make(map[string]*gesture.Controller),
		selected:       -1,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadHistoryCmd(), waitEvent(m.events))
}

// SetSize records the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.composer.SetWidth(width)
}

// controller returns the gesture controller for a message, creating it on
// first use. The reply callback is left nil; the update loop reads the
// committed phase after delivering the release.
func (m Model) controller(id string) *gesture.Controller {
	if c, ok := m.controllers[id]; ok {
		return c
	}
	body := ""
	if i := m.indexByID(id); i >= 0 {
		body = m.messages[i].Text
	}
	c := gesture.NewController(body, nil)
	m.controllers[id] = c
	return c
}

// indexByID finds a message by ID, -1 when absent.
func (m Model) indexByID(id string) int {
	for i := range m.messages {
		if m.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// senderName resolves a display name for a message author.
func (m Model) senderName(uid string) string {
	if uid == m.session.UID() {
		return m.session.Profile().DisplayName
	}
	if p, ok := m.profiles[uid]; ok && p.DisplayName != "" {
		return p.DisplayName
	}
	return "someone"
}

// armReply puts the quoted snapshot into the composer.
func (m *Model) armReply(msg model.Message) {
	m.composer.SetReplyTo(msg.Preview(replySnapshotLen))
	m.composer.Focus()
}
