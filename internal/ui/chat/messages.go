// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the room screen: message list, swipe-to-reply,
// composer, and the live stream wiring.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/driftchat-tui/internal/backend"
	"github.com/morganforge/driftchat-tui/internal/model"
)

// opTimeout bounds a single write against the backend.
const opTimeout = 15 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// StreamEventMsg wraps one live stream event for the update loop.
type StreamEventMsg struct {
	Event backend.StreamEvent
}

// StreamClosedMsg reports that the stream channel was closed.
type StreamClosedMsg struct{}

// historyLoadedMsg delivers the cached backlog on startup.
type historyLoadedMsg struct {
	messages []model.Message
}

// sendFailedMsg reports a failed optimistic send.
type sendFailedMsg struct {
	id  string
	err error
}

// deleteFailedMsg reports a failed message delete.
type deleteFailedMsg struct {
	err error
}

// profileLoadedMsg delivers a sender profile fetched for display.
type profileLoadedMsg struct {
	profile model.UserProfile
}

// profileMissingMsg marks a sender with no user document so the fetch is not
// retried on every render.
type profileMissingMsg struct {
	uid string
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitEvent blocks on the stream channel and forwards the next event.
func waitEvent(events <-chan backend.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return StreamClosedMsg{}
		}
		return StreamEventMsg{Event: ev}
	}
}

func (m Model) loadHistoryCmd() tea.Cmd {
	if m.cache == nil {
		return nil
	}
	cache, roomID, limit := m.cache, m.roomID, m.historyLimit
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		msgs, err := cache.Recent(ctx, roomID, limit)
		if err != nil {
			return historyLoadedMsg{}
		}
		return historyLoadedMsg{messages: msgs}
	}
}

func (m Model) sendCmd(msg *model.Message) tea.Cmd {
	store, roomID := m.store, m.roomID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := store.SendMessage(ctx, roomID, msg); err != nil {
			return sendFailedMsg{id: msg.ID, err: err}
		}
		return nil
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	store, roomID := m.store, m.roomID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := store.DeleteMessage(ctx, roomID, id); err != nil {
			return deleteFailedMsg{err: err}
		}
		return nil
	}
}

func (m Model) fetchProfileCmd(uid string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		p, err := store.GetUserDoc(ctx, uid)
		if err != nil {
			return profileMissingMsg{uid: uid}
		}
		return profileLoadedMsg{profile: p}
	}
}

func (m Model) cacheUpsertCmd(msg model.Message) tea.Cmd {
	if m.cache == nil {
		return nil
	}
	cache, roomID := m.cache, m.roomID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		// Cache writes are best effort; the live view is the source of truth.
		_ = cache.Upsert(ctx, roomID, msg)
		_ = cache.Prune(ctx, roomID)
		return nil
	}
}

func (m Model) cacheDeleteCmd(id string) tea.Cmd {
	if m.cache == nil {
		return nil
	}
	cache, roomID := m.cache, m.roomID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		_ = cache.Delete(ctx, roomID, id)
		return nil
	}
}
