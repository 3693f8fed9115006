// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the room screen: message list, swipe-to-reply,
// composer, and the live stream wiring.
package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/driftchat-tui/internal/backend"
	"github.com/morganforge/driftchat-tui/internal/gesture"
	"github.com/morganforge/driftchat-tui/internal/model"
	"github.com/morganforge/driftchat-tui/internal/ui/components"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg)

	case historyLoadedMsg:
		// The backlog paints only under live messages that arrived first.
		for _, cached := range msg.messages {
			if m.indexByID(cached.ID) < 0 {
				m.messages = insertByTime(m.messages, cached)
			}
		}
		return m, nil

	case StreamEventMsg:
		return m.updateStream(msg.Event)

	case StreamClosedMsg:
		m.toasts.AddError("Disconnected", "The message stream ended. Restart to reconnect.")
		return m, nil

	case sendFailedMsg:
		m.log.Warn().Err(msg.err).Str("id", msg.id).Msg("send failed")
		// Drop the optimistic copy; it never reached the room.
		if i := m.indexByID(msg.id); i >= 0 && m.messages[i].Pending {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
		}
		m.toasts.AddError("Not sent", "Your message could not be delivered.")
		return m, nil

	case deleteFailedMsg:
		m.log.Warn().Err(msg.err).Msg("delete failed")
		m.toasts.AddError("Error", "Could not delete the message.")
		return m, nil

	case profileLoadedMsg:
		m.profiles[msg.profile.UID] = msg.profile
		return m, nil

	case profileMissingMsg:
		m.missing[msg.uid] = true
		return m, nil
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYBOARD
// =============================================================================

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submit()

	case "esc":
		if m.composer.ReplyTo() != "" {
			m.composer.CancelReply()
			return m, nil
		}
		m.selected = -1
		return m, nil

	case "up":
		if m.selected < 0 {
			m.selected = len(m.messages) - 1
		} else if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down":
		if m.selected >= 0 && m.selected < len(m.messages)-1 {
			m.selected++
		} else {
			m.selected = -1
		}
		return m, nil

	case "ctrl+r":
		// Keyboard fallback for swipe-to-reply.
		if m.selected >= 0 && m.selected < len(m.messages) {
			m.armReply(m.messages[m.selected])
			m.selected = -1
		}
		return m, nil

	case "ctrl+d":
		// Only own, delivered messages can be deleted.
		if m.selected >= 0 && m.selected < len(m.messages) {
			target := m.messages[m.selected]
			if target.SenderID == m.session.UID() && !target.Pending {
				m.selected = -1
				return m, m.deleteCmd(target.ID)
			}
		}
		return m, nil

	case "pgup":
		m.scroll += 5
		return m, nil

	case "pgdown":
		m.scroll -= 5
		if m.scroll < 0 {
			m.scroll = 0
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	text := m.composer.Value()
	if text == "" {
		return m, nil
	}

	var out *model.Message
	if snapshot := m.composer.ReplyTo(); snapshot != "" {
		out = model.NewReply(m.session.UID(), text, snapshot)
	} else {
		out = model.NewMessage(m.session.UID(), text)
	}

	// Optimistic echo: show it immediately, marked pending until the stream
	// returns the durable copy.
	echo := *out
	echo.Pending = true
	m.messages = insertByTime(m.messages, echo)
	m.composer.Reset()
	m.scroll = 0

	return m, m.sendCmd(out)
}

// =============================================================================
// MOUSE / SWIPE
// =============================================================================

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.MouseWheelUp:
		m.scroll += 3
		return m, nil

	case tea.MouseWheelDown:
		m.scroll -= 3
		if m.scroll < 0 {
			m.scroll = 0
		}
		return m, nil

	case tea.MouseLeft:
		x := msg.X * swipeUnitsPerColumn
		if m.dragID == "" {
			// Press: find the bubble under the pointer and anchor a drag.
			id := m.hitTest(msg.Y)
			if id == "" {
				return m, nil
			}
			m.dragID = id
			m.controller(id).Start(x)
			return m, nil
		}
		// Drag: same button reported at a new position.
		m.controller(m.dragID).Move(x)
		return m, nil

	case tea.MouseRelease:
		if m.dragID == "" {
			return m, nil
		}
		ctrl := m.controller(m.dragID)
		ctrl.End()
		if ctrl.Phase() == gesture.PhaseCommitted {
			ctrl.Settle()
			if i := m.indexByID(m.dragID); i >= 0 {
				m.armReply(m.messages[i])
			}
		}
		m.dragID = ""
		return m, nil
	}
	return m, nil
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

func (m Model) updateStream(ev backend.StreamEvent) (Model, tea.Cmd) {
	cmds := []tea.Cmd{waitEvent(m.events)}

	switch ev.Kind {
	case backend.EventAdded:
		if ev.Message == nil {
			break
		}
		incoming := *ev.Message

		// The durable copy of an optimistic send replaces the pending echo.
		if i := m.indexByID(incoming.ID); i >= 0 {
			m.messages[i] = incoming
		} else {
			m.messages = insertByTime(m.messages, incoming)
		}
		cmds = append(cmds, m.cacheUpsertCmd(incoming))

		// Fetch the sender profile once.
		uid := incoming.SenderID
		if uid != m.session.UID() && !m.missing[uid] {
			if _, ok := m.profiles[uid]; !ok {
				cmds = append(cmds, m.fetchProfileCmd(uid))
			}
		}

	case backend.EventRemoved:
		if i := m.indexByID(ev.ID); i >= 0 {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			delete(m.controllers, ev.ID)
			if m.selected >= len(m.messages) {
				m.selected = len(m.messages) - 1
			}
		}
		cmds = append(cmds, m.cacheDeleteCmd(ev.ID))
	}

	return m, tea.Batch(cmds...)
}

// insertByTime inserts keeping ascending timestamp order.
func insertByTime(messages []model.Message, msg model.Message) []model.Message {
	i := len(messages)
	for i > 0 && messages[i-1].Timestamp.After(msg.Timestamp) {
		i--
	}
	messages = append(messages, model.Message{})
	copy(messages[i+1:], messages[i:])
	messages[i] = msg
	return messages
}

// Toasts exposes the manager for the root model's overlay rendering.
func (m Model) Toasts() *components.ToastManager {
	return m.toasts
}
