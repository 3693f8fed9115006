// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend talks to the managed platform's public REST surfaces.
package backend

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/morganforge/driftchat-tui/internal/model"
)

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventKind distinguishes stream events.
type EventKind int

const (
	// EventAdded delivers a message not seen before.
	EventAdded EventKind = iota
	// EventRemoved reports that a previously seen message is gone.
	EventRemoved
)

// StreamEvent is one observed change to the room's message collection.
type StreamEvent struct {
	Kind    EventKind
	Message *model.Message // set for EventAdded
	ID      string         // always set
}

// messageLister is the slice of FirestoreClient the stream needs.
type messageLister interface {
	ListMessages(ctx context.Context, roomID string, limit int) ([]*model.Message, error)
}

// =============================================================================
// MESSAGE STREAM
// =============================================================================

// defaultStreamLimit bounds how much of the room's tail the stream tracks.
const defaultStreamLimit = 200

// MessageStream observes the room's message collection and emits Added and
// Removed events. The platform's push channel is not reachable over plain
// REST, so the stream polls under a rate limiter and diffs against the set
// of known IDs.
type MessageStream struct {
	lister  messageLister
	roomID  string
	limiter *rate.Limiter
	limit   int
	log     zerolog.Logger

	events chan StreamEvent
	done   chan struct{}
	once   sync.Once

	// known tracks message IDs already delivered.
	known map[string]bool
}

// NewMessageStream creates a stream polling at the given interval.
func NewMessageStream(lister messageLister, roomID string, pollInterval time.Duration, log zerolog.Logger) *MessageStream {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &MessageStream{
		lister:  lister,
		roomID:  roomID,
		limiter: rate.NewLimiter(rate.Every(pollInterval), 1),
		limit:   defaultStreamLimit,
		log:     log,
		events:  make(chan StreamEvent, 64),
		done:    make(chan struct{}),
		known:   make(map[string]bool),
	}
}

// Events is the channel of observed changes. It is closed when the stream
// stops.
func (s *MessageStream) Events() <-chan StreamEvent {
	return s.events
}

// Run polls until the context is cancelled or Close is called. Poll errors
// are logged and retried on the next tick; the stream never dies on a
// transient failure.
func (s *MessageStream) Run(ctx context.Context) {
	defer close(s.events)

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		messages, err := s.lister.ListMessages(ctx, s.roomID, s.limit)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn().Err(err).Msg("message poll failed")
			continue
		}
		s.diff(ctx, messages)
	}
}

// diff reconciles the freshly listed tail against the known set.
func (s *MessageStream) diff(ctx context.Context, messages []*model.Message) {
	current := make(map[string]bool, len(messages))
	for _, msg := range messages {
		current[msg.ID] = true
		if s.known[msg.ID] {
			continue
		}
		s.known[msg.ID] = true
		s.emit(ctx, StreamEvent{Kind: EventAdded, Message: msg, ID: msg.ID})
	}

	// Only report removals while the window is not saturated; once the room
	// outgrows the tracked tail, an absent ID may simply have scrolled out.
	if len(messages) >= s.limit {
		return
	}
	for id := range s.known {
		if !current[id] {
			delete(s.known, id)
			s.emit(ctx, StreamEvent{Kind: EventRemoved, ID: id})
		}
	}
}

// emit delivers an event unless the stream is shutting down.
func (s *MessageStream) emit(ctx context.Context, ev StreamEvent) {
	select {
	case s.events <- ev:
	case <-s.done:
	case <-ctx.Done():
	}
}

// Close stops the stream. Safe to call more than once.
func (s *MessageStream) Close() {
	s.once.Do(func() { close(s.done) })
}
