// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend talks to the managed platform's public REST surfaces.
package backend

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/driftchat-tui/internal/model"
)

// scriptedLister serves a fixed sequence of listings, then repeats the last.
type scriptedLister struct {
	mu    sync.Mutex
	pages [][]*model.Message
	calls int
}

func (s *scriptedLister) ListMessages(context.Context, string, int) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.pages) {
		i = len(s.pages) - 1
	}
	s.calls++
	return s.pages[i], nil
}

func msg(id, text string) *model.Message {
	return &model.Message{ID: id, SenderID: "u1", Text: text, Timestamp: time.Now()}
}

func collectEvents(t *testing.T, stream *MessageStream, n int) []StreamEvent {
	t.Helper()
	events := make([]StreamEvent, 0, n)
	timeout := time.After(5 * time.Second)
	for len(events) < n {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				t.Fatalf("stream closed after %d of %d events", len(events), n)
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(events), n)
		}
	}
	return events
}

func TestStreamEmitsAddedOncePerMessage(t *testing.T) {
	lister := &scriptedLister{pages: [][]*model.Message{
		{msg("m1", "one")},
		{msg("m1", "one"), msg("m2", "two")},
	}}
	stream := NewMessageStream(lister, "lobby", time.Millisecond, zerolog.Nop())
	defer stream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stream.Run(ctx)

	events := collectEvents(t, stream, 2)
	assert.Equal(t, EventAdded, events[0].Kind)
	assert.Equal(t, "m1", events[0].ID)
	assert.Equal(t, EventAdded, events[1].Kind)
	assert.Equal(t, "m2", events[1].ID)
}

func TestStreamEmitsRemoved(t *testing.T) {
	lister := &scriptedLister{pages: [][]*model.Message{
		{msg("m1", "one"), msg("m2", "two")},
		{msg("m2", "two")},
	}}
	stream := NewMessageStream(lister, "lobby", time.Millisecond, zerolog.Nop())
	defer stream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stream.Run(ctx)

	events := collectEvents(t, stream, 3)
	require.Equal(t, EventRemoved, events[2].Kind)
	assert.Equal(t, "m1", events[2].ID)
	assert.Nil(t, events[2].Message)
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	lister := &scriptedLister{pages: [][]*model.Message{nil}}
	stream := NewMessageStream(lister, "lobby", time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		stream.Run(ctx)
		close(done)
	}()

	stream.Close()
	stream.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after Close")
	}

	// The events channel drains and closes.
	for range stream.Events() {
	}
}

func TestStreamStopsOnContextCancel(t *testing.T) {
	lister := &scriptedLister{pages: [][]*model.Message{nil}}
	stream := NewMessageStream(lister, "lobby", time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		stream.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop on context cancel")
	}
}
