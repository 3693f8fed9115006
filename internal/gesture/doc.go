// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gesture implements the swipe-to-reply controller for message bubbles.
//
// One Controller is attached to each rendered message. It consumes a stream of
// horizontal pointer events (start, move, end, cancel), exposes the current
// drag offset for the view to translate the bubble, and fires a single
// reply-requested callback when a drag is released past the commit threshold.
//
// # State Machine
//
// The controller is a three-phase state machine:
//
//	idle ──start──> tracking ──end (|offset| > 50)──> committed ──(next event)──> idle
//	                tracking ──end (|offset| <= 50)─> idle
//	                tracking ──cancel──────────────> idle
//
// The committed phase is a one-event latch: a platform that redelivers the
// release event cannot fire the callback twice.
//
// # Usage
//
//	c := gesture.NewController(msg.Text, func(body string) {
//	    // begin composing a reply to body
//	})
//	c.Start(ev.X)
//	c.Move(ev.X)
//	c.End()
//
// The controller performs no I/O and is safe to discard in any phase.
package gesture
