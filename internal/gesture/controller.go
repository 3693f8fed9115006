// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gesture implements the swipe-to-reply controller for message bubbles.
package gesture

// =============================================================================
// PHASES
// =============================================================================

// Phase represents the controller's position in the gesture lifecycle.
type Phase int

const (
	// PhaseIdle means no gesture is in progress. The offset is always zero.
	PhaseIdle Phase = iota
	// PhaseTracking means a drag is in progress and the offset follows the
	// pointer.
	PhaseTracking
	// PhaseCommitted is a one-event latch entered after a release past the
	// commit threshold. It absorbs a redelivered release without firing the
	// callback a second time, and drains to idle on the next event.
	PhaseCommitted
)

// String returns the phase name for logging and tests.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTracking:
		return "tracking"
	case PhaseCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// =============================================================================
// TUNING CONSTANTS
// =============================================================================

const (
	// MaxOffset bounds the visual travel of the bubble. The drag feels
	// elastic: the bubble stops moving once the pointer is 100 points out.
	MaxOffset = 100

	// CommitThreshold is the drag distance past which releasing the pointer
	// requests a reply. Half of MaxOffset, so the user always has clear
	// visual confirmation before the event fires.
	CommitThreshold = 50

	// IndicatorThreshold is the drag distance past which the reply indicator
	// becomes visible.
	IndicatorThreshold = 20
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the transient drag state for a single message bubble.
// It is not safe for concurrent use; drive it from the UI event loop only.
type Controller struct {
	phase   Phase
	anchorX int
	offset  int

	body    string
	onReply func(body string)
}

// NewController creates a controller for a bubble with the given body text.
// onReply may be nil, in which case a committed gesture only resets state.
func NewController(body string, onReply func(body string)) *Controller {
	return &Controller{
		body:    body,
		onReply: onReply,
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Body returns the message text the controller was armed with.
func (c *Controller) Body() string {
	return c.body
}

// Offset returns the current horizontal displacement in points, clamped to
// [-MaxOffset, +MaxOffset]. It is zero whenever no drag is in progress.
func (c *Controller) Offset() int {
	return c.offset
}

// IndicatorVisible reports whether the reply indicator should be shown.
func (c *Controller) IndicatorVisible() bool {
	return c.phase == PhaseTracking && abs(c.offset) > IndicatorThreshold
}

// =============================================================================
// EVENTS
// =============================================================================

// Start begins a drag at horizontal coordinate x.
// A start arriving mid-drag is treated as cancel followed by start, so a
// bubble tracks at most one gesture at a time.
func (c *Controller) Start(x int) {
	c.drainLatch()
	if c.phase == PhaseTracking {
		c.Cancel()
	}
	c.phase = PhaseTracking
	c.anchorX = x
	c.offset = 0
}

// Move updates the drag offset from the pointer's horizontal coordinate.
// Ignored unless a drag is in progress.
func (c *Controller) Move(x int) {
	c.drainLatch()
	if c.phase != PhaseTracking {
		return
	}
	c.offset = clamp(x-c.anchorX, -MaxOffset, MaxOffset)
}

// End releases the drag. If the offset strictly exceeds the commit threshold
// the reply callback fires exactly once and the controller latches into
// PhaseCommitted; otherwise it returns to idle. Either way the offset resets.
func (c *Controller) End() {
	if c.drainLatch() {
		// Redelivered release: the latch already consumed this gesture.
		return
	}
	if c.phase != PhaseTracking {
		return
	}
	committed := abs(c.offset) > CommitThreshold
	c.offset = 0
	if !committed {
		c.phase = PhaseIdle
		return
	}
	c.phase = PhaseCommitted
	if c.onReply != nil {
		c.onReply(c.body)
	}
}

// Cancel aborts the drag and resets the offset without firing the callback.
func (c *Controller) Cancel() {
	c.drainLatch()
	c.phase = PhaseIdle
	c.offset = 0
}

// Settle drains the committed latch outside of pointer delivery. The UI calls
// this from its tick so a bubble does not stay latched when no further pointer
// events arrive.
func (c *Controller) Settle() {
	c.drainLatch()
}

// drainLatch moves committed back to idle and reports whether it did so.
// Every event entry point drains first, which is what makes the latch a
// one-event guard.
func (c *Controller) drainLatch() bool {
	if c.phase == PhaseCommitted {
		c.phase = PhaseIdle
		return true
	}
	return false
}

// =============================================================================
// HELPERS
// =============================================================================

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
