// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gesture implements the swipe-to-reply controller for message bubbles.
package gesture

import "testing"

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNewController(t *testing.T) {
	c := NewController("hello", nil)

	if c.Phase() != PhaseIdle {
		t.Errorf("NewController() phase = %v, want %v", c.Phase(), PhaseIdle)
	}
	if c.Offset() != 0 {
		t.Errorf("NewController() offset = %d, want 0", c.Offset())
	}
	if c.IndicatorVisible() {
		t.Error("NewController() indicator should not be visible")
	}
}

// =============================================================================
// COMMIT LAW
// =============================================================================

func TestCommitLaw(t *testing.T) {
	tests := []struct {
		name       string
		startX     int
		moves      []int
		wantFires  int
		wantOffset int // offset observed just before End
	}{
		{"past threshold fires once", 100, []int{120, 160}, 1, 60},
		{"below threshold does not fire", 100, []int{140}, 0, 40},
		{"exactly at threshold does not fire", 100, []int{150}, 0, 50},
		{"negative drag past threshold fires", 200, []int{130}, 1, -70},
		{"negative drag below threshold does not fire", 200, []int{160}, 0, -40},
		{"no movement does not fire", 100, nil, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fires := 0
			c := NewController("body", func(body string) {
				fires++
				if body != "body" {
					t.Errorf("onReply body = %q, want %q", body, "body")
				}
			})

			c.Start(tc.startX)
			for _, x := range tc.moves {
				c.Move(x)
			}
			if c.Offset() != tc.wantOffset {
				t.Errorf("offset before end = %d, want %d", c.Offset(), tc.wantOffset)
			}
			c.End()

			if fires != tc.wantFires {
				t.Errorf("onReply fired %d times, want %d", fires, tc.wantFires)
			}
			if c.Offset() != 0 {
				t.Errorf("offset after end = %d, want 0", c.Offset())
			}
		})
	}
}

// =============================================================================
// CLAMP INVARIANT
// =============================================================================

func TestOffsetClamp(t *testing.T) {
	tests := []struct {
		name   string
		startX int
		moves  []int
		want   int
	}{
		{"far right clamps to +100", 0, []int{500}, MaxOffset},
		{"far left clamps to -100", 500, []int{0}, -MaxOffset},
		{"clamp releases when pointer returns", 0, []int{500, 60}, 60},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewController("body", nil)
			c.Start(tc.startX)
			for _, x := range tc.moves {
				c.Move(x)
				if got := c.Offset(); got < -MaxOffset || got > MaxOffset {
					t.Fatalf("offset %d escaped clamp [-%d, +%d]", got, MaxOffset, MaxOffset)
				}
			}
			if c.Offset() != tc.want {
				t.Errorf("final offset = %d, want %d", c.Offset(), tc.want)
			}
		})
	}
}

// =============================================================================
// COMMITTED LATCH
// =============================================================================

func TestDuplicateEndFiresOnce(t *testing.T) {
	fires := 0
	c := NewController("body", func(string) { fires++ })

	c.Start(100)
	c.Move(160)
	c.End()
	if c.Phase() != PhaseCommitted {
		t.Fatalf("phase after committed end = %v, want %v", c.Phase(), PhaseCommitted)
	}

	// Platform redelivers the release.
	c.End()

	if fires != 1 {
		t.Errorf("onReply fired %d times, want 1", fires)
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("phase after duplicate end = %v, want %v", c.Phase(), PhaseIdle)
	}
}

func TestSettleDrainsLatch(t *testing.T) {
	c := NewController("body", func(string) {})

	c.Start(100)
	c.Move(200)
	c.End()
	c.Settle()

	if c.Phase() != PhaseIdle {
		t.Errorf("phase after settle = %v, want %v", c.Phase(), PhaseIdle)
	}
}

func TestStartAfterCommitBeginsFreshGesture(t *testing.T) {
	fires := 0
	c := NewController("body", func(string) { fires++ })

	c.Start(100)
	c.Move(200)
	c.End()

	// New gesture immediately after the latch.
	c.Start(300)
	if c.Phase() != PhaseTracking {
		t.Fatalf("phase = %v, want %v", c.Phase(), PhaseTracking)
	}
	c.Move(310)
	c.End()

	if fires != 1 {
		t.Errorf("onReply fired %d times, want 1", fires)
	}
}

// =============================================================================
// CANCEL AND RESTART
// =============================================================================

func TestCancelResetsWithoutFiring(t *testing.T) {
	fires := 0
	c := NewController("body", func(string) { fires++ })

	c.Start(100)
	c.Move(200)
	c.Cancel()

	if fires != 0 {
		t.Errorf("onReply fired %d times after cancel, want 0", fires)
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("phase after cancel = %v, want %v", c.Phase(), PhaseIdle)
	}
	if c.Offset() != 0 {
		t.Errorf("offset after cancel = %d, want 0", c.Offset())
	}

	// End after cancel is a no-op.
	c.End()
	if fires != 0 {
		t.Errorf("onReply fired %d times after cancelled end, want 0", fires)
	}
}

func TestSecondStartRestartsGesture(t *testing.T) {
	c := NewController("body", nil)

	c.Start(100)
	c.Move(180)
	if c.Offset() != 80 {
		t.Fatalf("offset = %d, want 80", c.Offset())
	}

	// A second start mid-drag re-anchors at the new coordinate.
	c.Start(500)
	if c.Offset() != 0 {
		t.Errorf("offset after restart = %d, want 0", c.Offset())
	}
	c.Move(510)
	if c.Offset() != 10 {
		t.Errorf("offset = %d, want 10", c.Offset())
	}
}

// =============================================================================
// INDICATOR VISIBILITY
// =============================================================================

func TestIndicatorVisibility(t *testing.T) {
	c := NewController("body", nil)

	c.Start(100)
	c.Move(115) // offset 15
	if c.IndicatorVisible() {
		t.Error("indicator visible at offset 15, want hidden")
	}
	c.Move(120) // offset 20, boundary is strict
	if c.IndicatorVisible() {
		t.Error("indicator visible at offset 20, want hidden")
	}
	c.Move(125) // offset 25
	if !c.IndicatorVisible() {
		t.Error("indicator hidden at offset 25, want visible")
	}
	c.Move(60) // offset -40, direction does not matter
	if !c.IndicatorVisible() {
		t.Error("indicator hidden at offset -40, want visible")
	}
	c.End()
	if c.IndicatorVisible() {
		t.Error("indicator visible after end, want hidden")
	}
}

// =============================================================================
// STRAY EVENTS
// =============================================================================

func TestMoveAndEndWhileIdleAreIgnored(t *testing.T) {
	fires := 0
	c := NewController("body", func(string) { fires++ })

	c.Move(400)
	if c.Offset() != 0 {
		t.Errorf("offset after idle move = %d, want 0", c.Offset())
	}
	c.End()
	if fires != 0 {
		t.Errorf("onReply fired %d times from idle end, want 0", fires)
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("phase = %v, want %v", c.Phase(), PhaseIdle)
	}
}
