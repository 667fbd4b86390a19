package interaction

import (
	"math"

	"github.com/ayusman/noelvortex/internal/pose"
)

// ModeKind names the single interaction active in a frame.
type ModeKind string

const (
	ModeNone   ModeKind = "none"   // no hand
	ModeZoom2  ModeKind = "zoom2"  // two-hand zoom
	ModeZoom1  ModeKind = "zoom1"  // single-hand span zoom
	ModePan    ModeKind = "pan"    // five-finger pan, CHAOS only
	ModePoint  ModeKind = "point"  // pointer with dwell select
	ModePinch  ModeKind = "pinch"  // pointer with immediate select
	ModeRotate ModeKind = "rotate" // five-finger spin while FORMED, also feeds the debouncer
	ModeIdle   ModeKind = "idle"   // feeds the debouncer
	ModeHold   ModeKind = "hold"   // modal open, nothing to do
)

// Mode is the decision for one frame. Which fields are meaningful depends
// on Kind.
type Mode struct {
	Kind ModeKind
	// Hand is the driving hand; nil for ModeNone.
	Hand *pose.HandPose
	// Delta is the zoom metric change since the previous frame.
	Delta float64
	// Move is the palm displacement since the previous frame, screen space.
	Move pose.Vec
	// Pointer is the mirrored index fingertip for ModePoint and ModePinch.
	Pointer pose.Vec
}

// Context is what Decide needs besides the frame.
type Context struct {
	AppMode   AppMode
	ModalOpen bool
	// PrevHandDistance is last frame's wrist distance, 0 when the previous
	// frame did not have two hands.
	PrevHandDistance float64
	// PrevSpan is last frame's hand span, 0 when the previous frame did not
	// have a single open hand.
	PrevSpan float64
	// PrevPalm is last frame's palm centroid, nil when unknown.
	PrevPalm *pose.Vec
}

// Decide picks exactly one mode by fixed priority:
// two-hand zoom, single-hand zoom, pan, point/pinch, then rotate/idle.
func Decide(f pose.Frame, c Context, t Tuning) Mode {
	switch len(f.Hands) {
	case 0:
		return Mode{Kind: ModeNone}
	case 2:
		m := Mode{Kind: ModeZoom2, Hand: &f.Hands[0]}
		if c.PrevHandDistance > 0 {
			m.Delta = f.HandDistance - c.PrevHandDistance
		}
		return m
	}

	h := &f.Hands[0]
	var move pose.Vec
	if c.PrevPalm != nil {
		move = h.Palm.Sub(*c.PrevPalm)
	}

	if h.FiveFingers && c.PrevSpan > 0 {
		if d := h.Span - c.PrevSpan; math.Abs(d) > t.Zoom.SpanNoise {
			return Mode{Kind: ModeZoom1, Hand: h, Delta: d}
		}
	}

	if h.FiveFingers && c.AppMode == ModeChaos && !c.ModalOpen {
		return Mode{Kind: ModePan, Hand: h, Move: move}
	}

	if (h.Pointing || h.Pinching) && c.AppMode == ModeChaos {
		kind := ModePoint
		if h.Pinching {
			kind = ModePinch
		}
		return Mode{Kind: kind, Hand: h, Pointer: h.IndexTip}
	}

	if c.ModalOpen {
		return Mode{Kind: ModeHold, Hand: h}
	}
	if c.AppMode == ModeFormed && h.FiveFingers {
		return Mode{Kind: ModeRotate, Hand: h, Move: move}
	}
	return Mode{Kind: ModeIdle, Hand: h}
}
