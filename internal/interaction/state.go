// Package interaction is the gesture-driven state machine. A Session owns
// the shared interaction state and mutates it once per video frame.
package interaction

import (
	"fmt"
	"strings"

	"github.com/ayusman/noelvortex/internal/gesture"
	"github.com/ayusman/noelvortex/internal/pose"
)

// AppMode is the display mode of the tree.
type AppMode string

const (
	ModeChaos  AppMode = "CHAOS"
	ModeFormed AppMode = "FORMED"
)

// ParseAppMode parses a mode name, case-insensitively.
func ParseAppMode(s string) (AppMode, error) {
	switch AppMode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeChaos:
		return ModeChaos, nil
	case ModeFormed:
		return ModeFormed, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Feedback drives the skeleton colour in the preview.
type Feedback string

const (
	FeedbackIdle     Feedback = "idle"
	FeedbackTracking Feedback = "tracking"
	FeedbackCounting Feedback = "counting"
	FeedbackPinch    Feedback = "pinch"
	FeedbackChaos    Feedback = "chaos"
	FeedbackFormed   Feedback = "formed"
)

// State is the shared interaction state. Only the frame goroutine writes it.
type State struct {
	AppMode       AppMode   `json:"appMode"`
	Pointer       *pose.Vec `json:"pointer"`
	HoverProgress float64   `json:"hoverProgress"`
	// ClickTrigger changes on every fire and never decreases.
	ClickTrigger     int64    `json:"clickTrigger"`
	PanOffset        pose.Vec `json:"panOffset"`
	RotationBoost    float64  `json:"rotationBoost"`
	ZoomOffset       float64  `json:"zoomOffset"`
	SelectedPhotoURL string   `json:"selectedPhotoUrl"`
	Pinching         bool     `json:"pinching"`
	Feedback         Feedback `json:"feedback"`
	Hands            int      `json:"hands"`
	Active           ModeKind `json:"active"`
}

// NewState returns the session-start state.
func NewState() State {
	return State{
		AppMode:  ModeChaos,
		Feedback: FeedbackIdle,
		Active:   ModeNone,
	}
}

// ModalOpen reports whether a photo is displayed.
func (s *State) ModalOpen() bool {
	return s.SelectedPhotoURL != ""
}

// Snapshot is an immutable copy of State published after every update.
type Snapshot struct {
	State
	SessionID   string         `json:"sessionId"`
	Seq         uint64         `json:"seq"`
	TimestampMs int64          `json:"timestampMs"`
	Streak      gesture.Streak `json:"streak"`
	DwellTarget string         `json:"dwellTarget"`
}

// clone copies s so the snapshot shares no pointers with the live state.
func (s State) clone() State {
	if s.Pointer != nil {
		p := *s.Pointer
		s.Pointer = &p
	}
	return s
}
