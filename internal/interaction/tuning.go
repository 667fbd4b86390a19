package interaction

import (
	"github.com/ayusman/noelvortex/internal/dwell"
	"github.com/ayusman/noelvortex/internal/gesture"
	"github.com/ayusman/noelvortex/internal/pose"
)

// ZoomTuning controls both zoom gestures.
type ZoomTuning struct {
	// TwoHandNoise is the wrist-distance delta below which two-hand zoom
	// leaves zoomOffset alone.
	TwoHandNoise float64 `toml:"two_hand_noise"`
	TwoHandGain  float64 `toml:"two_hand_gain"`
	// SpanNoise is the hand-span delta below which a single open hand pans
	// or rotates instead of zooming.
	SpanNoise float64 `toml:"span_noise"`
	SpanGain  float64 `toml:"span_gain"`
	Min       float64 `toml:"min"`
	Max       float64 `toml:"max"`
}

// PanTuning controls five-finger panning.
type PanTuning struct {
	Gain  float64 `toml:"gain"`
	Limit float64 `toml:"limit"`
	// Decay is the per-frame factor applied to panOffset while FORMED.
	Decay float64 `toml:"decay"`
}

// RotationTuning controls the FORMED spin control.
type RotationTuning struct {
	Gain  float64 `toml:"gain"`
	Limit float64 `toml:"limit"`
	Decay float64 `toml:"decay"`
	// Floor snaps tiny boosts to zero.
	Floor float64 `toml:"floor"`
}

// Tuning aggregates every tunable constant of the interaction pipeline.
type Tuning struct {
	Pose     pose.Config    `toml:"pose"`
	Gesture  gesture.Config `toml:"gesture"`
	Dwell    dwell.Config   `toml:"dwell"`
	Zoom     ZoomTuning     `toml:"zoom"`
	Pan      PanTuning      `toml:"pan"`
	Rotation RotationTuning `toml:"rotation"`
	// MaxFrameDelta caps dt, in seconds, so a stalled camera does not
	// complete a dwell in one frame.
	MaxFrameDelta float64 `toml:"max_frame_delta"`
}

// DefaultTuning returns the shipped tuning.
func DefaultTuning() Tuning {
	return Tuning{
		Pose:    pose.DefaultConfig(),
		Gesture: gesture.DefaultConfig(),
		Dwell:   dwell.DefaultConfig(),
		Zoom: ZoomTuning{
			TwoHandNoise: 0.005,
			TwoHandGain:  50,
			SpanNoise:    0.004,
			SpanGain:     100,
			Min:          -20,
			Max:          40,
		},
		Pan: PanTuning{
			Gain:  8,
			Limit: 10,
			Decay: 0.9,
		},
		Rotation: RotationTuning{
			Gain:  6,
			Limit: 3,
			Decay: 0.95,
			Floor: 1e-4,
		},
		MaxFrameDelta: 0.25,
	}
}

// withDefaults fills zero sections from DefaultTuning, so a partial TOML
// file only overrides what it names.
func (t Tuning) withDefaults() Tuning {
	def := DefaultTuning()
	if t.Zoom == (ZoomTuning{}) {
		t.Zoom = def.Zoom
	}
	if t.Zoom.Max <= t.Zoom.Min {
		t.Zoom.Min, t.Zoom.Max = def.Zoom.Min, def.Zoom.Max
	}
	if t.Pan == (PanTuning{}) {
		t.Pan = def.Pan
	}
	if t.Rotation == (RotationTuning{}) {
		t.Rotation = def.Rotation
	}
	if t.Rotation.Decay <= 0 || t.Rotation.Decay >= 1 {
		t.Rotation.Decay = def.Rotation.Decay
	}
	if t.Pan.Decay <= 0 || t.Pan.Decay >= 1 {
		t.Pan.Decay = def.Pan.Decay
	}
	if t.MaxFrameDelta <= 0 {
		t.MaxFrameDelta = def.MaxFrameDelta
	}
	return t
}
