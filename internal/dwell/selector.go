// Package dwell implements hover-to-click selection: holding the pointer on
// the same target for a threshold fires a click, as does a pinch.
package dwell

import "math"

// epsilon absorbs float drift when summing frame durations.
const epsilon = 1e-9

// Method is how a selection fired.
type Method string

const (
	MethodDwell Method = "dwell"
	MethodPinch Method = "pinch"
)

// Phase is the selector state: IDLE -> DWELLING -> COOLDOWN -> IDLE.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDwelling
	PhaseCooldown
)

func (p Phase) String() string {
	switch p {
	case PhaseDwelling:
		return "dwelling"
	case PhaseCooldown:
		return "cooldown"
	default:
		return "idle"
	}
}

// Config holds dwell timings in seconds.
type Config struct {
	Threshold float64 `toml:"threshold"`
	Cooldown  float64 `toml:"cooldown"`
}

// DefaultConfig returns the tuned timings.
func DefaultConfig() Config {
	return Config{
		Threshold: 1.2,
		Cooldown:  1.0,
	}
}

// Fire is a click produced by the selector.
type Fire struct {
	TargetID string
	Method   Method
}

// Selector tracks the dwell target across frames. One cooldown covers both
// dwell and pinch fires.
type Selector struct {
	config      Config
	targetID    string
	elapsed     float64
	cooldown    float64
	wasPinching bool
}

// NewSelector creates a Selector. Zero fields fall back to defaults.
func NewSelector(config Config) *Selector {
	def := DefaultConfig()
	if config.Threshold <= 0 {
		config.Threshold = def.Threshold
	}
	if config.Cooldown <= 0 {
		config.Cooldown = def.Cooldown
	}
	return &Selector{config: config}
}

// Update advances one frame. ok is false when the pointer is over no target.
// Pinch fires on its rising edge and wins over a dwell completing in the
// same frame.
func (s *Selector) Update(targetID string, ok, pinching bool, dt float64) (Fire, bool) {
	s.Decay(dt)

	rising := pinching && !s.wasPinching
	s.wasPinching = pinching

	if !ok {
		s.targetID = ""
		s.elapsed = 0
		return Fire{}, false
	}

	if targetID != s.targetID {
		s.targetID = targetID
		s.elapsed = 0
		if !rising {
			return Fire{}, false
		}
	}

	if rising && s.cooldown <= 0 {
		return s.fire(MethodPinch), true
	}

	if pinching {
		return Fire{}, false
	}

	if s.cooldown > 0 {
		s.elapsed = 0
		return Fire{}, false
	}

	s.elapsed += dt
	if s.elapsed >= s.config.Threshold-epsilon {
		return s.fire(MethodDwell), true
	}
	return Fire{}, false
}

func (s *Selector) fire(m Method) Fire {
	s.elapsed = 0
	s.cooldown = s.config.Cooldown
	return Fire{TargetID: s.targetID, Method: m}
}

// Decay runs the cooldown clock without touching the target.
func (s *Selector) Decay(dt float64) {
	if dt <= 0 || s.cooldown <= 0 {
		return
	}
	s.cooldown = math.Max(0, s.cooldown-dt)
}

// Reset drops the target and accumulated time. The cooldown keeps running
// and the pinch edge is rearmed.
func (s *Selector) Reset() {
	s.targetID = ""
	s.elapsed = 0
	s.wasPinching = false
}

// Progress returns hover progress in [0,1].
func (s *Selector) Progress() float64 {
	return math.Min(s.elapsed/s.config.Threshold, 1.0)
}

// TargetID returns the current dwell target, or "".
func (s *Selector) TargetID() string {
	return s.targetID
}

// CoolingDown reports whether fires are suppressed.
func (s *Selector) CoolingDown() bool {
	return s.cooldown > 0
}

// Phase returns the current state.
func (s *Selector) Phase() Phase {
	switch {
	case s.cooldown > 0:
		return PhaseCooldown
	case s.targetID != "":
		return PhaseDwelling
	default:
		return PhaseIdle
	}
}

// SetConfig swaps timings, keeping accumulated state.
func (s *Selector) SetConfig(config Config) {
	n := NewSelector(config)
	s.config = n.config
}
