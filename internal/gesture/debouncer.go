// Package gesture turns noisy per-frame gesture labels into confirmed
// mode transitions.
package gesture

import "github.com/ayusman/noelvortex/internal/detector"

// Transition is a confirmed mode change.
type Transition int

const (
	// TransitionNone means nothing fired this frame.
	TransitionNone Transition = iota
	// TransitionForm assembles the tree (CHAOS to FORMED).
	TransitionForm
	// TransitionChaos disperses the tree (FORMED to CHAOS).
	TransitionChaos
)

func (t Transition) String() string {
	switch t {
	case TransitionForm:
		return "form"
	case TransitionChaos:
		return "chaos"
	default:
		return "none"
	}
}

// Phase is the debouncer's position in Idle -> Counting -> Confirmed.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCounting
	PhaseConfirmed
)

// Config holds streak thresholds, in frames.
type Config struct {
	MinScore float64 `toml:"min_score"`
	// FistStableFrames is the streak after which a fist becomes LastStable.
	FistStableFrames int `toml:"fist_stable_frames"`
	// FormFrames is the fist streak that fires TransitionForm.
	FormFrames int `toml:"form_frames"`
	// ChaosFrames is the open palm streak that fires TransitionChaos.
	ChaosFrames int `toml:"chaos_frames"`
}

// DefaultConfig returns the tuned thresholds. Closing is deliberately slower
// than opening.
func DefaultConfig() Config {
	return Config{
		MinScore:         0.6,
		FistStableFrames: 5,
		FormFrames:       15,
		ChaosFrames:      5,
	}
}

// Streak tracks consecutive confident frames of one label.
type Streak struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	LastStable string `json:"lastStable"`
}

// IsZero reports whether the streak is fully reset.
func (s Streak) IsZero() bool {
	return s == Streak{}
}

// Phase returns Idle when nothing is counting, otherwise Counting.
func (s Streak) Phase() Phase {
	if s.Count == 0 {
		return PhaseIdle
	}
	return PhaseCounting
}

// eligible reports whether a label can drive a transition.
func eligible(name string) bool {
	return name == detector.GestureClosedFist || name == detector.GestureOpenPalm
}

// Step is the pure transition function. ok is false when the frame carried
// no label. formed is the current app mode.
func Step(cfg Config, s Streak, c detector.Category, ok, formed bool) (Streak, Transition) {
	if !ok || c.Score <= cfg.MinScore || !eligible(c.Name) {
		// LastStable survives low-confidence frames.
		return Streak{LastStable: s.LastStable}, TransitionNone
	}

	if c.Name == s.Name {
		s.Count++
	} else {
		s.Name = c.Name
		s.Count = 1
	}

	switch c.Name {
	case detector.GestureClosedFist:
		if s.Count >= cfg.FistStableFrames {
			s.LastStable = detector.GestureClosedFist
		}
		if !formed && s.Count >= cfg.FormFrames {
			return Streak{}, TransitionForm
		}
	case detector.GestureOpenPalm:
		if formed && s.LastStable == detector.GestureClosedFist && s.Count >= cfg.ChaosFrames {
			return Streak{}, TransitionChaos
		}
	}

	return s, TransitionNone
}

// Debouncer holds a Streak across frames.
type Debouncer struct {
	config Config
	streak Streak
	phase  Phase
}

// NewDebouncer creates a Debouncer. Zero fields fall back to defaults.
func NewDebouncer(config Config) *Debouncer {
	def := DefaultConfig()
	if config.MinScore <= 0 {
		config.MinScore = def.MinScore
	}
	if config.FistStableFrames <= 0 {
		config.FistStableFrames = def.FistStableFrames
	}
	if config.FormFrames <= 0 {
		config.FormFrames = def.FormFrames
	}
	if config.ChaosFrames <= 0 {
		config.ChaosFrames = def.ChaosFrames
	}
	return &Debouncer{config: config}
}

// Feed advances the streak by one frame.
func (d *Debouncer) Feed(c detector.Category, ok, formed bool) Transition {
	var tr Transition
	d.streak, tr = Step(d.config, d.streak, c, ok, formed)
	if tr != TransitionNone {
		d.phase = PhaseConfirmed
	} else {
		d.phase = d.streak.Phase()
	}
	return tr
}

// Interrupt clears the streak entirely. Pointing, panning and zooming
// interrupt, as does a frame without hands.
func (d *Debouncer) Interrupt() {
	d.streak = Streak{}
	d.phase = PhaseIdle
}

// Streak returns the current streak.
func (d *Debouncer) Streak() Streak {
	return d.streak
}

// Phase returns the phase after the last Feed.
func (d *Debouncer) Phase() Phase {
	return d.phase
}

// SetConfig swaps thresholds without touching the streak.
func (d *Debouncer) SetConfig(config Config) {
	streak := d.streak
	*d = *NewDebouncer(config)
	d.streak = streak
	d.phase = streak.Phase()
}
