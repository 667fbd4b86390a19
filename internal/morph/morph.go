// Package morph smooths interaction state into what the renderer draws:
// chaos/formed blend progress, tree rotation and pan.
package morph

import (
	"math"

	"github.com/ayusman/noelvortex/internal/interaction"
	"github.com/ayusman/noelvortex/internal/pose"
)

// Config holds smoothing constants.
type Config struct {
	// Lambda is the exponential damping rate of the blend, per second.
	Lambda float64 `toml:"lambda"`
	// ChaosSpin is the idle rotation speed in CHAOS, rad/s.
	ChaosSpin float64 `toml:"chaos_spin"`
	// FormedSpin is the base rotation speed in FORMED, rad/s, before boost.
	FormedSpin float64 `toml:"formed_spin"`
	// PanLerp is the per-frame pan smoothing factor.
	PanLerp float64 `toml:"pan_lerp"`
}

// DefaultConfig returns the shipped constants.
func DefaultConfig() Config {
	return Config{
		Lambda:     2.0,
		ChaosSpin:  0.05,
		FormedSpin: 0.2,
		PanLerp:    0.1,
	}
}

// Frame is the renderer-facing result of one step.
type Frame struct {
	// Progress is the raw blend, 0 = CHAOS, 1 = FORMED.
	Progress float64 `json:"progress"`
	// Eased is Progress after smoothstep.
	Eased    float64  `json:"eased"`
	Rotation float64  `json:"rotation"`
	Pan      pose.Vec `json:"pan"`
}

// Animator accumulates smoothing state between render ticks.
type Animator struct {
	config Config
	frame  Frame
}

// NewAnimator creates an Animator fully in CHAOS.
func NewAnimator(config Config) *Animator {
	def := DefaultConfig()
	if config.Lambda <= 0 {
		config.Lambda = def.Lambda
	}
	if config.PanLerp <= 0 || config.PanLerp > 1 {
		config.PanLerp = def.PanLerp
	}
	return &Animator{config: config}
}

// Step advances by dt seconds toward the state s.
func (a *Animator) Step(s interaction.State, dt float64) Frame {
	if dt < 0 {
		dt = 0
	}
	formed := s.AppMode == interaction.ModeFormed

	target := 0.0
	if formed {
		target = 1.0
	}
	a.frame.Progress = Damp(a.frame.Progress, target, a.config.Lambda, dt)
	a.frame.Eased = Smoothstep(a.frame.Progress)

	speed := a.config.ChaosSpin
	if formed {
		speed = a.config.FormedSpin + s.RotationBoost
	}
	a.frame.Rotation += speed * dt

	panTarget := s.PanOffset
	if formed {
		panTarget = pose.Vec{}
	}
	a.frame.Pan.X = Lerp(a.frame.Pan.X, panTarget.X, a.config.PanLerp)
	a.frame.Pan.Y = Lerp(a.frame.Pan.Y, panTarget.Y, a.config.PanLerp)

	return a.frame
}

// Frame returns the last computed frame.
func (a *Animator) Frame() Frame {
	return a.frame
}

// Damp moves current toward target with frame-rate independent exponential
// smoothing.
func Damp(current, target, lambda, dt float64) float64 {
	return Lerp(current, target, 1-math.Exp(-lambda*dt))
}

// Lerp interpolates linearly.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep eases p in [0,1] with p²(3-2p).
func Smoothstep(p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	return p * p * (3 - 2*p)
}
