package morph

import (
	"math"
	"testing"

	"github.com/ayusman/noelvortex/internal/interaction"
	"github.com/ayusman/noelvortex/internal/pose"
)

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0}, {0, 0}, {0.5, 0.5}, {1, 1}, {2, 1},
	}
	for _, tt := range tests {
		if got := Smoothstep(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Smoothstep(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDamp(t *testing.T) {
	if got := Damp(0, 1, 2, 0); got != 0 {
		t.Errorf("zero dt should not move, got %f", got)
	}
	// One step of 1s equals two steps of 0.5s.
	one := Damp(0, 1, 2, 1)
	two := Damp(Damp(0, 1, 2, 0.5), 1, 2, 0.5)
	if math.Abs(one-two) > 1e-12 {
		t.Errorf("damp not frame-rate independent: %f vs %f", one, two)
	}
}

func TestAnimator(t *testing.T) {
	t.Run("converges to formed", func(t *testing.T) {
		a := NewAnimator(DefaultConfig())
		s := interaction.NewState()
		s.AppMode = interaction.ModeFormed
		var f Frame
		for i := 0; i < 300; i++ {
			f = a.Step(s, 1.0/30)
		}
		if f.Progress < 0.99 || f.Eased < 0.99 {
			t.Errorf("expected near-full blend, got %+v", f)
		}
	})

	t.Run("rotation speed by mode", func(t *testing.T) {
		a := NewAnimator(DefaultConfig())
		s := interaction.NewState()
		a.Step(s, 1)
		if math.Abs(a.Frame().Rotation-0.05) > 1e-12 {
			t.Errorf("expected chaos spin 0.05, got %f", a.Frame().Rotation)
		}

		s.AppMode = interaction.ModeFormed
		s.RotationBoost = 1.5
		before := a.Frame().Rotation
		a.Step(s, 1)
		if got := a.Frame().Rotation - before; math.Abs(got-1.7) > 1e-12 {
			t.Errorf("expected formed spin 1.7, got %f", got)
		}
	})

	t.Run("pan follows offset and returns home when formed", func(t *testing.T) {
		a := NewAnimator(DefaultConfig())
		s := interaction.NewState()
		s.PanOffset = pose.Vec{X: 2, Y: -1}
		f := a.Step(s, 1.0/30)
		if math.Abs(f.Pan.X-0.2) > 1e-12 || math.Abs(f.Pan.Y+0.1) > 1e-12 {
			t.Errorf("expected first lerp step, got %+v", f.Pan)
		}

		s.AppMode = interaction.ModeFormed
		for i := 0; i < 200; i++ {
			f = a.Step(s, 1.0/30)
		}
		if math.Abs(f.Pan.X) > 1e-6 || math.Abs(f.Pan.Y) > 1e-6 {
			t.Errorf("expected pan back at origin, got %+v", f.Pan)
		}
	})

	t.Run("negative dt ignored", func(t *testing.T) {
		a := NewAnimator(Config{})
		s := interaction.NewState()
		s.AppMode = interaction.ModeFormed
		if f := a.Step(s, -1); f.Progress != 0 || f.Rotation != 0 {
			t.Errorf("expected no change, got %+v", f)
		}
	})
}
