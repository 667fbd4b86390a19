package dwell

import (
	"math/rand"
	"testing"
)

const frame = 0.1

func TestSelector_DwellFires(t *testing.T) {
	t.Run("one fire after 1.3s at threshold 1.2s", func(t *testing.T) {
		s := NewSelector(DefaultConfig())
		fires := 0
		var progressAfterFire float64 = -1
		for i := 0; i < 13; i++ {
			if f, ok := s.Update("photo-1", true, false, frame); ok {
				fires++
				if f.TargetID != "photo-1" || f.Method != MethodDwell {
					t.Errorf("unexpected fire %+v", f)
				}
				progressAfterFire = s.Progress()
			}
		}
		if fires != 1 {
			t.Fatalf("expected exactly 1 fire, got %d", fires)
		}
		if progressAfterFire != 0 {
			t.Errorf("expected progress 0 right after fire, got %f", progressAfterFire)
		}
		if s.Phase() != PhaseCooldown {
			t.Errorf("expected cooldown phase, got %v", s.Phase())
		}
	})

	t.Run("progress is monotonic on a stable target", func(t *testing.T) {
		s := NewSelector(DefaultConfig())
		prev := 0.0
		for i := 0; i < 11; i++ {
			s.Update("photo-1", true, false, frame)
			if p := s.Progress(); p < prev {
				t.Fatalf("progress decreased at frame %d: %f < %f", i, p, prev)
			} else {
				prev = p
			}
		}
		if prev <= 0.5 {
			t.Errorf("expected substantial progress, got %f", prev)
		}
	})

	t.Run("target change resets progress", func(t *testing.T) {
		s := NewSelector(DefaultConfig())
		for i := 0; i < 8; i++ {
			s.Update("photo-1", true, false, frame)
		}
		s.Update("photo-2", true, false, frame)
		if s.Progress() != 0 {
			t.Errorf("expected progress 0 after target change, got %f", s.Progress())
		}
		if s.TargetID() != "photo-2" {
			t.Errorf("expected target photo-2, got %q", s.TargetID())
		}
	})

	t.Run("losing the target resets", func(t *testing.T) {
		s := NewSelector(DefaultConfig())
		for i := 0; i < 8; i++ {
			s.Update("photo-1", true, false, frame)
		}
		s.Update("", false, false, frame)
		if s.Progress() != 0 || s.TargetID() != "" {
			t.Errorf("expected reset, got progress=%f target=%q", s.Progress(), s.TargetID())
		}
		if s.Phase() != PhaseIdle {
			t.Errorf("expected idle, got %v", s.Phase())
		}
	})

	t.Run("no accumulation during cooldown", func(t *testing.T) {
		s := NewSelector(DefaultConfig())
		for i := 0; i < 13; i++ {
			s.Update("photo-1", true, false, frame)
		}
		for i := 0; i < 5; i++ {
			s.Update("photo-1", true, false, frame)
			if s.Progress() != 0 {
				t.Fatalf("expected no progress during cooldown, got %f", s.Progress())
			}
		}
	})
}

func TestSelector_Pinch(t *testing.T) {
	t.Run("fires on rising edge only", func(t *testing.T) {
		s := NewSelector(DefaultConfig())
		s.Update("photo-3", true, false, frame)

		f, ok := s.Update("photo-3", true, true, frame)
		if !ok || f.Method != MethodPinch || f.TargetID != "photo-3" {
			t.Fatalf("expected pinch fire, got %+v ok=%v", f, ok)
		}
		for i := 0; i < 30; i++ {
			if _, ok := s.Update("photo-3", true, true, frame); ok {
				t.Fatalf("sustained pinch re-fired at frame %d", i)
			}
		}
	})

	t.Run("pinch on a fresh target fires", func(t *testing.T) {
		s := NewSelector(DefaultConfig())
		if _, ok := s.Update("photo-4", true, true, frame); !ok {
			t.Error("expected pinch fire on first frame over target")
		}
	})

	t.Run("pinch wins over dwell in the same frame", func(t *testing.T) {
		s := NewSelector(DefaultConfig())
		for i := 0; i < 12; i++ {
			s.Update("photo-1", true, false, frame)
		}
		f, ok := s.Update("photo-1", true, true, frame)
		if !ok || f.Method != MethodPinch {
			t.Errorf("expected pinch fire, got %+v ok=%v", f, ok)
		}
	})

	t.Run("pinch suppressed during cooldown", func(t *testing.T) {
		s := NewSelector(DefaultConfig())
		s.Update("photo-1", true, true, frame)
		s.Update("photo-1", true, false, frame)
		if _, ok := s.Update("photo-1", true, true, frame); ok {
			t.Error("expected pinch suppressed during cooldown")
		}
	})

	t.Run("pinch without target does nothing", func(t *testing.T) {
		s := NewSelector(DefaultConfig())
		if _, ok := s.Update("", false, true, frame); ok {
			t.Error("expected no fire without target")
		}
	})
}

func TestSelector_CooldownNeverDoubleFires(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(7))
	targets := []string{"photo-1", "photo-2", ""}

	for trial := 0; trial < 50; trial++ {
		s := NewSelector(cfg)
		now := 0.0
		lastFire := -100.0
		for i := 0; i < 400; i++ {
			dt := 0.01 + rng.Float64()*0.1
			now += dt
			id := targets[rng.Intn(len(targets))]
			if rng.Intn(4) != 0 {
				id = "photo-1"
			}
			if _, ok := s.Update(id, id != "", rng.Intn(3) == 0, dt); ok {
				if now-lastFire < cfg.Cooldown-epsilon {
					t.Fatalf("trial %d: fire %.3fs after previous, cooldown %.1fs", trial, now-lastFire, cfg.Cooldown)
				}
				lastFire = now
			}
		}
	}
}

func TestSelector_DecayAndReset(t *testing.T) {
	s := NewSelector(DefaultConfig())
	s.Update("photo-1", true, true, frame)
	if !s.CoolingDown() {
		t.Fatal("expected cooldown after fire")
	}

	s.Reset()
	if !s.CoolingDown() {
		t.Error("Reset must not clear the cooldown")
	}
	for i := 0; i < 11; i++ {
		s.Decay(frame)
	}
	if s.CoolingDown() {
		t.Error("expected cooldown expired after 1.1s of decay")
	}
}

func TestNewSelector_Defaults(t *testing.T) {
	s := NewSelector(Config{})
	if s.config.Threshold != 1.2 {
		t.Errorf("expected default threshold, got %f", s.config.Threshold)
	}
	s.SetConfig(Config{Threshold: 0.6, Cooldown: 0.5})
	if s.config.Threshold != 0.6 || s.config.Cooldown != 0.5 {
		t.Errorf("SetConfig not applied: %+v", s.config)
	}
}
