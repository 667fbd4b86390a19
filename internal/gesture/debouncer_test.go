package gesture

import (
	"testing"

	"github.com/ayusman/noelvortex/internal/detector"
)

func fist(score float64) detector.Category {
	return detector.Category{Name: detector.GestureClosedFist, Score: score}
}

func palm(score float64) detector.Category {
	return detector.Category{Name: detector.GestureOpenPalm, Score: score}
}

// feed pushes n identical frames and returns the frame index (1-based) of the
// first transition, or 0 when nothing fired.
func feed(d *Debouncer, c detector.Category, n int, formed bool) (int, Transition) {
	for i := 1; i <= n; i++ {
		if tr := d.Feed(c, true, formed); tr != TransitionNone {
			return i, tr
		}
	}
	return 0, TransitionNone
}

func TestDebouncer_Form(t *testing.T) {
	t.Run("fires on the fifteenth confident fist", func(t *testing.T) {
		d := NewDebouncer(DefaultConfig())
		at, tr := feed(d, fist(0.9), 30, false)
		if tr != TransitionForm {
			t.Fatalf("expected TransitionForm, got %v", tr)
		}
		if at != 15 {
			t.Errorf("expected fire on frame 15, got %d", at)
		}
		if !d.Streak().IsZero() {
			t.Errorf("expected streak reset after fire, got %+v", d.Streak())
		}
		if d.Phase() != PhaseConfirmed {
			t.Errorf("expected PhaseConfirmed, got %v", d.Phase())
		}
	})

	t.Run("fourteen fists then a different gesture never fires", func(t *testing.T) {
		d := NewDebouncer(DefaultConfig())
		if _, tr := feed(d, fist(0.9), 14, false); tr != TransitionNone {
			t.Fatalf("unexpected transition %v", tr)
		}
		if _, tr := feed(d, palm(0.9), 20, false); tr != TransitionNone {
			t.Errorf("unexpected transition %v", tr)
		}
	})

	t.Run("low confidence breaks the streak", func(t *testing.T) {
		d := NewDebouncer(DefaultConfig())
		feed(d, fist(0.9), 10, false)
		d.Feed(fist(0.6), true, false)
		if d.Streak().Count != 0 {
			t.Errorf("expected count reset, got %d", d.Streak().Count)
		}
		if d.Streak().LastStable != detector.GestureClosedFist {
			t.Errorf("expected LastStable kept, got %q", d.Streak().LastStable)
		}
		if at, _ := feed(d, fist(0.9), 14, false); at != 0 {
			t.Errorf("expected no fire within 14 frames of restart, fired at %d", at)
		}
	})

	t.Run("no fire while already formed", func(t *testing.T) {
		d := NewDebouncer(DefaultConfig())
		if _, tr := feed(d, fist(0.9), 40, true); tr != TransitionNone {
			t.Errorf("unexpected transition %v", tr)
		}
	})
}

func TestDebouncer_Chaos(t *testing.T) {
	t.Run("open palm without prior fist never fires", func(t *testing.T) {
		d := NewDebouncer(DefaultConfig())
		if _, tr := feed(d, palm(0.95), 20, true); tr != TransitionNone {
			t.Errorf("unexpected transition %v", tr)
		}
	})

	t.Run("fist then open palm fires", func(t *testing.T) {
		d := NewDebouncer(DefaultConfig())
		feed(d, fist(0.9), 6, true)
		if d.Streak().LastStable != detector.GestureClosedFist {
			t.Fatalf("expected fist to be stable, got %+v", d.Streak())
		}
		at, tr := feed(d, palm(0.9), 10, true)
		if tr != TransitionChaos {
			t.Fatalf("expected TransitionChaos, got %v", tr)
		}
		if at != 5 {
			t.Errorf("expected fire on frame 5, got %d", at)
		}
		if d.Streak().LastStable != "" {
			t.Error("expected LastStable cleared after fire")
		}
		if _, tr := feed(d, palm(0.9), 20, true); tr != TransitionNone {
			t.Error("expected no immediate re-fire")
		}
	})

	t.Run("brief fist is not stable", func(t *testing.T) {
		d := NewDebouncer(DefaultConfig())
		feed(d, fist(0.9), 4, true)
		if _, tr := feed(d, palm(0.9), 20, true); tr != TransitionNone {
			t.Errorf("unexpected transition %v", tr)
		}
	})

	t.Run("interrupt clears last stable", func(t *testing.T) {
		d := NewDebouncer(DefaultConfig())
		feed(d, fist(0.9), 8, true)
		d.Interrupt()
		if !d.Streak().IsZero() {
			t.Fatalf("expected zero streak, got %+v", d.Streak())
		}
		if _, tr := feed(d, palm(0.9), 20, true); tr != TransitionNone {
			t.Errorf("unexpected transition %v", tr)
		}
	})

	t.Run("no chaos fire while in chaos", func(t *testing.T) {
		d := NewDebouncer(DefaultConfig())
		feed(d, fist(0.9), 6, false)
		if _, tr := feed(d, palm(0.9), 20, false); tr != TransitionNone {
			t.Errorf("unexpected transition %v", tr)
		}
	})
}

func TestStep_IgnoresIneligibleLabels(t *testing.T) {
	cfg := DefaultConfig()
	s := Streak{Name: detector.GestureClosedFist, Count: 7, LastStable: detector.GestureClosedFist}

	got, tr := Step(cfg, s, detector.Category{Name: detector.GestureVictory, Score: 0.99}, true, false)
	if tr != TransitionNone {
		t.Errorf("unexpected transition %v", tr)
	}
	want := Streak{LastStable: detector.GestureClosedFist}
	if got != want {
		t.Errorf("Step() = %+v, want %+v", got, want)
	}

	got, _ = Step(cfg, s, detector.Category{}, false, false)
	if got != want {
		t.Errorf("Step() without label = %+v, want %+v", got, want)
	}
}

func TestDebouncer_PhaseAndConfig(t *testing.T) {
	d := NewDebouncer(Config{})
	if d.Phase() != PhaseIdle {
		t.Errorf("expected PhaseIdle, got %v", d.Phase())
	}
	d.Feed(fist(0.9), true, false)
	if d.Phase() != PhaseCounting {
		t.Errorf("expected PhaseCounting, got %v", d.Phase())
	}

	d.SetConfig(Config{FormFrames: 3})
	if d.Streak().Count != 1 {
		t.Errorf("expected streak preserved across SetConfig, got %+v", d.Streak())
	}
	if at, tr := feed(d, fist(0.9), 5, false); tr != TransitionForm || at != 2 {
		t.Errorf("expected form on second frame after reconfig, got %v at %d", tr, at)
	}
}

func TestTransition_String(t *testing.T) {
	tests := map[Transition]string{
		TransitionNone:  "none",
		TransitionForm:  "form",
		TransitionChaos: "chaos",
	}
	for tr, want := range tests {
		if tr.String() != want {
			t.Errorf("%d.String() = %q, want %q", tr, tr.String(), want)
		}
	}
}
