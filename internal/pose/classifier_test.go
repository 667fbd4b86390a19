package pose

import (
	"math"
	"testing"

	"github.com/ayusman/noelvortex/internal/detector"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	t.Run("open palm is five fingers", func(t *testing.T) {
		hp := c.Classify(detector.OpenPalmLandmarks())
		if !hp.Thumb || !hp.Index || !hp.Middle || !hp.Ring || !hp.Pinky {
			t.Errorf("expected all fingers extended, got %+v", hp)
		}
		if !hp.FiveFingers {
			t.Error("expected FiveFingers")
		}
		if hp.Pointing {
			t.Error("open palm must not be pointing")
		}
		if hp.Pinching {
			t.Error("open palm must not be pinching")
		}
	})

	t.Run("fist has no extended fingers", func(t *testing.T) {
		hp := c.Classify(detector.FistLandmarks())
		if hp.Thumb || hp.Index || hp.Middle || hp.Ring || hp.Pinky {
			t.Errorf("expected all fingers curled, got thumb=%v index=%v middle=%v ring=%v pinky=%v",
				hp.Thumb, hp.Index, hp.Middle, hp.Ring, hp.Pinky)
		}
		if hp.FiveFingers || hp.Pointing || hp.Pinching {
			t.Errorf("fist misclassified: %+v", hp)
		}
	})

	t.Run("pointing is index only", func(t *testing.T) {
		hp := c.Classify(detector.PointingLandmarks())
		if !hp.Pointing {
			t.Error("expected Pointing")
		}
		if hp.FiveFingers || hp.Pinching {
			t.Errorf("pointing misclassified: five=%v pinch=%v", hp.FiveFingers, hp.Pinching)
		}
	})

	t.Run("pinch", func(t *testing.T) {
		hp := c.Classify(detector.PinchLandmarks())
		if !hp.Pinching {
			t.Errorf("expected Pinching, distance %f", hp.PinchDistance)
		}
		if hp.PinchDistance >= 0.05 {
			t.Errorf("expected pinch distance below threshold, got %f", hp.PinchDistance)
		}
	})

	t.Run("thumbs up extends thumb only", func(t *testing.T) {
		hp := c.Classify(detector.ThumbsUpLandmarks())
		if !hp.Thumb {
			t.Error("expected thumb extended")
		}
		if hp.Index || hp.Middle || hp.Ring || hp.Pinky {
			t.Error("expected other fingers curled")
		}
	})

	t.Run("pointer is mirrored index tip", func(t *testing.T) {
		lm := detector.PointingLandmarks()
		hp := c.Classify(lm)
		if math.Abs(hp.IndexTip.X-(1-lm.Points[detector.IndexTip].X)) > 1e-9 {
			t.Errorf("expected mirrored X, got %f", hp.IndexTip.X)
		}
		if hp.IndexTip.Y != lm.Points[detector.IndexTip].Y {
			t.Errorf("expected unmirrored Y, got %f", hp.IndexTip.Y)
		}
	})

	t.Run("palm centroid is mean of wrist and two knuckles", func(t *testing.T) {
		lm := detector.OpenPalmLandmarks()
		hp := c.Classify(lm)
		p := lm.Points
		wantX := 1 - (p[detector.Wrist].X+p[detector.IndexMCP].X+p[detector.PinkyMCP].X)/3
		wantY := (p[detector.Wrist].Y + p[detector.IndexMCP].Y + p[detector.PinkyMCP].Y) / 3
		if math.Abs(hp.Palm.X-wantX) > 1e-9 || math.Abs(hp.Palm.Y-wantY) > 1e-9 {
			t.Errorf("palm = %+v, want (%f, %f)", hp.Palm, wantX, wantY)
		}
	})

	t.Run("extension survives translation", func(t *testing.T) {
		hp := c.Classify(detector.Translate(detector.OpenPalmLandmarks(), -0.2, 0.1))
		if !hp.FiveFingers {
			t.Error("expected FiveFingers after translation")
		}
	})
}

func TestClassifier_ClassifyFrame(t *testing.T) {
	c := NewClassifier(Config{})

	t.Run("no hands", func(t *testing.T) {
		f := c.ClassifyFrame(nil)
		if len(f.Hands) != 0 || f.HandDistance != 0 {
			t.Errorf("expected empty frame, got %+v", f)
		}
	})

	t.Run("two hands distance", func(t *testing.T) {
		left := detector.Translate(detector.OpenPalmLandmarks(), -0.2, 0)
		right := detector.Translate(detector.OpenPalmLandmarks(), 0.2, 0)
		f := c.ClassifyFrame([]detector.HandLandmarks{left, right})
		if len(f.Hands) != 2 {
			t.Fatalf("expected 2 hands, got %d", len(f.Hands))
		}
		if math.Abs(f.HandDistance-0.4) > 1e-9 {
			t.Errorf("expected hand distance 0.4, got %f", f.HandDistance)
		}
	})

	t.Run("extra hands ignored", func(t *testing.T) {
		h := detector.FistLandmarks()
		f := c.ClassifyFrame([]detector.HandLandmarks{h, h, h})
		if len(f.Hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(f.Hands))
		}
	})

	t.Run("zero config uses defaults", func(t *testing.T) {
		if c.Config() != DefaultConfig() {
			t.Errorf("expected defaults, got %+v", c.Config())
		}
	})
}

func TestSpanTracksScale(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	near := c.Classify(detector.ScaleAboutWrist(detector.OpenPalmLandmarks(), 1.2))
	far := c.Classify(detector.OpenPalmLandmarks())
	if math.Abs(near.Span-far.Span*1.2) > 1e-9 {
		t.Errorf("expected span to scale with hand, got %f vs %f", near.Span, far.Span)
	}
}
