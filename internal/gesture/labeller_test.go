package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/noelvortex/internal/detector"
)

func TestLabeller_Label(t *testing.T) {
	l := DefaultLabeller()

	t.Run("fist", func(t *testing.T) {
		hand := detector.FistLandmarks()
		c, ok := l.Label(&hand)
		if !ok {
			t.Fatal("expected a label")
		}
		if c.Name != detector.GestureClosedFist {
			t.Errorf("expected %s, got %s", detector.GestureClosedFist, c.Name)
		}
		if c.Score < 0.99 {
			t.Errorf("expected near-perfect score, got %f", c.Score)
		}
	})

	t.Run("open palm survives translation and scale", func(t *testing.T) {
		hand := detector.ScaleAboutWrist(detector.Translate(detector.OpenPalmLandmarks(), 0.1, -0.05), 0.8)
		c, ok := l.Label(&hand)
		if !ok || c.Name != detector.GestureOpenPalm {
			t.Errorf("expected open palm, got %+v ok=%v", c, ok)
		}
	})

	t.Run("pointing is not labelled", func(t *testing.T) {
		hand := detector.PointingLandmarks()
		if c, ok := l.Label(&hand); ok {
			t.Errorf("expected no label for pointing, got %+v", c)
		}
	})

	t.Run("nil hand", func(t *testing.T) {
		if _, ok := l.Label(nil); ok {
			t.Error("expected no label for nil hand")
		}
	})
}

func TestLabeller_AddRemoveTemplate(t *testing.T) {
	l := NewLabeller()
	hand := detector.ThumbsUpLandmarks()

	if matches := l.Match(&hand); len(matches) != 0 {
		t.Fatalf("expected no matches on empty labeller, got %d", len(matches))
	}

	l.AddTemplate(nil)
	l.AddTemplate(&Template{
		Name:      detector.GestureThumbUp,
		Landmarks: hand.Normalize().Points[:],
		Tolerance: 0.2,
	})
	matches := l.Match(&hand)
	if len(matches) != 1 || matches[0].Template.Name != detector.GestureThumbUp {
		t.Fatalf("expected thumbs up match, got %+v", matches)
	}

	l.RemoveTemplate(detector.GestureThumbUp)
	if matches := l.Match(&hand); len(matches) != 0 {
		t.Errorf("expected no matches after removal, got %d", len(matches))
	}
}

func TestLabeller_MatchOrder(t *testing.T) {
	l := NewLabeller()
	fist := detector.FistLandmarks()
	thumbs := detector.ThumbsUpLandmarks()
	l.AddTemplate(&Template{Name: "loose", Landmarks: thumbs.Normalize().Points[:], Tolerance: 10})
	l.AddTemplate(&Template{Name: "exact", Landmarks: fist.Normalize().Points[:], Tolerance: 10})

	matches := l.Match(&fist)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Template.Name != "exact" {
		t.Errorf("expected exact template first, got %s", matches[0].Template.Name)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("expected descending scores")
	}
}

func TestMeanDistance(t *testing.T) {
	a := []detector.Point3D{{X: 0, Y: 0}, {X: 1, Y: 1}}
	b := []detector.Point3D{{X: 3, Y: 4}, {X: 1, Y: 1}}
	if d := meanDistance(a, b); math.Abs(d-2.5) > 1e-9 {
		t.Errorf("expected 2.5, got %f", d)
	}
	if d := meanDistance(nil, b); !math.IsInf(d, 1) {
		t.Errorf("expected +Inf for empty input, got %f", d)
	}
}
