package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestFreshnessGate_DeviceTimestamps(t *testing.T) {
	g := NewFreshnessGate(0)
	defer g.Close()

	mat := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer mat.Close()

	tests := []struct {
		ts   int64
		want bool
	}{
		{100, true},
		{100, false},
		{90, false},
		{133, true},
	}
	for _, tt := range tests {
		f := &Frame{Mat: mat, TimestampMs: tt.ts, DeviceTimestamp: true}
		if got := g.Fresh(f); got != tt.want {
			t.Errorf("Fresh(ts=%d) = %v, want %v", tt.ts, got, tt.want)
		}
	}

	g.Reset()
	if !g.Fresh(&Frame{Mat: mat, TimestampMs: 10, DeviceTimestamp: true}) {
		t.Error("expected first frame after Reset to be fresh")
	}
}

func TestFreshnessGate_PixelFallback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewFreshnessGate(0)
	defer g.Close()

	black := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer black.Close()
	black2 := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer black2.Close()
	white := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	if !g.Fresh(&Frame{Mat: black}) {
		t.Error("first frame should be fresh")
	}
	if g.Fresh(&Frame{Mat: black2}) {
		t.Error("identical frame should not be fresh")
	}
	if !g.Fresh(&Frame{Mat: white}) {
		t.Error("changed frame should be fresh")
	}
}

func TestFreshnessGate_Empty(t *testing.T) {
	g := NewFreshnessGate(-1)
	defer g.Close()

	if g.Fresh(nil) {
		t.Error("nil frame should not be fresh")
	}
	if g.Fresh(&Frame{Mat: gocv.NewMat(), DeviceTimestamp: true, TimestampMs: 5}) {
		t.Error("empty mat should not be fresh")
	}
	if g.minChange != 0 {
		t.Errorf("negative minChange should clamp to 0, got %f", g.minChange)
	}
}

func TestFreshnessGate_CloseMultiple(t *testing.T) {
	g := NewFreshnessGate(0)
	g.Close()
	g.Close()
}
