package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// PixelDiffThreshold is the per-pixel grey-level change that counts as a
// changed pixel in the fallback comparison.
const PixelDiffThreshold = 2

// FreshnessGate rejects frames that repeat the previous one, so the
// detector is not run twice on the same image when the loop outpaces the
// camera. Device timestamps are compared when present; otherwise the gate
// falls back to frame differencing.
type FreshnessGate struct {
	mu          sync.Mutex
	lastTs      int64
	hasTs       bool
	minChange   float64
	prevGray    gocv.Mat
	initialized bool
}

// NewFreshnessGate creates a gate. minChange is the percentage of changed
// pixels a frame without a device timestamp must exceed; 0 accepts any change.
func NewFreshnessGate(minChange float64) *FreshnessGate {
	if minChange < 0 {
		minChange = 0
	}
	return &FreshnessGate{
		minChange: minChange,
		prevGray:  gocv.NewMat(),
	}
}

// Fresh reports whether f is a new frame.
func (g *FreshnessGate) Fresh(f *Frame) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if f == nil || f.Mat.Empty() {
		return false
	}

	if f.DeviceTimestamp {
		if g.hasTs && f.TimestampMs <= g.lastTs {
			return false
		}
		g.lastTs = f.TimestampMs
		g.hasTs = true
		return true
	}

	changed := g.diff(f.Mat)
	return changed > g.minChange
}

// diff returns the percentage of pixels that changed since the previous
// frame and stores the new frame. The first frame counts as fully changed.
func (g *FreshnessGate) diff(frame gocv.Mat) float64 {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	if !g.initialized || g.prevGray.Rows() != gray.Rows() || g.prevGray.Cols() != gray.Cols() {
		gray.CopyTo(&g.prevGray)
		g.initialized = true
		return 100
	}

	delta := gocv.NewMat()
	defer delta.Close()
	gocv.AbsDiff(gray, g.prevGray, &delta)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(delta, &thresh, PixelDiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	total := thresh.Rows() * thresh.Cols()

	gray.CopyTo(&g.prevGray)

	if total == 0 {
		return 0
	}
	return float64(nonZero) / float64(total) * 100.0
}

// Reset forgets the previous frame and timestamp, for example after the
// camera is reopened.
func (g *FreshnessGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastTs = 0
	g.hasTs = false
	if !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.initialized = false
}

// Close releases resources used by the gate.
func (g *FreshnessGate) Close() {
	g.Reset()
}
