// Package pose derives per-frame pose features from raw hand landmarks.
//
// Classification is purely per frame: there is no smoothing here, temporal
// stability is the gesture debouncer's job.
package pose

import (
	"math"

	"github.com/ayusman/noelvortex/internal/detector"
)

// Vec is a 2D position in normalized screen space ([0,1] on both axes,
// origin top-left, X mirrored to match the mirrored camera preview).
type Vec struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Config holds the classification thresholds.
type Config struct {
	// ExtensionRatio: a finger is extended when tip-to-wrist distance exceeds
	// ExtensionRatio times knuckle-to-wrist distance.
	ExtensionRatio float64 `toml:"extension_ratio"`
	// PinchThreshold is the thumb-tip to index-tip distance below which the
	// hand is pinching.
	PinchThreshold float64 `toml:"pinch_threshold"`
}

// DefaultConfig returns the tuned thresholds.
func DefaultConfig() Config {
	return Config{
		ExtensionRatio: 1.3,
		PinchThreshold: 0.05,
	}
}

// HandPose holds the features derived from one hand in one frame.
type HandPose struct {
	Landmarks detector.HandLandmarks

	Thumb  bool
	Index  bool
	Middle bool
	Ring   bool
	Pinky  bool

	// Pointing is index extended with middle, ring and pinky curled.
	// The thumb is ignored: the distance heuristic is unreliable for it.
	Pointing    bool
	FiveFingers bool
	Pinching    bool

	PinchDistance float64
	// Palm is the mean of wrist, index MCP and pinky MCP.
	Palm Vec
	// IndexTip is the pointer position.
	IndexTip Vec
	Wrist    Vec
	// Span is the wrist to middle MCP distance, a proxy for how close the
	// hand is to the camera.
	Span float64
}

// Frame holds the classified hands of one video frame.
type Frame struct {
	Hands []HandPose
	// HandDistance is the wrist-to-wrist distance when two hands are present.
	HandDistance float64
}

// Classifier turns landmarks into pose features.
type Classifier struct {
	config Config
}

// NewClassifier creates a Classifier. Zero fields fall back to defaults.
func NewClassifier(config Config) *Classifier {
	def := DefaultConfig()
	if config.ExtensionRatio <= 0 {
		config.ExtensionRatio = def.ExtensionRatio
	}
	if config.PinchThreshold <= 0 {
		config.PinchThreshold = def.PinchThreshold
	}
	return &Classifier{config: config}
}

// Config returns the active thresholds.
func (c *Classifier) Config() Config {
	return c.config
}

// ClassifyFrame classifies every hand. Only the first two hands are used.
func (c *Classifier) ClassifyFrame(hands []detector.HandLandmarks) Frame {
	var f Frame
	for i := range hands {
		if i == 2 {
			break
		}
		f.Hands = append(f.Hands, c.Classify(hands[i]))
	}
	if len(f.Hands) == 2 {
		f.HandDistance = f.Hands[0].Wrist.Sub(f.Hands[1].Wrist).Len()
	}
	return f
}

// Classify derives the features of a single hand.
//
// Extension is a geometric heuristic, not a joint-angle model: it tolerates
// hand rotation but misreads strongly bent wrists and partially closed
// fingers.
func (c *Classifier) Classify(hand detector.HandLandmarks) HandPose {
	p := hand.Points
	wrist := p[detector.Wrist]

	extended := func(tip, knuckle int) bool {
		return detector.Distance2D(p[tip], wrist) > c.config.ExtensionRatio*detector.Distance2D(p[knuckle], wrist)
	}

	hp := HandPose{
		Landmarks: hand,
		Thumb:     extended(detector.ThumbTip, detector.ThumbMCP),
		Index:     extended(detector.IndexTip, detector.IndexMCP),
		Middle:    extended(detector.MiddleTip, detector.MiddleMCP),
		Ring:      extended(detector.RingTip, detector.RingMCP),
		Pinky:     extended(detector.PinkyTip, detector.PinkyMCP),
	}

	hp.Pointing = hp.Index && !hp.Middle && !hp.Ring && !hp.Pinky
	hp.FiveFingers = hp.Thumb && hp.Index && hp.Middle && hp.Ring && hp.Pinky

	hp.PinchDistance = detector.Distance2D(p[detector.ThumbTip], p[detector.IndexTip])
	hp.Pinching = hp.PinchDistance < c.config.PinchThreshold

	hp.Palm = mirrored(detector.Point3D{
		X: (wrist.X + p[detector.IndexMCP].X + p[detector.PinkyMCP].X) / 3,
		Y: (wrist.Y + p[detector.IndexMCP].Y + p[detector.PinkyMCP].Y) / 3,
	})
	hp.IndexTip = mirrored(p[detector.IndexTip])
	hp.Wrist = mirrored(wrist)
	hp.Span = detector.Distance2D(wrist, p[detector.MiddleMCP])

	return hp
}

// mirrored maps an image-space landmark to screen space.
func mirrored(pt detector.Point3D) Vec {
	return Vec{X: 1.0 - pt.X, Y: pt.Y}
}
