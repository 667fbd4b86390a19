package capture

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/noelvortex/internal/detector"
)

// feedbackColors maps snapshot feedback names to skeleton colours.
var feedbackColors = map[string]color.RGBA{
	"idle":     {R: 128, G: 128, B: 128, A: 255},
	"tracking": {R: 255, G: 215, B: 0, A: 255},
	"counting": {R: 255, G: 140, B: 0, A: 255},
	"pinch":    {R: 0, G: 255, B: 255, A: 255},
	"chaos":    {R: 255, G: 64, B: 64, A: 255},
	"formed":   {R: 64, G: 255, B: 96, A: 255},
}

// FeedbackColor returns the skeleton colour for a feedback name, grey when unknown.
func FeedbackColor(feedback string) color.RGBA {
	if c, ok := feedbackColors[feedback]; ok {
		return c
	}
	return feedbackColors["idle"]
}

// DrawSkeleton draws every hand's bones and joints onto img in place.
// Landmarks are normalized, so they are scaled to the image size.
func DrawSkeleton(img *gocv.Mat, hands []detector.HandLandmarks, feedback string) {
	if img == nil || img.Empty() {
		return
	}
	w, h := img.Cols(), img.Rows()
	c := FeedbackColor(feedback)

	for _, hand := range hands {
		pts := make([]image.Point, detector.NumLandmarks)
		for i, p := range hand.Points {
			pts[i] = image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
		}
		for _, conn := range detector.Connections {
			gocv.Line(img, pts[conn[0]], pts[conn[1]], c, 2)
		}
		for _, pt := range pts {
			gocv.Circle(img, pt, 3, c, -1)
		}
	}
}

// EncodeJPEG encodes img for the preview stream.
func EncodeJPEG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
