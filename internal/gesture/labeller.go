package gesture

import (
	"math"
	"sort"

	"github.com/ayusman/noelvortex/internal/detector"
)

// Template is a reference hand pose for a coarse gesture label.
type Template struct {
	Name      string             // Gesture label, e.g. detector.GestureClosedFist
	Landmarks []detector.Point3D // Normalized landmarks
	Tolerance float64            // Maximum mean per-landmark distance for a match
}

// Match is a template matched against an input hand.
type Match struct {
	Template *Template
	Score    float64 // 1 / (1 + distance), higher is better
	Distance float64 // Mean per-landmark distance
}

// Labeller assigns a coarse gesture label to landmarks by nearest template.
// It stands in for the recognizer's own classification when that comes back
// empty.
type Labeller struct {
	templates []*Template
}

// NewLabeller creates an empty Labeller.
func NewLabeller() *Labeller {
	return &Labeller{
		templates: make([]*Template, 0),
	}
}

// DefaultLabeller returns a Labeller with fist and open palm templates.
func DefaultLabeller() *Labeller {
	l := NewLabeller()
	fist := detector.FistLandmarks()
	palm := detector.OpenPalmLandmarks()
	l.AddTemplate(&Template{
		Name:      detector.GestureClosedFist,
		Landmarks: fist.Normalize().Points[:],
		Tolerance: 0.2,
	})
	l.AddTemplate(&Template{
		Name:      detector.GestureOpenPalm,
		Landmarks: palm.Normalize().Points[:],
		Tolerance: 0.2,
	})
	return l
}

// AddTemplate adds a template.
func (l *Labeller) AddTemplate(t *Template) {
	if t == nil {
		return
	}
	l.templates = append(l.templates, t)
}

// RemoveTemplate removes every template with the given name.
func (l *Labeller) RemoveTemplate(name string) {
	kept := l.templates[:0]
	for _, t := range l.templates {
		if t.Name != name {
			kept = append(kept, t)
		}
	}
	l.templates = kept
}

// Match returns the templates within tolerance, best first.
func (l *Labeller) Match(hand *detector.HandLandmarks) []Match {
	normalized := hand.Normalize()
	if normalized == nil {
		return nil
	}

	var matches []Match
	for _, t := range l.templates {
		d := meanDistance(normalized.Points[:], t.Landmarks)
		if d > t.Tolerance {
			continue
		}
		matches = append(matches, Match{
			Template: t,
			Score:    1.0 / (1.0 + d),
			Distance: d,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Label returns the best matching label as a Category.
func (l *Labeller) Label(hand *detector.HandLandmarks) (detector.Category, bool) {
	matches := l.Match(hand)
	if len(matches) == 0 {
		return detector.Category{}, false
	}
	return detector.Category{Name: matches[0].Template.Name, Score: matches[0].Score}, true
}

// meanDistance is the average Euclidean distance between corresponding points.
func meanDistance(a, b []detector.Point3D) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return math.Inf(1)
	}

	var total float64
	for i := 0; i < n; i++ {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		dz := a[i].Z - b[i].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total / float64(n)
}
