// Package resolve maps a normalized pointer position to a stable target id.
//
// The renderer owns the geometry. Each tick it publishes the screen-space
// footprint of every selectable entity, and the core hit-tests against the
// latest copy. Ids are opaque strings so consecutive frames can be compared
// without touching scene-graph internals.
package resolve

import (
	"sync"

	"github.com/ayusman/noelvortex/internal/pose"
)

// Resolver answers "what occupies this screen position".
type Resolver interface {
	Resolve(p pose.Vec) (id string, ok bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(p pose.Vec) (string, bool)

// Resolve calls f(p).
func (f ResolverFunc) Resolve(p pose.Vec) (string, bool) {
	return f(p)
}

// HitRect is an axis-aligned rectangle in normalized screen space.
type HitRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Contains reports whether p lies inside the rectangle.
func (r HitRect) Contains(p pose.Vec) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// HitCircle is a circle in normalized screen space.
type HitCircle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
}

// Contains reports whether p lies inside or on the circle.
func (c HitCircle) Contains(p pose.Vec) bool {
	dx := p.X - c.X
	dy := p.Y - c.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Region is the projected footprint of one selectable entity. Exactly one of
// Rect or Circle is set.
type Region struct {
	ID     string     `json:"id"`
	Rect   *HitRect   `json:"rect,omitempty"`
	Circle *HitCircle `json:"circle,omitempty"`
	// Depth is camera distance; the nearest region wins.
	Depth float64 `json:"depth"`
}

// Contains reports whether p hits the region.
func (r Region) Contains(p pose.Vec) bool {
	switch {
	case r.Circle != nil:
		return r.Circle.Contains(p)
	case r.Rect != nil:
		return r.Rect.Contains(p)
	default:
		return false
	}
}

// Regions is the latest set of published regions. Safe for concurrent use:
// the websocket reader writes, the frame loop reads.
type Regions struct {
	mu      sync.RWMutex
	regions []Region
}

// NewRegions creates an empty registry.
func NewRegions() *Regions {
	return &Regions{}
}

// Set replaces every region.
func (r *Regions) Set(regions []Region) {
	cp := make([]Region, 0, len(regions))
	for _, reg := range regions {
		if reg.ID == "" {
			continue
		}
		cp = append(cp, reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions = cp
}

// Len returns the number of regions.
func (r *Regions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regions)
}

// Resolve returns the nearest region containing p.
func (r *Regions) Resolve(p pose.Vec) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best  string
		depth float64
		found bool
	)
	for _, reg := range r.regions {
		if !reg.Contains(p) {
			continue
		}
		if !found || reg.Depth < depth {
			best, depth, found = reg.ID, reg.Depth, true
		}
	}
	return best, found
}
