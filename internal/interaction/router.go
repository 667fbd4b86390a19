package interaction

import (
	"math"

	"github.com/ayusman/noelvortex/internal/detector"
	"github.com/ayusman/noelvortex/internal/dwell"
	"github.com/ayusman/noelvortex/internal/gesture"
	"github.com/ayusman/noelvortex/internal/pose"
	"github.com/ayusman/noelvortex/internal/resolve"
)

// EventKind identifies what happened in a frame.
type EventKind string

const (
	EventMode   EventKind = "mode"   // appMode changed
	EventClick  EventKind = "click"  // clickTrigger fired
	EventSelect EventKind = "select" // a photo was opened
	EventClose  EventKind = "close"  // the open photo was dismissed
)

// Source says whether an event came from the camera or a manual control.
type Source string

const (
	SourceGesture Source = "gesture"
	SourceManual  Source = "manual"
)

// Event is a discrete outcome of one update.
type Event struct {
	Kind        EventKind    `json:"kind"`
	Source      Source       `json:"source"`
	Mode        AppMode      `json:"mode,omitempty"`
	TargetID    string       `json:"targetId,omitempty"`
	PhotoURL    string       `json:"photoUrl,omitempty"`
	Method      dwell.Method `json:"method,omitempty"`
	TimestampMs int64        `json:"timestampMs"`
}

// Catalog maps resolver target ids to displayable photos.
type Catalog interface {
	PhotoURL(id string) (string, bool)
}

// Router is the per-frame dispatcher. It keeps the cross-frame trackers and
// applies the decided Mode to a State.
type Router struct {
	tuning     Tuning
	classifier *pose.Classifier
	labeller   *gesture.Labeller
	debouncer  *gesture.Debouncer
	selector   *dwell.Selector
	targets    resolve.Resolver
	modal      resolve.Resolver
	catalog    Catalog

	prevDist float64
	prevSpan float64
	prevPalm *pose.Vec

	lastTs  int64
	started bool
}

// NewRouter creates a Router. A nil targets resolver never hits, a nil
// modal resolver uses resolve.NewModal.
func NewRouter(t Tuning, targets, modal resolve.Resolver, catalog Catalog, labeller *gesture.Labeller) *Router {
	t = t.withDefaults()
	if targets == nil {
		targets = resolve.ResolverFunc(func(pose.Vec) (string, bool) { return "", false })
	}
	if modal == nil {
		modal = resolve.NewModal()
	}
	if labeller == nil {
		labeller = gesture.NewLabeller()
	}
	return &Router{
		tuning:     t,
		classifier: pose.NewClassifier(t.Pose),
		labeller:   labeller,
		debouncer:  gesture.NewDebouncer(t.Gesture),
		selector:   dwell.NewSelector(t.Dwell),
		targets:    targets,
		modal:      modal,
		catalog:    catalog,
	}
}

// Tuning returns the active tuning.
func (r *Router) Tuning() Tuning {
	return r.tuning
}

// SetTuning swaps every threshold. Cross-frame trackers are kept.
func (r *Router) SetTuning(t Tuning) {
	t = t.withDefaults()
	r.tuning = t
	r.classifier = pose.NewClassifier(t.Pose)
	r.debouncer.SetConfig(t.Gesture)
	r.selector.SetConfig(t.Dwell)
}

// Streak returns the debouncer streak.
func (r *Router) Streak() gesture.Streak {
	return r.debouncer.Streak()
}

// DwellTarget returns the id the pointer is dwelling on.
func (r *Router) DwellTarget() string {
	return r.selector.TargetID()
}

// Step processes one detector result.
func (r *Router) Step(s *State, res *detector.Result) []Event {
	ts := res.TimestampMs
	dt := r.frameDelta(ts)

	f := r.classifier.ClassifyFrame(res.Hands)
	m := Decide(f, Context{
		AppMode:          s.AppMode,
		ModalOpen:        s.ModalOpen(),
		PrevHandDistance: r.prevDist,
		PrevSpan:         r.prevSpan,
		PrevPalm:         r.prevPalm,
	}, r.tuning)

	s.Hands = len(f.Hands)
	s.Active = m.Kind

	var (
		events  []Event
		rotated bool
		tr      gesture.Transition
	)

	switch m.Kind {
	case ModeNone:
		s.Pointer = nil
		s.HoverProgress = 0
		s.Pinching = false
		r.selector.Decay(dt)
		r.selector.Reset()
		r.debouncer.Interrupt()

	case ModeZoom2:
		if math.Abs(m.Delta) > r.tuning.Zoom.TwoHandNoise {
			s.ZoomOffset = r.clampZoom(s.ZoomOffset + m.Delta*r.tuning.Zoom.TwoHandGain)
		}
		r.debouncer.Interrupt()
		r.releasePointer(s, dt)

	case ModeZoom1:
		s.ZoomOffset = r.clampZoom(s.ZoomOffset - m.Delta*r.tuning.Zoom.SpanGain)
		r.debouncer.Interrupt()
		r.releasePointer(s, dt)

	case ModePan:
		lim := r.tuning.Pan.Limit
		s.PanOffset.X = clamp(s.PanOffset.X+m.Move.X*r.tuning.Pan.Gain, -lim, lim)
		s.PanOffset.Y = clamp(s.PanOffset.Y-m.Move.Y*r.tuning.Pan.Gain, -lim, lim)
		r.debouncer.Interrupt()
		r.releasePointer(s, dt)
		s.Pointer = nil

	case ModePoint, ModePinch:
		events = r.point(s, m, dt, ts)

	case ModeHold:
		r.debouncer.Interrupt()
		r.releasePointer(s, dt)

	case ModeIdle, ModeRotate:
		h := m.Hand
		if h.Pointing || h.Pinching {
			r.debouncer.Interrupt()
		} else {
			cat, ok := res.TopGesture(0)
			if !ok {
				cat, ok = r.labeller.Label(&h.Landmarks)
			}
			tr = r.debouncer.Feed(cat, ok, s.AppMode == ModeFormed)
		}
		if m.Kind == ModeRotate && m.Move.X != 0 {
			lim := r.tuning.Rotation.Limit
			s.RotationBoost = clamp(s.RotationBoost+m.Move.X*r.tuning.Rotation.Gain, -lim, lim)
			rotated = true
		}
		r.releasePointer(s, dt)
	}

	switch tr {
	case gesture.TransitionForm:
		if ev, ok := r.setMode(s, ModeFormed, SourceGesture, ts); ok {
			events = append(events, ev)
		}
	case gesture.TransitionChaos:
		if ev, ok := r.setMode(s, ModeChaos, SourceGesture, ts); ok {
			events = append(events, ev)
		}
	}

	if !rotated {
		s.RotationBoost *= r.tuning.Rotation.Decay
		if math.Abs(s.RotationBoost) < r.tuning.Rotation.Floor {
			s.RotationBoost = 0
		}
	}
	if s.AppMode == ModeFormed {
		s.Pointer = nil
		s.Pinching = false
		s.HoverProgress = 0
		s.PanOffset.X = decay(s.PanOffset.X, r.tuning.Pan.Decay)
		s.PanOffset.Y = decay(s.PanOffset.Y, r.tuning.Pan.Decay)
	}

	s.Feedback = r.feedback(s, tr)
	r.track(f)
	return events
}

// point runs the pointer through the resolver and the dwell selector.
func (r *Router) point(s *State, m Mode, dt float64, ts int64) []Event {
	p := m.Pointer
	s.Pointer = &p
	s.Pinching = m.Kind == ModePinch
	r.debouncer.Interrupt()

	resolver := r.targets
	if s.ModalOpen() {
		resolver = r.modal
	}
	id, ok := resolver.Resolve(p)

	fire, fired := r.selector.Update(id, ok, s.Pinching, dt)
	s.HoverProgress = r.selector.Progress()
	if !fired {
		return nil
	}
	return r.click(s, fire, ts)
}

// click bumps the trigger and consumes the resolved target.
func (r *Router) click(s *State, fire dwell.Fire, ts int64) []Event {
	s.ClickTrigger = max(s.ClickTrigger+1, ts)
	events := []Event{{
		Kind:        EventClick,
		Source:      SourceGesture,
		TargetID:    fire.TargetID,
		Method:      fire.Method,
		TimestampMs: ts,
	}}

	if s.ModalOpen() {
		if resolve.Dismisses(fire.TargetID) {
			events = append(events, r.closeSelection(s, SourceGesture, ts))
		}
		return events
	}

	if r.catalog == nil {
		return events
	}
	url, ok := r.catalog.PhotoURL(fire.TargetID)
	if !ok {
		return events
	}
	s.SelectedPhotoURL = url
	return append(events, Event{
		Kind:        EventSelect,
		Source:      SourceGesture,
		TargetID:    fire.TargetID,
		PhotoURL:    url,
		Method:      fire.Method,
		TimestampMs: ts,
	})
}

func (r *Router) closeSelection(s *State, src Source, ts int64) Event {
	url := s.SelectedPhotoURL
	s.SelectedPhotoURL = ""
	return Event{Kind: EventClose, Source: src, PhotoURL: url, TimestampMs: ts}
}

// setMode changes appMode. It reports false when the mode is unchanged.
func (r *Router) setMode(s *State, mode AppMode, src Source, ts int64) (Event, bool) {
	if s.AppMode == mode {
		return Event{}, false
	}
	s.AppMode = mode
	r.debouncer.Interrupt()
	if mode == ModeFormed {
		s.Pointer = nil
		s.Pinching = false
		s.HoverProgress = 0
		r.selector.Reset()
	}
	return Event{Kind: EventMode, Source: src, Mode: mode, TimestampMs: ts}, true
}

// releasePointer drops the dwell target. The cursor stays on screen while
// a click cooldown is running.
func (r *Router) releasePointer(s *State, dt float64) {
	r.selector.Decay(dt)
	r.selector.Reset()
	s.HoverProgress = 0
	s.Pinching = false
	if !r.selector.CoolingDown() {
		s.Pointer = nil
	}
}

func (r *Router) feedback(s *State, tr gesture.Transition) Feedback {
	switch {
	case tr == gesture.TransitionChaos:
		return FeedbackChaos
	case tr == gesture.TransitionForm:
		return FeedbackFormed
	case s.Hands == 0:
		return FeedbackIdle
	case s.Pinching:
		return FeedbackPinch
	case r.debouncer.Phase() == gesture.PhaseCounting:
		return FeedbackCounting
	default:
		return FeedbackTracking
	}
}

// track remembers this frame's metrics for the next Decide.
func (r *Router) track(f pose.Frame) {
	r.prevDist, r.prevSpan, r.prevPalm = 0, 0, nil
	switch len(f.Hands) {
	case 1:
		h := f.Hands[0]
		palm := h.Palm
		r.prevPalm = &palm
		if h.FiveFingers {
			r.prevSpan = h.Span
		}
	case 2:
		r.prevDist = f.HandDistance
	}
}

// frameDelta returns seconds since the previous frame, clamped.
func (r *Router) frameDelta(ts int64) float64 {
	if !r.started {
		r.started = true
		r.lastTs = ts
		return 0
	}
	dt := float64(ts-r.lastTs) / 1000.0
	if ts > r.lastTs {
		r.lastTs = ts
	}
	return clamp(dt, 0, r.tuning.MaxFrameDelta)
}

func (r *Router) clampZoom(z float64) float64 {
	return clamp(z, r.tuning.Zoom.Min, r.tuning.Zoom.Max)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func decay(v, factor float64) float64 {
	v *= factor
	if math.Abs(v) < 1e-4 {
		return 0
	}
	return v
}
