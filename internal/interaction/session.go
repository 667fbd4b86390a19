package interaction

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ayusman/noelvortex/internal/detector"
	"github.com/ayusman/noelvortex/internal/gesture"
	"github.com/ayusman/noelvortex/internal/resolve"
)

// Command is a manual action queued from another goroutine and applied on
// the frame goroutine at the start of the next update.
type Command interface {
	apply(r *Router, s *State, ts int64) []Event
}

// SetMode switches appMode from a UI button.
type SetMode struct {
	Mode AppMode
}

func (c SetMode) apply(r *Router, s *State, ts int64) []Event {
	ev, ok := r.setMode(s, c.Mode, SourceManual, ts)
	if !ok {
		return nil
	}
	return []Event{ev}
}

// CloseSelection dismisses the open photo.
type CloseSelection struct{}

func (CloseSelection) apply(r *Router, s *State, ts int64) []Event {
	if !s.ModalOpen() {
		return nil
	}
	return []Event{r.closeSelection(s, SourceManual, ts)}
}

// SetTuning replaces every threshold.
type SetTuning struct {
	Tuning Tuning
}

func (c SetTuning) apply(r *Router, _ *State, _ int64) []Event {
	r.SetTuning(c.Tuning)
	return nil
}

// Options configures a Session.
type Options struct {
	Tuning   Tuning
	Targets  resolve.Resolver
	Modal    resolve.Resolver
	Catalog  Catalog
	Labeller *gesture.Labeller
}

// Session is the single interaction session. Update must only be called
// from one goroutine; Submit and Snapshot are safe from any goroutine.
type Session struct {
	id     string
	router *Router
	state  State
	seq    uint64

	mu      sync.Mutex
	pending []Command

	snap atomic.Pointer[Snapshot]
}

// NewSession creates a Session in CHAOS with default state.
func NewSession(opts Options) *Session {
	s := &Session{
		id:     uuid.NewString(),
		router: NewRouter(opts.Tuning, opts.Targets, opts.Modal, opts.Catalog, opts.Labeller),
		state:  NewState(),
	}
	s.publish(0)
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Submit queues a command.
func (s *Session) Submit(cmd Command) {
	if cmd == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, cmd)
}

// Update drains queued commands, processes one detector result and
// publishes a new snapshot. A nil result is a frame without hands.
func (s *Session) Update(res *detector.Result) []Event {
	if res == nil {
		res = &detector.Result{TimestampMs: s.router.lastTs}
	}

	events := s.drain(res.TimestampMs)
	events = append(events, s.router.Step(&s.state, res)...)
	logEvents(events)

	s.publish(res.TimestampMs)
	return events
}

// Flush applies queued commands without a detector frame, for ticks where
// the camera produced nothing new. It publishes only when a command ran.
func (s *Session) Flush() []Event {
	ts := s.router.lastTs
	s.mu.Lock()
	n := len(s.pending)
	s.mu.Unlock()
	if n == 0 {
		return nil
	}

	events := s.drain(ts)
	logEvents(events)
	s.publish(ts)
	return events
}

func (s *Session) drain(ts int64) []Event {
	s.mu.Lock()
	cmds := s.pending
	s.pending = nil
	s.mu.Unlock()

	var events []Event
	for _, cmd := range cmds {
		events = append(events, cmd.apply(s.router, &s.state, ts)...)
	}
	return events
}

func logEvents(events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case EventMode:
			slog.Info("Mode changed", "mode", ev.Mode, "source", ev.Source)
		case EventSelect:
			slog.Info("Photo selected", "target", ev.TargetID, "method", ev.Method)
		case EventClose:
			slog.Info("Photo closed", "source", ev.Source)
		case EventClick:
			slog.Debug("Click", "target", ev.TargetID, "method", ev.Method)
		}
	}
}

// Snapshot returns the latest published snapshot. It may be one frame stale.
func (s *Session) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Tuning returns the active tuning. Frame goroutine only.
func (s *Session) Tuning() Tuning {
	return s.router.Tuning()
}

func (s *Session) publish(ts int64) {
	s.seq++
	s.snap.Store(&Snapshot{
		State:       s.state.clone(),
		SessionID:   s.id,
		Seq:         s.seq,
		TimestampMs: ts,
		Streak:      s.router.Streak(),
		DwellTarget: s.router.DwellTarget(),
	})
}
