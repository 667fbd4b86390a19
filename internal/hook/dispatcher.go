package hook

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ayusman/noelvortex/internal/interaction"
)

// DefaultQueueSize is the number of events buffered before new ones drop.
const DefaultQueueSize = 32

type job struct {
	hook *Hook
	req  Request
}

// Dispatcher feeds session events to subscribed hooks on a worker
// goroutine so the frame loop never waits on a child process.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	queue    chan job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher starts a Dispatcher. A non-positive size uses
// DefaultQueueSize.
func NewDispatcher(m *Manager, e *Executor, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		manager:  m,
		executor: e,
		queue:    make(chan job, size),
		ctx:      ctx,
		cancel:   cancel,
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Handler returns a listener bound to sessionID, suitable for app.OnEvent.
func (d *Dispatcher) Handler(sessionID string) func(interaction.Event) {
	return func(ev interaction.Event) {
		d.Handle(sessionID, ev)
	}
}

// Handle queues ev for every subscribed hook. It never blocks; when the
// queue is full the event is dropped for that hook.
func (d *Dispatcher) Handle(sessionID string, ev interaction.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	for _, h := range d.manager.Subscribers(ev.Kind) {
		select {
		case d.queue <- job{hook: h, req: Request{SessionID: sessionID, Event: ev}}:
		default:
			slog.Warn("Hook queue full, dropping event", "hook", h.Manifest.Name, "kind", ev.Kind)
		}
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.queue {
		if d.ctx.Err() != nil {
			continue
		}
		resp, err := d.executor.Execute(d.ctx, j.hook, &j.req)
		if err != nil {
			slog.Warn("Hook failed", "hook", j.hook.Manifest.Name, "kind", j.req.Event.Kind, "error", err)
			continue
		}
		if !resp.Success {
			slog.Warn("Hook reported failure", "hook", j.hook.Manifest.Name, "error", resp.Error)
			continue
		}
		slog.Debug("Hook ran", "hook", j.hook.Manifest.Name, "kind", j.req.Event.Kind)
	}
}

// Close stops accepting events, cancels a running hook, drops whatever is
// still queued and waits for the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

// Drain waits for every queued event to run, then closes the Dispatcher.
func (d *Dispatcher) Drain() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}
