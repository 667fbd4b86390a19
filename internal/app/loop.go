package app

import (
	"log/slog"
	"time"

	"github.com/ayusman/noelvortex/internal/capture"
	"github.com/ayusman/noelvortex/internal/detector"
	"github.com/ayusman/noelvortex/internal/interaction"
	"github.com/ayusman/noelvortex/internal/store"
)

// run ticks the frame loop until stopCh is closed.
func (a *App) run(interval time.Duration, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

// tick processes at most one camera frame.
//
//  1. Camera off or no detector: feed a no-hand frame so queued commands
//     apply and the pointer clears.
//  2. Read a frame; when the device has nothing new only queued commands run.
//  3. Detect, discard the result if the app stopped meanwhile, then update
//     the session.
//
// Every tick ends by stepping the renderer smoothing.
func (a *App) tick() {
	if !a.alive.Load() {
		return
	}
	a.process()
	a.animate()
}

func (a *App) process() {
	a.mu.RLock()
	cam, det, enabled, offset := a.camera, a.detector, a.cameraEnabled, a.tsOffset
	a.mu.RUnlock()

	if !enabled || det == nil {
		a.dispatch(a.session.Update(nil))
		return
	}

	frame, err := cam.ReadFrame()
	if err != nil {
		slog.Debug("Frame read failed", "error", err)
		a.dispatch(a.session.Flush())
		return
	}
	defer frame.Close()

	if !a.gate.Fresh(frame) {
		a.dispatch(a.session.Flush())
		return
	}

	ts := frame.TimestampMs + offset
	res, err := det.Detect(&frame.Mat, ts)
	if err != nil {
		slog.Warn("Hand detection failed", "error", err)
		res = &detector.Result{}
	}
	if !a.alive.Load() {
		return
	}
	if res.TimestampMs == 0 {
		res.TimestampMs = ts
	}

	a.mu.Lock()
	a.lastTs = res.TimestampMs
	a.mu.Unlock()

	events := a.session.Update(res)
	a.updatePreview(frame, res)
	a.dispatch(events)
}

// animate advances the renderer smoothing by the wall time since the last
// tick.
func (a *App) animate() {
	now := time.Now()
	dt := 0.0
	if !a.lastStep.IsZero() {
		dt = now.Sub(a.lastStep).Seconds()
	}
	a.lastStep = now

	snap := a.session.Snapshot()
	if snap == nil {
		return
	}
	f := a.animator.Step(snap.State, dt)
	a.render.Store(&f)
}

// updatePreview stores the frame with the skeleton drawn over it.
func (a *App) updatePreview(frame *capture.Frame, res *detector.Result) {
	img := frame.Mat.Clone()
	defer img.Close()

	feedback := ""
	if snap := a.session.Snapshot(); snap != nil {
		feedback = string(snap.Feedback)
	}
	capture.DrawSkeleton(&img, res.Hands, feedback)

	data, err := capture.EncodeJPEG(img)
	if err != nil {
		slog.Debug("Preview encode failed", "error", err)
		return
	}
	a.preview.Store(&data)
}

// dispatch records selections and notifies listeners.
func (a *App) dispatch(events []interaction.Event) {
	if len(events) == 0 {
		return
	}

	a.mu.RLock()
	listeners := a.listeners
	a.mu.RUnlock()

	for _, ev := range events {
		if ev.Kind == interaction.EventSelect {
			a.recordSelection(ev)
		}
		for _, fn := range listeners {
			fn(ev)
		}
	}
}

func (a *App) recordSelection(ev interaction.Event) {
	sel := &store.Selection{
		SessionID: a.session.ID(),
		PhotoID:   ev.TargetID,
		PhotoURL:  ev.PhotoURL,
		Method:    string(ev.Method),
		CreatedAt: time.Now().UTC(),
	}
	if a.config.Store != nil {
		if err := a.config.Store.Selections().Record(sel); err != nil {
			slog.Warn("Failed to record selection", "error", err)
		}
	}
	a.lastSelection.Store(sel)
}
