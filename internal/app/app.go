// Package app wires the camera, the landmark detector and the interaction
// session together and runs the frame loop.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/noelvortex/internal/capture"
	"github.com/ayusman/noelvortex/internal/detector"
	"github.com/ayusman/noelvortex/internal/gesture"
	"github.com/ayusman/noelvortex/internal/interaction"
	"github.com/ayusman/noelvortex/internal/morph"
	"github.com/ayusman/noelvortex/internal/resolve"
	"github.com/ayusman/noelvortex/internal/store"
)

// ErrFeatureUnavailable is returned when gesture control cannot be turned on
// because the camera or the detector is missing. Manual controls keep working.
var ErrFeatureUnavailable = errors.New("gesture control unavailable")

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Camera   capture.Config
	Detector detector.Config
	Tuning   interaction.Tuning
	// Morph smooths the state for the renderer; zero uses morph defaults.
	Morph morph.Config
	// PhotoDir is imported into the catalog on Start when set.
	PhotoDir string
}

// Status reports which features are usable.
type Status struct {
	Running           bool   `json:"running"`
	CameraEnabled     bool   `json:"cameraEnabled"`
	DetectorAvailable bool   `json:"detectorAvailable"`
	Error             string `json:"error,omitempty"`
}

// App is the main application that orchestrates frame capture, detection
// and the interaction session.
type App struct {
	config   Config
	regions  *resolve.Regions
	modal    *resolve.Modal
	session  *interaction.Session
	gate     *capture.FreshnessGate
	labeller *gesture.Labeller
	animator *morph.Animator
	lastStep time.Time

	mu            sync.RWMutex
	camera        capture.Camera
	detector      detector.Detector
	detectorErr   error
	cameraEnabled bool
	cameraErr     error
	tsOffset      int64
	lastTs        int64
	stopCh        chan struct{}
	done          chan struct{}
	listeners     []func(interaction.Event)

	alive         atomic.Bool
	preview       atomic.Pointer[[]byte]
	render        atomic.Pointer[morph.Frame]
	lastSelection atomic.Pointer[store.Selection]
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	a := &App{
		config:   config,
		regions:  resolve.NewRegions(),
		modal:    resolve.NewModal(),
		gate:     capture.NewFreshnessGate(0),
		labeller: gesture.DefaultLabeller(),
		camera:   capture.NewCamera(config.Camera),
	}
	if config.Morph == (morph.Config{}) {
		config.Morph = morph.DefaultConfig()
	}
	a.animator = morph.NewAnimator(config.Morph)

	var catalog interaction.Catalog
	if config.Store != nil {
		catalog = config.Store.Photos()
	}
	a.session = interaction.NewSession(interaction.Options{
		Tuning:   config.Tuning,
		Targets:  a.regions,
		Modal:    a.modal,
		Catalog:  catalog,
		Labeller: a.labeller,
	})

	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		slog.Info("Using MediaPipe gesture recognizer")
	} else {
		a.detectorErr = err
		slog.Warn("Gesture recognizer not available, manual controls only", "error", err)
	}

	return a
}

// SetDetector replaces the hand detector implementation.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
	a.detectorErr = nil
}

// SetCamera replaces the camera. The current camera is closed first.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.camera.Close(); err != nil {
		slog.Warn("Failed to close camera", "error", err)
	}
	a.camera = c
	a.cameraEnabled = false
}

// Session returns the interaction session.
func (a *App) Session() *interaction.Session {
	return a.session
}

// Regions returns the hit region registry the renderer publishes into.
func (a *App) Regions() *resolve.Regions {
	return a.regions
}

// Modal returns the open-photo dialog resolver.
func (a *App) Modal() *resolve.Modal {
	return a.modal
}

// Store returns the backing store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Snapshot returns the latest interaction snapshot.
func (a *App) Snapshot() *interaction.Snapshot {
	return a.session.Snapshot()
}

// Submit queues a manual command for the next frame.
func (a *App) Submit(cmd interaction.Command) {
	a.session.Submit(cmd)
}

// SetMode queues a manual CHAOS/FORMED switch.
func (a *App) SetMode(mode interaction.AppMode) {
	a.session.Submit(interaction.SetMode{Mode: mode})
}

// CloseSelection queues a manual close of the open photo.
func (a *App) CloseSelection() {
	a.session.Submit(interaction.CloseSelection{})
}

// Preview returns the latest camera frame with the hand skeleton drawn, as
// JPEG, or nil when no frame has been processed.
func (a *App) Preview() []byte {
	if p := a.preview.Load(); p != nil {
		return *p
	}
	return nil
}

// Render returns the latest smoothed renderer frame.
func (a *App) Render() morph.Frame {
	if f := a.render.Load(); f != nil {
		return *f
	}
	return morph.Frame{}
}

// LastSelection returns the most recently recorded selection.
func (a *App) LastSelection() *store.Selection {
	return a.lastSelection.Load()
}

// OnEvent registers fn to receive interaction events. fn runs on the frame
// goroutine and must not block.
func (a *App) OnEvent(fn func(interaction.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// ImportPhotos replaces the photo catalog with the .jpg files in dir.
func (a *App) ImportPhotos(dir string) ([]store.Photo, error) {
	if a.config.Store == nil {
		return nil, errors.New("no store configured")
	}
	photos, err := a.config.Store.Photos().ImportDir(dir)
	if err != nil {
		return nil, err
	}
	slog.Info("Imported photos", "count", len(photos), "dir", dir)
	return photos, nil
}

// Status returns the feature status.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := Status{
		Running:           a.stopCh != nil,
		CameraEnabled:     a.cameraEnabled,
		DetectorAvailable: a.detector != nil,
	}
	switch {
	case a.detectorErr != nil:
		st.Error = a.detectorErr.Error()
	case a.cameraErr != nil:
		st.Error = a.cameraErr.Error()
	}
	return st
}

// CameraEnabled reports whether the webcam is on.
func (a *App) CameraEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cameraEnabled
}

// SetCameraEnabled switches gesture control on or off and persists the
// choice. Turning it on fails with ErrFeatureUnavailable when the detector
// is missing or the camera cannot be opened.
func (a *App) SetCameraEnabled(enabled bool) error {
	if err := a.setCameraEnabled(enabled); err != nil {
		return err
	}
	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingCameraEnabled, enabled); err != nil {
			slog.Warn("Failed to persist camera setting", "error", err)
		}
	}
	return nil
}

func (a *App) setCameraEnabled(enabled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !enabled {
		if a.cameraEnabled {
			if err := a.camera.Close(); err != nil {
				slog.Warn("Failed to close camera", "error", err)
			}
			slog.Info("Camera disabled")
		}
		a.cameraEnabled = false
		a.cameraErr = nil
		return nil
	}

	if a.cameraEnabled {
		return nil
	}
	if a.detector == nil {
		reason := a.detectorErr
		if reason == nil {
			reason = detector.ErrServiceNotFound
		}
		return fmt.Errorf("%w: %v", ErrFeatureUnavailable, reason)
	}
	if err := a.camera.Open(); err != nil {
		a.cameraErr = err
		slog.Warn("Camera unavailable", "error", err)
		return fmt.Errorf("%w: %v", ErrFeatureUnavailable, err)
	}

	// Camera clocks restart on open; keep the session clock monotonic.
	a.tsOffset = a.lastTs
	a.gate.Reset()
	a.cameraEnabled = true
	a.cameraErr = nil
	slog.Info("Camera enabled")
	return nil
}

// Start begins the frame loop. The camera is switched on when the stored
// setting allows it; failure to do so leaves manual controls running.
func (a *App) Start() error {
	a.mu.Lock()
	if a.stopCh != nil {
		a.mu.Unlock()
		return nil
	}
	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	fps := a.camera.FPS()
	a.mu.Unlock()

	if a.config.PhotoDir != "" && a.config.Store != nil {
		if _, err := a.ImportPhotos(a.config.PhotoDir); err != nil {
			slog.Warn("Photo import failed", "error", err)
		}
	}

	want := true
	if a.config.Store != nil {
		want = a.config.Store.Settings().GetBool(store.SettingCameraEnabled, true)
	}
	if want {
		if err := a.setCameraEnabled(true); err != nil {
			slog.Warn("Starting without gesture control", "error", err)
		}
	}

	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	a.alive.Store(true)
	go a.run(time.Second/time.Duration(fps), a.stopCh, a.done)

	slog.Info("Frame loop started", "fps", fps)
	return nil
}

// Stop halts the frame loop and releases the camera and detector.
// An inference call in flight completes but its result is discarded.
func (a *App) Stop() {
	a.alive.Store(false)

	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		slog.Warn("Error closing camera", "error", err)
	}
	a.cameraEnabled = false
	a.gate.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			slog.Warn("Error closing detector", "error", err)
		}
	}

	slog.Info("Frame loop stopped")
}
