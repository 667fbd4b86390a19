// Package tray provides the system tray controls: camera toggle, CHAOS and
// FORM buttons, and a status line for the current mode and last photo.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/noelvortex/internal/interaction"
)

// Tray represents the system tray application.
type Tray struct {
	onCamera func(enabled bool) error
	onMode   func(mode interaction.AppMode)
	onOpen   func()
	onQuit   func()
	camera   bool
	mode     interaction.AppMode
	last     string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuCamera *systray.MenuItem
	menuMode   *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray with the camera shown as enabled.
func New() *Tray {
	return &Tray{
		camera: true,
		mode:   interaction.ModeChaos,
	}
}

// OnCamera sets the callback for the camera toggle. A returned error keeps
// the previous state.
func (t *Tray) OnCamera(fn func(enabled bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCamera = fn
}

// OnMode sets the callback for the CHAOS and FORM buttons.
func (t *Tray) OnMode(fn func(mode interaction.AppMode)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMode = fn
}

// OnOpen sets the callback function to be called when the viewer menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("NoelVortex")
	systray.SetTooltip("NoelVortex photo tree")

	t.mu.Lock()
	t.menuCamera = systray.AddMenuItem(cameraTitle(t.camera), "Toggle gesture control")
	systray.AddSeparator()

	menuChaos := systray.AddMenuItem("Chaos", "Scatter the tree")
	menuForm := systray.AddMenuItem("Form", "Gather the tree")
	t.menuMode = systray.AddMenuItem(modeTitle(t.mode), "Current mode")
	t.menuMode.Disable()
	t.menuLast = systray.AddMenuItem(lastTitle(t.last), "Last opened photo")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Viewer...", "Open the tree in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit NoelVortex")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuCamera.ClickedCh:
				t.handleCamera()
			case <-menuChaos.ClickedCh:
				t.handleMode(interaction.ModeChaos)
			case <-menuForm.ClickedCh:
				t.handleMode(interaction.ModeFormed)
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleCamera flips the camera state when the callback accepts it.
func (t *Tray) handleCamera() {
	t.mu.RLock()
	want := !t.camera
	callback := t.onCamera
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		if err := callback(want); err != nil {
			return
		}
	}
	t.SetCameraEnabled(want)
}

func (t *Tray) handleMode(mode interaction.AppMode) {
	t.mu.RLock()
	callback := t.onMode
	t.mu.RUnlock()

	if callback != nil {
		callback(mode)
	}
}

// handleOpen handles the viewer menu item click.
func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetCameraEnabled updates the camera toggle.
func (t *Tray) SetCameraEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.camera = enabled
	if t.menuCamera != nil {
		t.menuCamera.SetTitle(cameraTitle(enabled))
	}
}

// SetMode updates the mode status line.
func (t *Tray) SetMode(mode interaction.AppMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = mode
	if t.menuMode != nil {
		t.menuMode.SetTitle(modeTitle(mode))
	}
}

// SetLastSelection updates the last photo display in the menu.
func (t *Tray) SetLastSelection(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = name
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(name))
	}
}

// HandleEvent mirrors interaction events into the menu.
func (t *Tray) HandleEvent(ev interaction.Event) {
	switch ev.Kind {
	case interaction.EventMode:
		t.SetMode(ev.Mode)
	case interaction.EventSelect:
		t.SetLastSelection(ev.TargetID)
	}
}

// CameraEnabled returns the camera toggle state.
func (t *Tray) CameraEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.camera
}

// Mode returns the mode shown in the menu.
func (t *Tray) Mode() interaction.AppMode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

// LastSelection returns the last photo shown in the menu.
func (t *Tray) LastSelection() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func cameraTitle(enabled bool) string {
	if enabled {
		return "● Camera On"
	}
	return "○ Camera Off"
}

func modeTitle(mode interaction.AppMode) string {
	return "Mode: " + string(mode)
}

func lastTitle(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}
