package resolve

import (
	"sync"

	"github.com/ayusman/noelvortex/internal/pose"
)

// Modal target ids.
const (
	TargetModalContent  = "modal:content"
	TargetModalClose    = "modal:close"
	TargetModalBackdrop = "modal:backdrop"
)

// ModalLayout is the on-screen layout of the open photo dialog.
type ModalLayout struct {
	Content HitRect   `json:"content"`
	Close   HitCircle `json:"close"`
}

// DefaultModalLayout is a centered dialog with a close button on its top
// right corner.
func DefaultModalLayout() ModalLayout {
	return ModalLayout{
		Content: HitRect{X: 0.2, Y: 0.15, Width: 0.6, Height: 0.7},
		Close:   HitCircle{X: 0.78, Y: 0.17, Radius: 0.03},
	}
}

// Modal hit-tests the photo dialog. Everything outside the dialog is
// backdrop, so Resolve always succeeds.
type Modal struct {
	mu     sync.RWMutex
	layout ModalLayout
}

// NewModal creates a Modal with the default layout.
func NewModal() *Modal {
	return &Modal{layout: DefaultModalLayout()}
}

// SetLayout replaces the layout.
func (m *Modal) SetLayout(l ModalLayout) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layout = l
}

// Layout returns the current layout.
func (m *Modal) Layout() ModalLayout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layout
}

// Resolve returns the close button, the content or the backdrop.
func (m *Modal) Resolve(p pose.Vec) (string, bool) {
	l := m.Layout()
	switch {
	case l.Close.Contains(p):
		return TargetModalClose, true
	case l.Content.Contains(p):
		return TargetModalContent, true
	default:
		return TargetModalBackdrop, true
	}
}

// Dismisses reports whether firing on id closes the dialog.
func Dismisses(id string) bool {
	return id == TargetModalClose || id == TargetModalBackdrop
}
