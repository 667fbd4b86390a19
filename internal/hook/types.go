// Package hook runs external executables when the interaction session
// changes mode or opens and closes a photo.
package hook

import (
	"slices"

	"github.com/ayusman/noelvortex/internal/interaction"
)

// ManifestFile is the manifest name looked up in each hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook and the events it subscribes to.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"`
}

// Request is written to the hook's stdin as one JSON document.
type Request struct {
	SessionID string            `json:"sessionId"`
	Event     interaction.Event `json:"event"`
}

// Response is what a hook prints on stdout. An empty stdout counts as
// success.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Subscribes reports whether the hook wants events of kind k. A manifest
// without events gets everything except clicks.
func (h *Hook) Subscribes(k interaction.EventKind) bool {
	if len(h.Manifest.Events) == 0 {
		return k != interaction.EventClick
	}
	return slices.Contains(h.Manifest.Events, string(k))
}
