// Package api provides HTTP API handlers for the photo tree service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/noelvortex/internal/app"
	"github.com/ayusman/noelvortex/internal/interaction"
)

// Controller is the part of the application the control endpoints drive.
type Controller interface {
	Snapshot() *interaction.Snapshot
	Submit(cmd interaction.Command)
	Status() app.Status
	SetCameraEnabled(enabled bool) error
}

// ControlHandler serves the interaction state and the manual controls:
//
//	GET    /api/state      latest snapshot
//	POST   /api/mode       {"mode": "CHAOS"|"FORMED"}
//	DELETE /api/selection  close the open photo
//	GET    /api/camera     feature status
//	POST   /api/camera     {"enabled": bool}
type ControlHandler struct {
	ctrl Controller
}

// NewControlHandler creates a ControlHandler for ctrl.
func NewControlHandler(ctrl Controller) *ControlHandler {
	return &ControlHandler{ctrl: ctrl}
}

// Register adds the control routes to mux.
func (h *ControlHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", h.handleState)
	mux.HandleFunc("/api/mode", h.handleMode)
	mux.HandleFunc("/api/selection", h.handleSelection)
	mux.HandleFunc("/api/camera", h.handleCamera)
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type modeResponse struct {
	Mode interaction.AppMode `json:"mode"`
}

type cameraRequest struct {
	Enabled *bool `json:"enabled"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (h *ControlHandler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// handleMode queues a manual mode switch. It takes effect on the next frame,
// so the response is 202.
func (h *ControlHandler) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	mode, err := interaction.ParseAppMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.ctrl.Submit(interaction.SetMode{Mode: mode})
	writeJSON(w, http.StatusAccepted, modeResponse{Mode: mode})
}

func (h *ControlHandler) handleSelection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.ctrl.Submit(interaction.CloseSelection{})
	w.WriteHeader(http.StatusAccepted)
}

func (h *ControlHandler) handleCamera(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	case http.MethodPost:
		var req cameraRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		if err := h.ctrl.SetCameraEnabled(*req.Enabled); err != nil {
			if errors.Is(err, app.ErrFeatureUnavailable) {
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to switch camera")
			return
		}
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
