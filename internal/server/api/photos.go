package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/noelvortex/internal/store"
)

// PhotoHandler serves the photo catalog and the selection history.
type PhotoHandler struct {
	store    *store.Store
	photoDir string
}

// NewPhotoHandler creates a PhotoHandler. photoDir is rescanned on
// POST /api/photos when set.
func NewPhotoHandler(s *store.Store, photoDir string) *PhotoHandler {
	return &PhotoHandler{store: s, photoDir: photoDir}
}

// Register adds the catalog routes to mux.
func (h *PhotoHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/photos", h.handlePhotos)
	mux.HandleFunc("/api/selections", h.handleSelections)
}

type listPhotosResponse struct {
	Photos []store.Photo `json:"photos"`
}

type listSelectionsResponse struct {
	Selections []store.Selection `json:"selections"`
}

func (h *PhotoHandler) handlePhotos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w)
	case http.MethodPost:
		h.rescan(w)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/photos.
func (h *PhotoHandler) list(w http.ResponseWriter) {
	photos, err := h.store.Photos().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list photos")
		return
	}
	if photos == nil {
		photos = []store.Photo{}
	}
	writeJSON(w, http.StatusOK, listPhotosResponse{Photos: photos})
}

// rescan handles POST /api/photos by reimporting the photo directory.
func (h *PhotoHandler) rescan(w http.ResponseWriter) {
	if h.photoDir == "" {
		writeError(w, http.StatusConflict, "No photo directory configured")
		return
	}
	photos, err := h.store.Photos().ImportDir(h.photoDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to import photos")
		return
	}
	if photos == nil {
		photos = []store.Photo{}
	}
	writeJSON(w, http.StatusOK, listPhotosResponse{Photos: photos})
}

// handleSelections handles GET /api/selections?limit=N, newest first.
func (h *PhotoHandler) handleSelections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sels, err := h.store.Selections().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list selections")
		return
	}
	if sels == nil {
		sels = []store.Selection{}
	}
	writeJSON(w, http.StatusOK, listSelectionsResponse{Selections: sels})
}
