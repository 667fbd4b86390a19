// Package server provides the HTTP and WebSocket surface of the photo tree
// service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/noelvortex/internal/morph"
	"github.com/ayusman/noelvortex/internal/resolve"
	"github.com/ayusman/noelvortex/internal/server/api"
	"github.com/ayusman/noelvortex/internal/store"
)

// Controller is the application surface the server drives.
type Controller interface {
	api.Controller
	Preview() []byte
	Render() morph.Frame
	Regions() *resolve.Regions
	Modal() *resolve.Modal
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	PhotoDir  string
	Store     *store.Store
	App       Controller
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	hub    *Hub
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		api.NewControlHandler(s.config.App).Register(s.mux)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))

		s.hub = NewHub(s.config.App)
		s.mux.Handle("/api/ws", s.hub)
	}

	if s.config.Store != nil {
		api.NewPhotoHandler(s.config.Store, s.config.PhotoDir).Register(s.mux)
	}

	if s.config.PhotoDir != "" {
		photos := http.FileServer(http.Dir(s.config.PhotoDir))
		s.mux.Handle(store.PhotoURLPrefix, http.StripPrefix(store.PhotoURLPrefix, photos))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Hub returns the WebSocket hub, or nil without an App.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close stops the WebSocket hub and disconnects its clients.
func (s *Server) Close() {
	if s.hub != nil {
		s.hub.Close()
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.App != nil {
		response["camera"] = s.config.App.Status()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
