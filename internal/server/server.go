// Package server provides the HTTP server for tailorcam.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/tailorcam/internal/metrics"
	"github.com/ayusman/tailorcam/internal/server/api"
	"github.com/ayusman/tailorcam/internal/session"
	"github.com/ayusman/tailorcam/internal/store"
)

// FrameSource provides the most recent annotated frame as JPEG.
type FrameSource interface {
	// LatestJPEG returns the frame and its sequence number. ok is false
	// until the first frame is available.
	LatestJPEG() (data []byte, seq uint64, ok bool)
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Session   *session.Session
	Store     *store.Store
	Frames    FrameSource
	Metrics   *metrics.Metrics
}

// Server represents the HTTP server for the tailorcam application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	events *EventsHandler
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

	if s.config.Session != nil {
		s.mux.Handle("/api/height", api.NewHeightHandler(s.config.Session, s.config.Store, s.config.Metrics))
		s.mux.Handle("/api/measurement", api.NewMeasurementHandler(s.config.Session))
		s.mux.Handle("/api/measure", api.NewMeasureHandler(s.config.Session))
		s.mux.Handle("/api/state", api.NewStateHandler(s.config.Session))

		s.events = NewEventsHandler(s.config.Session, s.config.Metrics)
		s.mux.Handle("/api/events", s.events)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames, s.config.Metrics))
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics.Handler())
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

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Close stops background broadcasting.
func (s *Server) Close() {
	if s.events != nil {
		s.events.Close()
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
