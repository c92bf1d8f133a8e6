// Package api implements the HTTP API server for redline.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scribeworks/redline/internal/session"
)

// Server is the redline HTTP API server. Connected WebSocket clients act
// as the editor collaborator: session resolutions are pushed to them as
// apply/discard instructions.
type Server struct {
	addr         string
	mux          *http.ServeMux
	server       *http.Server
	hub          *wsHub
	manager      *session.Manager
	contextChars int
}

// New creates a new API server with its own session manager, wired to
// dispatch instructions over the WebSocket hub.
func New(addr string, gap, contextChars int) *Server {
	s := &Server{addr: addr, hub: newWSHub(), contextChars: contextChars}
	s.manager = session.NewManager(s.hub, gap, contextChars)
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/diff", s.handleDiff)
	s.mux.HandleFunc("POST /api/proposal", s.handleProposal)
	s.mux.HandleFunc("POST /api/confirm", s.handleConfirm)
	s.mux.HandleFunc("POST /api/confirm_all", s.handleConfirmAll)
	s.mux.HandleFunc("POST /api/reject", s.handleReject)
	s.mux.HandleFunc("GET /api/session", s.handleSession)
	s.mux.HandleFunc("GET /api/ws", s.handleWebSocket)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.addr).Msg("redline API server listening")
	return s.server.ListenAndServe()
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("json encode error")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
