// Package web exposes the command pipeline over a small JSON API.
package web

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"stockhand/internal/history"
	"stockhand/internal/session"
)

// Server routes HTTP requests to per-caller sessions. Sessions are
// created lazily on first use of a session_id and live for the
// process lifetime.
type Server struct {
	newSession func() *session.Session

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// NewServer creates a server that builds sessions with newSession.
func NewServer(newSession func() *session.Session) *Server {
	return &Server{
		newSession: newSession,
		sessions:   map[string]*session.Session{},
	}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/command", s.handleCommand)
	mux.HandleFunc("POST /v1/undo", s.handleUndo)
	mux.HandleFunc("GET /v1/history", s.handleHistory)
	return mux
}

func (s *Server) session(id string) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := s.newSession()
	s.sessions[id] = sess
	return sess
}

type commandRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type undoRequest struct {
	SessionID string `json:"session_id"`
}

type historyResponse struct {
	Entries []history.Entry `json:"entries"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	result := s.session(req.SessionID).Submit(r.Context(), req.Text)
	log.Debug().
		Str("session_id", req.SessionID).
		Str("type", string(result.Type)).
		Msg("web: command processed")
	writeJSON(w, result)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	var req undoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, s.session(req.SessionID).Undo(r.Context()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	entries := s.session(id).History()
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, historyResponse{Entries: entries})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("web: encode response")
	}
}
