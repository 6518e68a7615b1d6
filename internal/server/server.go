// Package server exposes the last-compiled lowerings of a watched tree
// over HTTP, with a websocket push on every recompile.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/simal-lang/simal/internal/watch"
)

// Store holds the latest recompile result for each watched file, keyed
// by a short name derived from its path; a failed recompile replaces the
// previous result.
type Store struct {
	mu      sync.RWMutex
	results map[string]watch.FileResult
}

// NewStore creates an empty result store.
func NewStore() *Store {
	return &Store{results: make(map[string]watch.FileResult)}
}

// Put records the latest result for a file under name.
func (s *Store) Put(name string, r watch.FileResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[name] = r
}

// Get retrieves the latest result for name.
func (s *Store) Get(name string) (watch.FileResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[name]
	return r, ok
}

// Server is the preview HTTP server described by the `simal serve`
// command: a small chi router over a Store, with a websocket hub that
// is pushed a notification each time the caller reports a recompile.
type Server struct {
	store  *Store
	hub    *Hub
	auth   *Authenticator
	logger *zap.Logger
	router chi.Router
}

// New builds a Server. auth may be nil to run the preview server with
// no bearer-token/JWT gate, suitable for local trusted use.
func New(store *Store, auth *Authenticator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:  store,
		hub:    NewHub(),
		auth:   auth,
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(s.logRequest)

	if s.auth != nil {
		r.Post("/auth", s.handleAuth)
	}

	r.Group(func(r chi.Router) {
		if s.auth != nil {
			r.Use(s.auth.Middleware)
		}
		r.Get("/systems/{name}", s.handleSystem(false))
		r.Get("/systems/{name}/full", s.handleSystem(true))
		r.Get("/ws", s.handleWebsocket)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Notify pushes a recompile result to every connected websocket client
// and stores it as the system's latest result.
func (s *Server) Notify(name string, r watch.FileResult) {
	s.store.Put(name, r)

	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	s.hub.Broadcast(Notification{File: name, OK: r.OK, Errors: errs})
}

func (s *Server) handleSystem(full bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		result, ok := s.store.Get(name)
		if !ok {
			http.Error(w, "system not found", http.StatusNotFound)
			return
		}
		var payload interface{} = result.Simple
		if full {
			payload = result.Full
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("encode response failed", zap.Error(err))
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if err := s.hub.Serve(w, r); err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	session, err := s.auth.Authenticate(body.Token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"session_token": session})
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", GetRequestID(r.Context())),
		)
		next.ServeHTTP(w, r)
	})
}

// Shutdown drains the websocket hub and stops accepting new connections.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.hub.Close()
}
