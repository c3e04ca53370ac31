// Copyright 2025 Ansvar Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionHeader carries the HTTP session id.
const SessionHeader = "mcp-session-id"

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

const (
	maxRequestBody  = 4 * 1024 * 1024
	shutdownTimeout = 10 * time.Second
)

// Session is one HTTP client conversation.
type Session struct {
	ID       string
	Created  time.Time
	LastSeen time.Time
}

// HTTPOption configures an HTTPServer.
type HTTPOption func(*HTTPServer)

// WithHTTPLogger sets a custom logger.
// Default is slog.Default().
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(s *HTTPServer) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithMetrics exposes m on /metrics and records session counts.
func WithMetrics(m *Metrics) HTTPOption {
	return func(s *HTTPServer) {
		s.metrics = m
	}
}

// WithSessionTTL drops sessions idle for longer than ttl.
// Zero or negative keeps sessions until they are deleted.
// Default is DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) HTTPOption {
	return func(s *HTTPServer) {
		s.sessionTTL = ttl
	}
}

// HTTPServer serves MCP over HTTP POST at /mcp with a health probe and
// optional metrics.
type HTTPServer struct {
	handler *Handler
	version string
	metrics *Metrics
	logger  *slog.Logger

	mu         sync.Mutex
	sessions   map[string]*Session
	sessionTTL time.Duration
	now        func() time.Time
}

// NewHTTPServer wraps handler for HTTP.
func NewHTTPServer(handler *Handler, version string, opts ...HTTPOption) *HTTPServer {
	s := &HTTPServer{
		handler:    handler,
		version:    version,
		logger:     slog.Default(),
		sessions:   make(map[string]*Session),
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP routing table.
func (s *HTTPServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /mcp", s.handleMCP)
	mux.HandleFunc("DELETE /mcp", s.handleDeleteSession)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	return cors(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.sessionTTL > 0 {
		reapCtx, stopReaper := context.WithCancel(ctx)
		defer stopReaper()
		go s.reapLoop(reapCtx, s.sessionTTL/2)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String(),
			"health", "/health", "mcp", "/mcp")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server", "sessions", s.SessionCount())
	s.closeSessions()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) handleMCP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, s.handler.errorResponse(nil, &RPCError{Code: ParseError, Message: "Failed to read request body"}))
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusOK, s.handler.errorResponse(nil, &RPCError{Code: ParseError, Message: "Invalid JSON"}))
		return
	}

	id := r.Header.Get(SessionHeader)
	sess := s.touch(id)
	switch {
	case sess == nil && req.Method == MethodInitialize:
		sess = s.newSession()
	case sess == nil && id != "":
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not found"})
		return
	}
	if sess != nil {
		w.Header().Set(SessionHeader, sess.ID)
	}

	resp := s.handler.Handle(r.Context(), &req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing mcp-session-id header"})
		return
	}
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not found"})
		return
	}
	s.recordSessions(n)
	s.logger.Info("session closed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"server":  ServerName,
		"version": s.version,
	})
}

// touch marks the session id as seen and returns it, or nil when id is
// empty or unknown.
func (s *HTTPServer) touch(id string) *Session {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	sess.LastSeen = s.now()
	return sess
}

func (s *HTTPServer) newSession() *Session {
	now := s.now()
	sess := &Session{ID: uuid.NewString(), Created: now, LastSeen: now}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.recordSessions(n)
	s.logger.Info("new session created", "session", sess.ID)
	return sess
}

func (s *HTTPServer) reapLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.sessionTTL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reapIdle()
		}
	}
}

// reapIdle drops sessions not seen within the session TTL and returns how
// many were dropped.
func (s *HTTPServer) reapIdle() int {
	if s.sessionTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.sessionTTL)
	s.mu.Lock()
	dropped := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			dropped++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if dropped > 0 {
		s.recordSessions(n)
		s.logger.Debug("idle sessions expired", "expired", dropped, "open", n)
	}
	return dropped
}

// SessionCount returns the number of open sessions.
func (s *HTTPServer) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *HTTPServer) closeSessions() {
	s.mu.Lock()
	for id := range s.sessions {
		s.logger.Debug("closing session", "session", id)
	}
	clear(s.sessions)
	s.mu.Unlock()
	s.recordSessions(0)
}

func (s *HTTPServer) recordSessions(n int) {
	if s.metrics != nil {
		s.metrics.SetSessions(n)
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
		h.Set("Access-Control-Expose-Headers", SessionHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
