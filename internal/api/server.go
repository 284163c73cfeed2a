// Package api exposes the HTTP surface: auth, exam catalog, question search,
// roadmap sessions with their websocket drag stream, subscriptions and the
// admin endpoints.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pyq-ai/pyq-assistant/internal/account"
	"github.com/pyq-ai/pyq-assistant/internal/ai"
	"github.com/pyq-ai/pyq-assistant/internal/auth"
	"github.com/pyq-ai/pyq-assistant/internal/catalog"
	"github.com/pyq-ai/pyq-assistant/internal/platform/cache"
	"github.com/pyq-ai/pyq-assistant/internal/pyq"
)

// Server holds the handler dependencies.
type Server struct {
	auth       *auth.Service
	questions  pyq.Store
	accounts   account.Store
	catalog    *catalog.Loader
	cache      *cache.Cache // optional, nil disables roadmap caching
	roadmapTTL time.Duration
	generator  *ai.Generator // optional, nil disables AI generation
	sessions   *SessionManager
	ready      func(ctx context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithCache enables Redis caching of catalog roadmaps.
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.cache = c
		s.roadmapTTL = ttl
	}
}

// WithGenerator enables the AI roadmap-generation endpoint.
func WithGenerator(g *ai.Generator) Option {
	return func(s *Server) { s.generator = g }
}

// WithReadyCheck sets the readiness probe used by /readyz.
func WithReadyCheck(fn func(ctx context.Context) error) Option {
	return func(s *Server) { s.ready = fn }
}

// NewServer creates the API server.
func NewServer(authSvc *auth.Service, questions pyq.Store, accounts account.Store, cat *catalog.Loader, opts ...Option) *Server {
	s := &Server{
		auth:       authSvc,
		questions:  questions,
		accounts:   accounts,
		catalog:    cat,
		roadmapTTL: 5 * time.Minute,
		sessions:   NewSessionManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the HTTP router.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.requireAuth(s.handleLogout))

	mux.HandleFunc("GET /api/exams", s.handleListExams)
	mux.HandleFunc("GET /api/exams/{id}", s.handleGetExam)
	mux.HandleFunc("GET /api/exams/{id}/dashboard", s.handleDashboard)

	mux.HandleFunc("GET /api/questions", s.handleSearchQuestions)

	mux.HandleFunc("GET /api/roadmap", s.handleGetRoadmap)
	mux.HandleFunc("POST /api/roadmap/generate", s.requireAuth(s.handleGenerateRoadmap))

	mux.HandleFunc("POST /api/roadmap/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/roadmap/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("PATCH /api/roadmap/sessions/{id}", s.handleUpdateSession)
	mux.HandleFunc("GET /api/roadmap/sessions/{id}/ws", s.handleDragStream)

	mux.HandleFunc("GET /api/plans", s.handleListPlans)
	mux.HandleFunc("GET /api/subscriptions", s.requireAuth(s.handleGetSubscription))
	mux.HandleFunc("POST /api/subscriptions", s.requireAuth(s.handleSubscribe))
	mux.HandleFunc("DELETE /api/subscriptions", s.requireAuth(s.handleCancelSubscription))

	mux.HandleFunc("POST /api/admin/questions", s.requireAdmin(s.handleCreateQuestion))
	mux.HandleFunc("PUT /api/admin/questions/{id}", s.requireAdmin(s.handleUpdateQuestion))
	mux.HandleFunc("DELETE /api/admin/questions/{id}", s.requireAdmin(s.handleDeleteQuestion))
	mux.HandleFunc("GET /api/admin/export", s.requireAdmin(s.handleExport))

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody parses a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
