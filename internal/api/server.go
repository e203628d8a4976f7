package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/scribe/internal/questionnaire"
	"github.com/MikeSquared-Agency/scribe/internal/session"
	"github.com/MikeSquared-Agency/scribe/internal/synth"
)

// Suggester proposes answers for free-text questions.
type Suggester interface {
	Suggest(ctx context.Context, q questionnaire.Question, document string) ([]string, error)
}

// Events is notified of rewrites offered to and accepted by the user.
type Events interface {
	RewriteProposed(ctx context.Context, sessionID string, useOriginal bool, res *synth.Result)
	RewriteAccepted(ctx context.Context, sessionID, text string)
}

// Bus reports the state of the event bus connection.
type Bus interface {
	Connected() bool
}

// Deps are the components the API serves. Events and Bus may be nil.
type Deps struct {
	Sessions  *session.Manager
	Catalog   questionnaire.Catalog
	Suggester Suggester
	Events    Events
	Bus       Bus
	Provider  string
}

type Server struct {
	router *chi.Mux
	port   int
	deps   Deps
	logger *slog.Logger
	srv    *http.Server
}

func NewServer(port int, apiToken string, deps Deps, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		deps:   deps,
		logger: logger,
	}

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/scribe/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))

		r.Get("/questions/{phase}", s.getQuestions)

		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Post("/suggestions", s.suggest)
			r.Post("/phases/{phase}/answers", s.submitAnswers)
			r.Delete("/statements/{statementID}", s.removeStatement)
			r.Post("/advance", s.advance)
			r.Post("/synthesize", s.synthesize)
			r.Post("/accept", s.accept)
		})
	})

	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	events := "disabled"
	if s.deps.Bus != nil {
		events = "disconnected"
		if s.deps.Bus.Connected() {
			events = "connected"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":    "scribe",
		"status":   "ok",
		"provider": s.deps.Provider,
		"sessions": s.deps.Sessions.Len(),
		"events":   events,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
