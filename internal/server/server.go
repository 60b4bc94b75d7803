package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mfalmeida/ironplan/internal/engine"
	"github.com/mfalmeida/ironplan/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	gen    *engine.Generator
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, gen *engine.Generator, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		gen:    gen,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(Identity)

		// Read endpoints (no auth — tsnet handles access)
		r.Get("/profile", s.handleGetProfile)
		r.Get("/exercises", s.handleListExercises)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/stats", s.handleStats)

		// Write endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Put("/profile", s.handlePutProfile)
			r.Post("/sessions/generate", s.handleGenerateSession)
			r.Post("/sessions/horizon", s.handleGenerateHorizon)
			r.Post("/prescriptions/{id}/complete", s.handleCompletePrescription)
			r.Post("/prescriptions/{id}/uncomplete", s.handleUncompletePrescription)
		})
	})
}
