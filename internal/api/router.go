package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Control dashboard (embedded via go:embed)
	r.Get("/dashboard", s.handleDashboard)
	r.Get("/", s.handleIndex)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Route("/lights", func(r chi.Router) {
			r.Get("/", s.handleListLights)
			r.Get("/ids", s.handleListLightIDs)
			r.Post("/mode", s.handleSetAllLightsMode)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/status", s.handleSetLightStatus)
				r.Post("/mode", s.handleSetLightMode)
			})
		})

		r.Post("/attack", s.handleAttack)
		r.Post("/restore", s.handleRestore)

		r.Get("/journal", s.handleListJournal)
	})

	// WebSocket (dashboard snapshot stream)
	r.Get(s.wsCfg.Path, s.handleWebSocket)

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
