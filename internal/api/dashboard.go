package api

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/dashboard.html
var dashboardContent embed.FS

// dashboardTpl is parsed once at startup; a broken template is a build error.
var dashboardTpl = template.Must(template.New("dashboard.html").ParseFS(dashboardContent, "templates/dashboard.html"))

// handleDashboard serves the embedded control dashboard.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Version     string
		ProcessName string
		WSPath      string
	}{
		Version:     s.version,
		ProcessName: s.prober.ProcessName(),
		WSPath:      s.wsCfg.Path,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTpl.Execute(w, data); err != nil {
		s.logger.Error("dashboard render failed", "error", err)
	}
}

// handleIndex summarises the API surface for humans poking at the root URL.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "trafficgrid",
		"version":   s.version,
		"dashboard": "/dashboard",
		"endpoints": []string{
			"GET /api/v1/health",
			"GET /api/v1/status",
			"GET /api/v1/lights",
			"GET /api/v1/lights/ids",
			"POST /api/v1/lights/{id}/status",
			"POST /api/v1/lights/{id}/mode",
			"POST /api/v1/lights/mode",
			"POST /api/v1/attack",
			"POST /api/v1/restore",
			"GET /api/v1/journal",
			"GET " + s.wsCfg.Path,
		},
	})
}
