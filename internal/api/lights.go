package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trafficgrid/internal/control"
	"trafficgrid/internal/mailbox"
)

// statusPayload is the system status reported by GET /api/v1/status and
// broadcast on the snapshot.tick channel.
type statusPayload struct {
	Status          string `json:"status"` // running | stopped
	ProcessName     string `json:"process_name"`
	DetectionMethod string `json:"detection_method"`
	SystemConnected bool   `json:"traffic_system_connected"`
	TotalLights     int    `json:"total_lights"`
	SystemActive    bool   `json:"system_active"`
	SnapshotTime    string `json:"snapshot_timestamp,omitempty"`
	Timestamp       string `json:"timestamp"`
}

// buildStatusPayload combines the process probe with the current snapshot.
// Probe and snapshot are independent signals: the host can be running with
// no snapshot written yet, and a stale snapshot can outlive the host.
func (s *Server) buildStatusPayload(ctx context.Context) statusPayload {
	payload := statusPayload{
		ProcessName:     s.prober.ProcessName(),
		DetectionMethod: "pgrep",
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}

	if s.prober.Alive(ctx) {
		payload.Status = "running"
	} else {
		payload.Status = "stopped"
	}

	if snap, ok := s.snapshot.Read(); ok {
		payload.SystemConnected = true
		payload.TotalLights = snap.TotalLights
		payload.SystemActive = snap.SystemActive
		payload.SnapshotTime = snap.Timestamp
	}

	return payload
}

// handleStatus returns the simulation host status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.buildStatusPayload(r.Context()))
}

// handleListLights returns the full light list from the current snapshot.
// A missing or unreadable snapshot is reported as a disconnected
// integration, not an error.
func (s *Server) handleListLights(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot.Read()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"integration_status": "disconnected",
			"expected_file":      s.snapshot.Path(),
			"lights":             []any{},
			"total_lights":       0,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"integration_status": "connected",
		"source":             "status_file",
		"lights":             snap.Lights,
		"total_lights":       snap.TotalLights,
		"system_active":      snap.SystemActive,
		"timestamp":          snap.Timestamp,
	})
}

// handleListLightIDs returns the id list only.
func (s *Server) handleListLightIDs(w http.ResponseWriter, _ *http.Request) {
	ids := s.snapshot.LightIDs()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"light_ids":    ids,
		"total_lights": len(ids),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// setStatusRequest is the body of POST /lights/{id}/status.
type setStatusRequest struct {
	Status string `json:"status"`
}

// handleSetLightStatus forces a single light to a colour.
func (s *Server) handleSetLightStatus(w http.ResponseWriter, r *http.Request) {
	lightID := chi.URLParam(r, "id")

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	status, err := mailbox.ParseLightStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if !s.orchestrator.SetStatus(r.Context(), lightID, status) {
		writeInternalError(w, "failed to deliver command to the simulation mailbox")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"light_id":  lightID,
		"status":    status,
		"success":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// setModeRequest is the body of POST /lights/{id}/mode and POST /lights/mode.
type setModeRequest struct {
	Mode string `json:"mode"`
}

// handleSetLightMode switches a single light's control mode.
func (s *Server) handleSetLightMode(w http.ResponseWriter, r *http.Request) {
	lightID := chi.URLParam(r, "id")

	var req setModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	mode, err := mailbox.ParseControlMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if !s.orchestrator.SetMode(r.Context(), lightID, mode) {
		writeInternalError(w, "failed to deliver command to the simulation mailbox")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"light_id":  lightID,
		"mode":      mode,
		"success":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSetAllLightsMode fans a mode change out to every known light.
func (s *Server) handleSetAllLightsMode(w http.ResponseWriter, r *http.Request) {
	var req setModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	mode, err := mailbox.ParseControlMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	result, err := s.orchestrator.SetAllMode(r.Context(), mode)
	if err != nil {
		if errors.Is(err, control.ErrNoLights) {
			writeNotFound(w, "no traffic lights found")
			return
		}
		writeInternalError(w, "bulk mode change failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":          mode,
		"total_lights":  result.Total(),
		"succeeded":     result.Succeeded,
		"failed":        result.Failed,
		"success_count": len(result.Succeeded),
		"success":       len(result.Failed) == 0,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}
