package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"trafficgrid/internal/control"
)

// attackRequest is the body of POST /api/v1/attack.
type attackRequest struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"`
}

// defaultAttackDuration is used when the request omits a duration.
const defaultAttackDuration = 10

// handleAttack runs a chaos scenario against the whole fleet. This exists
// for cybersecurity demonstrations: it shows what a compromised control
// plane could do to road infrastructure.
func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	req := attackRequest{
		Type:     string(control.AttackRandomLights),
		Duration: defaultAttackDuration,
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.orchestrator.Attack(r.Context(), control.AttackType(req.Type), req.Duration)
	if err != nil {
		switch {
		case errors.Is(err, control.ErrUnknownAttackType):
			writeError(w, http.StatusBadRequest, ErrCodeValidation,
				"unknown attack type. Use: random_lights, all_red, all_green")
		case errors.Is(err, control.ErrNoLights):
			writeNotFound(w, "no traffic lights found")
		default:
			writeInternalError(w, "attack simulation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"attack_id":             result.ID,
		"attack_type":           result.Type,
		"duration":              result.Duration,
		"affected_lights":       result.Succeeded,
		"failed_lights":         result.Failed,
		"total_lights_affected": len(result.Succeeded),
		"success":               true,
		"warning":               "This is a cybersecurity demonstration",
		"timestamp":             time.Now().UTC().Format(time.RFC3339),
	})
}

// handleRestore returns every light to automatic operation after a demo.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	result, err := s.orchestrator.Restore(r.Context())
	if err != nil {
		if errors.Is(err, control.ErrNoLights) {
			writeNotFound(w, "no traffic lights found")
			return
		}
		writeInternalError(w, "restore failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "Traffic system restored to normal operation",
		"restored_lights": result.Succeeded,
		"failed_lights":   result.Failed,
		"total_restored":  len(result.Succeeded),
		"success":         len(result.Failed) == 0,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
