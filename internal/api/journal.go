package api

import (
	"net/http"
	"strconv"

	"trafficgrid/internal/journal"
)

// handleListJournal returns recent command journal entries.
//
// Query parameters: light, action, limit, offset.
func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeNotFound(w, "command journal is not enabled")
		return
	}

	filter := journal.Filter{
		LightID: r.URL.Query().Get("light"),
		Action:  r.URL.Query().Get("action"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "offset must be an integer")
			return
		}
		filter.Offset = offset
	}

	result, err := s.journal.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("journal query failed", "error", err)
		writeInternalError(w, "journal query failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
