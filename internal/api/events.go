package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/lockguard-core/internal/audit"
)

type eventsResponse struct {
	Identity string        `json:"identity"`
	Kind     audit.Kind    `json:"kind"`
	Date     string        `json:"date"`
	Events   []audit.Event `json:"events"`
}

// handleListEvents returns the caller's events of one kind for a UTC day.
//
// Query parameters:
//   - date: YYYY-MM-DD, default today (UTC)
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	kind, err := audit.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeBadRequest(w, "kind must be one of pir, access, intrusion")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.now().UTC().Format(audit.DayLayout)
	} else if _, err := time.Parse(audit.DayLayout, date); err != nil {
		writeBadRequest(w, "date must be YYYY-MM-DD")
		return
	}

	identity := identityFromContext(r.Context())
	events, err := s.events.ListDay(r.Context(), identity, kind, date)
	if err != nil {
		s.logger.Error("failed to list device events", "identity", identity, "kind", kind, "error", err)
		writeInternalError(w, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Identity: identity,
		Kind:     kind,
		Date:     date,
		Events:   events,
	})
}
