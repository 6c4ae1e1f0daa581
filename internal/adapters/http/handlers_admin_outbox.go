package web

import (
	"net/http"
	"strconv"

	"arff/internal/domain/outbox"
)

// handleListOutbox lists delivery queue entries.
// ?status= defaults to failed; ?limit= is capped at 100.
func (s *server) handleListOutbox(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "":
		status = outbox.StatusFailed
	case outbox.StatusPending, outbox.StatusRetrying, outbox.StatusSent, outbox.StatusFailed, outbox.StatusAbandoned:
	default:
		writeError(w, badRequest("unknown status %q", status))
		return
	}

	entries, err := s.Stores.Outbox.ListByStatus(r.Context(), status, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOutboxViews(entries))
}

// handleRetryOutbox puts a failed entry back in the queue.
func (s *server) handleRetryOutbox(w http.ResponseWriter, r *http.Request) {
	if err := s.Outbox.Retry(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "retry queued"})
}

// handleAbandonOutbox stops delivery attempts for an entry.
func (s *server) handleAbandonOutbox(w http.ResponseWriter, r *http.Request) {
	if err := s.Outbox.Abandon(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}
