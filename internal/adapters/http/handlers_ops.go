package web

import (
	"context"
	"net/http"
	"time"

	"arff/internal/adapters/http/middleware"
)

// handleHealthz pings the database with a short deadline.
func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NavEntry is one navigation link.
type NavEntry struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// navigation lists every section with the roles that see it. Admin sees all.
var navigation = []struct {
	entry NavEntry
	roles []middleware.Role
}{
	{NavEntry{"Dashboard", "/dashboard"}, reporters},
	{NavEntry{"Roster", "/firefighters"}, trainers},
	{NavEntry{"Courses", "/courses"}, anyRole},
	{NavEntry{"Classes", "/classes"}, trainers},
	{NavEntry{"Expiry reports", "/reports"}, reporters},
	{NavEntry{"Import roster", "/firefighters/import"}, planners},
	{NavEntry{"Delivery queue", "/admin/outbox"}, adminsOnly},
}

// NavFor returns the entries visible to p, in menu order.
func NavFor(p middleware.Principal) []NavEntry {
	out := make([]NavEntry, 0, len(navigation))
	for _, n := range navigation {
		if p.Allows(n.roles...) {
			out = append(out, n.entry)
		}
	}
	return out
}

func (s *server) handleNav(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, struct {
		User    string          `json:"user"`
		Role    middleware.Role `json:"role"`
		Entries []NavEntry      `json:"entries"`
	}{p.User, p.Role, NavFor(p)})
}
