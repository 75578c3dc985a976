package web

import (
	"crypto/subtle"
	"net/http"
)

const adminHeader = "X-Admin-Password"

// requireAdmin rejects requests without the admin password. Admin routes do
// not exist when no password is configured.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AdminPassword == "" {
			http.NotFound(w, r)
			return
		}
		given := r.Header.Get(adminHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(s.opts.AdminPassword)) != 1 {
			s.logger.Warn("admin access denied", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeError(w, http.StatusForbidden, "admin password required")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{
		"votes":           s.ledger.VoteCount(r.Context()),
		"items":           s.catalog.Len(),
		"active_sessions": s.sessions.Count(),
	})
}

func (s *Server) handleExportVotes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="votes.csv"`)
	if err := s.ledger.ExportCSV(r.Context(), w); err != nil {
		// Headers may already be sent; log only.
		s.logger.Error("export votes failed", "error", err)
	}
}

func (s *Server) handleWipeVotes(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.WipeVotes(r.Context()); err != nil {
		s.logger.Error("wipe votes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear votes")
		return
	}
	s.logger.Warn("all votes cleared by admin", "remote", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}
