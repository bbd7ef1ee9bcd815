// internal/httpserver/routes_escapes.go
//
// GET /api/escapes?limit=N → the fastest recorded escapes (default 20, max 100).
// Mounted only when an escape ledger is configured.

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/escaperoom/internal/ledger"
)

// escapesRes is returned by /api/escapes.
type escapesRes struct {
	Escapes []ledger.Entry `json:"escapes"`
}

func (s *Server) mountEscapes(r chi.Router) {
	r.Get("/escapes", s.handleEscapes)
}

func (s *Server) handleEscapes(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.ledger.Leaderboard(r.Context(), limit)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("read escape ledger")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ledger_unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, escapesRes{Escapes: rows})
}
