// internal/httpserver/routes_manor.go
//
// HTTP routes for the manor itself, mounted under /api:
//   - GET  /api/room    → reset the player to the parlor
//   - POST /api/door    → {"key": "..."} unlock the parlor door
//   - GET  /api/hallway → enter the hallway once the door is open
//   - POST /api/escape  → {"key": "..."} break the curse
//   - GET  /api/status  → where is the player now
//
// Every route takes an optional ?playerId= (default "player1").

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/escaperoom/internal/manor"
	"github.com/robalobadob/escaperoom/internal/metrics"
)

// mountManor registers the game routes on r.
func (s *Server) mountManor(r chi.Router) {
	r.Get("/room", s.handleRoom)
	r.Post("/door", s.handleDoor)
	r.Get("/hallway", s.handleHallway)
	r.Post("/escape", s.handleEscape)
	r.Get("/status", s.handleStatus)
}

// keyReq is the request payload for /door and /escape.
type keyReq struct {
	Key *string `json:"key"`
}

// decodeKey reads the guessed key from the body.
// Malformed JSON, a missing field or a non-string value all yield nil.
func decodeKey(r *http.Request) *string {
	var req keyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil
	}
	return req.Key
}

// playerID returns ?playerId= or the configured default.
func (s *Server) playerID(r *http.Request) string {
	if id := r.URL.Query().Get("playerId"); id != "" {
		return id
	}
	return s.defaultPlayer
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, metrics.ActionRoom, s.engine.Room(r.Context(), s.playerID(r)))
}

func (s *Server) handleDoor(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, metrics.ActionDoor, s.engine.Door(r.Context(), s.playerID(r), decodeKey(r)))
}

func (s *Server) handleHallway(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, metrics.ActionHallway, s.engine.Hallway(r.Context(), s.playerID(r)))
}

func (s *Server) handleEscape(w http.ResponseWriter, r *http.Request) {
	out := s.engine.Escape(r.Context(), s.playerID(r), decodeKey(r))
	if out.OK {
		s.metrics.ObserveEscape()
	}
	s.respond(w, r, metrics.ActionEscape, out)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, metrics.ActionStatus, s.engine.Status(r.Context(), s.playerID(r)))
}

// respond counts, logs and writes an outcome: 200 if accepted, 400 otherwise.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, action string, out manor.Outcome) {
	s.metrics.ObserveRequest(action, string(out.Response.Status))
	hlog.FromRequest(r).WithLevel(levelFor(out.OK)).
		Str("action", action).
		Str("player", s.playerID(r)).
		Str("status", string(out.Response.Status)).
		Int("stage", int(out.Response.CurrentStage)).
		Msg("manor")

	code := http.StatusOK
	if !out.OK {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, out.Response)
}
