// internal/httpserver/server.go
//
// HTTP server wiring for the Haunted Manor backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints under /api: room, door, hallway, escape, status.
//   - Escape ledger endpoint /api/escapes (only when a ledger is configured).
//
// Notes:
//   - Every game endpoint answers with the manor.Response envelope, 200 or 400.
//   - CORS is origin-aware and credentials-enabled.

package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/escaperoom/internal/ledger"
	"github.com/robalobadob/escaperoom/internal/manor"
	"github.com/robalobadob/escaperoom/internal/metrics"
)

// Leaderboard is the read side of the escape ledger.
type Leaderboard interface {
	Leaderboard(ctx context.Context, limit int) ([]ledger.Entry, error)
}

// Server bundles router, game engine, metrics and optional ledger.
type Server struct {
	r             *chi.Mux
	http          *http.Server
	engine        *manor.Engine
	metrics       *metrics.Metrics
	ledger        Leaderboard
	defaultPlayer string
	origin        string
	timeout       time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLedger mounts /api/escapes backed by lb.
func WithLedger(lb Leaderboard) Option { return func(s *Server) { s.ledger = lb } }

// WithDefaultPlayer sets the player id used when playerId is omitted.
func WithDefaultPlayer(id string) Option { return func(s *Server) { s.defaultPlayer = id } }

// WithClientOrigin sets the single CORS origin.
func WithClientOrigin(origin string) Option { return func(s *Server) { s.origin = origin } }

// WithRequestTimeout bounds handler time.
func WithRequestTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

// New constructs a Server, installs middleware, and registers routes.
func New(engine *manor.Engine, m *metrics.Metrics, opts ...Option) *Server {
	s := &Server{
		r:             chi.NewRouter(),
		engine:        engine,
		metrics:       m,
		defaultPlayer: "player1",
		origin:        "http://localhost:5173",
		timeout:       10 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)             // add X-Request-ID
	s.r.Use(chimw.RealIP)                // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger)) // request-scoped logger
	s.r.Use(accessLog)                   // one line per request
	s.r.Use(chimw.Recoverer)             // recover from panics
	s.r.Use(chimw.Timeout(s.timeout))    // bound handler time
	s.r.Use(jsonContentType)             // default JSON responses
	s.r.Use(cors(s.origin))              // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"haunted-manor","endpoints":["/health","/metrics","GET /api/room","POST /api/door","GET /api/hallway","POST /api/escape","GET /api/status","GET /api/escapes"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Method(http.MethodGet, "/metrics", m.Handler())

	s.r.Route("/api", func(r chi.Router) {
		s.mountManor(r)
		if s.ledger != nil {
			s.mountEscapes(r)
		}
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	s.http = &http.Server{Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Start begins serving HTTP on addr. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.http.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error { return s.http.Shutdown(ctx) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one info line per request through the request logger.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("requestId", chimw.GetReqID(r.Context())).
		Msg("request")
})

// ------------------------------- small util --------------------------------

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// levelFor picks the log level for a game outcome.
func levelFor(ok bool) zerolog.Level {
	if ok {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
