// internal/httpserver/server.go
//
// HTTP server wiring for the guessing games backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, JSON, CORS, timeouts,
//     panic recovery).
//   - Public endpoints: "/", "/health".
//   - Game API per kind, mounted at /api/hangman and /api/number (routes_game.go).
//   - Maintenance hooks: GET /crons/send_reminder, POST /tasks/cache_average_attempts.
//   - Mapping domain errors to status codes and JSON error bodies.
//
// Notes:
//   - CORS allows a single configured origin.
//   - Error bodies are {"error":"<code>","message":"<text>"}.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guessgames/internal/game"
	"github.com/robalobadob/guessgames/internal/notify"
	"github.com/robalobadob/guessgames/internal/service"
	"github.com/robalobadob/guessgames/internal/store"
)

// Reminder runs one reminder scan; *notify.Reminder implements it.
type Reminder interface {
	Run(ctx context.Context) (notify.Report, error)
}

// Server bundles the router and the services behind it.
type Server struct {
	r        *chi.Mux
	svc      *service.Service
	reminder Reminder
}

// New constructs a Server, installs middleware, and registers routes.
// clientOrigin is the single origin allowed by CORS.
func New(svc *service.Service, reminder Reminder, clientOrigin string) *Server {
	s := &Server{r: chi.NewRouter(), svc: svc, reminder: reminder}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(accessLog)                       // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(clientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "guessgames",
			"games":   game.Kinds,
			"endpoints": []string{
				"/health", "/api/{kind}/user", "/api/{kind}/game", "/api/{kind}/scores",
				"/api/{kind}/user/rankings", "/api/{kind}/games/average_attempts",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// --- game APIs ---
	for _, kind := range game.Kinds {
		s.r.Route("/api/"+string(kind), func(r chi.Router) { s.mountGame(r, kind) })
	}

	// --- cron / task hooks ---
	s.r.Get("/crons/send_reminder", s.handleSendReminder)
	s.r.Post("/tasks/cache_average_attempts", s.handleCacheAverage)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "no route for " + r.URL.Path})
	})
	return s
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler { return s.r }

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

// cors enables CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog logs method, path, status and latency with the request ID.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("req_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("took", d).
		Msg("request")
})

// ------------------------------ responses ----------------------------------

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type stringMessage struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to a status code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		code   string
	)
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, game.ErrNotCancellable):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, game.ErrGameOver):
		status, code = http.StatusForbidden, "game_over"
	case errors.Is(err, game.ErrInvalidMove), errors.Is(err, service.ErrBadRequest), errors.Is(err, game.ErrUnknownKind):
		status, code = http.StatusBadRequest, "bad_request"
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
}

// ------------------------------ hooks --------------------------------------

type reminderRes struct {
	Eligible int `json:"eligible"`
	Sent     int `json:"sent"`
	Failed   int `json:"failed"`
}

// handleSendReminder runs the reminder scan; scheduled callers hit it daily.
func (s *Server) handleSendReminder(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reminder.Run(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Int("sent", rep.Sent).Int("failed", rep.Failed).Msg("reminders sent")
	writeJSON(w, http.StatusOK, reminderRes{Eligible: rep.Eligible, Sent: rep.Sent, Failed: rep.Failed})
}

// handleCacheAverage refreshes the cached average for ?kind=, or every kind.
func (s *Server) handleCacheAverage(w http.ResponseWriter, r *http.Request) {
	kinds := game.Kinds
	if q := r.URL.Query().Get("kind"); q != "" {
		k, err := game.ParseKind(q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		kinds = []game.Kind{k}
	}
	for _, k := range kinds {
		if err := s.svc.RefreshAverage(r.Context(), k); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
