// Package handlers exposes sessions over HTTP: JSON commands and queries
// plus a Server-Sent Events stream of announcements.
package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aaronzipp/crewmate/internal/manager"
	"github.com/aaronzipp/crewmate/internal/sse"
)

// Context holds shared application dependencies
type Context struct {
	Manager      *manager.Manager
	Hub          *sse.Hub
	FillWithBots bool
	Log          zerolog.Logger
}

// Routes registers every endpoint
func (ctx *Context) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", ctx.HandleHealth)

	mux.HandleFunc("POST /games", ctx.HandleCreateLobby)
	mux.HandleFunc("GET /games/{channel}", ctx.HandleGame)
	mux.HandleFunc("GET /codes/{code}", ctx.HandleGameByCode)
	mux.HandleFunc("POST /games/{channel}/join", ctx.HandleJoin)
	mux.HandleFunc("POST /games/{channel}/leave", ctx.HandleLeave)
	mux.HandleFunc("POST /games/{channel}/start", ctx.HandleStartGame)
	mux.HandleFunc("POST /games/{channel}/end", ctx.HandleEndGame)

	mux.HandleFunc("GET /games/{channel}/room", ctx.HandleRoom)
	mux.HandleFunc("POST /games/{channel}/move", ctx.HandleMove)
	mux.HandleFunc("POST /games/{channel}/fast-travel", ctx.HandleFastTravel)
	mux.HandleFunc("POST /games/{channel}/vent", ctx.HandleVent)
	mux.HandleFunc("POST /games/{channel}/task", ctx.HandleTask)
	mux.HandleFunc("POST /games/{channel}/kill", ctx.HandleKill)
	mux.HandleFunc("POST /games/{channel}/shield", ctx.HandleShield)
	mux.HandleFunc("POST /games/{channel}/sabotage", ctx.HandleSabotage)
	mux.HandleFunc("POST /games/{channel}/fix", ctx.HandleFix)

	mux.HandleFunc("POST /games/{channel}/report", ctx.HandleReport)
	mux.HandleFunc("POST /games/{channel}/meeting", ctx.HandleMeeting)
	mux.HandleFunc("POST /games/{channel}/vote", ctx.HandleVote)
	mux.HandleFunc("GET /games/{channel}/votes", ctx.HandleVotes)

	mux.HandleFunc("GET /games/{channel}/events", ctx.HandleSSE)
	mux.HandleFunc("GET /players/{id}/stats", ctx.HandleStats)
	mux.HandleFunc("GET /leaderboard", ctx.HandleLeaderboard)
	return ctx.accessLog(mux)
}

// HandleHealth answers liveness probes
func (ctx *Context) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": len(ctx.Manager.Sessions())})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush lets SSE responses through the recorder
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (ctx *Context) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		ctx.Log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
