package handlers

import (
	"net/http"
)

// HandleStartGame deals roles and starts the task phase
func (ctx *Context) HandleStartGame(w http.ResponseWriter, r *http.Request) {
	s, ok := ctx.sessionFor(w, r)
	if !ok {
		return
	}
	if err := s.Start(); err != nil {
		ctx.writeError(w, r, err)
		return
	}
	ctx.Log.Info().Str("channel", s.ChannelID()).Msg("game started over http")
	writeJSON(w, http.StatusOK, s.PublicView(0))
}

// HandleEndGame stops a game without a winner
func (ctx *Context) HandleEndGame(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeCommand(w, r, false)
	if !ok {
		return
	}
	if err := ctx.Manager.End(r.PathValue("channel"), cmd.Reason); err != nil {
		ctx.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
