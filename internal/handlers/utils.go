package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/aaronzipp/crewmate/internal/game"
	"github.com/aaronzipp/crewmate/internal/session"
)

// errorBody is the JSON shape of every failed request
type errorBody struct {
	Code     game.Code         `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps rejections to their status and anything else to 500
func (ctx *Context) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rej *game.Rejection
	if errors.As(err, &rej) {
		writeJSON(w, rej.Code.HTTPStatus(), errorBody{Code: rej.Code, Message: rej.Message, Metadata: rej.Metadata})
		return
	}
	ctx.Log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Code: "internal", Message: "internal error"})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: msg})
}

// command is the body every player action carries
type command struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Room     string `json:"room,omitempty"`
	Target   int64  `json:"target,omitempty"`
	Skip     bool   `json:"skip,omitempty"`
	Task     int    `json:"task,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Step     int    `json:"step,omitempty"`
	Action   string `json:"action,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// decodeCommand reads the request body. Humans act with positive ids.
func decodeCommand(w http.ResponseWriter, r *http.Request, needPlayer bool) (command, bool) {
	var cmd command
	if r.ContentLength != 0 {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&cmd)
		if err != nil && !errors.Is(err, io.EOF) {
			badRequest(w, "invalid JSON body")
			return command{}, false
		}
	}
	if needPlayer && cmd.PlayerID <= 0 {
		badRequest(w, "player_id is required")
		return command{}, false
	}
	return cmd, true
}

// sessionFor resolves the {channel} path segment
func (ctx *Context) sessionFor(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := ctx.Manager.Get(r.PathValue("channel"))
	if err != nil {
		ctx.writeError(w, r, err)
		return nil, false
	}
	return s, true
}

// viewer reads the optional ?player= query parameter
func viewer(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get("player"), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
