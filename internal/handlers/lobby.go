package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aaronzipp/crewmate/internal/models"
)

type createRequest struct {
	ChannelID      string `json:"channel_id"`
	MaxPlayers     int    `json:"max_players"`
	Impostors      int    `json:"impostors"`
	Scientists     int    `json:"scientists"`
	Engineers      int    `json:"engineers"`
	GuardianAngels int    `json:"guardian_angels"`
	FillWithBots   *bool  `json:"fill_with_bots"`
}

// HandleCreateLobby opens a lobby in a channel
func (ctx *Context) HandleCreateLobby(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	settings := models.LobbySettings{
		MaxPlayers: req.MaxPlayers,
		Quotas: models.RoleQuotas{
			Impostors:      req.Impostors,
			Scientists:     req.Scientists,
			Engineers:      req.Engineers,
			GuardianAngels: req.GuardianAngels,
		},
		FillWithBots: ctx.FillWithBots,
	}
	if settings.MaxPlayers == 0 {
		settings.MaxPlayers = models.MaxPlayers
	}
	if settings.Quotas.Impostors == 0 {
		settings.Quotas.Impostors = 1
	}
	if req.FillWithBots != nil {
		settings.FillWithBots = *req.FillWithBots
	}

	s, err := ctx.Manager.Create(strings.TrimSpace(req.ChannelID), settings)
	if err != nil {
		ctx.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.PublicView(0))
}

// HandleGame shows a channel's game to the ?player= viewer
func (ctx *Context) HandleGame(w http.ResponseWriter, r *http.Request) {
	s, ok := ctx.sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.PublicView(viewer(r)))
}

// HandleGameByCode finds a game by join code
func (ctx *Context) HandleGameByCode(w http.ResponseWriter, r *http.Request) {
	s, err := ctx.Manager.GetByCode(r.PathValue("code"))
	if err != nil {
		ctx.writeError(w, r, err)
		return
	}
	pv := s.PublicView(0)
	writeJSON(w, http.StatusOK, map[string]any{"channel_id": s.ChannelID(), "game": pv})
}

// HandleJoin seats a player in the lobby
func (ctx *Context) HandleJoin(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeCommand(w, r, true)
	if !ok {
		return
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		badRequest(w, "name is required")
		return
	}
	s, ok := ctx.sessionFor(w, r)
	if !ok {
		return
	}
	p, err := s.Join(cmd.PlayerID, name, cmd.Avatar)
	if err != nil {
		ctx.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleLeave removes a player
func (ctx *Context) HandleLeave(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeCommand(w, r, true)
	if !ok {
		return
	}
	s, ok := ctx.sessionFor(w, r)
	if !ok {
		return
	}
	if err := s.Leave(cmd.PlayerID); err != nil {
		ctx.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
