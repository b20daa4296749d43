package handlers

import (
	"net/http"
	"strconv"
)

// HandleStats returns one player's lifetime statistics
func (ctx *Context) HandleStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "invalid player id")
		return
	}
	score, err := ctx.Manager.Stats(r.Context(), id)
	if err != nil {
		ctx.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// HandleLeaderboard lists the players with the most wins
func (ctx *Context) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			badRequest(w, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	board, err := ctx.Manager.Leaderboard(r.Context(), limit)
	if err != nil {
		ctx.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
