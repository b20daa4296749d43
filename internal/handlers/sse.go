package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aaronzipp/crewmate/internal/render"
)

// HandleSSE streams a channel's announcements, plus the ?player= viewer's
// direct messages, until the game ends or the client disconnects
func (ctx *Context) HandleSSE(w http.ResponseWriter, r *http.Request) {
	s, ok := ctx.sessionFor(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	playerID := viewer(r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	events, unsubscribe := ctx.Hub.Subscribe(s.ChannelID(), playerID)
	defer unsubscribe()

	// first frame is the current roster so clients can render immediately
	fmt.Fprintf(w, "event: roster\ndata: %s\n\n", sseData(render.Roster(s.PublicView(playerID))))
	flusher.Flush()

	log := ctx.Log.With().Str("channel", s.ChannelID()).Int64("player", playerID).Logger()
	log.Debug().Msg("stream opened")
	for {
		select {
		case <-r.Context().Done():
			log.Debug().Msg("stream closed by client")
			return
		case msg, ok := <-events:
			if !ok {
				log.Debug().Msg("stream released")
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}

// sseData turns a multi-line text into one data field per line
func sseData(text string) string {
	return strings.ReplaceAll(strings.TrimRight(text, "\n"), "\n", "\ndata: ")
}
