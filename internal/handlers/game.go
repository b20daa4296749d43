package handlers

import (
	"net/http"

	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/render"
	"github.com/aaronzipp/crewmate/internal/session"
)

// act decodes a player command, runs it against the channel's session and
// answers with the player's surroundings
func (ctx *Context) act(w http.ResponseWriter, r *http.Request, fn func(s *session.Session, cmd command) (any, error)) {
	cmd, ok := decodeCommand(w, r, true)
	if !ok {
		return
	}
	s, ok := ctx.sessionFor(w, r)
	if !ok {
		return
	}
	extra, err := fn(s, cmd)
	if err != nil {
		ctx.writeError(w, r, err)
		return
	}
	body := map[string]any{"ok": true}
	if extra != nil {
		body["result"] = extra
	}
	if rv, err := s.RoomView(cmd.PlayerID); err == nil {
		body["room"] = rv
	}
	writeJSON(w, http.StatusOK, body)
}

// HandleRoom describes where a player stands
func (ctx *Context) HandleRoom(w http.ResponseWriter, r *http.Request) {
	s, ok := ctx.sessionFor(w, r)
	if !ok {
		return
	}
	rv, err := s.RoomView(viewer(r))
	if err != nil {
		ctx.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": rv, "text": render.Room(rv)})
}

// HandleMove walks to an adjacent room
func (ctx *Context) HandleMove(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		return nil, s.Move(cmd.PlayerID, cmd.Room)
	})
}

// HandleFastTravel jumps to any room using a charge
func (ctx *Context) HandleFastTravel(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		return nil, s.FastTravel(cmd.PlayerID, cmd.Room)
	})
}

// HandleVent enters, leaves or travels through the vents
func (ctx *Context) HandleVent(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		switch cmd.Action {
		case "enter":
			return nil, s.EnterVent(cmd.PlayerID)
		case "exit":
			return nil, s.ExitVent(cmd.PlayerID)
		default:
			return nil, s.Vent(cmd.PlayerID, cmd.Room)
		}
	})
}

// HandleTask completes one of the player's tasks
func (ctx *Context) HandleTask(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		done, err := s.DoTask(cmd.PlayerID, cmd.Task)
		return map[string]bool{"completed": done}, err
	})
}

// HandleKill attempts a kill
func (ctx *Context) HandleKill(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		outcome, err := s.Kill(cmd.PlayerID, cmd.Target)
		return map[string]session.KillOutcome{"outcome": outcome}, err
	})
}

// HandleShield protects another player
func (ctx *Context) HandleShield(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		return nil, s.Shield(cmd.PlayerID, cmd.Target)
	})
}

// HandleSabotage triggers a sabotage
func (ctx *Context) HandleSabotage(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		kind, ok := models.ParseSabotage(cmd.Kind)
		if !ok {
			kind = models.Sabotage(cmd.Kind)
		}
		return nil, s.Sabotage(cmd.PlayerID, kind)
	})
}

// HandleFix performs one step of fixing the active sabotage
func (ctx *Context) HandleFix(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		kind, ok := models.ParseSabotage(cmd.Kind)
		if !ok {
			kind = models.Sabotage(cmd.Kind)
		}
		step := cmd.Step
		if step == 0 {
			step = 1
		}
		fixed, err := s.FixSabotage(cmd.PlayerID, kind, step)
		return map[string]bool{"fixed": fixed}, err
	})
}

// HandleReport reports the bodies in the player's room
func (ctx *Context) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		return nil, s.ReportBody(cmd.PlayerID)
	})
}

// HandleMeeting calls an emergency meeting
func (ctx *Context) HandleMeeting(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		return nil, s.CallMeeting(cmd.PlayerID)
	})
}

// HandleVote votes for a player or skips
func (ctx *Context) HandleVote(w http.ResponseWriter, r *http.Request) {
	ctx.act(w, r, func(s *session.Session, cmd command) (any, error) {
		if cmd.Skip {
			return nil, s.Skip(cmd.PlayerID)
		}
		return nil, s.CastVote(cmd.PlayerID, cmd.Target)
	})
}

// HandleVotes shows who has voted in the current or last meeting
func (ctx *Context) HandleVotes(w http.ResponseWriter, r *http.Request) {
	s, ok := ctx.sessionFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.VoteSummary())
}
