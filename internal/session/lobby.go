package session

import (
	"strconv"
	"time"

	"github.com/aaronzipp/crewmate/internal/catalog"
	"github.com/aaronzipp/crewmate/internal/game"
	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/ship"
)

// Join seats a player in the lobby
func (s *Session) Join(id int64, name, avatar string) (models.Player, error) {
	var joined models.Player
	err := s.apply(true, func() error {
		g := s.game
		if g.Phase == models.PhaseEnded {
			return game.Reject(game.CodeGameEnded, "the game is over")
		}
		if g.Phase != models.PhaseLobby {
			return game.Reject(game.CodeWrongPhase, "the game has already started")
		}
		p, err := game.AddPlayer(g, id, name, avatar)
		if err != nil {
			return err
		}
		if g.RolesAssigned {
			p.AssignTasks(catalog.Generate(s.rng, catalog.DefaultCount(s.rng)))
		}
		joined = *p.Clone()
		s.announce(models.Event{Kind: models.EventPlayerJoined, Actor: p.Name, Count: len(g.Players), Total: g.MaxPlayers})
		return nil
	})
	return joined, err
}

// Leave removes a player. Leaving a running game can decide it or close the
// current vote. Unknown players are ignored.
func (s *Session) Leave(id int64) error {
	return s.apply(true, func() error {
		g := s.game
		if g.Phase == models.PhaseEnded {
			return game.Reject(game.CodeGameEnded, "the game is over")
		}
		p, ok := game.RemovePlayer(g, id)
		if !ok {
			return nil
		}
		delete(s.fixes, id)
		s.announce(models.Event{Kind: models.EventPlayerLeft, Actor: p.Name, Count: len(g.Players), Total: g.MaxPlayers})
		if !g.Phase.InProgress() {
			return nil
		}
		if s.settle() {
			return nil
		}
		if g.Phase == models.PhaseMeeting && game.AllAliveVoted(g) {
			_ = s.resolve(g.MeetingSeq)
		}
		return nil
	})
}

// Start moves the lobby into the task phase. Free seats are filled with bots
// when enabled and roles are dealt unless they already were.
func (s *Session) Start() error {
	return s.apply(true, func() error {
		g := s.game
		if g.Phase == models.PhaseEnded {
			return game.Reject(game.CodeGameEnded, "the game is over")
		}
		if g.Phase != models.PhaseLobby {
			return game.Reject(game.CodeWrongPhase, "the game has already started")
		}
		if s.fill && len(g.Players) > 0 {
			game.AddDummies(g, s.rng)
		}
		if len(g.Players) < models.MinPlayers {
			return game.Reject(game.CodeInvalidSettings, "need at least %d players, have %d", models.MinPlayers, len(g.Players)).
				WithMetadata("min_players", strconv.Itoa(models.MinPlayers))
		}
		if !g.RolesAssigned {
			game.AssignRoles(g, s.rng, g.Quotas)
		}

		now := s.now()
		grace := s.ticks(s.tuning.StartGrace)
		for _, p := range g.Roster() {
			p.Alive = true
			p.Location = ship.SpawnRoom
			p.InVent = false
			p.ClearVote()
			p.EmergencyMeetings = s.tuning.EmergencyMeetings
			p.FastTravels = s.tuning.FastTravels
			p.KillCooldown, p.SabotageCooldown, p.ShieldCooldown = 0, 0, 0
			if p.IsImpostor() {
				p.KillCooldown = grace
				p.SabotageCooldown = grace
			}
			if len(p.Tasks) == 0 {
				p.AssignTasks(catalog.Generate(s.rng, catalog.DefaultCount(s.rng)))
			}
		}
		g.Phase = models.PhaseTasks
		g.StartedAt = now
		g.LastKillAt = now
		g.LastReportAt = time.Time{}
		g.Ship.ClearAllBodies()
		game.ClearVotes(g)

		var impostors []string
		for _, id := range g.Impostors {
			impostors = append(impostors, g.Players[id].Name)
		}
		for _, p := range g.Roster() {
			ev := models.Event{Kind: models.EventRoleAssigned, Role: p.Role}
			if p.IsImpostor() {
				ev.Names = impostors
			}
			s.direct(p.ID, ev)
		}
		completed, total := game.TaskProgress(g)
		s.announce(models.Event{Kind: models.EventGameStarted, Count: len(g.Impostors), Total: total - completed})
		s.log.Info().Int("players", len(g.Players)).Int("impostors", len(g.Impostors)).Msg("game started")

		s.launch()
		return nil
	})
}

// End stops the game without a winner
func (s *Session) End(reason string) error {
	return s.apply(true, func() error {
		if s.game.Phase == models.PhaseEnded {
			return game.Reject(game.CodeGameEnded, "the game is over")
		}
		if reason == "" {
			reason = "the game was ended"
		}
		s.finish(models.WinnerNone, reason)
		return nil
	})
}
