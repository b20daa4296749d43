package session

import (
	"context"
	"strconv"
	"time"

	"github.com/aaronzipp/crewmate/internal/game"
	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/ship"
)

// ReportBody reports the bodies in the reporter's room and calls a meeting
func (s *Session) ReportBody(id int64) error {
	return s.apply(true, func() error {
		p, err := s.actor(id, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		if p.InVent {
			return game.Reject(game.CodeInVent, "climb out of the vent first")
		}
		if err := s.canReport(p.Location); err != nil {
			return err
		}
		s.report(p, p.Location)
		return nil
	})
}

// DiscoverBody has a living player stumble on the bodies in room. The
// reporter is moved there first, which is how bots simulate someone else
// finding a body.
func (s *Session) DiscoverBody(reporterID int64, room string) error {
	return s.apply(true, func() error {
		p, err := s.actor(reporterID, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		dest, err := s.resolveRoom(room)
		if err != nil {
			return err
		}
		if err := s.canReport(dest); err != nil {
			return err
		}
		p.InVent = false
		p.Location = dest
		s.report(p, dest)
		return nil
	})
}

func (s *Session) canReport(room string) error {
	g := s.game
	if len(g.Ship.Bodies(room)) == 0 {
		return game.Reject(game.CodeNoBody, "there is no body in %s", room)
	}
	now := s.now()
	if left := s.tuning.ReportGrace - now.Sub(g.StartedAt); left > 0 {
		return game.Reject(game.CodeReportGrace, "reports open %s after the start", s.tuning.ReportGrace).
			WithMetadata("remaining", left.Round(time.Second).String())
	}
	if !g.LastReportAt.IsZero() {
		if left := s.tuning.ReportCooldown - now.Sub(g.LastReportAt); left > 0 {
			return game.Reject(game.CodeReportCooldown, "a body was reported moments ago").
				WithMetadata("remaining", left.Round(time.Second).String())
		}
	}
	return nil
}

func (s *Session) report(p *models.Player, room string) {
	g := s.game
	victims := g.Ship.ClearBodies(room)
	g.LastReportAt = s.now()
	s.announce(models.Event{Kind: models.EventBodyReported, Actor: p.Name, Room: room, Names: victims})
	s.beginMeeting(p.ID)

	victim := int64(0)
	if v, ok := g.BodyOf(victims[0], room); ok {
		victim = v.ID
	}
	g.Witnesses = game.NearbyWitnesses(g, s.rng, victim, p.ID, game.WitnessOdds{
		Min:            s.tuning.Witnesses.Min,
		Max:            s.tuning.Witnesses.Max,
		ImpostorChance: s.tuning.WitnessImpostorChance,
	})
}

// CallMeeting spends one of the caller's emergency meetings
func (s *Session) CallMeeting(id int64) error {
	return s.apply(true, func() error {
		g := s.game
		p, err := s.actor(id, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		if p.InVent {
			return game.Reject(game.CodeInVent, "climb out of the vent first")
		}
		if p.EmergencyMeetings <= 0 {
			return game.Reject(game.CodeNoMeetingsLeft, "no emergency meetings left")
		}
		if left := s.tuning.ReportGrace - s.now().Sub(g.StartedAt); left > 0 {
			return game.Reject(game.CodeReportGrace, "meetings open %s after the start", s.tuning.ReportGrace).
				WithMetadata("remaining", left.Round(time.Second).String())
		}
		if g.MeetingCooldown > 0 {
			return game.Reject(game.CodeMeetingCooldown, "the button recharges in %d seconds", g.MeetingCooldown).
				WithMetadata("remaining", strconv.Itoa(g.MeetingCooldown))
		}
		if g.ActiveSabotage != models.SabotageNone {
			return game.Reject(game.CodeSabotageActive, "cannot call a meeting during a sabotage")
		}
		p.EmergencyMeetings--
		p.MeetingsCalled++
		s.announce(models.Event{Kind: models.EventMeetingCalled, Actor: p.Name, Count: p.EmergencyMeetings})
		s.beginMeeting(p.ID)
		return nil
	})
}

func (s *Session) beginMeeting(caller int64) {
	g := s.game
	g.Phase = models.PhaseMeeting
	game.ClearVotes(g)
	g.Witnesses = nil
	g.MeetingSeq++
	g.MeetingCaller = caller
	g.MeetingStartedAt = s.now()
	g.ActiveSabotage = models.SabotageNone
	s.fixes = nil
	for _, p := range g.Players {
		p.InVent = false
	}
	s.armMeeting(g.MeetingSeq)
}

// armMeeting starts the timeout and the bot voters for meeting seq
func (s *Session) armMeeting(seq int) {
	left := s.tuning.MeetingTimeout - s.now().Sub(s.game.MeetingStartedAt)
	s.sched.After(max(left, 0), "meeting timeout "+strconv.Itoa(seq), func(context.Context) {
		_ = s.apply(true, func() error { return s.resolve(seq) })
	})
	if s.driver != nil {
		s.sched.Go("votes "+strconv.Itoa(seq), func(ctx context.Context) {
			s.driver.Vote(ctx, s, seq)
		})
	}
}

// CastVote records a living player's vote. Voting again replaces the old
// vote. The meeting closes as soon as every living player has voted.
func (s *Session) CastVote(voterID, targetID int64) error {
	return s.apply(true, func() error {
		g := s.game
		p, err := s.actor(voterID, models.PhaseMeeting, false)
		if err != nil {
			return err
		}
		if targetID != models.SkipVote {
			t, ok := g.Players[targetID]
			if !ok || !t.Alive {
				return game.Reject(game.CodeInvalidTarget, "you can only vote for a living player")
			}
		}
		target := targetID
		g.Votes[voterID] = target
		p.Vote = &target
		s.announce(models.Event{Kind: models.EventVoteCast, Actor: p.Name, Count: len(g.Votes), Total: len(g.AlivePlayers())})
		if game.AllAliveVoted(g) {
			return s.resolve(g.MeetingSeq)
		}
		return nil
	})
}

// Skip votes to eject no one
func (s *Session) Skip(voterID int64) error {
	return s.CastVote(voterID, models.SkipVote)
}

// resolve closes meeting seq. Anything but the open meeting is stale.
func (s *Session) resolve(seq int) error {
	g := s.game
	if g.Phase != models.PhaseMeeting || g.MeetingSeq != seq {
		return errStale
	}
	r := game.CountVotes(g.Votes)
	if t, ok := g.Players[r.Ejected]; r.HasTarget && ok && t.Alive {
		t.Die()
		delete(s.fixes, t.ID)
		s.announce(models.Event{Kind: models.EventPlayerEjected, Target: t.Name, Role: t.Role, Count: r.VoteCount[t.ID]})
	} else {
		reason := "skipped"
		if r.IsTie {
			reason = "tied"
		}
		s.announce(models.Event{Kind: models.EventNoEjection, Reason: reason, Count: r.Skips})
	}
	if s.settle() {
		return nil
	}

	g.Phase = models.PhaseTasks
	g.Ship.ClearAllBodies()
	for _, p := range g.Players {
		p.Location = ship.SpawnRoom
	}
	g.MeetingCooldown = s.ticks(s.tuning.MeetingCooldown)
	reset := s.ticks(s.tuning.PostMeetingCooldown)
	for _, id := range g.Impostors {
		if p, ok := g.Players[id]; ok && p.Alive {
			p.KillCooldown = reset
			p.SabotageCooldown = reset
		}
	}
	return nil
}
