package session

import (
	"context"
	"strconv"
	"time"

	"github.com/aaronzipp/crewmate/internal/game"
	"github.com/aaronzipp/crewmate/internal/models"
)

// Sabotage starts a ship-wide hazard. Only one can run at a time.
func (s *Session) Sabotage(id int64, kind models.Sabotage) error {
	return s.apply(true, func() error {
		g := s.game
		p, err := s.actor(id, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		if !p.IsImpostor() {
			return game.Reject(game.CodeWrongRole, "only impostors can sabotage")
		}
		if !kind.Valid() {
			return game.Reject(game.CodeInvalidTarget, "unknown sabotage %q", kind)
		}
		if g.ActiveSabotage != models.SabotageNone {
			return game.Reject(game.CodeSabotageActive, "%s is already sabotaged", g.ActiveSabotage)
		}
		if p.SabotageCooldown > 0 {
			return game.Reject(game.CodeOnCooldown, "sabotage is on cooldown for %d more seconds", p.SabotageCooldown).
				WithMetadata("remaining", strconv.Itoa(p.SabotageCooldown))
		}

		g.ActiveSabotage = kind
		g.SabotageSeq++
		g.SabotageStartedAt = s.now()
		s.fixes = make(map[int64]fixProgress)
		p.SabotageCooldown = s.ticks(s.tuning.SabotageCooldown)

		d := s.tuning.SabotageDuration(kind)
		s.announce(models.Event{Kind: models.EventSabotageStarted, Sabotage: kind, Room: kind.Room(), Count: int(d / time.Second)})
		s.armSabotage(g.SabotageSeq, d)
		return nil
	})
}

func (s *Session) armSabotage(seq int, d time.Duration) {
	s.sched.After(d, "sabotage "+strconv.Itoa(seq), func(context.Context) {
		s.expireSabotage(seq)
	})
}

// expireSabotage runs when a sabotage outlives its timer. A fatal one hands
// the impostors the game.
func (s *Session) expireSabotage(seq int) {
	_ = s.apply(true, func() error {
		g := s.game
		if g.Phase != models.PhaseTasks || g.ActiveSabotage == models.SabotageNone || g.SabotageSeq != seq {
			return errStale
		}
		kind := g.ActiveSabotage
		g.ActiveSabotage = models.SabotageNone
		s.fixes = nil
		s.announce(models.Event{Kind: models.EventSabotageExpired, Sabotage: kind, Room: kind.Room()})
		if kind.Fatal() {
			s.finish(models.WinnerImpostors, "the "+string(kind)+" sabotage was not fixed in time")
		}
		return nil
	})
}

// FixSabotage performs one step of the repair. Steps run in order inside a
// window that shrinks with the fixer's speed. It reports whether this step
// cleared the sabotage.
func (s *Session) FixSabotage(id int64, kind models.Sabotage, step int) (bool, error) {
	var fixed bool
	err := s.apply(true, func() error {
		g := s.game
		p, err := s.actor(id, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		if g.ActiveSabotage == models.SabotageNone {
			return game.Reject(game.CodeNoSabotage, "nothing is sabotaged")
		}
		if kind != g.ActiveSabotage {
			return game.Reject(game.CodeSabotageMismatch, "%s is sabotaged, not %s", g.ActiveSabotage, kind)
		}
		if p.InVent {
			return game.Reject(game.CodeInVent, "climb out of the vent first")
		}
		if room := kind.Room(); p.Location != room {
			return game.Reject(game.CodeWrongRoom, "the %s sabotage is fixed in %s", kind, room).
				WithMetadata("room", room)
		}

		steps := max(s.tuning.FixSteps, 1)
		fp := s.fixes[id]
		if fp.seq != g.SabotageSeq {
			fp = fixProgress{seq: g.SabotageSeq}
		}
		if step < 1 || step > steps || step != fp.done+1 {
			return game.Reject(game.CodeInvalidStep, "next step is %d of %d", fp.done+1, steps).
				WithMetadata("expected", strconv.Itoa(fp.done+1))
		}

		now := s.now()
		if step == 1 {
			fp.started = now
		} else if now.Sub(fp.started) > s.fixWindow(p) {
			delete(s.fixes, id)
			return game.Reject(game.CodeFixExpired, "too slow, start the fix again")
		}
		fp.done = step
		if fp.done < steps {
			if s.fixes == nil {
				s.fixes = make(map[int64]fixProgress)
			}
			s.fixes[id] = fp
			return nil
		}

		fixed = true
		g.ActiveSabotage = models.SabotageNone
		s.fixes = nil
		s.announce(models.Event{Kind: models.EventSabotageFixed, Actor: p.Name, Sabotage: kind, Room: kind.Room()})
		return nil
	})
	return fixed, err
}

func (s *Session) fixWindow(p *models.Player) time.Duration {
	speed := p.FixSpeed
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(float64(s.tuning.FixWindow) / speed)
}
