package session

import (
	"strconv"

	"github.com/aaronzipp/crewmate/internal/game"
	"github.com/aaronzipp/crewmate/internal/models"
)

// KillOutcome tells a killer what happened
type KillOutcome string

const (
	KillLanded  KillOutcome = "killed"
	KillBlocked KillOutcome = "blocked"
)

// Move walks a player to an adjacent room. Ghosts move freely through
// closed doors.
func (s *Session) Move(id int64, room string) error {
	return s.apply(true, func() error {
		p, err := s.actor(id, models.PhaseTasks, true)
		if err != nil {
			return err
		}
		if p.InVent {
			return game.Reject(game.CodeInVent, "climb out of the vent first")
		}
		dest, err := s.resolveRoom(room)
		if err != nil {
			return err
		}
		if p.Alive && s.game.ActiveSabotage.BlocksMovement() {
			return game.Reject(game.CodeDoorsLocked, "the doors are locked")
		}
		if !s.game.Ship.Connected(p.Location, dest) {
			return game.Reject(game.CodeNotConnected, "%s is not connected to %s", dest, p.Location).
				WithMetadata("from", p.Location).
				WithMetadata("to", dest)
		}
		p.Location = dest
		return nil
	})
}

// FastTravel moves a living player to any room for one charge
func (s *Session) FastTravel(id int64, room string) error {
	return s.apply(true, func() error {
		p, err := s.actor(id, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		if p.InVent {
			return game.Reject(game.CodeInVent, "climb out of the vent first")
		}
		dest, err := s.resolveRoom(room)
		if err != nil {
			return err
		}
		if dest == p.Location {
			return game.Reject(game.CodeInvalidTarget, "already in %s", dest)
		}
		if p.FastTravels <= 0 {
			return game.Reject(game.CodeNoCharges, "no fast travel charges left")
		}
		if s.game.ActiveSabotage.BlocksMovement() {
			return game.Reject(game.CodeDoorsLocked, "the doors are locked")
		}
		p.FastTravels--
		p.Location = dest
		return nil
	})
}

// EnterVent hides a vent-capable player in the vent of their room
func (s *Session) EnterVent(id int64) error {
	return s.apply(true, func() error {
		p, err := s.actor(id, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		if !p.CanVent {
			return game.Reject(game.CodeWrongRole, "%s cannot use vents", p.Role)
		}
		if p.InVent {
			return game.Reject(game.CodeInVent, "already in a vent")
		}
		if room := s.game.Ship.Room(p.Location); room == nil || !room.CanVent {
			return game.Reject(game.CodeWrongRoom, "there is no vent in %s", p.Location)
		}
		p.InVent = true
		s.ventNoise(p.Location)
		return nil
	})
}

// ExitVent climbs out into the current room
func (s *Session) ExitVent(id int64) error {
	return s.apply(true, func() error {
		p, err := s.actor(id, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		if !p.InVent {
			return game.Reject(game.CodeNotInVent, "not in a vent")
		}
		p.InVent = false
		s.ventNoise(p.Location)
		return nil
	})
}

// Vent crawls to a room joined to the current one by the vent network
func (s *Session) Vent(id int64, room string) error {
	return s.apply(true, func() error {
		p, err := s.actor(id, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		if !p.InVent {
			return game.Reject(game.CodeNotInVent, "enter a vent first")
		}
		dest, err := s.resolveRoom(room)
		if err != nil {
			return err
		}
		if !s.game.Ship.VentConnected(p.Location, dest) {
			return game.Reject(game.CodeNotConnected, "no vent leads from %s to %s", p.Location, dest)
		}
		p.Location = dest
		return nil
	})
}

func (s *Session) ventNoise(room string) {
	if s.rng.Float64() < s.tuning.VentNoiseChance {
		s.announce(models.Event{Kind: models.EventVentNoise, Room: room})
	}
}

func (s *Session) resolveRoom(input string) (string, error) {
	dest, ok := s.game.Ship.Resolve(input)
	if !ok {
		return "", game.Reject(game.CodeUnknownRoom, "there is no room called %q", input)
	}
	return dest, nil
}

// DoTask completes one of the player's tasks in the room they stand in. It
// returns false when the task was already complete. Ghosts keep working.
func (s *Session) DoTask(id int64, index int) (bool, error) {
	var done bool
	err := s.apply(true, func() error {
		p, err := s.actor(id, models.PhaseTasks, true)
		if err != nil {
			return err
		}
		if p.InVent {
			return game.Reject(game.CodeInVent, "climb out of the vent first")
		}
		if index < 0 || index >= len(p.Tasks) {
			return game.Reject(game.CodeInvalidTask, "no task number %d", index+1).
				WithMetadata("tasks", strconv.Itoa(len(p.Tasks)))
		}
		task := p.Tasks[index]
		if task.Location != p.Location {
			return game.Reject(game.CodeWrongRoom, "%s is in %s", task.Name, task.Location).
				WithMetadata("room", task.Location)
		}
		if !p.CompleteTask(index) {
			return nil
		}
		done = true
		completed, total := game.TaskProgress(s.game)
		s.announce(models.Event{
			Kind:   models.EventTaskCompleted,
			Actor:  p.Name,
			Target: task.Name,
			Room:   task.Location,
			Count:  completed,
			Total:  total,
		})
		s.settle()
		return nil
	})
	return done, err
}

// Kill attacks a crew-aligned player in range. A shielded target survives
// and loses the shield; the killer's cooldown applies either way.
func (s *Session) Kill(killerID, targetID int64) (KillOutcome, error) {
	var outcome KillOutcome
	err := s.apply(true, func() error {
		g := s.game
		k, err := s.actor(killerID, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		if !k.IsImpostor() {
			return game.Reject(game.CodeWrongRole, "only impostors can kill")
		}
		if k.KillCooldown > 0 {
			return game.Reject(game.CodeOnCooldown, "kill is on cooldown for %d more seconds", k.KillCooldown).
				WithMetadata("remaining", strconv.Itoa(k.KillCooldown))
		}
		t, ok := g.Players[targetID]
		if !ok || targetID == killerID || !t.Alive || t.IsImpostor() {
			return game.Reject(game.CodeInvalidTarget, "that player cannot be killed")
		}
		if !s.inKillRange(k, t) {
			return game.Reject(game.CodeOutOfRange, "%s is too far away", t.Name)
		}

		k.KillCooldown = s.ticks(s.tuning.KillCooldown)
		if t.Shielded {
			guardian := t.ShieldedBy
			t.Shielded = false
			t.ShieldedBy = 0
			outcome = KillBlocked
			ev := models.Event{Kind: models.EventKillBlocked, Actor: k.Name, Target: t.Name, Room: t.Location}
			s.direct(k.ID, ev)
			s.direct(t.ID, ev)
			if guardian != 0 {
				s.direct(guardian, ev)
			}
			return nil
		}

		t.Die()
		g.Ship.AddBody(t.Location, t.Name)
		if !k.InVent && !g.ActiveSabotage.BlocksMovement() {
			k.Location = t.Location
		}
		k.Kills++
		g.LastKillAt = s.now()
		delete(s.fixes, t.ID)
		outcome = KillLanded
		ev := models.Event{Kind: models.EventPlayerKilled, Actor: k.Name, Target: t.Name, Room: t.Location}
		s.direct(t.ID, ev)
		s.direct(k.ID, ev)
		s.log.Debug().Int64("killer", k.ID).Int64("victim", t.ID).Str("room", t.Location).Msg("kill")
		s.settle()
		return nil
	})
	return outcome, err
}

// inKillRange allows the killer's room and its neighbours. From a vent the
// reach follows the vent network instead.
func (s *Session) inKillRange(k, t *models.Player) bool {
	if k.Location == t.Location {
		return true
	}
	if k.InVent {
		return s.game.Ship.VentConnected(k.Location, t.Location)
	}
	return s.game.Ship.Connected(k.Location, t.Location)
}

// Shield lets a guardian angel protect another living player from one kill
func (s *Session) Shield(guardianID, targetID int64) error {
	return s.apply(true, func() error {
		ga, err := s.actor(guardianID, models.PhaseTasks, false)
		if err != nil {
			return err
		}
		if ga.Role != models.RoleGuardianAngel {
			return game.Reject(game.CodeWrongRole, "only guardian angels can shield")
		}
		if ga.ShieldCharges <= 0 {
			return game.Reject(game.CodeNoCharges, "no shield charges left")
		}
		if ga.ShieldCooldown > 0 {
			return game.Reject(game.CodeOnCooldown, "shield is on cooldown for %d more seconds", ga.ShieldCooldown).
				WithMetadata("remaining", strconv.Itoa(ga.ShieldCooldown))
		}
		t, ok := s.game.Players[targetID]
		if !ok || targetID == guardianID || !t.Alive {
			return game.Reject(game.CodeInvalidTarget, "that player cannot be shielded")
		}
		if t.Shielded {
			return game.Reject(game.CodeAlreadyShielded, "%s is already shielded", t.Name)
		}
		t.Shielded = true
		t.ShieldedBy = ga.ID
		ga.ShieldCharges--
		ga.ShieldCooldown = s.ticks(s.tuning.ShieldCooldown)
		ev := models.Event{Kind: models.EventShieldCast, Actor: ga.Name, Target: t.Name, Count: ga.ShieldCharges}
		s.direct(ga.ID, ev)
		s.direct(t.ID, ev)
		return nil
	})
}
