package agent

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/aaronzipp/crewmate/internal/config"
	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/session"
)

// Action is what an impostor bot does on one turn
type Action int

const (
	ActWander Action = iota
	ActSabotage
	ActKill
	ActFakeTask
)

// fakeTaskCooldown is the kill cooldown above which an impostor prefers to
// look busy instead of hunting
const fakeTaskCooldown = 30

// chooseTask picks a random unfinished task
func chooseTask(v session.View, rng *rand.Rand) (int, bool) {
	open := v.Self.IncompleteTasks()
	if len(open) == 0 {
		return 0, false
	}
	return open[rng.IntN(len(open))], true
}

// canKill reports whether an impostor may kill now: own cooldown done and
// nobody killed within gap
func canKill(v session.View, gap time.Duration) bool {
	return v.Self.IsImpostor() && v.Self.Alive && v.Self.KillCooldown == 0 && v.Now.Sub(v.LastKillAt) >= gap
}

func canSabotage(v session.View) bool {
	return v.Self.IsImpostor() && v.Self.Alive && v.ActiveSabotage == models.SabotageNone && v.Self.SabotageCooldown == 0
}

// killTargets lists the living crew-aligned players
func killTargets(v session.View) []models.Player {
	var out []models.Player
	for _, p := range v.Players {
		if p.Alive && !p.IsImpostor() && p.ID != v.Self.ID {
			out = append(out, p)
		}
	}
	return out
}

// impostorAction rolls the next impostor move
func impostorAction(v session.View, rng *rand.Rand, bt config.BotTuning, gap time.Duration) Action {
	if canSabotage(v) && rng.Float64() < bt.SabotageChance {
		return ActSabotage
	}
	if canKill(v, gap) && len(killTargets(v)) > 0 && rng.Float64() < bt.KillChance {
		return ActKill
	}
	if v.Self.KillCooldown > fakeTaskCooldown && len(v.Self.Tasks) > 0 && rng.Float64() < bt.FakeTaskChance {
		return ActFakeTask
	}
	return ActWander
}

// pickReporter decides who later "finds" a body: the killer itself, another
// bot that gets moved to the body, or nobody
func pickReporter(v session.View, rng *rand.Rand, bt config.BotTuning, killer, victim int64) (int64, bool) {
	r := rng.Float64()
	switch {
	case r < bt.SelfReportChance:
		return killer, true
	case r < bt.SelfReportChance+bt.BotReportChance:
		var bots []int64
		for _, p := range v.Players {
			if p.Bot && p.Alive && !p.IsImpostor() && p.ID != killer && p.ID != victim {
				bots = append(bots, p.ID)
			}
		}
		if len(bots) == 0 {
			return 0, false
		}
		return bots[rng.IntN(len(bots))], true
	default:
		return 0, false
	}
}

// decideVote picks a vote for a bot. Players remembered near the last body
// are favoured. Impostors never vote for each other and nobody votes for
// themselves.
func decideVote(v session.View, rng *rand.Rand, bt config.BotTuning) int64 {
	var candidates, nearby []int64
	for _, p := range v.Players {
		if !p.Alive || p.ID == v.Self.ID {
			continue
		}
		if v.Self.IsImpostor() && p.IsImpostor() {
			continue
		}
		candidates = append(candidates, p.ID)
		if slices.Contains(v.Witnesses, p.ID) {
			nearby = append(nearby, p.ID)
		}
	}
	if len(candidates) == 0 {
		return models.SkipVote
	}

	if v.Self.IsImpostor() {
		switch {
		case len(nearby) > 0 && rng.Float64() < bt.ImpostorNearbyVote:
			return nearby[rng.IntN(len(nearby))]
		case rng.Float64() < bt.ImpostorSkip:
			return models.SkipVote
		default:
			return candidates[rng.IntN(len(candidates))]
		}
	}

	switch {
	case rng.Float64() < bt.CrewNearbyVote:
		return weightedPick(rng, candidates, func(id int64) float64 {
			if slices.Contains(nearby, id) {
				return bt.NearbyWeight
			}
			return bt.OtherWeight
		})
	case rng.Float64() < bt.CrewSkip:
		return models.SkipVote
	default:
		return candidates[rng.IntN(len(candidates))]
	}
}

func weightedPick(rng *rand.Rand, ids []int64, weight func(int64) float64) int64 {
	total := 0.0
	for _, id := range ids {
		total += max(weight(id), 0)
	}
	if total <= 0 {
		return ids[rng.IntN(len(ids))]
	}
	pick := rng.Float64() * total
	for _, id := range ids {
		pick -= max(weight(id), 0)
		if pick < 0 {
			return id
		}
	}
	return ids[len(ids)-1]
}

// dwell is how long a bot spends on one task
func dwell(rng *rand.Rand, bt config.BotTuning, taskSpeed float64) time.Duration {
	d := bt.TaskDwell.Scaled(taskSpeed).Pick(rng)
	if rng.Float64() < bt.PauseChance {
		d += bt.Pause.Pick(rng)
	}
	return d
}

func inKillRange(v session.View, target models.Player) bool {
	if v.Self.Location == target.Location {
		return true
	}
	if v.Self.InVent {
		return v.Ship.VentConnected(v.Self.Location, target.Location)
	}
	return v.Ship.Connected(v.Self.Location, target.Location)
}
