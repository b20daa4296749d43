package game

import (
	"math/rand/v2"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/aaronzipp/crewmate/internal/models"
)

// CheckWin evaluates the win conditions in order: no living impostors, at
// most one living crew-aligned player, every crew task done. Impostor tasks
// never count. It does not modify the game.
func CheckWin(g *models.Game) models.Winner {
	aliveImpostors, aliveCrew := 0, 0
	completed, total := 0, 0
	for _, p := range g.Players {
		if p.IsImpostor() {
			if p.Alive {
				aliveImpostors++
			}
			continue
		}
		if p.Alive {
			aliveCrew++
		}
		completed += p.CompletedTasks()
		total += p.TotalTasks()
	}

	switch {
	case aliveImpostors == 0:
		return models.WinnerCrewmates
	case aliveCrew <= 1:
		return models.WinnerImpostors
	case total > 0 && completed >= total:
		return models.WinnerCrewmates
	default:
		return models.WinnerNone
	}
}

// TaskProgress sums completed and total tasks over crew-aligned players
func TaskProgress(g *models.Game) (completed, total int) {
	for _, p := range g.Players {
		if p.IsImpostor() {
			continue
		}
		completed += p.CompletedTasks()
		total += p.TotalTasks()
	}
	return completed, total
}

// VoteResult represents the outcome of vote counting
type VoteResult struct {
	Ejected   int64
	HasTarget bool
	IsTie     bool
	Skips     int
	VoteCount map[int64]int
}

// CountVotes analyzes votes and determines the result. Skips are tallied
// separately and never eject anyone; a tie for the most votes ejects no one.
func CountVotes(votes map[int64]int64) VoteResult {
	result := VoteResult{VoteCount: make(map[int64]int)}
	for _, target := range votes {
		if target == models.SkipVote {
			result.Skips++
			continue
		}
		result.VoteCount[target]++
	}

	maxVotes := 0
	var mostVoted []int64
	for id, count := range result.VoteCount {
		if count > maxVotes {
			maxVotes = count
			mostVoted = []int64{id}
		} else if count == maxVotes {
			mostVoted = append(mostVoted, id)
		}
	}

	result.IsTie = len(mostVoted) > 1
	if len(mostVoted) == 1 {
		result.Ejected = mostVoted[0]
		result.HasTarget = true
	}
	return result
}

// TallyVotes returns the player to eject, if any
func TallyVotes(votes map[int64]int64) (int64, bool) {
	r := CountVotes(votes)
	return r.Ejected, r.HasTarget
}

// ClearVotes resets the tally and every player's vote
func ClearVotes(g *models.Game) {
	clear(g.Votes)
	for _, p := range g.Players {
		p.ClearVote()
	}
}

// AllAliveVoted reports whether every living player has voted or skipped
func AllAliveVoted(g *models.Game) bool {
	alive := g.AlivePlayers()
	if len(alive) == 0 {
		return false
	}
	for _, p := range alive {
		if _, ok := g.Votes[p.ID]; !ok {
			return false
		}
	}
	return true
}

// WitnessOdds shape who is remembered as having been near a body
type WitnessOdds struct {
	Min            int
	Max            int
	ImpostorChance float64
}

// NearbyWitnesses picks the living players later remembered as having been
// near a body. The victim and the discoverer are never picked. When an
// impostor is alive it is included with the configured chance.
func NearbyWitnesses(g *models.Game, rng *rand.Rand, victim, discoverer int64, odds WitnessOdds) []int64 {
	excluded := mapset.New[int64]()
	excluded.Put(victim)
	excluded.Put(discoverer)

	var crew, impostors []int64
	for _, p := range g.AlivePlayers() {
		if excluded.Has(p.ID) {
			continue
		}
		if p.IsImpostor() {
			impostors = append(impostors, p.ID)
		} else {
			crew = append(crew, p.ID)
		}
	}

	want := odds.Min
	if odds.Max > odds.Min {
		want += rng.IntN(odds.Max - odds.Min + 1)
	}
	var picked []int64
	if len(impostors) > 0 && want > 0 && rng.Float64() < odds.ImpostorChance {
		picked = append(picked, impostors[rng.IntN(len(impostors))])
	}
	rng.Shuffle(len(crew), func(i, j int) { crew[i], crew[j] = crew[j], crew[i] })
	for _, id := range crew {
		if len(picked) >= want {
			break
		}
		picked = append(picked, id)
	}
	rng.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return slices.Clip(picked)
}
