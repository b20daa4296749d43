package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/ship"
)

func newLobby(t *testing.T, max, humans int, q models.RoleQuotas) *models.Game {
	t.Helper()
	g := models.NewGame("id", "chan", "CODE42", max, q)
	for i := range humans {
		_, err := AddPlayer(g, int64(i+1), fmt.Sprintf("player%d", i+1), "")
		require.NoError(t, err)
	}
	return g
}

func TestAddPlayer(t *testing.T) {
	t.Parallel()
	g := newLobby(t, 4, 4, models.RoleQuotas{Impostors: 1})

	_, err := AddPlayer(g, 5, "late", "")
	assert.ErrorIs(t, err, ErrRoomFull)
	var full *Rejection
	require.ErrorAs(t, err, &full)
	assert.Equal(t, "4", full.Metadata["max_players"])
	assert.NotSame(t, ErrRoomFull, full)

	_, err = AddPlayer(g, 1, "again", "")
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, CodeAlreadyJoined, rej.Code)

	for i, p := range g.Roster() {
		assert.Equal(t, Colors[i], p.Color)
	}
}

func TestRemovePlayer(t *testing.T) {
	t.Parallel()
	g := newLobby(t, 4, 4, models.RoleQuotas{Impostors: 1})
	AssignRoles(g, rand.New(rand.NewPCG(1, 1)), g.Quotas)
	imp := g.Impostors[0]
	g.Votes[imp] = 2

	p, ok := RemovePlayer(g, imp)
	require.True(t, ok)
	assert.Equal(t, imp, p.ID)
	assert.Empty(t, g.Impostors)
	assert.NotContains(t, g.Votes, imp)
	assert.Len(t, g.JoinOrder, 3)

	_, ok = RemovePlayer(g, 99)
	assert.False(t, ok)
}

func TestAssignRolesImpostorCount(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(2, 3))

	for n := 1; n <= 10; n++ {
		for requested := 0; requested <= 4; requested++ {
			g := newLobby(t, 10, n, models.RoleQuotas{Impostors: requested, Scientists: 2, Engineers: 2, GuardianAngels: 1})
			AssignRoles(g, rng, g.Quotas)

			want := min(requested, max(1, n/3))
			assert.Len(t, g.Impostors, want, "n=%d requested=%d", n, requested)
			assert.True(t, g.RolesAssigned)

			counted := 0
			for _, p := range g.Players {
				assert.True(t, p.Role.Valid(), "player %d has no role", p.ID)
				assert.NotEmpty(t, p.Tasks)
				if p.IsImpostor() {
					counted++
					assert.True(t, g.IsImpostor(p.ID))
				}
			}
			assert.Equal(t, want, counted)
		}
	}
}

func TestAssignRolesClampsSpecialRoles(t *testing.T) {
	t.Parallel()
	g := newLobby(t, 7, 7, models.RoleQuotas{Impostors: 2, Scientists: 5, Engineers: 5, GuardianAngels: 5})
	AssignRoles(g, rand.New(rand.NewPCG(4, 4)), g.Quotas)

	counts := map[models.Role]int{}
	for _, p := range g.Players {
		counts[p.Role]++
	}
	assert.Equal(t, 2, counts[models.RoleImpostor])
	assert.Equal(t, 2, counts[models.RoleScientist])
	assert.Equal(t, 3, counts[models.RoleEngineer])
	assert.Zero(t, counts[models.RoleGuardianAngel])
	assert.Zero(t, counts[models.RoleCrewmate])
}

func TestAddDummiesKeepsImpostorSetConsistent(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(5, 5))

	for range 20 {
		g := newLobby(t, 8, 2, models.RoleQuotas{Impostors: 2, Scientists: 1})
		added := AddDummies(g, rng)
		require.Len(t, added, 6)
		assert.Len(t, g.Players, 8)

		var fromRoles []int64
		for _, p := range g.Roster() {
			if p.IsImpostor() {
				fromRoles = append(fromRoles, p.ID)
			}
		}
		assert.Equal(t, fromRoles, g.Impostors)
		assert.LessOrEqual(t, len(g.Impostors), 2)
		for _, p := range added {
			assert.True(t, p.Bot)
			assert.Less(t, p.ID, int64(0))
			assert.NotEmpty(t, p.Tasks)
		}
	}
}

func TestAddDummiesFillsExactQuota(t *testing.T) {
	t.Parallel()
	g := newLobby(t, 4, 3, models.RoleQuotas{Impostors: 1})
	added := AddDummies(g, rand.New(rand.NewPCG(6, 6)))

	require.Len(t, added, 1)
	assert.Equal(t, models.RoleImpostor, added[0].Role)
	assert.Equal(t, []int64{added[0].ID}, g.Impostors)
}

func TestDummyIDsSkipTakenSeats(t *testing.T) {
	t.Parallel()
	g := newLobby(t, 4, 1, models.RoleQuotas{Impostors: 1})
	_, err := AddPlayer(g, -1, "Bot 1", "")
	require.NoError(t, err)

	added := AddDummies(g, rand.New(rand.NewPCG(7, 7)))
	require.Len(t, added, 2)
	assert.Equal(t, int64(-2), added[0].ID)
	assert.Equal(t, int64(-3), added[1].ID)
}

func rolesGame(t *testing.T, roles ...models.Role) *models.Game {
	t.Helper()
	g := newLobby(t, len(roles), len(roles), models.RoleQuotas{Impostors: 1})
	for i, r := range roles {
		p := g.Players[int64(i+1)]
		p.AssignRole(r)
		p.AssignTasks([]models.Task{{Key: "chart", Location: ship.Nav}, {Key: "wiring", Location: ship.Admin}})
	}
	g.SyncImpostors()
	g.Phase = models.PhaseTasks
	return g
}

func TestCheckWin(t *testing.T) {
	t.Parallel()

	t.Run("no impostors left", func(t *testing.T) {
		g := rolesGame(t, models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate)
		g.Players[1].Die()
		assert.Equal(t, models.WinnerCrewmates, CheckWin(g))
	})

	t.Run("one crew left", func(t *testing.T) {
		g := rolesGame(t, models.RoleImpostor, models.RoleCrewmate, models.RoleGuardianAngel, models.RoleCrewmate)
		g.Players[2].Die()
		assert.Equal(t, models.WinnerNone, CheckWin(g))
		g.Players[3].Die()
		assert.Equal(t, models.WinnerImpostors, CheckWin(g))
	})

	t.Run("tasks done", func(t *testing.T) {
		g := rolesGame(t, models.RoleImpostor, models.RoleScientist, models.RoleEngineer, models.RoleCrewmate)
		for id := int64(2); id <= 4; id++ {
			g.Players[id].CompleteTask(0)
			g.Players[id].CompleteTask(1)
		}
		assert.Equal(t, models.WinnerCrewmates, CheckWin(g))
		assert.Equal(t, models.WinnerCrewmates, CheckWin(g))
		assert.Equal(t, 0, g.Players[1].CompletedTasks())
	})

	t.Run("impostor tasks never count", func(t *testing.T) {
		g := rolesGame(t, models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate)
		g.Players[1].CompleteTask(0)
		g.Players[1].CompleteTask(1)
		assert.Equal(t, models.WinnerNone, CheckWin(g))
		done, total := TaskProgress(g)
		assert.Equal(t, 0, done)
		assert.Equal(t, 6, total)
	})

	t.Run("dead crew tasks still count", func(t *testing.T) {
		g := rolesGame(t, models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate)
		g.Players[2].Die()
		for id := int64(2); id <= 4; id++ {
			g.Players[id].CompleteTask(0)
			g.Players[id].CompleteTask(1)
		}
		assert.Equal(t, models.WinnerCrewmates, CheckWin(g))
	})

	t.Run("no tasks is not a win", func(t *testing.T) {
		g := rolesGame(t, models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate)
		for _, p := range g.Players {
			p.AssignTasks(nil)
		}
		assert.Equal(t, models.WinnerNone, CheckWin(g))
	})
}

func TestTallyVotes(t *testing.T) {
	t.Parallel()
	const a, b, c = 1, 2, 3

	tests := []struct {
		name   string
		votes  map[int64]int64
		want   int64
		ejects bool
	}{
		{"tie", map[int64]int64{10: a, 11: a, 12: b, 13: b, 14: c}, 0, false},
		{"single vote", map[int64]int64{10: a}, a, true},
		{"all skip", map[int64]int64{10: models.SkipVote, 11: models.SkipVote}, 0, false},
		{"no votes", map[int64]int64{}, 0, false},
		{"skips do not block a plurality", map[int64]int64{10: models.SkipVote, 11: models.SkipVote, 12: c}, c, true},
		{"plurality", map[int64]int64{10: a, 11: b, 12: b}, b, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TallyVotes(tt.votes)
			assert.Equal(t, tt.ejects, ok)
			if tt.ejects {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	r := CountVotes(map[int64]int64{10: a, 11: b, 12: models.SkipVote})
	assert.True(t, r.IsTie)
	assert.Equal(t, 1, r.Skips)
}

func TestClearVotesAndAllAliveVoted(t *testing.T) {
	t.Parallel()
	g := rolesGame(t, models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate)
	g.Players[3].Die()

	for _, id := range []int64{1, 2} {
		target := models.SkipVote
		g.Players[id].Vote = &target
		g.Votes[id] = target
	}
	assert.True(t, AllAliveVoted(g))

	ClearVotes(g)
	assert.Empty(t, g.Votes)
	assert.False(t, g.Players[1].HasVoted())
	assert.False(t, AllAliveVoted(g))
}

func TestNearbyWitnesses(t *testing.T) {
	t.Parallel()
	g := rolesGame(t, models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate,
		models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate)
	g.Players[7].Die()
	rng := rand.New(rand.NewPCG(8, 8))

	withImpostor := 0
	for range 200 {
		got := NearbyWitnesses(g, rng, 7, 2, WitnessOdds{Min: 2, Max: 4, ImpostorChance: 0.7})
		assert.GreaterOrEqual(t, len(got), 2)
		assert.LessOrEqual(t, len(got), 4)
		assert.NotContains(t, got, int64(7))
		assert.NotContains(t, got, int64(2))
		seen := map[int64]bool{}
		for _, id := range got {
			assert.False(t, seen[id])
			seen[id] = true
			assert.True(t, g.Players[id].Alive)
		}
		if seen[1] {
			withImpostor++
		}
	}
	assert.Greater(t, withImpostor, 100)
	assert.Less(t, withImpostor, 190)

	never := NearbyWitnesses(g, rng, 7, 2, WitnessOdds{Min: 2, Max: 2})
	assert.NotContains(t, never, int64(1))
}

func TestRejection(t *testing.T) {
	t.Parallel()
	err := error(Reject(CodeOnCooldown, "kill on cooldown: %ds", 12).WithMetadata("remaining", "12"))

	assert.True(t, errors.Is(err, &Rejection{Code: CodeOnCooldown}))
	assert.False(t, errors.Is(err, ErrRoomFull))
	assert.Equal(t, "kill on cooldown: 12s", err.Error())

	a, b := RoomFull(4), RoomFull(4)
	a.WithMetadata("seat", "5")
	assert.NotSame(t, a, b)
	assert.Empty(t, b.Metadata["seat"])
	assert.Nil(t, ErrRoomFull.Metadata, "annotating a room-full rejection leaves the shared value alone")
	assert.Equal(t, http.StatusTooManyRequests, CodeOnCooldown.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, CodeSessionNotFound.HTTPStatus())
	assert.Equal(t, http.StatusConflict, CodeRoomFull.HTTPStatus())
}

func TestUniqueCode(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{}
	calls := 0
	code := UniqueCode(func(c string) bool {
		calls++
		seen[c] = true
		return calls < 3
	})
	assert.Len(t, code, CodeLength)
	assert.Equal(t, 3, calls)
	assert.Equal(t, Colors[1], ColorFor(13))
}
