package agent

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/crewmate/internal/config"
	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/session"
	"github.com/aaronzipp/crewmate/internal/ship"
)

func player(id int64, role models.Role) models.Player {
	p := models.NewPlayer(id, "p", "")
	p.AssignRole(role)
	return *p
}

// view builds a view for self over players 1..n with the given roles
func view(self int64, roles ...models.Role) session.View {
	v := session.View{
		Phase: models.PhaseTasks,
		Ship:  ship.NewSkeld(),
		Now:   time.Date(2024, 5, 1, 20, 10, 0, 0, time.UTC),
	}
	for i, r := range roles {
		p := player(int64(i+1), r)
		v.Players = append(v.Players, p)
		if p.ID == self {
			v.Self = p
		}
	}
	return v
}

func TestDecideVoteNeverPicksSelfOrAFellowImpostor(t *testing.T) {
	bt := config.DefaultTuning().Bots
	roles := []models.Role{models.RoleImpostor, models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate}
	rng := rand.New(rand.NewPCG(7, 7))

	for range 500 {
		imp := view(1, roles...)
		imp.Witnesses = []int64{2, 3}
		got := decideVote(imp, rng, bt)
		assert.NotContains(t, []int64{1, 2}, got)

		crew := view(3, roles...)
		assert.NotEqual(t, int64(3), decideVote(crew, rng, bt))
	}
}

func TestDecideVoteFavoursWitnesses(t *testing.T) {
	bt := config.DefaultTuning().Bots
	bt.CrewNearbyVote = 1
	bt.NearbyWeight = 1
	bt.OtherWeight = 0
	bt.ImpostorNearbyVote = 1
	rng := rand.New(rand.NewPCG(1, 1))
	roles := []models.Role{models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate}

	for range 100 {
		crew := view(2, roles...)
		crew.Witnesses = []int64{4}
		assert.Equal(t, int64(4), decideVote(crew, rng, bt))

		imp := view(1, roles...)
		imp.Witnesses = []int64{3}
		assert.Equal(t, int64(3), decideVote(imp, rng, bt))
	}
}

func TestDecideVoteSkipsWithoutCandidates(t *testing.T) {
	v := view(1, models.RoleImpostor, models.RoleImpostor)
	assert.Equal(t, models.SkipVote, decideVote(v, rand.New(rand.NewPCG(1, 2)), config.DefaultTuning().Bots))
}

func TestDecideVoteSkipRates(t *testing.T) {
	bt := config.DefaultTuning().Bots
	rng := rand.New(rand.NewPCG(3, 4))
	roles := []models.Role{models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate}

	skips := 0
	const n = 4000
	for range n {
		if decideVote(view(1, roles...), rng, bt) == models.SkipVote {
			skips++
		}
	}
	// no witnesses: an impostor skips with ImpostorSkip
	assert.InDelta(t, bt.ImpostorSkip, float64(skips)/n, 0.05)
}

func TestImpostorAction(t *testing.T) {
	tune := config.DefaultTuning()
	rng := rand.New(rand.NewPCG(5, 6))
	roles := []models.Role{models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate}

	bt := tune.Bots
	bt.SabotageChance = 1
	v := view(1, roles...)
	assert.Equal(t, ActSabotage, impostorAction(v, rng, bt, tune.KillGap))

	v.ActiveSabotage = models.SabotageLights
	bt.KillChance = 1
	v.LastKillAt = v.Now.Add(-time.Minute)
	assert.Equal(t, ActKill, impostorAction(v, rng, bt, tune.KillGap))

	v.LastKillAt = v.Now.Add(-time.Second)
	assert.NotEqual(t, ActKill, impostorAction(v, rng, bt, tune.KillGap), "another kill happened moments ago")

	v.Self.KillCooldown = 40
	v.Self.Tasks = []models.Task{{Name: "Fake", Location: ship.Admin}}
	bt.FakeTaskChance = 1
	assert.Equal(t, ActFakeTask, impostorAction(v, rng, bt, tune.KillGap))

	crew := view(2, roles...)
	assert.Equal(t, ActWander, impostorAction(crew, rng, bt, tune.KillGap))
}

func TestPickReporter(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	v := view(1, models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate)
	for i := range v.Players {
		v.Players[i].Bot = true
	}

	bt := config.DefaultTuning().Bots
	bt.SelfReportChance = 1
	got, ok := pickReporter(v, rng, bt, 1, 2)
	require.True(t, ok)
	assert.Equal(t, int64(1), got)

	bt.SelfReportChance = 0
	bt.BotReportChance = 1
	for range 50 {
		got, ok = pickReporter(v, rng, bt, 1, 2)
		require.True(t, ok)
		assert.Contains(t, []int64{3, 4}, got)
	}

	bt.BotReportChance = 0
	_, ok = pickReporter(v, rng, bt, 1, 2)
	assert.False(t, ok)
}

func TestChooseTaskAndDwell(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 2))
	v := view(2, models.RoleImpostor, models.RoleScientist)
	v.Self.Tasks = []models.Task{{Completed: true}, {}, {Completed: true}}
	for range 20 {
		idx, ok := chooseTask(v, rng)
		require.True(t, ok)
		assert.Equal(t, 1, idx)
	}
	v.Self.Tasks[1].Completed = true
	_, ok := chooseTask(v, rng)
	assert.False(t, ok)

	bt := config.DefaultTuning().Bots
	bt.TaskDwell = config.Span{Min: 9 * time.Second, Max: 9 * time.Second}
	bt.PauseChance = 0
	assert.Equal(t, 6*time.Second, dwell(rng, bt, v.Self.TaskSpeed))
}

func TestBotsPlayAGameToTheEnd(t *testing.T) {
	g := models.NewGame("g", "c", "BOTS01", 6, models.RoleQuotas{Impostors: 1})
	for i := range 6 {
		id := -int64(i + 1)
		p := models.NewPlayer(id, "bot", "")
		g.Players[id] = p
		g.JoinOrder = append(g.JoinOrder, id)
	}

	tune := config.DefaultTuning()
	tune.StartGrace = 0
	tune.DoorsDuration = 100 * time.Millisecond
	tune.LightsDuration = 200 * time.Millisecond
	tune.CommsDuration = 200 * time.Millisecond
	tune.OxygenDuration = 2 * time.Second
	tune.ReactorDuration = 2 * time.Second
	fast := func(ctx context.Context, d time.Duration) bool {
		return session.Sleep(ctx, d/20000)
	}
	driver := New(Options{Logger: zerolog.Nop(), Seed: 11, Sleep: fast})
	s := session.New(session.Options{
		Game:   g,
		Tuning: tune,
		Driver: driver,
		Logger: zerolog.Nop(),
		Rand:   rand.New(rand.NewPCG(11, 12)),
	})
	t.Cleanup(s.Close)

	require.NoError(t, s.Start())
	assert.Eventually(t, func() bool {
		return s.Phase() == models.PhaseEnded
	}, 20*time.Second, 10*time.Millisecond)
	assert.NotEqual(t, models.WinnerNone, s.Snapshot().Winner)

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("bot loops kept running after the game ended")
	}
}
