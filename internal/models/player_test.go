package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/crewmate/internal/ship"
)

func TestNewPlayerDefaults(t *testing.T) {
	t.Parallel()
	p := NewPlayer(42, "red", "avatars/red.png")

	assert.True(t, p.Alive)
	assert.False(t, p.Bot)
	assert.Equal(t, RoleCrewmate, p.Role)
	assert.Equal(t, ship.SpawnRoom, p.Location)
	assert.Equal(t, 1, p.EmergencyMeetings)
	assert.Equal(t, 3, p.FastTravels)
	assert.True(t, NewPlayer(-1, "Bot 1", "").Bot)
}

func TestAssignRoleSetsTraits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role    Role
		vent    bool
		speed   float64
		fix     float64
		shields int
	}{
		{RoleCrewmate, false, 1, 1, 0},
		{RoleImpostor, true, 1, 1, 0},
		{RoleScientist, false, 1.5, 1, 0},
		{RoleEngineer, true, 1, 2, 0},
		{RoleGuardianAngel, false, 1, 1, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			p := NewPlayer(1, "p", "")
			p.AssignRole(RoleEngineer)
			p.InVent = true
			p.AssignRole(tt.role)

			assert.Equal(t, tt.role, p.Role)
			assert.Equal(t, tt.vent, p.CanVent)
			assert.Equal(t, tt.speed, p.TaskSpeed)
			assert.Equal(t, tt.fix, p.FixSpeed)
			assert.Equal(t, tt.shields, p.ShieldCharges)
			assert.False(t, p.InVent)
		})
	}
}

func TestCompleteTaskIsIdempotent(t *testing.T) {
	t.Parallel()
	p := NewPlayer(1, "p", "")
	p.AssignTasks([]Task{
		{Key: "wiring", Location: ship.Electrical},
		{Key: "trash", Location: ship.O2},
	})

	assert.True(t, p.CompleteTask(0))
	assert.False(t, p.CompleteTask(0))
	assert.False(t, p.CompleteTask(2))
	assert.False(t, p.CompleteTask(-1))
	assert.Equal(t, 1, p.CompletedTasks())
	assert.Equal(t, 2, p.TotalTasks())
	assert.Equal(t, "1/2", p.Progress())
	assert.Equal(t, []int{1}, p.IncompleteTasks())
}

func TestPlayerCloneIsDeep(t *testing.T) {
	t.Parallel()
	p := NewPlayer(1, "p", "")
	p.AssignTasks([]Task{{Key: "chart", Location: ship.Nav}})
	vote := SkipVote
	p.Vote = &vote

	c := p.Clone()
	c.CompleteTask(0)
	*c.Vote = 7

	assert.False(t, p.Tasks[0].Completed)
	assert.Equal(t, SkipVote, *p.Vote)
}

func TestDieDropsLivingState(t *testing.T) {
	t.Parallel()
	p := NewPlayer(1, "p", "")
	p.AssignRole(RoleImpostor)
	p.KillCooldown = 12
	p.InVent = true
	p.Shielded = true

	p.Die()
	assert.False(t, p.Alive)
	assert.False(t, p.InVent)
	assert.False(t, p.Shielded)
	assert.Zero(t, p.KillCooldown)
}

func TestSabotageKinds(t *testing.T) {
	t.Parallel()

	kind, ok := ParseSabotage(" O2 ")
	require.True(t, ok)
	assert.Equal(t, SabotageOxygen, kind)
	assert.True(t, kind.Fatal())
	assert.Equal(t, ship.O2, kind.Room())

	assert.False(t, SabotageLights.Fatal())
	assert.True(t, SabotageDoors.BlocksMovement())
	assert.False(t, SabotageNone.Valid())

	for _, s := range Sabotages() {
		assert.True(t, ship.NewSkeld().Has(s.Room()), s)
	}
}

func TestLobbySettingsValidate(t *testing.T) {
	t.Parallel()

	ok := LobbySettings{MaxPlayers: 10, Quotas: RoleQuotas{Impostors: 3}}
	assert.Empty(t, ok.Validate())

	bad := LobbySettings{MaxPlayers: 3, Quotas: RoleQuotas{Impostors: 0, Engineers: -1}}
	assert.Len(t, bad.Validate(), 3)

	greedy := LobbySettings{MaxPlayers: 6, Quotas: RoleQuotas{Impostors: 3}}
	assert.Len(t, greedy.Validate(), 1)
}
