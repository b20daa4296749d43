package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aaronzipp/crewmate/internal/ship"
)

func TestGameCloneIsDeep(t *testing.T) {
	t.Parallel()
	g := NewGame("id", "chan", "ABCDEF", 4, RoleQuotas{Impostors: 1})
	for i, name := range []string{"red", "blue"} {
		p := NewPlayer(int64(i+1), name, "")
		g.Players[p.ID] = p
		g.JoinOrder = append(g.JoinOrder, p.ID)
	}
	g.Players[1].AssignRole(RoleImpostor)
	g.SyncImpostors()
	g.Votes[2] = 1
	g.Ship.AddBody(ship.Nav, "green")

	c := g.Clone()
	c.Players[2].Alive = false
	c.Votes[1] = 2
	c.Impostors = append(c.Impostors, 9)
	c.Ship.AddBody(ship.Nav, "pink")

	assert.True(t, g.Players[2].Alive)
	assert.Len(t, g.Votes, 1)
	assert.Equal(t, []int64{1}, g.Impostors)
	assert.Equal(t, []string{"green"}, g.Ship.Bodies(ship.Nav))
}

func TestRosterQueries(t *testing.T) {
	t.Parallel()
	g := NewGame("id", "chan", "ABCDEF", 4, RoleQuotas{Impostors: 1})
	for _, id := range []int64{3, -1, 2} {
		p := NewPlayer(id, "p", "")
		g.Players[id] = p
		g.JoinOrder = append(g.JoinOrder, id)
	}
	g.Players[2].Alive = false
	g.Players[3].Location = ship.Admin

	var ids []int64
	for _, p := range g.Roster() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{3, -1, 2}, ids)
	assert.Len(t, g.AlivePlayers(), 2)
	assert.Len(t, g.Bots(), 1)
	assert.Len(t, g.PlayersIn(ship.Cafeteria, true), 1)
	assert.Len(t, g.PlayersIn(ship.Cafeteria, false), 2)
}

func TestBodyOfSkipsTheLiving(t *testing.T) {
	t.Parallel()
	g := NewGame("id", "chan", "ABCDEF", 4, RoleQuotas{Impostors: 1})
	for _, id := range []int64{1, 2, 3} {
		p := NewPlayer(id, "twin", "")
		p.Location = ship.Admin
		g.Players[id] = p
		g.JoinOrder = append(g.JoinOrder, id)
	}
	g.Players[2].Die()
	g.Players[2].Location = ship.Nav
	g.Players[3].Die()

	p, ok := g.BodyOf("twin", ship.Admin)
	assert.True(t, ok)
	assert.Equal(t, int64(3), p.ID)

	p, ok = g.BodyOf("twin", ship.Storage)
	assert.True(t, ok)
	assert.Equal(t, int64(2), p.ID)

	_, ok = g.BodyOf("nobody", ship.Admin)
	assert.False(t, ok)
}
