package game

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/aaronzipp/crewmate/internal/catalog"
	"github.com/aaronzipp/crewmate/internal/models"
)

// AddPlayer seats a new player. The color comes from the palette by join order.
func AddPlayer(g *models.Game, id int64, name, avatar string) (*models.Player, error) {
	if _, ok := g.Players[id]; ok {
		return nil, Reject(CodeAlreadyJoined, "%s already joined", name)
	}
	if len(g.Players) >= g.MaxPlayers {
		return nil, RoomFull(g.MaxPlayers)
	}
	p := models.NewPlayer(id, name, avatar)
	p.Color = ColorFor(len(g.JoinOrder))
	g.Players[id] = p
	g.JoinOrder = append(g.JoinOrder, id)
	return p, nil
}

// RemovePlayer takes a player out of the roster, the impostor set and the
// vote tally. Unknown ids are ignored.
func RemovePlayer(g *models.Game, id int64) (*models.Player, bool) {
	p, ok := g.Players[id]
	if !ok {
		return nil, false
	}
	delete(g.Players, id)
	delete(g.Votes, id)
	g.JoinOrder = slices.DeleteFunc(g.JoinOrder, func(v int64) bool { return v == id })
	g.Impostors = slices.DeleteFunc(g.Impostors, func(v int64) bool { return v == id })
	return p, true
}

// AssignRoles deals every role in one pass. The impostor count is clamped to
// max(1, n/3), scientists to half of the remaining pool, engineers to what
// is left after scientists and guardian angels to what is left after
// engineers. Everyone, impostors included, gets a task list.
func AssignRoles(g *models.Game, rng *rand.Rand, q models.RoleQuotas) {
	ids := slices.Clone(g.JoinOrder)
	n := len(ids)
	if n == 0 {
		return
	}
	rng.Shuffle(n, func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	impostors := min(max(q.Impostors, 0), max(1, n/3), n)
	pool := ids[impostors:]
	scientists := min(max(q.Scientists, 0), len(pool)/2)
	engineers := min(max(q.Engineers, 0), len(pool)-scientists)
	angels := min(max(q.GuardianAngels, 0), len(pool)-scientists-engineers)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	roles := make(map[int64]models.Role, n)
	for _, id := range ids[:impostors] {
		roles[id] = models.RoleImpostor
	}
	for i, id := range pool {
		switch {
		case i < scientists:
			roles[id] = models.RoleScientist
		case i < scientists+engineers:
			roles[id] = models.RoleEngineer
		case i < scientists+engineers+angels:
			roles[id] = models.RoleGuardianAngel
		default:
			roles[id] = models.RoleCrewmate
		}
	}

	for _, p := range g.Roster() {
		p.AssignRole(roles[p.ID])
		p.AssignTasks(catalog.Generate(rng, catalog.DefaultCount(rng)))
	}
	g.SyncImpostors()
	g.RolesAssigned = true
}

// AddDummies fills every free seat with a bot. Each bot draws its role from
// the quota that is still unfilled, weighted by how many of each role remain,
// with plain crewmates filling the rest.
func AddDummies(g *models.Game, rng *rand.Rand) []*models.Player {
	var added []*models.Player
	for len(g.Players) < g.MaxPlayers {
		role := dummyRole(g, rng)
		id := nextDummyID(g)
		p, err := AddPlayer(g, id, fmt.Sprintf("%s %d", DummyNamePrefix, -id), "")
		if err != nil {
			break
		}
		p.AssignRole(role)
		p.AssignTasks(catalog.Generate(rng, catalog.DefaultCount(rng)))
		added = append(added, p)
	}
	g.SyncImpostors()
	return added
}

func dummyRole(g *models.Game, rng *rand.Rand) models.Role {
	counts := make(map[models.Role]int)
	for _, p := range g.Players {
		counts[p.Role]++
	}
	type weighted struct {
		role   models.Role
		weight int
	}
	options := []weighted{
		{models.RoleImpostor, g.Quotas.Impostors - counts[models.RoleImpostor]},
		{models.RoleScientist, g.Quotas.Scientists - counts[models.RoleScientist]},
		{models.RoleEngineer, g.Quotas.Engineers - counts[models.RoleEngineer]},
		{models.RoleGuardianAngel, g.Quotas.GuardianAngels - counts[models.RoleGuardianAngel]},
	}
	special := 0
	for i := range options {
		options[i].weight = max(options[i].weight, 0)
		special += options[i].weight
	}
	seats := g.MaxPlayers - len(g.Players)
	options = append(options, weighted{models.RoleCrewmate, max(seats-special, 0)})

	total := 0
	for _, o := range options {
		total += o.weight
	}
	if total == 0 {
		return models.RoleCrewmate
	}
	pick := rng.IntN(total)
	for _, o := range options {
		if pick < o.weight {
			return o.role
		}
		pick -= o.weight
	}
	return models.RoleCrewmate
}

func nextDummyID(g *models.Game) int64 {
	id := int64(-1)
	for {
		if _, taken := g.Players[id]; !taken {
			return id
		}
		id--
	}
}
