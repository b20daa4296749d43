package models

import (
	"maps"
	"slices"
	"time"

	"github.com/aaronzipp/crewmate/internal/ship"
)

// Game represents one channel's game from lobby to end. It is plain data;
// the session that owns it serialises access.
type Game struct {
	ID         string            `json:"id"`
	ChannelID  string            `json:"channel_id"`
	Code       string            `json:"code"`
	Phase      Phase             `json:"phase"`
	MaxPlayers int               `json:"max_players"`
	Quotas     RoleQuotas        `json:"quotas"`
	Players    map[int64]*Player `json:"players"`
	JoinOrder  []int64           `json:"join_order"`
	Impostors  []int64           `json:"impostors"`

	RolesAssigned bool `json:"roles_assigned"`
	FillWithBots  bool `json:"fill_with_bots"`

	ActiveSabotage    Sabotage  `json:"active_sabotage,omitempty"`
	SabotageSeq       int       `json:"sabotage_seq"`
	SabotageStartedAt time.Time `json:"sabotage_started_at"`

	Votes            map[int64]int64 `json:"votes"`
	MeetingSeq       int             `json:"meeting_seq"`
	MeetingCaller    int64           `json:"meeting_caller,omitempty"`
	MeetingStartedAt time.Time       `json:"meeting_started_at"`
	MeetingCooldown  int             `json:"meeting_cooldown"`
	Witnesses        []int64         `json:"witnesses"`

	StartedAt    time.Time `json:"started_at"`
	LastKillAt   time.Time `json:"last_kill_at"`
	LastReportAt time.Time `json:"last_report_at"`

	Winner    Winner    `json:"winner,omitempty"`
	EndReason string    `json:"end_reason,omitempty"`
	EndedAt   time.Time `json:"ended_at"`

	Version int64     `json:"version"`
	Ship    *ship.Map `json:"ship"`
}

// NewGame creates an empty lobby on the Skeld
func NewGame(id, channelID, code string, maxPlayers int, quotas RoleQuotas) *Game {
	return &Game{
		ID:         id,
		ChannelID:  channelID,
		Code:       code,
		Phase:      PhaseLobby,
		MaxPlayers: maxPlayers,
		Quotas:     quotas,
		Players:    make(map[int64]*Player),
		Votes:      make(map[int64]int64),
		Ship:       ship.NewSkeld(),
	}
}

// Roster returns the players in join order
func (g *Game) Roster() []*Player {
	out := make([]*Player, 0, len(g.JoinOrder))
	for _, id := range g.JoinOrder {
		if p, ok := g.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Player looks up a player by id
func (g *Game) Player(id int64) (*Player, bool) {
	p, ok := g.Players[id]
	return p, ok
}

// BodyOf finds the dead player a body named name in room belongs to. Display
// names may repeat, so the living are never matched and a ghost still in
// room wins over one that wandered off.
func (g *Game) BodyOf(name, room string) (*Player, bool) {
	var found *Player
	for _, p := range g.Roster() {
		if p.Alive || p.Name != name {
			continue
		}
		if p.Location == room {
			return p, true
		}
		if found == nil {
			found = p
		}
	}
	return found, found != nil
}

// AlivePlayers returns the living players in join order
func (g *Game) AlivePlayers() []*Player {
	var out []*Player
	for _, p := range g.Roster() {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// Bots returns the bot players in join order
func (g *Game) Bots() []*Player {
	var out []*Player
	for _, p := range g.Roster() {
		if p.Bot {
			out = append(out, p)
		}
	}
	return out
}

// IsImpostor reports whether id is in the impostor set
func (g *Game) IsImpostor(id int64) bool {
	return slices.Contains(g.Impostors, id)
}

// SyncImpostors rebuilds the impostor set from the players' roles
func (g *Game) SyncImpostors() {
	g.Impostors = g.Impostors[:0]
	for _, p := range g.Roster() {
		if p.IsImpostor() {
			g.Impostors = append(g.Impostors, p.ID)
		}
	}
}

// PlayersIn returns the players standing in a room, in join order
func (g *Game) PlayersIn(room string, aliveOnly bool) []*Player {
	var out []*Player
	for _, p := range g.Roster() {
		if p.Location == room && (p.Alive || !aliveOnly) {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy, including the ship's bodies
func (g *Game) Clone() *Game {
	c := *g
	c.Players = make(map[int64]*Player, len(g.Players))
	for id, p := range g.Players {
		c.Players[id] = p.Clone()
	}
	c.JoinOrder = slices.Clone(g.JoinOrder)
	c.Impostors = slices.Clone(g.Impostors)
	c.Votes = maps.Clone(g.Votes)
	c.Witnesses = slices.Clone(g.Witnesses)
	if g.Ship != nil {
		c.Ship = g.Ship.Clone()
	}
	return &c
}
