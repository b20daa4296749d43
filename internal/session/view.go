package session

import (
	"time"

	"github.com/aaronzipp/crewmate/internal/game"
	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/ship"
)

// View is everything one player is allowed to know, plus what bots use to
// decide. It is a copy; changing it changes nothing.
type View struct {
	Phase           models.Phase
	Self            models.Player
	Players         []models.Player
	ActiveSabotage  models.Sabotage
	SabotageSeq     int
	MeetingSeq      int
	MeetingCooldown int
	Witnesses       []int64
	Bodies          map[string][]string
	StartedAt       time.Time
	LastKillAt      time.Time
	LastReportAt    time.Time
	Now             time.Time
	Ship            *ship.Map
}

// Player finds a player of the view by id
func (v View) Player(id int64) (models.Player, bool) {
	for _, p := range v.Players {
		if p.ID == id {
			return p, true
		}
	}
	return models.Player{}, false
}

// View returns the view of player id, or false once they left the game
func (s *Session) View(id int64) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	self, ok := g.Players[id]
	if !ok {
		return View{}, false
	}
	v := View{
		Phase:           g.Phase,
		Self:            *self.Clone(),
		ActiveSabotage:  g.ActiveSabotage,
		SabotageSeq:     g.SabotageSeq,
		MeetingSeq:      g.MeetingSeq,
		MeetingCooldown: g.MeetingCooldown,
		Witnesses:       append([]int64(nil), g.Witnesses...),
		Bodies:          g.Ship.AllBodies(),
		StartedAt:       g.StartedAt,
		LastKillAt:      g.LastKillAt,
		LastReportAt:    g.LastReportAt,
		Now:             s.now(),
		Ship:            g.Ship.Clone(),
	}
	for _, p := range g.Roster() {
		v.Players = append(v.Players, *p.Clone())
	}
	return v, true
}

// PlayerView is how one player appears to others
type PlayerView struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Color     string      `json:"color"`
	Bot       bool        `json:"bot"`
	Alive     bool        `json:"alive"`
	Location  string      `json:"location"`
	Role      models.Role `json:"role,omitempty"`
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
	Voted     bool        `json:"voted"`
}

// PublicView is the game as seen by one viewer
type PublicView struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Phase          models.Phase    `json:"phase"`
	MaxPlayers     int             `json:"max_players"`
	Players        []PlayerView    `json:"players"`
	Self           *models.Player  `json:"self,omitempty"`
	ActiveSabotage models.Sabotage `json:"active_sabotage,omitempty"`
	MeetingSeq     int             `json:"meeting_seq"`
	Completed      int             `json:"completed"`
	Total          int             `json:"total"`
	Winner         models.Winner   `json:"winner,omitempty"`
	EndReason      string          `json:"end_reason,omitempty"`
}

// PublicView hides the roles of living players from viewer. Impostors still
// recognise each other, the dead are revealed and everything is revealed
// once the game is over.
func (s *Session) PublicView(viewer int64) PublicView {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	completed, total := game.TaskProgress(g)
	out := PublicView{
		ID:             g.ID,
		Code:           g.Code,
		Phase:          g.Phase,
		MaxPlayers:     g.MaxPlayers,
		ActiveSabotage: g.ActiveSabotage,
		MeetingSeq:     g.MeetingSeq,
		Completed:      completed,
		Total:          total,
		Winner:         g.Winner,
		EndReason:      g.EndReason,
	}
	me, seated := g.Players[viewer]
	if seated {
		out.Self = me.Clone()
	}
	for _, p := range g.Roster() {
		pv := PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Color:     p.Color,
			Bot:       p.Bot,
			Alive:     p.Alive,
			Location:  p.Location,
			Completed: p.CompletedTasks(),
			Total:     p.TotalTasks(),
			Voted:     p.HasVoted(),
		}
		switch {
		case g.Phase == models.PhaseEnded, !p.Alive, p.ID == viewer:
			pv.Role = p.Role
		case seated && me.IsImpostor() && p.IsImpostor():
			pv.Role = p.Role
		}
		out.Players = append(out.Players, pv)
	}
	return out
}

// RoomView describes the room a player stands in
type RoomView struct {
	Room      string   `json:"room"`
	Neighbors []string `json:"neighbors"`
	Vents     []string `json:"vents,omitempty"`
	Players   []string `json:"players"`
	Bodies    []string `json:"bodies"`
	Tasks     []int    `json:"tasks"`
	HasTasks  bool     `json:"has_tasks"`
	InVent    bool     `json:"in_vent"`
}

// RoomView shows a player where they are and what they can do there
func (s *Session) RoomView(id int64) (RoomView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	p, ok := g.Players[id]
	if !ok {
		return RoomView{}, game.Reject(game.CodeNotInGame, "player %d is not in this game", id)
	}
	info, _ := g.Ship.Info(p.Location)
	rv := RoomView{
		Room:      p.Location,
		Neighbors: info.Neighbors,
		Bodies:    g.Ship.Bodies(p.Location),
		HasTasks:  info.HasTasks,
		InVent:    p.InVent,
	}
	if p.CanVent {
		rv.Vents = info.Vents
	}
	for _, other := range g.PlayersIn(p.Location, true) {
		if other.ID != id && !other.InVent {
			rv.Players = append(rv.Players, other.Name)
		}
	}
	for _, i := range p.IncompleteTasks() {
		if p.Tasks[i].Location == p.Location {
			rv.Tasks = append(rv.Tasks, i)
		}
	}
	return rv, nil
}

// VoteSummary is the state of the latest meeting's vote. Counts are only
// filled in once the meeting has closed.
type VoteSummary struct {
	MeetingSeq int            `json:"meeting_seq"`
	Open       bool           `json:"open"`
	Voted      []string       `json:"voted"`
	Pending    []string       `json:"pending"`
	Counts     map[string]int `json:"counts,omitempty"`
	Skips      int            `json:"skips"`
}

// VoteSummary reports who has voted and, after the meeting, the tally
func (s *Session) VoteSummary() VoteSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	out := VoteSummary{MeetingSeq: g.MeetingSeq, Open: g.Phase == models.PhaseMeeting}
	for _, p := range g.Roster() {
		if _, ok := g.Votes[p.ID]; ok {
			out.Voted = append(out.Voted, p.Name)
		} else if p.Alive && out.Open {
			out.Pending = append(out.Pending, p.Name)
		}
	}
	if out.Open {
		return out
	}
	r := game.CountVotes(g.Votes)
	out.Skips = r.Skips
	out.Counts = make(map[string]int, len(r.VoteCount))
	for id, n := range r.VoteCount {
		if p, ok := g.Players[id]; ok {
			out.Counts[p.Name] = n
		}
	}
	return out
}

// Snapshot returns a deep copy of the game
func (s *Session) Snapshot() *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Clone()
}

// Phase returns the current phase
func (s *Session) Phase() models.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Phase
}
