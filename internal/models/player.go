package models

import (
	"fmt"
	"slices"

	"github.com/aaronzipp/crewmate/internal/ship"
)

// SkipVote is the vote target meaning "skip"
const SkipVote int64 = -1

const (
	// DefaultEmergencyMeetings is how many meetings a player may call per game
	DefaultEmergencyMeetings = 1

	// DefaultFastTravels is how many fast travel charges a player starts with
	DefaultFastTravels = 3
)

// PlayerScore tracks persistent results across games
type PlayerScore struct {
	UserID         int64  `json:"user_id"`
	Name           string `json:"name"`
	GamesPlayed    int    `json:"games_played"`
	GamesWon       int    `json:"games_won"`
	GamesLost      int    `json:"games_lost"`
	ImpostorWins   int    `json:"impostor_wins"`
	CrewmateWins   int    `json:"crewmate_wins"`
	TasksCompleted int    `json:"tasks_completed"`
	Kills          int    `json:"kills"`
	MeetingsCalled int    `json:"meetings_called"`
}

// Player represents a participant of a game. Negative ids are bots.
type Player struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Bot    bool   `json:"bot"`
	Color  string `json:"color"`

	Role     Role   `json:"role"`
	Alive    bool   `json:"alive"`
	Location string `json:"location"`
	Tasks    []Task `json:"tasks"`
	Vote     *int64 `json:"vote,omitempty"`

	KillCooldown     int   `json:"kill_cooldown"`
	SabotageCooldown int   `json:"sabotage_cooldown"`
	ShieldCooldown   int   `json:"shield_cooldown"`
	ShieldCharges    int   `json:"shield_charges"`
	Shielded         bool  `json:"shielded"`
	ShieldedBy       int64 `json:"shielded_by,omitempty"`

	EmergencyMeetings int  `json:"emergency_meetings"`
	InVent            bool `json:"in_vent"`
	FastTravels       int  `json:"fast_travels"`

	CanVent   bool    `json:"can_vent"`
	TaskSpeed float64 `json:"task_speed"`
	FixSpeed  float64 `json:"fix_speed"`

	Kills          int `json:"kills"`
	MeetingsCalled int `json:"meetings_called"`
}

// NewPlayer creates a living crewmate standing at the spawn room
func NewPlayer(id int64, name, avatar string) *Player {
	p := &Player{
		ID:                id,
		Name:              name,
		Avatar:            avatar,
		Bot:               id < 0,
		Alive:             true,
		Location:          ship.SpawnRoom,
		EmergencyMeetings: DefaultEmergencyMeetings,
		FastTravels:       DefaultFastTravels,
	}
	p.AssignRole(RoleCrewmate)
	return p
}

// AssignRole sets the role and every capability derived from it
func (p *Player) AssignRole(role Role) {
	t := TraitsFor(role)
	p.Role = role
	p.CanVent = t.CanVent
	p.TaskSpeed = t.TaskSpeed
	p.FixSpeed = t.FixSpeed
	p.ShieldCharges = t.ShieldCharges
	p.InVent = false
}

// AssignTasks replaces the task list
func (p *Player) AssignTasks(tasks []Task) {
	p.Tasks = slices.Clone(tasks)
}

// CompleteTask marks a task done. It returns false for an invalid index or
// a task that is already complete.
func (p *Player) CompleteTask(i int) bool {
	if i < 0 || i >= len(p.Tasks) || p.Tasks[i].Completed {
		return false
	}
	p.Tasks[i].Completed = true
	return true
}

// CompletedTasks counts finished tasks
func (p *Player) CompletedTasks() int {
	n := 0
	for _, t := range p.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// TotalTasks counts all tasks
func (p *Player) TotalTasks() int {
	return len(p.Tasks)
}

// Progress renders task progress as "X/Y"
func (p *Player) Progress() string {
	return fmt.Sprintf("%d/%d", p.CompletedTasks(), p.TotalTasks())
}

// IncompleteTasks returns the indexes of unfinished tasks
func (p *Player) IncompleteTasks() []int {
	var out []int
	for i, t := range p.Tasks {
		if !t.Completed {
			out = append(out, i)
		}
	}
	return out
}

// IsImpostor reports whether the player is an impostor
func (p *Player) IsImpostor() bool {
	return p.Role.IsImpostor()
}

// HasVoted reports whether the player voted or skipped this meeting
func (p *Player) HasVoted() bool {
	return p.Vote != nil
}

// ClearVote forgets the player's vote
func (p *Player) ClearVote() {
	p.Vote = nil
}

// Die marks the player dead and drops everything only the living use
func (p *Player) Die() {
	p.Alive = false
	p.InVent = false
	p.Shielded = false
	p.ShieldedBy = 0
	p.KillCooldown = 0
	p.SabotageCooldown = 0
}

// Clone returns a deep copy
func (p *Player) Clone() *Player {
	c := *p
	c.Tasks = slices.Clone(p.Tasks)
	if p.Vote != nil {
		v := *p.Vote
		c.Vote = &v
	}
	return &c
}
