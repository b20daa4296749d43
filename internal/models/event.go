package models

import "time"

// EventKind names something worth telling players about
type EventKind string

const (
	EventPlayerJoined    EventKind = "player_joined"
	EventPlayerLeft      EventKind = "player_left"
	EventGameStarted     EventKind = "game_started"
	EventRoleAssigned    EventKind = "role_assigned"
	EventTaskCompleted   EventKind = "task_completed"
	EventPlayerKilled    EventKind = "player_killed"
	EventKillBlocked     EventKind = "kill_blocked"
	EventShieldCast      EventKind = "shield_cast"
	EventVentNoise       EventKind = "vent_noise"
	EventBodyReported    EventKind = "body_reported"
	EventMeetingCalled   EventKind = "meeting_called"
	EventVoteCast        EventKind = "vote_cast"
	EventPlayerEjected   EventKind = "player_ejected"
	EventNoEjection      EventKind = "no_ejection"
	EventSabotageStarted EventKind = "sabotage_started"
	EventSabotageFixed   EventKind = "sabotage_fixed"
	EventSabotageExpired EventKind = "sabotage_expired"
	EventGameEnded       EventKind = "game_ended"
)

// Event is one announcement produced by a game. Only the fields relevant to
// the kind are set.
type Event struct {
	Kind      EventKind `json:"kind"`
	ChannelID string    `json:"channel_id"`
	Actor     string    `json:"actor,omitempty"`
	Target    string    `json:"target,omitempty"`
	Room      string    `json:"room,omitempty"`
	Sabotage  Sabotage  `json:"sabotage,omitempty"`
	Role      Role      `json:"role,omitempty"`
	Winner    Winner    `json:"winner,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Count     int       `json:"count,omitempty"`
	Total     int       `json:"total,omitempty"`
	Names     []string  `json:"names,omitempty"`
	At        time.Time `json:"at"`
}
