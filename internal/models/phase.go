package models

// Phase represents the current round state of a game
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhaseTasks   Phase = "tasks"
	PhaseMeeting Phase = "meeting"
	PhaseEnded   Phase = "ended"
)

// InProgress reports whether roles are dealt and the game has not finished
func (p Phase) InProgress() bool {
	return p == PhaseTasks || p == PhaseMeeting
}

// Winner names the side that won a game
type Winner string

const (
	WinnerNone      Winner = ""
	WinnerCrewmates Winner = "crewmates"
	WinnerImpostors Winner = "impostors"
)
