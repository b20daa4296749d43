package models

// LobbySettings are the options a channel's lobby is created with
type LobbySettings struct {
	MaxPlayers   int        `json:"max_players"`
	Quotas       RoleQuotas `json:"quotas"`
	FillWithBots bool       `json:"fill_with_bots"`
}

const (
	// MinPlayers is the smallest lobby that can be created
	MinPlayers = 4

	// MaxPlayers is the largest lobby that can be created
	MaxPlayers = 10
)

// Validate lists the problems that would stop a lobby from ever starting
func (s LobbySettings) Validate() []string {
	var problems []string
	if s.MaxPlayers < MinPlayers || s.MaxPlayers > MaxPlayers {
		problems = append(problems, "max players must be between 4 and 10")
	}
	if s.Quotas.Impostors < 1 {
		problems = append(problems, "at least one impostor is required")
	} else if s.Quotas.Impostors > max(1, s.MaxPlayers/3) {
		problems = append(problems, "too many impostors for the lobby size")
	}
	if s.Quotas.Scientists < 0 || s.Quotas.Engineers < 0 || s.Quotas.GuardianAngels < 0 {
		problems = append(problems, "role counts cannot be negative")
	}
	return problems
}
