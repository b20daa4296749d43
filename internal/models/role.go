package models

// Role represents a player's secret role
type Role string

const (
	RoleCrewmate      Role = "Crewmate"
	RoleImpostor      Role = "Impostor"
	RoleScientist     Role = "Scientist"
	RoleEngineer      Role = "Engineer"
	RoleGuardianAngel Role = "Guardian Angel"
)

// Traits are the capabilities a role grants
type Traits struct {
	CanVent       bool
	TaskSpeed     float64
	FixSpeed      float64
	ShieldCharges int
}

var roleTraits = map[Role]Traits{
	RoleCrewmate:      {TaskSpeed: 1, FixSpeed: 1},
	RoleImpostor:      {CanVent: true, TaskSpeed: 1, FixSpeed: 1},
	RoleScientist:     {TaskSpeed: 1.5, FixSpeed: 1},
	RoleEngineer:      {CanVent: true, TaskSpeed: 1, FixSpeed: 2},
	RoleGuardianAngel: {TaskSpeed: 1, FixSpeed: 1, ShieldCharges: 2},
}

// TraitsFor returns the capabilities of a role. Unknown roles get crewmate traits.
func TraitsFor(r Role) Traits {
	if t, ok := roleTraits[r]; ok {
		return t
	}
	return roleTraits[RoleCrewmate]
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := roleTraits[r]
	return ok
}

// IsImpostor reports whether r is on the impostor side
func (r Role) IsImpostor() bool {
	return r == RoleImpostor
}

// CrewAligned reports whether r wins with the crew
func (r Role) CrewAligned() bool {
	return r != RoleImpostor
}

// RoleQuotas is how many of each special role a lobby asks for
type RoleQuotas struct {
	Impostors      int `json:"impostors"`
	Scientists     int `json:"scientists"`
	Engineers      int `json:"engineers"`
	GuardianAngels int `json:"guardian_angels"`
}
