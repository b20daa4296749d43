package models

import (
	"strings"

	"github.com/aaronzipp/crewmate/internal/ship"
)

// Sabotage identifies a ship-wide hazard
type Sabotage string

const (
	SabotageNone    Sabotage = ""
	SabotageLights  Sabotage = "lights"
	SabotageOxygen  Sabotage = "oxygen"
	SabotageReactor Sabotage = "reactor"
	SabotageComms   Sabotage = "communications"
	SabotageDoors   Sabotage = "doors"
)

var sabotageRooms = map[Sabotage]string{
	SabotageLights:  ship.Electrical,
	SabotageOxygen:  ship.O2,
	SabotageReactor: ship.Reactor,
	SabotageComms:   ship.Communications,
	SabotageDoors:   ship.Cafeteria,
}

var sabotageAliases = map[string]Sabotage{
	"lights":         SabotageLights,
	"electrical":     SabotageLights,
	"oxygen":         SabotageOxygen,
	"o2":             SabotageOxygen,
	"reactor":        SabotageReactor,
	"communications": SabotageComms,
	"comms":          SabotageComms,
	"doors":          SabotageDoors,
}

// Sabotages lists every sabotage kind
func Sabotages() []Sabotage {
	return []Sabotage{SabotageLights, SabotageOxygen, SabotageReactor, SabotageComms, SabotageDoors}
}

// ParseSabotage resolves a sabotage kind from user input
func ParseSabotage(s string) (Sabotage, bool) {
	kind, ok := sabotageAliases[strings.ToLower(strings.TrimSpace(s))]
	return kind, ok
}

// Valid reports whether s is a known sabotage kind
func (s Sabotage) Valid() bool {
	_, ok := sabotageRooms[s]
	return ok
}

// Room is where the sabotage is fixed
func (s Sabotage) Room() string {
	return sabotageRooms[s]
}

// Fatal reports whether the impostors win when the sabotage is left to run out
func (s Sabotage) Fatal() bool {
	return s == SabotageOxygen || s == SabotageReactor
}

// BlocksMovement reports whether the sabotage keeps players where they are
func (s Sabotage) BlocksMovement() bool {
	return s == SabotageDoors
}
