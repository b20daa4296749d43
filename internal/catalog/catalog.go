// Package catalog holds the task archetypes of the Skeld and draws task
// lists from them.
package catalog

import (
	"math/rand/v2"
	"slices"

	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/ship"
)

// Archetype is a kind of task and the rooms it can be done in
type Archetype struct {
	Key        string
	Name       string
	Difficulty models.Difficulty
	Locations  []string
}

const (
	// MinTasks is the smallest default task list
	MinTasks = 7

	// MaxTasks is the largest default task list
	MaxTasks = 8
)

var archetypes = []Archetype{
	{"wiring", "Fix Wiring", models.DifficultyEasy, []string{ship.Electrical, ship.Admin, ship.Nav, ship.Cafeteria, ship.Storage, ship.Security, ship.Hallway}},
	{"download", "Download Data", models.DifficultyMedium, []string{ship.Cafeteria, ship.Nav, ship.Weapons, ship.Electrical, ship.Communications}},
	{"fuel", "Fuel Engines", models.DifficultyMedium, []string{ship.Storage, ship.UpperEngine, ship.LowerEngine}},
	{"trash", "Empty Garbage", models.DifficultyEasy, []string{ship.Cafeteria, ship.O2, ship.Storage}},
	{"medbay", "Submit Scan", models.DifficultyEasy, []string{ship.MedBay}},
	{"shields", "Prime Shields", models.DifficultyEasy, []string{ship.Shields}},
	{"asteroids", "Clear Asteroids", models.DifficultyHard, []string{ship.Weapons}},
	{"reactor", "Start Reactor", models.DifficultyMedium, []string{ship.Reactor}},
	{"oxygen", "Clean O2 Filter", models.DifficultyEasy, []string{ship.O2}},
	{"align", "Align Engine Output", models.DifficultyMedium, []string{ship.UpperEngine, ship.LowerEngine}},
	{"calibrate", "Calibrate Distributor", models.DifficultyHard, []string{ship.Electrical}},
	{"chart", "Chart Course", models.DifficultyEasy, []string{ship.Nav}},
	{"divert", "Divert Power", models.DifficultyMedium, []string{ship.Electrical, ship.Communications, ship.Nav, ship.O2, ship.Weapons, ship.Shields}},
	{"unlock", "Unlock Manifolds", models.DifficultyMedium, []string{ship.Reactor}},
	{"inspect", "Inspect Sample", models.DifficultyLong, []string{ship.MedBay}},
	{"sort", "Sort Samples", models.DifficultyEasy, []string{ship.MedBay}},
	{"stabilize", "Stabilize Steering", models.DifficultyMedium, []string{ship.Nav}},
	{"storage", "Swipe Card", models.DifficultyMedium, []string{ship.Admin}},
	{"upload", "Upload Data", models.DifficultyEasy, []string{ship.Admin, ship.Communications}},
	{"monitor", "Monitor Security", models.DifficultyEasy, []string{ship.Security, ship.Hallway}},
	{"scan", "Run Diagnostics", models.DifficultyMedium, []string{ship.O2, ship.Nav}},
	{"organize", "Organize Storage", models.DifficultyEasy, []string{ship.Storage}},
	{"adjust", "Adjust Shields", models.DifficultyMedium, []string{ship.Shields}},
	{"repair", "Repair Communications", models.DifficultyMedium, []string{ship.Communications}},
	{"calibrate_nav", "Calibrate Navigation", models.DifficultyMedium, []string{ship.Nav}},
	{"check_oxygen", "Check Oxygen Levels", models.DifficultyEasy, []string{ship.O2}},
}

// All returns every archetype
func All() []Archetype {
	out := make([]Archetype, len(archetypes))
	for i, a := range archetypes {
		a.Locations = slices.Clone(a.Locations)
		out[i] = a
	}
	return out
}

// Lookup finds an archetype by key
func Lookup(key string) (Archetype, bool) {
	for _, a := range archetypes {
		if a.Key == key {
			a.Locations = slices.Clone(a.Locations)
			return a, true
		}
	}
	return Archetype{}, false
}

// DefaultCount draws the usual task list length
func DefaultCount(rng *rand.Rand) int {
	return MinTasks + rng.IntN(MaxTasks-MinTasks+1)
}

// Generate draws n tasks. Archetypes may repeat, at the same or different rooms.
func Generate(rng *rand.Rand, n int) []models.Task {
	if n < 0 {
		n = 0
	}
	tasks := make([]models.Task, 0, n)
	for range n {
		a := archetypes[rng.IntN(len(archetypes))]
		tasks = append(tasks, models.Task{
			Key:        a.Key,
			Name:       a.Name,
			Location:   a.Locations[rng.IntN(len(a.Locations))],
			Difficulty: a.Difficulty,
		})
	}
	return tasks
}
