package models

// Difficulty grades how long a task takes a human
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyLong   Difficulty = "long"
)

// Task is one task instance owned by a player
type Task struct {
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	Location   string     `json:"location"`
	Difficulty Difficulty `json:"difficulty"`
	Completed  bool       `json:"completed"`
}
