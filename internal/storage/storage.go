// Package storage defines persistence for running sessions and player
// statistics.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aaronzipp/crewmate/internal/models"
)

var (
	// ErrNotFound is returned when a session does not exist
	ErrNotFound = errors.New("not found")

	// ErrStale is returned when a save carries a version that is not newer
	// than the stored one
	ErrStale = errors.New("stale session version")
)

// Session is one persisted game snapshot
type Session struct {
	ID        string
	ChannelID string
	Code      string
	Phase     models.Phase
	Version   int64
	Data      []byte
	UpdatedAt time.Time
}

// Result is one human player's outcome of a finished game
type Result struct {
	UserID         int64
	Name           string
	Won            bool
	Impostor       bool
	TasksCompleted int
	Kills          int
	MeetingsCalled int
}

// Repository persists sessions and statistics
type Repository interface {
	// SaveSession inserts or replaces a session when its version is newer
	// than the stored one, and returns ErrStale otherwise
	SaveSession(ctx context.Context, s Session) error
	LoadSession(ctx context.Context, id string) (Session, error)
	// ListSessions returns every stored session, oldest update first
	ListSessions(ctx context.Context) ([]Session, error)
	DeleteSession(ctx context.Context, id string) error

	RecordResults(ctx context.Context, results []Result) error
	PlayerStats(ctx context.Context, userID int64) (models.PlayerScore, error)
	Leaderboard(ctx context.Context, limit int) ([]models.PlayerScore, error)

	Close() error
}

// Results derives the statistics of a finished game. Bots are left out.
func Results(g *models.Game) []Result {
	var out []Result
	for _, p := range g.Roster() {
		if p.Bot {
			continue
		}
		won := false
		switch g.Winner {
		case models.WinnerImpostors:
			won = p.IsImpostor()
		case models.WinnerCrewmates:
			won = !p.IsImpostor()
		}
		tasks := 0
		if !p.IsImpostor() {
			tasks = p.CompletedTasks()
		}
		out = append(out, Result{
			UserID:         p.ID,
			Name:           p.Name,
			Won:            won,
			Impostor:       p.IsImpostor(),
			TasksCompleted: tasks,
			Kills:          p.Kills,
			MeetingsCalled: p.MeetingsCalled,
		})
	}
	return out
}
