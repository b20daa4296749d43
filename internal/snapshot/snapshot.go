// Package snapshot serialises a whole game for persistence.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaronzipp/crewmate/internal/models"
)

// Version is the envelope format written by Encode
const Version = 1

// ErrUnsupportedVersion is returned for envelopes from a newer build
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type envelope struct {
	Format  int          `json:"format"`
	SavedAt time.Time    `json:"saved_at"`
	Game    *models.Game `json:"game"`
}

// Encode renders g as a versioned JSON document
func Encode(g *models.Game, savedAt time.Time) ([]byte, error) {
	if g == nil {
		return nil, errors.New("encode snapshot: nil game")
	}
	data, err := json.Marshal(envelope{Format: Version, SavedAt: savedAt.UTC(), Game: g})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode restores a game written by Encode. Maps the document leaves out
// are initialised so the result can be mutated straight away.
func Decode(data []byte) (*models.Game, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if env.Format < 1 || env.Format > Version {
		return nil, fmt.Errorf("decode snapshot: format %d: %w", env.Format, ErrUnsupportedVersion)
	}
	g := env.Game
	if g == nil {
		return nil, errors.New("decode snapshot: missing game")
	}
	if g.Players == nil {
		g.Players = make(map[int64]*models.Player)
	}
	if g.Votes == nil {
		g.Votes = make(map[int64]int64)
	}
	if g.Ship == nil {
		return nil, errors.New("decode snapshot: missing ship")
	}
	for id, p := range g.Players {
		if p == nil {
			return nil, fmt.Errorf("decode snapshot: player %d is empty", id)
		}
	}
	g.SyncImpostors()
	return g, nil
}
