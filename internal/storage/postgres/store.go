// Package postgres provides a PostgreSQL-backed session and statistics store.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/storage"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store persists sessions and statistics in PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Repository = (*Store)(nil)

// Open connects to connString and applies embedded migrations
func Open(ctx context.Context, connString string, log zerolog.Logger) (*Store, error) {
	if connString == "" {
		return nil, errors.New("postgres url is required")
	}
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	migrations, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations dir: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	err = storage.Migrate(ctx, db, goose.DialectPostgres, migrations, log)
	_ = db.Close()
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// SaveSession upserts a session unless the stored copy is as new or newer
func (s *Store) SaveSession(ctx context.Context, sess storage.Session) error {
	if sess.ID == "" {
		return errors.New("session id is required")
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = time.Now()
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, channel_id, code, phase, version, data, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   channel_id = EXCLUDED.channel_id,
		   code = EXCLUDED.code,
		   phase = EXCLUDED.phase,
		   version = EXCLUDED.version,
		   data = EXCLUDED.data,
		   updated_at = EXCLUDED.updated_at
		 WHERE EXCLUDED.version > sessions.version`,
		sess.ID, sess.ChannelID, sess.Code, string(sess.Phase), sess.Version, sess.Data, sess.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrStale
	}
	return nil
}

const sessionColumns = `id, channel_id, code, phase, version, data, updated_at`

func scanSession(row pgx.Row) (storage.Session, error) {
	var (
		sess  storage.Session
		phase string
	)
	if err := row.Scan(&sess.ID, &sess.ChannelID, &sess.Code, &phase, &sess.Version, &sess.Data, &sess.UpdatedAt); err != nil {
		return storage.Session{}, err
	}
	sess.Phase = models.Phase(phase)
	sess.UpdatedAt = sess.UpdatedAt.UTC()
	return sess, nil
}

// LoadSession returns one session by id
func (s *Store) LoadSession(ctx context.Context, id string) (storage.Session, error) {
	sess, err := scanSession(s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Session{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Session{}, fmt.Errorf("load session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns every stored session, oldest update first
func (s *Store) ListSessions(ctx context.Context) ([]storage.Session, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY updated_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []storage.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

const recordResult = `INSERT INTO player_stats (user_id, name, games_played, games_won, games_lost,
   impostor_wins, crewmate_wins, tasks_completed, kills, meetings_called)
 VALUES ($1, $2, 1, $3, $4, $5, $6, $7, $8, $9)
 ON CONFLICT (user_id) DO UPDATE SET
   name = EXCLUDED.name,
   games_played = player_stats.games_played + 1,
   games_won = player_stats.games_won + EXCLUDED.games_won,
   games_lost = player_stats.games_lost + EXCLUDED.games_lost,
   impostor_wins = player_stats.impostor_wins + EXCLUDED.impostor_wins,
   crewmate_wins = player_stats.crewmate_wins + EXCLUDED.crewmate_wins,
   tasks_completed = player_stats.tasks_completed + EXCLUDED.tasks_completed,
   kills = player_stats.kills + EXCLUDED.kills,
   meetings_called = player_stats.meetings_called + EXCLUDED.meetings_called`

// RecordResults adds one finished game to each player's statistics
func (s *Store) RecordResults(ctx context.Context, results []storage.Result) error {
	if len(results) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range results {
		won, lost, impWins, crewWins := 0, 0, 0, 0
		switch {
		case r.Won && r.Impostor:
			won, impWins = 1, 1
		case r.Won:
			won, crewWins = 1, 1
		default:
			lost = 1
		}
		batch.Queue(recordResult, r.UserID, r.Name, won, lost, impWins, crewWins, r.TasksCompleted, r.Kills, r.MeetingsCalled)
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("record results: %w", err)
	}
	return nil
}

const scoreColumns = `user_id, name, games_played, games_won, games_lost,
	impostor_wins, crewmate_wins, tasks_completed, kills, meetings_called`

func scanScore(row pgx.Row) (models.PlayerScore, error) {
	var sc models.PlayerScore
	err := row.Scan(&sc.UserID, &sc.Name, &sc.GamesPlayed, &sc.GamesWon, &sc.GamesLost,
		&sc.ImpostorWins, &sc.CrewmateWins, &sc.TasksCompleted, &sc.Kills, &sc.MeetingsCalled)
	return sc, err
}

// PlayerStats returns a player's totals, or ErrNotFound before their first game
func (s *Store) PlayerStats(ctx context.Context, userID int64) (models.PlayerScore, error) {
	sc, err := scanScore(s.pool.QueryRow(ctx, `SELECT `+scoreColumns+` FROM player_stats WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.PlayerScore{}, storage.ErrNotFound
	}
	if err != nil {
		return models.PlayerScore{}, fmt.Errorf("player stats %d: %w", userID, err)
	}
	return sc, nil
}

// Leaderboard returns the players with the most wins
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]models.PlayerScore, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+scoreColumns+` FROM player_stats
		 ORDER BY games_won DESC, games_played ASC, user_id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []models.PlayerScore
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return out, nil
}
