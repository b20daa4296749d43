// Package sqlite provides a SQLite-backed session and statistics store.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/storage"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store persists sessions and statistics in SQLite
type Store struct {
	db *sql.DB
}

var _ storage.Repository = (*Store)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path and applies embedded migrations
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	migrations, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations dir: %w", err)
	}
	if err := storage.Migrate(ctx, db, goose.DialectSQLite3, migrations, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSession upserts a session unless the stored copy is as new or newer
func (s *Store) SaveSession(ctx context.Context, sess storage.Session) error {
	if sess.ID == "" {
		return errors.New("session id is required")
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, channel_id, code, phase, version, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   channel_id = excluded.channel_id,
		   code = excluded.code,
		   phase = excluded.phase,
		   version = excluded.version,
		   data = excluded.data,
		   updated_at = excluded.updated_at
		 WHERE excluded.version > sessions.version`,
		sess.ID, sess.ChannelID, sess.Code, string(sess.Phase), sess.Version, sess.Data, toMillis(sess.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	if n == 0 {
		return storage.ErrStale
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (storage.Session, error) {
	var (
		sess    storage.Session
		phase   string
		updated int64
	)
	if err := row.Scan(&sess.ID, &sess.ChannelID, &sess.Code, &phase, &sess.Version, &sess.Data, &updated); err != nil {
		return storage.Session{}, err
	}
	sess.Phase = models.Phase(phase)
	sess.UpdatedAt = fromMillis(updated)
	return sess, nil
}

// LoadSession returns one session by id
func (s *Store) LoadSession(ctx context.Context, id string) (storage.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, channel_id, code, phase, version, data, updated_at FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Session{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Session{}, fmt.Errorf("load session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns every stored session, oldest update first
func (s *Store) ListSessions(ctx context.Context) ([]storage.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, channel_id, code, phase, version, data, updated_at FROM sessions ORDER BY updated_at, id`)
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
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// RecordResults adds one finished game to each player's statistics
func (s *Store) RecordResults(ctx context.Context, results []storage.Result) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin results: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range results {
		won, lost, impWins, crewWins := outcome(r)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO player_stats (user_id, name, games_played, games_won, games_lost,
			   impostor_wins, crewmate_wins, tasks_completed, kills, meetings_called)
			 VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (user_id) DO UPDATE SET
			   name = excluded.name,
			   games_played = player_stats.games_played + 1,
			   games_won = player_stats.games_won + excluded.games_won,
			   games_lost = player_stats.games_lost + excluded.games_lost,
			   impostor_wins = player_stats.impostor_wins + excluded.impostor_wins,
			   crewmate_wins = player_stats.crewmate_wins + excluded.crewmate_wins,
			   tasks_completed = player_stats.tasks_completed + excluded.tasks_completed,
			   kills = player_stats.kills + excluded.kills,
			   meetings_called = player_stats.meetings_called + excluded.meetings_called`,
			r.UserID, r.Name, won, lost, impWins, crewWins, r.TasksCompleted, r.Kills, r.MeetingsCalled,
		); err != nil {
			return fmt.Errorf("record result for %d: %w", r.UserID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results: %w", err)
	}
	return nil
}

func outcome(r storage.Result) (won, lost, impostorWins, crewWins int) {
	switch {
	case r.Won && r.Impostor:
		return 1, 0, 1, 0
	case r.Won:
		return 1, 0, 0, 1
	default:
		return 0, 1, 0, 0
	}
}

const scoreColumns = `user_id, name, games_played, games_won, games_lost,
	impostor_wins, crewmate_wins, tasks_completed, kills, meetings_called`

func scanScore(row scanner) (models.PlayerScore, error) {
	var sc models.PlayerScore
	err := row.Scan(&sc.UserID, &sc.Name, &sc.GamesPlayed, &sc.GamesWon, &sc.GamesLost,
		&sc.ImpostorWins, &sc.CrewmateWins, &sc.TasksCompleted, &sc.Kills, &sc.MeetingsCalled)
	return sc, err
}

// PlayerStats returns a player's totals, or ErrNotFound before their first game
func (s *Store) PlayerStats(ctx context.Context, userID int64) (models.PlayerScore, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+scoreColumns+` FROM player_stats WHERE user_id = ?`, userID)
	sc, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
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
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+scoreColumns+` FROM player_stats
		 ORDER BY games_won DESC, games_played ASC, user_id ASC LIMIT ?`, limit)
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
