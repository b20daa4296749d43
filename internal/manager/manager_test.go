package manager

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/crewmate/internal/config"
	"github.com/aaronzipp/crewmate/internal/game"
	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/storage"
	"github.com/aaronzipp/crewmate/internal/storage/sqlite"
)

var lobby = models.LobbySettings{MaxPlayers: 6, Quotas: models.RoleQuotas{Impostors: 1}}

func openRepo(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	repo, err := sqlite.Open(context.Background(), path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newManager(t *testing.T, repo storage.Repository) *Manager {
	t.Helper()
	m := New(Options{Tuning: config.DefaultTuning(), Repo: repo, Logger: zerolog.Nop()})
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return m
}

func TestCreateValidates(t *testing.T) {
	m := newManager(t, nil)

	_, err := m.Create("c1", models.LobbySettings{MaxPlayers: 2, Quotas: models.RoleQuotas{Impostors: 1}})
	assert.ErrorIs(t, err, &game.Rejection{Code: game.CodeInvalidSettings})
	_, err = m.Create("", lobby)
	assert.ErrorIs(t, err, &game.Rejection{Code: game.CodeInvalidSettings})

	s, err := m.Create("c1", lobby)
	require.NoError(t, err)
	assert.Len(t, s.Code(), game.CodeLength)

	_, err = m.Create("c1", lobby)
	assert.ErrorIs(t, err, &game.Rejection{Code: game.CodeSessionExists})

	got, err := m.GetByCode(" " + s.Code())
	require.NoError(t, err)
	assert.Same(t, s, got)
	_, err = m.Get("nope")
	assert.ErrorIs(t, err, &game.Rejection{Code: game.CodeSessionNotFound})
}

func startFour(t *testing.T, m *Manager, channel string) {
	t.Helper()
	s, err := m.Create(channel, lobby)
	require.NoError(t, err)
	for i := range 4 {
		_, err := s.Join(int64(i+1), string(rune('a'+i)), "")
		require.NoError(t, err)
	}
	require.NoError(t, s.Start())
}

func TestFinishedGameRecordsResultsAndIsForgotten(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, filepath.Join(t.TempDir(), "db"))
	m := newManager(t, repo)
	startFour(t, m, "c1")

	s, err := m.Get("c1")
	require.NoError(t, err)
	snap := s.Snapshot()
	require.Len(t, snap.Impostors, 1)
	_, err = repo.LoadSession(ctx, snap.ID)
	require.NoError(t, err, "a running game is persisted")

	require.NoError(t, s.Leave(snap.Impostors[0]))
	assert.Equal(t, models.WinnerCrewmates, s.Snapshot().Winner)

	_, err = m.Get("c1")
	assert.Error(t, err, "a finished game leaves the channel free")
	_, err = repo.LoadSession(ctx, snap.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	for _, p := range snap.Roster() {
		if p.ID == snap.Impostors[0] {
			continue
		}
		score, err := m.Stats(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, score.GamesWon)
		assert.Equal(t, 1, score.CrewmateWins)
	}
	board, err := m.Leaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, board, 3)
}

func TestEndWithoutWinnerRecordsNothing(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, filepath.Join(t.TempDir(), "db"))
	m := newManager(t, repo)
	startFour(t, m, "c1")

	require.NoError(t, m.End("c1", ""))
	score, err := m.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, score.GamesPlayed)
	assert.ErrorIs(t, m.End("c1", ""), &game.Rejection{Code: game.CodeSessionNotFound})
}

func TestRestoreResumesPersistedGames(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db")
	repo := openRepo(t, path)

	first := New(Options{Tuning: config.DefaultTuning(), Repo: repo, Logger: zerolog.Nop()})
	startFour(t, first, "running")
	waiting, err := first.Create("waiting", lobby)
	require.NoError(t, err)
	_, err = waiting.Join(7, "g", "")
	require.NoError(t, err)
	before, err := first.Get("running")
	require.NoError(t, err)
	want := before.Snapshot()
	require.NoError(t, first.Shutdown(ctx))

	require.NoError(t, repo.SaveSession(ctx, storage.Session{ID: "junk", ChannelID: "junk", Version: 1, Data: []byte("nope")}))

	second := newManager(t, repo)
	n, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	s, err := second.Get("running")
	require.NoError(t, err)
	got := s.Snapshot()
	assert.Equal(t, models.PhaseTasks, got.Phase)
	assert.Equal(t, want.Code, got.Code)
	assert.Equal(t, want.Impostors, got.Impostors)
	assert.Len(t, got.Players, 4)

	w, err := second.GetByCode(waiting.Code())
	require.NoError(t, err)
	assert.Equal(t, models.PhaseLobby, w.Phase())

	_, err = repo.LoadSession(ctx, "junk")
	assert.ErrorIs(t, err, storage.ErrNotFound, "unreadable sessions are dropped")
}

func TestShutdownHonoursContext(t *testing.T) {
	m := newManager(t, nil)
	_, err := m.Create("c1", lobby)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, m.Shutdown(ctx))
}
