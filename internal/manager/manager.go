// Package manager owns the lifecycle of every channel's session: creating
// lobbies, restoring persisted games, recording results and shutting down.
package manager

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aaronzipp/crewmate/internal/config"
	"github.com/aaronzipp/crewmate/internal/game"
	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/session"
	"github.com/aaronzipp/crewmate/internal/snapshot"
	"github.com/aaronzipp/crewmate/internal/storage"
	"github.com/aaronzipp/crewmate/internal/store"
)

// Options configure a Manager. Repo, Notifier and Driver are optional.
type Options struct {
	Tuning   config.Tuning
	Repo     storage.Repository
	Notifier session.Notifier
	Driver   session.Driver
	Tickers  session.TickerCreator
	Logger   zerolog.Logger
	Now      func() time.Time
	// Timeout bounds each storage call made outside a request
	Timeout time.Duration
}

// Manager creates, finds and retires sessions
type Manager struct {
	tuning   config.Tuning
	repo     storage.Repository
	notifier session.Notifier
	driver   session.Driver
	tickers  session.TickerCreator
	sessions *store.SessionStore
	log      zerolog.Logger
	now      func() time.Time
	timeout  time.Duration
}

// New creates a manager with an empty session store
func New(opts Options) *Manager {
	m := &Manager{
		tuning:   opts.Tuning,
		repo:     opts.Repo,
		notifier: opts.Notifier,
		driver:   opts.Driver,
		tickers:  opts.Tickers,
		sessions: store.NewSessionStore(),
		log:      opts.Logger.With().Str("component", "manager").Logger(),
		now:      opts.Now,
		timeout:  opts.Timeout,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.timeout <= 0 {
		m.timeout = 5 * time.Second
	}
	return m
}

// Create opens a lobby in a channel that has no session yet
func (m *Manager) Create(channelID string, settings models.LobbySettings) (*session.Session, error) {
	if strings.TrimSpace(channelID) == "" {
		return nil, game.Reject(game.CodeInvalidSettings, "a channel is required")
	}
	if problems := settings.Validate(); len(problems) > 0 {
		return nil, game.Reject(game.CodeInvalidSettings, "%s", strings.Join(problems, "; "))
	}
	if m.sessions.Exists(channelID) {
		return nil, game.Reject(game.CodeSessionExists, "this channel already has a game")
	}

	code := game.UniqueCode(m.sessions.CodeTaken)
	g := models.NewGame(uuid.NewString(), channelID, code, settings.MaxPlayers, settings.Quotas)
	g.FillWithBots = settings.FillWithBots
	s := m.open(g)
	if !m.sessions.Add(s) {
		s.Close()
		return nil, game.Reject(game.CodeSessionExists, "this channel already has a game")
	}
	m.save(g)

	m.log.Info().
		Str("channel", channelID).
		Str("session", g.ID).
		Str("code", code).
		Int("max_players", settings.MaxPlayers).
		Msg("lobby created")
	return s, nil
}

func (m *Manager) open(g *models.Game) *session.Session {
	opts := session.Options{
		Game:         g,
		Tuning:       m.tuning,
		FillWithBots: g.FillWithBots,
		Notifier:     m.notifier,
		Driver:       m.driver,
		Tickers:      m.tickers,
		Logger:       m.log,
		Now:          m.now,
		SaveTimeout:  m.timeout,
		OnEnd:        m.finished,
	}
	if m.repo != nil {
		opts.Saver = repoSaver{repo: m.repo, now: m.now}
	}
	return session.New(opts)
}

// save writes the first snapshot of a fresh lobby so it survives a restart
func (m *Manager) save(g *models.Game) {
	if m.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := (repoSaver{repo: m.repo, now: m.now}).Save(ctx, g); err != nil {
		m.log.Error().Err(err).Str("session", g.ID).Msg("failed to save new lobby")
	}
}

// releaser is implemented by notifiers that keep per-channel state
type releaser interface {
	Release(channelID string)
}

// finished records the outcome of a game and forgets it
func (m *Manager) finished(s *session.Session, final *models.Game) {
	m.sessions.Remove(s)
	if r, ok := m.notifier.(releaser); ok {
		r.Release(final.ChannelID)
	}
	m.log.Info().
		Str("channel", final.ChannelID).
		Str("session", final.ID).
		Str("winner", string(final.Winner)).
		Str("reason", final.EndReason).
		Msg("game finished")
	if m.repo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if final.Winner != models.WinnerNone {
		if err := m.repo.RecordResults(ctx, storage.Results(final)); err != nil {
			m.log.Error().Err(err).Str("session", final.ID).Msg("failed to record results")
		}
	}
	if err := m.repo.DeleteSession(ctx, final.ID); err != nil {
		m.log.Error().Err(err).Str("session", final.ID).Msg("failed to delete finished session")
	}
}

// Get finds the session of a channel
func (m *Manager) Get(channelID string) (*session.Session, error) {
	s, ok := m.sessions.Get(channelID)
	if !ok {
		return nil, game.Reject(game.CodeSessionNotFound, "no game in this channel")
	}
	return s, nil
}

// GetByCode finds a session by join code
func (m *Manager) GetByCode(code string) (*session.Session, error) {
	s, ok := m.sessions.GetByCode(strings.ToUpper(strings.TrimSpace(code)))
	if !ok {
		return nil, game.Reject(game.CodeSessionNotFound, "no game with code %s", code)
	}
	return s, nil
}

// End stops the game in a channel without a winner
func (m *Manager) End(channelID, reason string) error {
	s, err := m.Get(channelID)
	if err != nil {
		return err
	}
	return s.End(reason)
}

// Sessions returns every live session
func (m *Manager) Sessions() []*session.Session {
	return m.sessions.All()
}

// Restore reloads persisted games and resumes their timers and bots. It
// returns how many sessions came back.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	if m.repo == nil {
		return 0, nil
	}
	records, err := m.repo.ListSessions(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, rec := range records {
		log := m.log.With().Str("session", rec.ID).Str("channel", rec.ChannelID).Logger()
		g, err := snapshot.Decode(rec.Data)
		if err != nil {
			log.Error().Err(err).Msg("dropping unreadable session")
			m.forget(ctx, rec.ID)
			continue
		}
		if g.Phase == models.PhaseEnded {
			m.forget(ctx, rec.ID)
			continue
		}
		// records come oldest first, so a newer game in the same channel wins
		if old, ok := m.sessions.Get(g.ChannelID); ok {
			m.sessions.Remove(old)
			old.Close()
			restored--
			m.forget(ctx, old.ID())
		}

		s := m.open(g)
		m.sessions.Add(s)
		restored++
		log.Info().Str("phase", string(g.Phase)).Int64("version", g.Version).Msg("session restored")
	}
	for _, s := range m.sessions.All() {
		s.Resume()
	}
	return restored, nil
}

func (m *Manager) forget(ctx context.Context, id string) {
	if err := m.repo.DeleteSession(ctx, id); err != nil {
		m.log.Error().Err(err).Str("session", id).Msg("failed to delete session")
	}
}

// Shutdown stops every session's timers and bots. Persisted games stay in
// storage so Restore can pick them up again.
func (m *Manager) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		for _, s := range m.sessions.All() {
			s.Close()
		}
		close(done)
	}()
	select {
	case <-done:
		m.log.Info().Int("sessions", m.sessions.Len()).Msg("sessions stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a player's lifetime statistics
func (m *Manager) Stats(ctx context.Context, userID int64) (models.PlayerScore, error) {
	if m.repo == nil {
		return models.PlayerScore{UserID: userID}, nil
	}
	score, err := m.repo.PlayerStats(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.PlayerScore{UserID: userID}, nil
	}
	return score, err
}

// Leaderboard returns the best players
func (m *Manager) Leaderboard(ctx context.Context, limit int) ([]models.PlayerScore, error) {
	if m.repo == nil {
		return nil, nil
	}
	return m.repo.Leaderboard(ctx, limit)
}

// repoSaver stores session snapshots in a repository
type repoSaver struct {
	repo storage.Repository
	now  func() time.Time
}

func (r repoSaver) Save(ctx context.Context, g *models.Game) error {
	now := r.now()
	data, err := snapshot.Encode(g, now)
	if err != nil {
		return err
	}
	err = r.repo.SaveSession(ctx, storage.Session{
		ID:        g.ID,
		ChannelID: g.ChannelID,
		Code:      g.Code,
		Phase:     g.Phase,
		Version:   g.Version,
		Data:      data,
		UpdatedAt: now,
	})
	if errors.Is(err, storage.ErrStale) {
		return nil
	}
	return err
}
