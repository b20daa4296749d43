// Package session runs one channel's game. A Session is the only way to
// change a game: every action takes the session lock, validates, mutates and
// queues announcements, and only after unlocking delivers them and persists
// a snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aaronzipp/crewmate/internal/config"
	"github.com/aaronzipp/crewmate/internal/game"
	"github.com/aaronzipp/crewmate/internal/models"
)

// Notifier delivers announcements. Calls must return quickly.
type Notifier interface {
	Announce(ev models.Event)
	Direct(playerID int64, ev models.Event)
}

// Saver persists snapshots of a game
type Saver interface {
	Save(ctx context.Context, g *models.Game) error
}

// Driver plays the bot seats of a session
type Driver interface {
	// Drive runs one bot until ctx is done or the bot has nothing left to do
	Drive(ctx context.Context, s *Session, playerID int64)
	// Vote casts the bots' votes for one meeting
	Vote(ctx context.Context, s *Session, meetingSeq int)
}

// Options configure a session
type Options struct {
	Game         *models.Game
	Tuning       config.Tuning
	FillWithBots bool
	Notifier     Notifier
	Saver        Saver
	Driver       Driver
	Tickers      TickerCreator
	Logger       zerolog.Logger
	Rand         *rand.Rand
	Now          func() time.Time
	SaveTimeout  time.Duration

	// OnEnd is called once with a copy of the finished game
	OnEnd func(s *Session, final *models.Game)
}

// Session is the concurrency boundary around one game
type Session struct {
	id        string
	channelID string
	code      string

	mu      sync.Mutex
	game    *models.Game
	tuning  config.Tuning
	fill    bool
	rng     *rand.Rand
	now     func() time.Time
	fixes   map[int64]fixProgress
	outbox  []outbound
	ended   bool
	running bool

	sched    *Scheduler
	tickers  TickerCreator
	notifier Notifier
	saver    Saver
	driver   Driver
	log      zerolog.Logger
	onEnd    func(*Session, *models.Game)

	saveMu       sync.Mutex
	saveTimeout  time.Duration
	savedVersion int64
	saveClosed   bool
}

type outbound struct {
	to     int64
	direct bool
	ev     models.Event
}

type fixProgress struct {
	seq     int
	done    int
	started time.Time
}

// errStale marks a timer that fired after the state it was armed for is gone
var errStale = errors.New("stale timer")

// New wraps a game in a session. The game must not be used elsewhere afterwards.
func New(opts Options) *Session {
	g := opts.Game
	s := &Session{
		id:          g.ID,
		channelID:   g.ChannelID,
		code:        g.Code,
		game:        g,
		tuning:      opts.Tuning,
		fill:        opts.FillWithBots,
		rng:         opts.Rand,
		now:         opts.Now,
		tickers:     opts.Tickers,
		notifier:    opts.Notifier,
		saver:       opts.Saver,
		driver:      opts.Driver,
		onEnd:       opts.OnEnd,
		saveTimeout: opts.SaveTimeout,
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.tickers == nil {
		s.tickers = SystemTickers{}
	}
	if s.saveTimeout <= 0 {
		s.saveTimeout = 5 * time.Second
	}
	if s.tuning.TickInterval <= 0 {
		s.tuning.TickInterval = time.Second
	}
	s.log = opts.Logger.With().
		Str("component", "session").
		Str("channel", g.ChannelID).
		Str("session", g.ID).
		Logger()
	s.sched = NewScheduler(context.Background(), s.log)
	s.savedVersion = g.Version
	if g.Phase == models.PhaseEnded {
		s.sched.Cancel()
	}
	return s
}

// ID returns the game id
func (s *Session) ID() string {
	return s.id
}

// ChannelID returns the channel the session belongs to
func (s *Session) ChannelID() string {
	return s.channelID
}

// Code returns the join code
func (s *Session) Code() string {
	return s.code
}

// Tuning returns the balance parameters the session runs with
func (s *Session) Tuning() config.Tuning {
	return s.tuning
}

// Schedule runs fn after d unless the session ends first
func (s *Session) Schedule(d time.Duration, name string, fn func(ctx context.Context)) bool {
	return s.sched.After(d, name, fn)
}

// Done is closed when the session has ended
func (s *Session) Done() <-chan struct{} {
	return s.sched.Done()
}

// Close stops every goroutine of the session and waits for them
func (s *Session) Close() {
	s.sched.Close()
}

// apply runs fn under the session lock. On success with persist set the
// version is bumped and a snapshot is saved. Announcements are delivered
// and end hooks run after the lock is released.
func (s *Session) apply(persist bool, fn func() error) error {
	s.mu.Lock()
	err := fn()
	var snap, final *models.Game
	if err == nil && persist {
		s.game.Version++
		if s.saver != nil {
			snap = s.game.Clone()
		}
	}
	if s.ended {
		s.ended = false
		final = s.game.Clone()
	}
	out := s.outbox
	s.outbox = nil
	s.mu.Unlock()

	s.deliver(out)
	if snap != nil {
		s.persist(snap)
	}
	if final != nil {
		s.sched.Cancel()
		s.saveMu.Lock()
		s.saveClosed = true
		s.saveMu.Unlock()
		if s.onEnd != nil {
			s.onEnd(s, final)
		}
	}

	var rej *game.Rejection
	if errors.As(err, &rej) {
		s.log.Debug().Str("code", string(rej.Code)).Msg(rej.Message)
	}
	return err
}

func (s *Session) deliver(out []outbound) {
	if s.notifier == nil {
		return
	}
	for _, o := range out {
		if o.direct {
			s.notifier.Direct(o.to, o.ev)
		} else {
			s.notifier.Announce(o.ev)
		}
	}
}

func (s *Session) persist(snap *models.Game) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.saveClosed || snap.Version <= s.savedVersion {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.saver.Save(ctx, snap); err != nil {
		s.log.Error().Err(err).Int64("version", snap.Version).Msg("failed to save game")
		return
	}
	s.savedVersion = snap.Version
}

func (s *Session) announce(ev models.Event) {
	ev.ChannelID = s.channelID
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	s.outbox = append(s.outbox, outbound{ev: ev})
}

func (s *Session) direct(playerID int64, ev models.Event) {
	if playerID < 0 {
		return
	}
	ev.ChannelID = s.channelID
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	s.outbox = append(s.outbox, outbound{to: playerID, direct: true, ev: ev})
}

func (s *Session) ticks(d time.Duration) int {
	return s.tuning.Ticks(d)
}

// member returns a player of a game that has not ended
func (s *Session) member(id int64) (*models.Player, error) {
	if s.game.Phase == models.PhaseEnded {
		return nil, game.Reject(game.CodeGameEnded, "the game is over")
	}
	p, ok := s.game.Players[id]
	if !ok {
		return nil, game.Reject(game.CodeNotInGame, "player %d is not in this game", id)
	}
	return p, nil
}

// actor returns a player allowed to act in phase. Ghosts pass only when
// ghosts is set.
func (s *Session) actor(id int64, phase models.Phase, ghosts bool) (*models.Player, error) {
	p, err := s.member(id)
	if err != nil {
		return nil, err
	}
	if s.game.Phase != phase {
		return nil, game.Reject(game.CodeWrongPhase, "cannot do that during %s", s.game.Phase)
	}
	if !p.Alive && !ghosts {
		return nil, game.Reject(game.CodePlayerDead, "%s is dead", p.Name)
	}
	return p, nil
}

// settle ends the game if a side has won. It reports whether it did.
func (s *Session) settle() bool {
	w := game.CheckWin(s.game)
	if w == models.WinnerNone {
		return false
	}
	s.finish(w, winReason(s.game, w))
	return true
}

func winReason(g *models.Game, w models.Winner) string {
	if w == models.WinnerImpostors {
		return "the impostors outnumber the crew"
	}
	for _, id := range g.Impostors {
		if p, ok := g.Players[id]; ok && p.Alive {
			return "all tasks are complete"
		}
	}
	return "every impostor is gone"
}

// finish forces the game into its final phase. Calling it again does nothing.
func (s *Session) finish(w models.Winner, reason string) {
	g := s.game
	if g.Phase == models.PhaseEnded {
		return
	}
	g.Phase = models.PhaseEnded
	g.Winner = w
	g.EndReason = reason
	g.EndedAt = s.now()
	g.ActiveSabotage = models.SabotageNone
	s.fixes = nil
	s.ended = true

	var impostors []string
	for _, id := range g.Impostors {
		if p, ok := g.Players[id]; ok {
			impostors = append(impostors, p.Name)
		}
	}
	s.announce(models.Event{Kind: models.EventGameEnded, Winner: w, Reason: reason, Names: impostors})
	s.log.Info().Str("winner", string(w)).Str("reason", reason).Msg("game ended")
}

// launch starts the cooldown ticker and one loop per bot. Callers hold the lock.
func (s *Session) launch() {
	if s.running {
		return
	}
	s.running = true
	ticks := s.tickers.Create(s.tuning.TickInterval)
	s.sched.Go("cooldowns", func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				s.Tick()
			}
		}
	})
	if s.driver == nil {
		return
	}
	for _, p := range s.game.Bots() {
		id := p.ID
		s.sched.Go(fmt.Sprintf("bot %d", id), func(ctx context.Context) {
			s.driver.Drive(ctx, s, id)
		})
	}
}

// Tick decays every cooldown by one tick while tasks are under way
func (s *Session) Tick() {
	_ = s.apply(false, func() error {
		g := s.game
		if g.Phase != models.PhaseTasks {
			return nil
		}
		if g.MeetingCooldown > 0 {
			g.MeetingCooldown--
		}
		for _, p := range g.Players {
			if p.KillCooldown > 0 {
				p.KillCooldown--
			}
			if p.SabotageCooldown > 0 {
				p.SabotageCooldown--
			}
			if p.ShieldCooldown > 0 {
				p.ShieldCooldown--
			}
		}
		return nil
	})
}

// Resume restarts timers and bots of a game restored from storage
func (s *Session) Resume() {
	_ = s.apply(false, func() error {
		g := s.game
		if !g.Phase.InProgress() {
			return nil
		}
		now := s.now()
		if g.Phase == models.PhaseMeeting {
			s.armMeeting(g.MeetingSeq)
		}
		if g.ActiveSabotage != models.SabotageNone {
			remaining := s.tuning.SabotageDuration(g.ActiveSabotage) - now.Sub(g.SabotageStartedAt)
			s.armSabotage(g.SabotageSeq, max(remaining, 0))
		}
		s.launch()
		return nil
	})
}
