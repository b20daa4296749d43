package session

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/crewmate/internal/config"
	"github.com/aaronzipp/crewmate/internal/models"
)

// --- Notifier ---

type MockNotifier struct {
	mock.Mock

	mu      sync.Mutex
	events  []models.Event
	targets []int64
}

func (m *MockNotifier) Announce(ev models.Event) {
	m.record(0, ev)
	m.Called(ev)
}

func (m *MockNotifier) Direct(playerID int64, ev models.Event) {
	m.record(playerID, ev)
	m.Called(playerID, ev)
}

func (m *MockNotifier) record(to int64, ev models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	m.targets = append(m.targets, to)
}

// count returns how many announcements of kind were made
func (m *MockNotifier) count(kind models.EventKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i, ev := range m.events {
		if m.targets[i] == 0 && ev.Kind == kind {
			n++
		}
	}
	return n
}

// directs returns the recipients of direct messages of kind
func (m *MockNotifier) directs(kind models.EventKind) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for i, ev := range m.events {
		if m.targets[i] != 0 && ev.Kind == kind {
			ids = append(ids, m.targets[i])
		}
	}
	return ids
}

// --- Saver ---

type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) Save(ctx context.Context, g *models.Game) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

// --- TickerCreator ---

type MockTickerCreator struct {
	mock.Mock
}

func (m *MockTickerCreator) Create(d time.Duration) <-chan time.Time {
	args := m.Called(d)
	return args.Get(0).(chan time.Time)
}

// --- Clock ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- harness ---

type harness struct {
	s        *Session
	notifier *MockNotifier
	tickers  *MockTickerCreator
	ticks    chan time.Time
	clock    *fakeClock

	mu     sync.Mutex
	finals []*models.Game
}

func (h *harness) ended() []*models.Game {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.finals
}

// with lets a test arrange state that no action produces directly
func (h *harness) with(fn func(g *models.Game)) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	fn(h.s.game)
}

func testTuning() config.Tuning {
	return config.DefaultTuning()
}

// seatedGame seats one player per role with ids 1..n, roles already dealt
func seatedGame(roles ...models.Role) *models.Game {
	g := models.NewGame("game-1", "chan-1", "ABCDEF", len(roles), models.RoleQuotas{Impostors: 1})
	for i, role := range roles {
		id := int64(i + 1)
		p := models.NewPlayer(id, "P"+string(rune('A'+i)), "")
		p.AssignRole(role)
		g.Players[id] = p
		g.JoinOrder = append(g.JoinOrder, id)
	}
	g.SyncImpostors()
	g.RolesAssigned = true
	return g
}

func newHarness(t *testing.T, g *models.Game, tune func(*config.Tuning), saver Saver) *harness {
	t.Helper()
	tuning := testTuning()
	if tune != nil {
		tune(&tuning)
	}
	h := &harness{
		notifier: &MockNotifier{},
		tickers:  &MockTickerCreator{},
		ticks:    make(chan time.Time),
		clock:    newClock(),
	}
	h.notifier.On("Announce", mock.Anything).Return()
	h.notifier.On("Direct", mock.Anything, mock.Anything).Return()
	h.tickers.On("Create", tuning.TickInterval).Return(h.ticks)

	opts := Options{
		Game:     g,
		Tuning:   tuning,
		Notifier: h.notifier,
		Tickers:  h.tickers,
		Logger:   zerolog.Nop(),
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Now:      h.clock.Now,
		OnEnd: func(_ *Session, final *models.Game) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.finals = append(h.finals, final)
		},
	}
	if saver != nil {
		opts.Saver = saver
	}
	h.s = New(opts)
	t.Cleanup(h.s.Close)
	return h
}

// started returns a running game whose grace periods are over and whose
// impostors can act right away
func started(t *testing.T, tune func(*config.Tuning), roles ...models.Role) *harness {
	t.Helper()
	h := newHarness(t, seatedGame(roles...), tune, nil)
	require.NoError(t, h.s.Start())
	h.clock.Advance(h.s.Tuning().ReportGrace + time.Second)
	h.with(func(g *models.Game) {
		for _, p := range g.Players {
			p.KillCooldown = 0
			p.SabotageCooldown = 0
		}
	})
	return h
}

var fourPlayers = []models.Role{models.RoleImpostor, models.RoleCrewmate, models.RoleCrewmate, models.RoleCrewmate}
