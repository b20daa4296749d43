// Package agent plays the bot seats of a game. Each bot runs its own loop
// that reads a session view, decides, and acts through the same session
// methods a human would use.
package agent

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/aaronzipp/crewmate/internal/config"
	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/session"
	"github.com/aaronzipp/crewmate/internal/ship"
)

// Options configure a Driver
type Options struct {
	Logger zerolog.Logger
	// Seed makes bot randomness reproducible. Zero picks a random seed.
	Seed uint64
	// Sleep waits between bot actions. Defaults to session.Sleep.
	Sleep func(ctx context.Context, d time.Duration) bool
}

// Driver implements session.Driver
type Driver struct {
	log   zerolog.Logger
	seed  uint64
	next  atomic.Uint64
	sleep func(ctx context.Context, d time.Duration) bool
}

var _ session.Driver = (*Driver)(nil)

// New creates a driver
func New(opts Options) *Driver {
	d := &Driver{
		log:   opts.Logger.With().Str("component", "agent").Logger(),
		seed:  opts.Seed,
		sleep: opts.Sleep,
	}
	if d.seed == 0 {
		d.seed = rand.Uint64()
	}
	if d.sleep == nil {
		d.sleep = session.Sleep
	}
	return d
}

func (d *Driver) rng() *rand.Rand {
	return rand.New(rand.NewPCG(d.seed, d.next.Add(1)))
}

type bot struct {
	d    *Driver
	s    *session.Session
	id   int64
	rng  *rand.Rand
	t    config.Tuning
	bt   config.BotTuning
	log  zerolog.Logger
	seen int  // last sabotage reacted to
	busy bool // reacting to a sabotage that is still running
}

// Drive runs the loop of one bot until the game ends, the bot leaves, or an
// impostor bot dies
func (d *Driver) Drive(ctx context.Context, s *session.Session, playerID int64) {
	t := s.Tuning()
	b := &bot{
		d:   d,
		s:   s,
		id:  playerID,
		rng: d.rng(),
		t:   t,
		bt:  t.Bots,
		log: d.log.With().Str("channel", s.ChannelID()).Int64("bot", playerID).Logger(),
	}
	b.run(ctx)
}

func (b *bot) run(ctx context.Context) {
	v, ok := b.s.View(b.id)
	if !ok {
		return
	}
	b.seen = v.SabotageSeq
	delay := b.bt.CrewStartDelay
	if v.Self.IsImpostor() {
		delay = b.bt.ImpostorStartDelay
	}
	if !b.d.sleep(ctx, delay.Pick(b.rng)) {
		return
	}
	b.log.Debug().Str("role", string(v.Self.Role)).Msg("bot started")

	for ctx.Err() == nil {
		v, ok := b.s.View(b.id)
		if !ok {
			return
		}
		switch {
		case v.Phase == models.PhaseEnded:
			return
		case v.Self.IsImpostor() && !v.Self.Alive:
			return
		case v.Phase != models.PhaseTasks:
			if !b.d.sleep(ctx, b.bt.PollInterval) {
				return
			}
			continue
		}
		b.turn(ctx, v)
	}
}

// turn plays one iteration of the loop
func (b *bot) turn(ctx context.Context, v session.View) {
	if b.rng.Float64() < b.bt.DistractionChance {
		b.d.sleep(ctx, b.bt.Distraction.Pick(b.rng))
		return
	}
	if b.rng.Float64() < b.bt.FollowChance {
		b.follow(ctx, v)
		return
	}
	if v.ActiveSabotage != models.SabotageNone && v.SabotageSeq != b.seen {
		b.seen = v.SabotageSeq
		b.react(ctx, v)
		return
	}
	if v.ActiveSabotage == models.SabotageNone && b.busy {
		b.busy = false
		b.walk(ctx, v.Ship.PathWithMistakes(b.rng, v.Self.Location, v.Ship.RandomRoom(b.rng, v.Self.Location), ship.Mistakes{}), b.bt.ReturnStep)
		return
	}

	if v.Self.IsImpostor() {
		b.impostorTurn(ctx, v)
		b.d.sleep(ctx, b.bt.ImpostorIdle.Pick(b.rng))
		return
	}
	b.crewTurn(ctx, v)
}

func (b *bot) mistakes() ship.Mistakes {
	return ship.Mistakes{WrongTurn: b.bt.WrongTurnChance, Detour: b.bt.DetourChance, UTurn: b.bt.UTurnChance}
}

// walk follows path hop by hop, pacing each hop with step. It stops when a
// move is refused or the bot reports a body it walked into. It reports
// whether the end of the path was reached.
func (b *bot) walk(ctx context.Context, path []string, step config.Span) bool {
	for i := 1; i < len(path); i++ {
		if !b.d.sleep(ctx, step.Pick(b.rng)) {
			return false
		}
		if err := b.s.Move(b.id, path[i]); err != nil {
			b.log.Debug().Err(err).Str("room", path[i]).Msg("move refused")
			return false
		}
		if b.spotBody(path[i]) {
			return false
		}
	}
	return true
}

// spotBody lets a living crew bot report a body in the room it just entered
func (b *bot) spotBody(room string) bool {
	v, ok := b.s.View(b.id)
	if !ok || !v.Self.Alive || v.Self.IsImpostor() || len(v.Bodies[room]) == 0 {
		return false
	}
	if b.rng.Float64() >= b.bt.ReportChance {
		return false
	}
	if err := b.s.ReportBody(b.id); err != nil {
		b.log.Debug().Err(err).Msg("report refused")
		return false
	}
	return true
}

// follow trails another living player for a few hops
func (b *bot) follow(ctx context.Context, v session.View) {
	var others []models.Player
	for _, p := range v.Players {
		if p.Alive && p.ID != b.id {
			others = append(others, p)
		}
	}
	if len(others) == 0 {
		return
	}
	target := others[b.rng.IntN(len(others))].ID
	for range b.bt.FollowHops.Pick(b.rng) {
		cur, ok := b.s.View(b.id)
		if !ok || cur.Phase != models.PhaseTasks {
			return
		}
		t, ok := cur.Player(target)
		if !ok {
			return
		}
		path := cur.Ship.ShortestPath(cur.Self.Location, t.Location)
		if len(path) < 2 || !b.walk(ctx, path[:2], b.bt.Step) {
			return
		}
	}
}

// react heads for a fresh sabotage. Crew bots try to fix it; impostors
// only show up.
func (b *bot) react(ctx context.Context, v session.View) {
	chance := b.bt.CrewPanicChance
	if v.Self.IsImpostor() {
		chance = b.bt.ImpostorPanicChance
	}
	if b.rng.Float64() >= chance {
		return
	}
	b.busy = true
	kind := v.ActiveSabotage
	if !b.walk(ctx, v.Ship.ShortestPath(v.Self.Location, kind.Room()), b.bt.ReturnStep) {
		return
	}
	if v.Self.IsImpostor() || !v.Self.Alive {
		return
	}
	for step := 1; step <= max(b.t.FixSteps, 1); step++ {
		if !b.d.sleep(ctx, b.bt.ReturnStep.Pick(b.rng)) {
			return
		}
		fixed, err := b.s.FixSabotage(b.id, kind, step)
		if err != nil {
			b.log.Debug().Err(err).Int("step", step).Msg("fix refused")
			return
		}
		if fixed {
			return
		}
	}
}

func (b *bot) crewTurn(ctx context.Context, v session.View) {
	idx, ok := chooseTask(v, b.rng)
	if !ok {
		if b.d.sleep(ctx, b.bt.Idle.Pick(b.rng)) {
			b.walk(ctx, []string{v.Self.Location, v.Ship.RandomNeighbor(b.rng, v.Self.Location)}, b.bt.Step)
		}
		return
	}
	task := v.Self.Tasks[idx]
	if !b.walk(ctx, v.Ship.PathWithMistakes(b.rng, v.Self.Location, task.Location, b.mistakes()), b.bt.Step) {
		return
	}
	if !b.d.sleep(ctx, dwell(b.rng, b.bt, v.Self.TaskSpeed)) {
		return
	}
	if _, err := b.s.DoTask(b.id, idx); err != nil {
		b.log.Debug().Err(err).Str("task", task.Name).Msg("task refused")
	}
}

func (b *bot) impostorTurn(ctx context.Context, v session.View) {
	switch impostorAction(v, b.rng, b.bt, b.t.KillGap) {
	case ActSabotage:
		kinds := models.Sabotages()
		kind := kinds[b.rng.IntN(len(kinds))]
		if err := b.s.Sabotage(b.id, kind); err != nil {
			b.log.Debug().Err(err).Str("sabotage", string(kind)).Msg("sabotage refused")
			return
		}
		b.seen = v.SabotageSeq + 1
	case ActKill:
		b.hunt(ctx, v)
	case ActFakeTask:
		idx := b.rng.IntN(len(v.Self.Tasks))
		task := v.Self.Tasks[idx]
		if !b.walk(ctx, v.Ship.PathWithMistakes(b.rng, v.Self.Location, task.Location, b.mistakes()), b.bt.Step) {
			return
		}
		if !b.d.sleep(ctx, dwell(b.rng, b.bt, 1)) {
			return
		}
		if b.rng.Float64() < b.bt.FakeCompleteChance {
			_, _ = b.s.DoTask(b.id, idx)
		}
	default:
		b.walk(ctx, []string{v.Self.Location, v.Ship.RandomNeighbor(b.rng, v.Self.Location)}, b.bt.Step)
	}
}

// hunt stalks a random crew member, kills when in range, arranges for the
// body to be found later and flees
func (b *bot) hunt(ctx context.Context, v session.View) {
	targets := killTargets(v)
	target := targets[b.rng.IntN(len(targets))]
	path := v.Ship.ShortestPath(v.Self.Location, target.Location)
	if len(path) > 2 {
		if !b.walk(ctx, path[:len(path)-1], b.bt.Step) {
			return
		}
	}

	cur, ok := b.s.View(b.id)
	if !ok || cur.Phase != models.PhaseTasks {
		return
	}
	t, ok := cur.Player(target.ID)
	if !ok || !t.Alive || !inKillRange(cur, t) {
		return
	}
	outcome, err := b.s.Kill(b.id, t.ID)
	if err != nil {
		b.log.Debug().Err(err).Msg("kill refused")
		return
	}
	if outcome != session.KillLanded {
		return
	}

	room := t.Location
	if reporter, ok := pickReporter(cur, b.rng, b.bt, b.id, t.ID); ok {
		b.s.Schedule(b.bt.Discovery.Pick(b.rng), "discovery", func(context.Context) {
			if err := b.s.DiscoverBody(reporter, room); err != nil {
				b.log.Debug().Err(err).Str("room", room).Msg("discovery dropped")
			}
		})
	}

	after, ok := b.s.View(b.id)
	if !ok || after.Phase != models.PhaseTasks {
		return
	}
	flee := append([]string{after.Self.Location}, after.Ship.Walk(b.rng, after.Self.Location, b.bt.FleeHops.Pick(b.rng))...)
	b.walk(ctx, flee, b.bt.ReturnStep)
}

// Vote casts the bot votes of one meeting, one bot at a time
func (d *Driver) Vote(ctx context.Context, s *session.Session, meetingSeq int) {
	rng := d.rng()
	bt := s.Tuning().Bots
	if !d.sleep(ctx, bt.VoteDelay.Pick(rng)) {
		return
	}

	var bots []int64
	for _, p := range s.PublicView(0).Players {
		if p.Bot && p.Alive {
			bots = append(bots, p.ID)
		}
	}
	rng.Shuffle(len(bots), func(i, j int) { bots[i], bots[j] = bots[j], bots[i] })

	for _, id := range bots {
		if !d.sleep(ctx, bt.VoteStep.Pick(rng)) {
			return
		}
		v, ok := s.View(id)
		if !ok {
			continue
		}
		if v.Phase != models.PhaseMeeting || v.MeetingSeq != meetingSeq {
			return
		}
		if !v.Self.Alive || v.Self.HasVoted() {
			continue
		}
		if err := s.CastVote(id, decideVote(v, rng, bt)); err != nil {
			d.log.Debug().Err(err).Int64("bot", id).Msg("vote refused")
		}
	}
}
