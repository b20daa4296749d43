package session

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler owns every goroutine and timer of one session. Cancelling it
// stops all of them; nothing can be scheduled afterwards.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	wg     sync.WaitGroup
	log    zerolog.Logger
}

// NewScheduler creates a scheduler bound to parent
func NewScheduler(parent context.Context, log zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{ctx: ctx, cancel: cancel, log: log}
}

// Go runs fn in its own goroutine. A panic in fn is logged and stops only
// that goroutine. It returns false once the scheduler is cancelled.
func (s *Scheduler) Go(name string, fn func(ctx context.Context)) bool {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().
					Str("task", name).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("background task crashed")
			}
		}()
		fn(s.ctx)
	}()
	return true
}

// After runs fn once d has elapsed, unless the scheduler is cancelled first
func (s *Scheduler) After(d time.Duration, name string, fn func(ctx context.Context)) bool {
	return s.Go(name, func(ctx context.Context) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			fn(ctx)
		}
	})
}

// Cancel stops everything without waiting. Safe to call from a scheduled goroutine.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
}

// Wait blocks until every scheduled goroutine has returned
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close cancels and waits
func (s *Scheduler) Close() {
	s.Cancel()
	s.Wait()
}

// Done is closed once the scheduler is cancelled
func (s *Scheduler) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// TickerCreator creates periodic tick channels
type TickerCreator interface {
	Create(d time.Duration) <-chan time.Time
}

// SystemTickers creates tickers backed by the runtime clock
type SystemTickers struct{}

// Create returns a channel that ticks every d
func (SystemTickers) Create(d time.Duration) <-chan time.Time {
	return time.Tick(d)
}
