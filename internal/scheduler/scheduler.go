// Package scheduler drives the two priority tiers: a high-priority tick
// every second and a low-priority tick every five, each calling into
// dispatch.Service.Dispatch with the tick's own timestamp as "now".
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/corey888773/notification-scheduler/internal/dispatch"
	"github.com/corey888773/notification-scheduler/internal/domain"
)

const (
	HighPriorityInterval = time.Second
	LowPriorityInterval  = 5 * time.Second
)

// Dispatcher is the subset of dispatch.Service the scheduler depends on,
// kept narrow so tests can supply a stub without constructing a real
// Service.
type Dispatcher interface {
	Dispatch(ctx context.Context, priority domain.Priority, now time.Time) error
}

// tier runs one priority's ticker loop. Two tiers, two independent
// goroutines: a slow low-priority tick never delays a fast high-priority
// one, and vice versa.
type tier struct {
	priority domain.Priority
	interval time.Duration
	dispatch Dispatcher
	logger   *zap.Logger
}

// Run ticks every interval and calls Dispatch for this tier's priority.
// Stops cleanly when ctx is cancelled.
func (t *tier) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info("scheduler tier started",
		zap.String("priority", string(t.priority)),
		zap.Duration("interval", t.interval),
	)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("scheduler tier stopping", zap.String("priority", string(t.priority)))
			return
		case now := <-ticker.C:
			if err := t.dispatch.Dispatch(ctx, t.priority, now.UTC()); err != nil {
				t.logger.Error("dispatch tick failed",
					zap.String("priority", string(t.priority)),
					zap.Error(err),
				)
			}
		}
	}
}

// Scheduler owns the high and low priority tiers and runs them on their
// own goroutines until the context passed to Start is cancelled.
type Scheduler struct {
	tiers []*tier
	wg    sync.WaitGroup
}

func New(d Dispatcher, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		tiers: []*tier{
			{priority: domain.PriorityHigh, interval: HighPriorityInterval, dispatch: d, logger: logger},
			{priority: domain.PriorityLow, interval: LowPriorityInterval, dispatch: d, logger: logger},
		},
	}
}

// Start launches both tiers' ticker loops in their own goroutines. It
// returns immediately; call Wait (after cancelling ctx) to block until
// both have stopped.
func (s *Scheduler) Start(ctx context.Context) {
	for _, t := range s.tiers {
		s.wg.Add(1)
		go func(t *tier) {
			defer s.wg.Done()
			t.Run(ctx)
		}(t)
	}
}

// Wait blocks until every tier has observed context cancellation and
// returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
