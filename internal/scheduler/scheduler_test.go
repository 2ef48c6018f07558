package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/corey888773/notification-scheduler/internal/domain"
	"github.com/corey888773/notification-scheduler/internal/scheduler"
)

type countingDispatcher struct {
	high int32
	low  int32
}

func (c *countingDispatcher) Dispatch(_ context.Context, priority domain.Priority, _ time.Time) error {
	if priority == domain.PriorityHigh {
		atomic.AddInt32(&c.high, 1)
	} else {
		atomic.AddInt32(&c.low, 1)
	}
	return nil
}

func TestScheduler_BothTiersTick(t *testing.T) {
	d := &countingDispatcher{}
	s := scheduler.New(d, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	time.Sleep(scheduler.LowPriorityInterval + scheduler.HighPriorityInterval/2)
	cancel()
	s.Wait()

	if atomic.LoadInt32(&d.high) < 2 {
		t.Fatalf("expected at least 2 high-priority ticks, got %d", d.high)
	}
	if atomic.LoadInt32(&d.low) < 1 {
		t.Fatalf("expected at least 1 low-priority tick, got %d", d.low)
	}
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	d := &countingDispatcher{}
	s := scheduler.New(d, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
