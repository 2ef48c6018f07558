// Package dispatch implements the core of the system: the state machine
// that turns a due, pending notification into a durable bus publish (or a
// terminal failure), the quiet-hours-aware due-set fan-out that runs on
// every scheduler tick, and the thin create/cancel/list surface the
// admission API sits on top of.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corey888773/notification-scheduler/internal/bus"
	"github.com/corey888773/notification-scheduler/internal/domain"
	"github.com/corey888773/notification-scheduler/internal/store"
)

// defaultBatchLimit is the maximum number of due notifications fetched —
// and concurrently attempted — per Dispatch call, used when Config
// leaves BatchLimit unset.
const defaultBatchLimit = 10

// defaultMaxAttempts is the number of send attempts before a
// notification is marked permanently failed.
const defaultMaxAttempts = 3

// defaultRetryBackoff is the fixed gap between attempts. Exponential or
// jittered backoff is out of scope.
const defaultRetryBackoff = time.Second

// Hooks carries optional metric callbacks, injected by main so this
// package stays metrics-agnostic.
type Hooks struct {
	OnSent   func(channel domain.Channel, latency time.Duration)
	OnFailed func(channel domain.Channel)
}

// Config carries the dispatch tuning knobs that operators may want to
// adjust without recompiling. Zero values fall back to the defaults.
type Config struct {
	BatchLimit   int64
	MaxAttempts  int
	RetryBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchLimit <= 0 {
		c.BatchLimit = defaultBatchLimit
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	return c
}

// Service coordinates the store and the bus publisher. All business
// rules — the send state machine, the cancel guard, the due-set fan-out —
// live here; HTTP handlers and the scheduler depend on Service, not on
// the store or publisher directly.
type Service struct {
	store     store.NotificationStore
	publisher bus.Publisher
	logger    *zap.Logger
	hooks     Hooks
	cfg       Config
}

func NewService(s store.NotificationStore, p bus.Publisher, logger *zap.Logger, hooks Hooks) *Service {
	return NewServiceWithConfig(s, p, logger, hooks, Config{})
}

func NewServiceWithConfig(s store.NotificationStore, p bus.Publisher, logger *zap.Logger, hooks Hooks, cfg Config) *Service {
	if hooks.OnSent == nil {
		hooks.OnSent = func(domain.Channel, time.Duration) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func(domain.Channel) {}
	}
	return &Service{store: s, publisher: p, logger: logger, hooks: hooks, cfg: cfg.withDefaults()}
}

// Create validates, assigns an id, and persists a notification. If
// force is set, the send state machine runs synchronously in the
// caller's goroutine before Create returns. A forced-send failure does
// not roll back creation — the notification is left pending for the
// next scheduler tick to pick up.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	n := &domain.Notification{
		ID:            uuid.New().String(),
		Content:       req.Content,
		Channel:       req.Channel,
		Recipient:     req.Recipient,
		ScheduledTime: req.ScheduledTime.UTC(),
		Priority:      req.Priority,
		Status:        domain.StatusPending,
	}

	if err := s.store.Create(ctx, n); err != nil {
		return "", err
	}

	if req.Force {
		if err := s.sendStateMachine(ctx, n); err != nil {
			s.logger.Warn("forced send failed", zap.String("id", n.ID), zap.Error(err))
		}
	}

	return n.ID, nil
}

// Cancel marks a pending notification as cancelled. If the notification
// is already terminal (or unknown), the store's zero-match outcome is
// surfaced as an error.
func (s *Service) Cancel(ctx context.Context, id string) error {
	return s.store.UpdateStatus(ctx, id, domain.StatusCancelled)
}

// ListAll fully materializes the store with no predicates.
func (s *Service) ListAll(ctx context.Context) ([]domain.Notification, error) {
	cur, err := s.store.QueryDue(ctx, domain.QueryOptions{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var result []domain.Notification
	for cur.Next(ctx) {
		var n domain.Notification
		if err := cur.Decode(&n); err != nil {
			s.logger.Error("failed to decode notification", zap.Error(err))
			continue
		}
		result = append(result, n)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Dispatch is the scheduler-facing entry point: it fetches up to
// batchLimit due pending notifications for priority at or before now,
// respecting quiet hours, and runs the send state machine on each
// concurrently. Per-notification errors are logged; Dispatch itself
// returns nil once every task has settled — one bad recipient must not
// stall a tier.
func (s *Service) Dispatch(ctx context.Context, priority domain.Priority, now time.Time) error {
	pendingStatus := domain.StatusPending
	cur, err := s.store.QueryDue(ctx, domain.QueryOptions{
		Priority:                &priority,
		Status:                  &pendingStatus,
		ScheduledTimeUpperBound: &now,
		RespectNighttime:        true,
		Limit:                   s.cfg.BatchLimit,
	})
	if err != nil {
		s.logger.Error("due-set query failed", zap.String("priority", string(priority)), zap.Error(err))
		return nil
	}
	defer cur.Close(ctx)

	var tasks []func()
	for cur.Next(ctx) {
		var n domain.Notification
		if err := cur.Decode(&n); err != nil {
			s.logger.Error("failed to decode due notification", zap.Error(err))
			continue
		}
		n := n
		tasks = append(tasks, func() {
			if err := s.sendStateMachine(ctx, &n); err != nil {
				s.logger.Warn("send failed",
					zap.String("id", n.ID),
					zap.String("channel", string(n.Channel)),
					zap.Error(err),
				)
			}
		})
	}
	if err := cur.Err(); err != nil {
		s.logger.Error("due-set cursor error", zap.String("priority", string(priority)), zap.Error(err))
	}

	boundedFanOut(tasks)
	return nil
}

// sendStateMachine runs the per-notification retry loop described in the
// design: up to cfg.MaxAttempts publishes, cfg.RetryBackoff apart, transitioning
// to a terminal status on success or exhaustion. The dedup key is the
// notification id, so retries within this call — and duplicate dispatch
// ticks within the bus's dedup window — never produce two downstream
// deliveries.
func (s *Service) sendStateMachine(ctx context.Context, n *domain.Notification) error {
	payload, marshalErr := json.Marshal(n)

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if incErr := s.store.IncrementRetryCount(ctx, n.ID); incErr != nil {
			s.logger.Error("failed to increment retry count", zap.String("id", n.ID), zap.Error(incErr))
		}

		var sendErr error
		if marshalErr != nil {
			sendErr = fmt.Errorf("%w: marshal notification %s: %v", domain.ErrServiceError, n.ID, marshalErr)
		} else {
			sendErr = s.publisher.Publish(ctx, n.Channel, n.Recipient.ID, string(payload), n.ID)
		}

		if sendErr == nil {
			if updErr := s.store.UpdateStatus(ctx, n.ID, domain.StatusSent); updErr != nil {
				s.logger.Error("failed to mark notification sent", zap.String("id", n.ID), zap.Error(updErr))
			}
			s.hooks.OnSent(n.Channel, time.Since(start))
			return nil
		}

		lastErr = sendErr
		if attempt < s.cfg.MaxAttempts {
			time.Sleep(s.cfg.RetryBackoff)
		}
	}

	if updErr := s.store.UpdateStatus(ctx, n.ID, domain.StatusFailed); updErr != nil {
		s.logger.Error("failed to mark notification failed", zap.String("id", n.ID), zap.Error(updErr))
	}
	s.hooks.OnFailed(n.Channel)
	return lastErr
}
