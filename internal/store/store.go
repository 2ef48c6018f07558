// Package store persists notifications and exposes the due-set query the
// dispatch service polls on every scheduler tick.
package store

import (
	"context"

	"github.com/corey888773/notification-scheduler/internal/domain"
)

// Cursor is a finite, forward-only stream of notifications. Results are
// ordered by insertion; no ordering is guaranteed across calls. Dispatch
// consumes it lazily so it can start sending as soon as the first
// document is available, without materializing the whole batch.
type Cursor interface {
	// Next advances the cursor. It returns false when the stream is
	// exhausted or ctx is cancelled; callers must then check Err.
	Next(ctx context.Context) bool
	// Decode populates n with the current document. Only valid after a
	// Next call that returned true.
	Decode(n *domain.Notification) error
	// Err returns the first error encountered while advancing, if any.
	Err() error
	Close(ctx context.Context) error
}

// NotificationStore is the persistence capability the dispatch service
// depends on. It is intentionally narrow: creation, the due-set query,
// and a single conditional status update — nothing here assumes a
// particular backend.
type NotificationStore interface {
	// Create assigns nothing (the caller supplies n.ID) and persists the
	// notification as-is. Returns domain.ErrDuplicateKey if n.ID already
	// exists, domain.ErrRepositoryError on any other backend failure.
	Create(ctx context.Context, n *domain.Notification) error

	// QueryDue returns a lazy cursor over notifications matching every
	// supplied predicate in opts, conjunctively.
	QueryDue(ctx context.Context, opts domain.QueryOptions) (Cursor, error)

	// UpdateStatus performs a single-document conditional update: it only
	// succeeds when the document is currently domain.StatusPending (the
	// only state transitions permitted are pending->sent/failed/cancelled).
	// Returns domain.ErrRepositoryError if zero documents matched, meaning
	// the id is unknown or was already terminal.
	UpdateStatus(ctx context.Context, id string, newStatus domain.Status) error

	// IncrementRetryCount bumps retry_count by one. Called once per send
	// attempt so the field is a live, monotonic counter rather than the
	// reserved-but-unused field of the source implementation.
	IncrementRetryCount(ctx context.Context, id string) error
}
