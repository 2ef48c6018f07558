package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/corey888773/notification-scheduler/internal/domain"
)

// MockStore is a hand-written, in-memory NotificationStore used in unit
// tests. No mock-generation library needed.
type MockStore struct {
	mu            sync.Mutex
	notifications map[string]*domain.Notification
	order         []string

	CreateErr error
}

func NewMockStore() *MockStore {
	return &MockStore{notifications: make(map[string]*domain.Notification)}
}

func (m *MockStore) Create(_ context.Context, n *domain.Notification) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.notifications[n.ID]; exists {
		return domain.ErrDuplicateKey
	}
	clone := *n
	m.notifications[n.ID] = &clone
	m.order = append(m.order, n.ID)
	return nil
}

func (m *MockStore) QueryDue(_ context.Context, opts domain.QueryOptions) (Cursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []domain.Notification
	for _, id := range m.order {
		n := m.notifications[id]
		if opts.Priority != nil && n.Priority != *opts.Priority {
			continue
		}
		if opts.Status != nil && n.Status != *opts.Status {
			continue
		}
		if opts.ScheduledTimeUpperBound != nil && n.ScheduledTime.After(*opts.ScheduledTimeUpperBound) {
			continue
		}
		if opts.RespectNighttime && opts.ScheduledTimeUpperBound != nil {
			if !quietHoursSatisfied(*opts.ScheduledTimeUpperBound, n.Recipient.TimezoneOffset) {
				continue
			}
		}
		matched = append(matched, *n)
		if opts.Limit > 0 && int64(len(matched)) >= opts.Limit {
			break
		}
	}
	return &sliceCursor{items: matched, idx: -1}, nil
}

func (m *MockStore) UpdateStatus(_ context.Context, id string, newStatus domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.Status != domain.StatusPending {
		return fmt.Errorf("%w: no pending notification matched id %q", domain.ErrRepositoryError, id)
	}
	n.Status = newStatus
	return nil
}

func (m *MockStore) IncrementRetryCount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return fmt.Errorf("%w: no notification matched id %q", domain.ErrRepositoryError, id)
	}
	n.RetryCount++
	return nil
}

// Get is a test-only convenience accessor, not part of NotificationStore.
func (m *MockStore) Get(id string) (domain.Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.Notification{}, false
	}
	return *n, true
}

type sliceCursor struct {
	items []domain.Notification
	idx   int
}

func (c *sliceCursor) Next(_ context.Context) bool {
	c.idx++
	return c.idx < len(c.items)
}

func (c *sliceCursor) Decode(n *domain.Notification) error {
	*n = c.items[c.idx]
	return nil
}

func (c *sliceCursor) Err() error                    { return nil }
func (c *sliceCursor) Close(_ context.Context) error { return nil }

var _ NotificationStore = (*MockStore)(nil)
