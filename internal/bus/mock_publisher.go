package bus

import (
	"context"
	"sync"

	"github.com/corey888773/notification-scheduler/internal/domain"
)

// PublishedMessage records a single Publish call, for assertions in
// dispatch tests (e.g. "exactly one publish per dedup key").
type PublishedMessage struct {
	Channel     domain.Channel
	RecipientID string
	Payload     string
	DedupKey    string
}

// MockPublisher is a recording, hand-written fake Publisher. FailTimes
// controls how many leading Publish calls for dedup key fail before
// succeeding, letting tests exercise the retry state machine (S3) and
// retry-then-succeed paths deterministically.
type MockPublisher struct {
	mu        sync.Mutex
	Published []PublishedMessage
	FailTimes map[string]int
	Attempts  map[string]int
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailTimes: make(map[string]int), Attempts: make(map[string]int)}
}

func (m *MockPublisher) Publish(_ context.Context, channel domain.Channel, recipientID, payload, dedupKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Attempts[dedupKey]++

	if remaining, ok := m.FailTimes[dedupKey]; ok && remaining > 0 {
		m.FailTimes[dedupKey] = remaining - 1
		return domain.ErrServiceError
	}

	m.Published = append(m.Published, PublishedMessage{
		Channel:     channel,
		RecipientID: recipientID,
		Payload:     payload,
		DedupKey:    dedupKey,
	})
	return nil
}

// CountForKey returns how many times Publish succeeded for a dedup key.
func (m *MockPublisher) CountForKey(dedupKey string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, p := range m.Published {
		if p.DedupKey == dedupKey {
			count++
		}
	}
	return count
}

// AttemptsForKey returns how many times Publish was called for a dedup
// key, counting both failed and successful attempts.
func (m *MockPublisher) AttemptsForKey(dedupKey string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Attempts[dedupKey]
}

var _ Publisher = (*MockPublisher)(nil)
