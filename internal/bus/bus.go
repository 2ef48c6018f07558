// Package bus publishes notifications onto a durable, channel-partitioned
// message bus. Downstream per-channel consumers subscribe to the streams
// this package provisions; they are external collaborators, out of scope
// here beyond the subscription contract (stream name, subject pattern,
// dedup window) documented on StreamName, Subject and DedupWindow.
package bus

import (
	"context"

	"github.com/corey888773/notification-scheduler/internal/domain"
)

// DedupWindow is the broker-side window within which two publishes
// sharing a dedup key collapse to a single delivered message.
const DedupWindow = 60

// Publisher abstracts delivery to the durable bus. The dispatch service
// depends on this interface, not on a concrete NATS client, so tests can
// substitute a recording fake.
type Publisher interface {
	// Publish sends payload to the subject derived from channel and
	// recipientID, tagged with dedupKey. It awaits the broker's ack; any
	// transport or ack failure is returned as domain.ErrServiceError. The
	// publisher never retries internally — retry is the caller's
	// responsibility.
	Publish(ctx context.Context, channel domain.Channel, recipientID, payload, dedupKey string) error
}

// StreamName returns the durable stream a channel's messages live on.
func StreamName(channel domain.Channel) string {
	return "notifications_" + string(channel)
}

// Subject returns the subject a single recipient's messages publish to
// within a channel's stream.
func Subject(channel domain.Channel, recipientID string) string {
	return StreamName(channel) + "." + recipientID
}
