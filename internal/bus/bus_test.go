package bus_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corey888773/notification-scheduler/internal/bus"
	"github.com/corey888773/notification-scheduler/internal/domain"
)

func TestStreamName(t *testing.T) {
	require.Equal(t, "notifications_push", bus.StreamName(domain.ChannelPush))
	require.Equal(t, "notifications_email", bus.StreamName(domain.ChannelEmail))
}

func TestSubject(t *testing.T) {
	require.Equal(t, "notifications_push.u1", bus.Subject(domain.ChannelPush, "u1"))
	require.Equal(t, "notifications_email.u2", bus.Subject(domain.ChannelEmail, "u2"))
}
