package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinfolk/pkg/requestcontext"
)

func TestMemoryPublisherEnrichesEvents(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "curl/8.0")
	ctx = requestcontext.WithDevice(ctx, "curl")

	pub := NewMemoryPublisher()
	require.NoError(t, pub.Emit(ctx, Event{Action: ActionPersonCreated, Subject: "p1"}))
	require.NoError(t, pub.Emit(ctx, Event{Action: ActionUnionCreated, Subject: "u1", RequestID: "explicit"}))

	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "203.0.113.9", events[0].ClientIP)
	assert.Equal(t, "curl", events[0].Device)
	assert.Equal(t, "explicit", events[1].RequestID)
	assert.Equal(t, []Action{ActionPersonCreated, ActionUnionCreated}, pub.Actions())
}

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "kinfolk.audit")
	require.Error(t, err)
}

func TestBoundedMemoryPublisherKeepsNewest(t *testing.T) {
	pub := NewBoundedMemoryPublisher(2)
	ctx := context.Background()
	for _, subject := range []string{"a", "b", "c"} {
		require.NoError(t, pub.Emit(ctx, Event{Action: ActionPersonCreated, Subject: subject}))
	}
	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].Subject)
	assert.Equal(t, "c", events[1].Subject)
}
