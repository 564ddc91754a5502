package event

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/kafka"
)

// --- Mock Refresher ---

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) Refresh(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// --- Test helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEvent(eventType string, data json.RawMessage) *pkgkafka.Event {
	return &pkgkafka.Event{
		ID:          "evt-test-123",
		Type:        eventType,
		Subject:     "products",
		SubjectKind: "segment",
		Version:     1,
		OccurredAt:  time.Now().UTC(),
		Source:      "content-service",
		Data:        data,
	}
}

func TestSegmentConsumer_RefreshesKnownKey(t *testing.T) {
	store := new(mockRefresher)
	store.On("Refresh", mock.Anything, "products").Return(nil)
	c := NewSegmentConsumer(store, newTestLogger())

	err := c.Handle(context.Background(), newTestEvent(EventSegmentReplaced, json.RawMessage(`{"key":"products","bytes":512}`)))
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSegmentConsumer_UnknownKeySkipped(t *testing.T) {
	store := new(mockRefresher)
	c := NewSegmentConsumer(store, newTestLogger())

	err := c.Handle(context.Background(), newTestEvent(EventSegmentReplaced, json.RawMessage(`{"key":"scratch"}`)))
	require.NoError(t, err)
	store.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestSegmentConsumer_OtherEventTypesIgnored(t *testing.T) {
	store := new(mockRefresher)
	c := NewSegmentConsumer(store, newTestLogger())

	require.NoError(t, c.Handle(context.Background(), newTestEvent("content.segment.deleted", json.RawMessage(`{}`))))
	store.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestSegmentConsumer_BadPayload(t *testing.T) {
	c := NewSegmentConsumer(new(mockRefresher), newTestLogger())

	err := c.Handle(context.Background(), newTestEvent(EventSegmentReplaced, json.RawMessage(`"oops"`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestSegmentConsumer_RefreshErrorIsRetried(t *testing.T) {
	store := new(mockRefresher)
	store.On("Refresh", mock.Anything, "faqs").Return(errors.New("content service down"))
	c := NewSegmentConsumer(store, newTestLogger())

	err := c.Handle(context.Background(), newTestEvent(EventSegmentReplaced, json.RawMessage(`{"key":"faqs"}`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content service down")
}

func TestTopicMatchesContentService(t *testing.T) {
	assert.Equal(t, "statscustoms.content.segments", TopicSegments)
}

func TestReplicaSubscription_ScopedPerInstance(t *testing.T) {
	a := ReplicaSubscription("pod-a")
	b := ReplicaSubscription("pod-b")

	assert.Equal(t, "storefront-segments-pod-a", a.GroupID)
	assert.Equal(t, "storefront:pod-a:events", a.IdempotencyPrefix)
	assert.NotEqual(t, a.GroupID, b.GroupID)
	assert.NotEqual(t, a.IdempotencyPrefix, b.IdempotencyPrefix)
}

// deliver runs one event through a replica the way the consumer loop does:
// skip if recorded, handle, then record.
func deliver(t *testing.T, dedup *pkgkafka.RedisIdempotencyStore, c *SegmentConsumer, e *pkgkafka.Event) {
	t.Helper()
	ctx := context.Background()
	seen, err := dedup.Contains(ctx, e.ID)
	require.NoError(t, err)
	if seen {
		return
	}
	require.NoError(t, c.Handle(ctx, e))
	require.NoError(t, dedup.Add(ctx, e.ID))
}

func TestSegmentConsumer_EveryReplicaRefreshes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	e := newTestEvent(EventSegmentReplaced, json.RawMessage(`{"key":"products"}`))

	for _, id := range []string{"pod-a", "pod-b"} {
		sub := ReplicaSubscription(id)
		store := new(mockRefresher)
		store.On("Refresh", mock.Anything, "products").Return(nil).Once()
		dedup := pkgkafka.NewRedisIdempotencyStore(client, sub.IdempotencyPrefix, time.Hour)
		c := NewSegmentConsumer(store, newTestLogger())

		deliver(t, dedup, c, e)
		deliver(t, dedup, c, e)

		store.AssertNumberOfCalls(t, "Refresh", 1)
		assert.True(t, mr.Exists(sub.IdempotencyPrefix+":"+e.ID))
	}
	assert.True(t, mr.Exists("storefront:pod-a:events:evt-test-123"))
	assert.False(t, mr.Exists("storefront:events::evt-test-123"))
}
