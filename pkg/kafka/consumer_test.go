package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventMessage(t *testing.T, id, subject string) kafka.Message {
	t.Helper()
	event, err := NewEvent(context.Background(), "content.segment.replaced", "segment", subject, "content-service", nil)
	require.NoError(t, err)
	event.ID = id
	raw, err := event.Marshal()
	require.NoError(t, err)
	return kafka.Message{Topic: "statscustoms.content.segments", Value: raw}
}

func runConsumer(t *testing.T, msgs []kafka.Message, handler Handler, opts ...ConsumerOption) *fakeReader {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeReader{msgs: msgs, cancel: cancel}
	cfg := ConsumerConfig{Topic: "statscustoms.content.segments", GroupID: "storefront", MaxRetries: 2, RetryBackoff: time.Millisecond}
	c := newConsumer(r, cfg, handler, testLogger(), opts...)

	require.NoError(t, c.Start(ctx))
	assert.True(t, r.closed)
	return r
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	var subjects []string
	r := runConsumer(t, []kafka.Message{eventMessage(t, "e1", "products"), eventMessage(t, "e2", "faqs")},
		func(_ context.Context, e *Event) error {
			subjects = append(subjects, e.Subject)
			return nil
		})

	assert.Equal(t, []string{"products", "faqs"}, subjects)
	assert.Len(t, r.committed, 2)
}

func TestConsumer_RetriesThenDeadLetters(t *testing.T) {
	dlq := &recordingDLQ{}
	calls := 0
	r := runConsumer(t, []kafka.Message{eventMessage(t, "e1", "products")},
		func(context.Context, *Event) error {
			calls++
			return errors.New("content api down")
		}, WithDeadLetter(dlq))

	assert.Equal(t, 2, calls)
	require.Len(t, dlq.msgs, 1)
	assert.EqualError(t, dlq.causes[0], "content api down")
	assert.Len(t, r.committed, 1)
}

func TestConsumer_UndecodableMessageDeadLettered(t *testing.T) {
	dlq := &recordingDLQ{}
	called := false
	r := runConsumer(t, []kafka.Message{{Topic: "statscustoms.content.segments", Value: []byte("not json")}},
		func(context.Context, *Event) error {
			called = true
			return nil
		}, WithDeadLetter(dlq))

	assert.False(t, called)
	assert.Len(t, dlq.msgs, 1)
	assert.Len(t, r.committed, 1)
}

func TestConsumer_SkipsDuplicates(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdempotencyStore(client, "storefront:events", time.Hour)

	calls := 0
	r := runConsumer(t, []kafka.Message{eventMessage(t, "dup", "products"), eventMessage(t, "dup", "products")},
		func(context.Context, *Event) error {
			calls++
			return nil
		}, WithIdempotency(store))

	assert.Equal(t, 1, calls)
	assert.Len(t, r.committed, 2)
	assert.True(t, mr.Exists("storefront:events:dup"))
}

func TestConsumer_SeparateGroupsEachHandleEvent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	calls := map[string]int{}
	for _, replica := range []string{"a", "b"} {
		store := NewRedisIdempotencyStore(client, "storefront:"+replica+":events", time.Hour)
		runConsumer(t, []kafka.Message{eventMessage(t, "shared", "products")},
			func(context.Context, *Event) error {
				calls[replica]++
				return nil
			}, WithIdempotency(store))
	}

	assert.Equal(t, map[string]int{"a": 1, "b": 1}, calls)
	assert.True(t, mr.Exists("storefront:a:events:shared"))
	assert.True(t, mr.Exists("storefront:b:events:shared"))
}

func TestConsumer_FailedEventNotRecorded(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdempotencyStore(client, "storefront:events", time.Hour)

	runConsumer(t, []kafka.Message{eventMessage(t, "bad", "products")},
		func(context.Context, *Event) error { return errors.New("nope") },
		WithIdempotency(store))

	assert.False(t, mr.Exists("storefront:events:bad"))
}

func TestRedisIdempotencyStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdempotencyStore(client, "p", time.Minute)
	ctx := context.Background()

	seen, err := store.Contains(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Add(ctx, "e1"))
	seen, err = store.Contains(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, seen)

	mr.FastForward(2 * time.Minute)
	seen, err = store.Contains(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisIdempotencyStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdempotencyStore(client, "p", time.Minute)
	mr.Close()

	_, err := store.Contains(context.Background(), "e1")
	assert.Error(t, err)
}
