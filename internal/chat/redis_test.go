package chat

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisHub(t *testing.T) (*RedisHub, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisHub(rdb), rdb
}

func TestRedisHub_PublishSubscribe(t *testing.T) {
	ctx := context.Background()
	hub, _ := newTestRedisHub(t)

	msgs, cancel, err := hub.Subscribe(ctx, 3)
	require.NoError(t, err)
	defer cancel()
	other, cancelOther, err := hub.Subscribe(ctx, 4)
	require.NoError(t, err)
	defer cancelOther()

	sent := domain.Message{ID: 11, ConversationID: 3, SenderID: 2, Body: "still available?", CreatedAt: 1747742400000}
	require.NoError(t, hub.Publish(ctx, 3, sent))

	assert.Equal(t, sent, receive(t, msgs))
	select {
	case msg := <-other:
		t.Fatalf("unexpected message on other conversation: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRedisHub_DropsMalformedPayload(t *testing.T) {
	ctx := context.Background()
	hub, rdb := newTestRedisHub(t)

	msgs, cancel, err := hub.Subscribe(ctx, 3)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, rdb.Publish(ctx, Channel(3), "not json").Err())
	require.NoError(t, hub.Publish(ctx, 3, domain.Message{ID: 12, Body: "after garbage"}))

	got := receive(t, msgs)
	assert.Equal(t, uint(12), got.ID)
	assert.Equal(t, "after garbage", got.Body)
}

func TestRedisHub_CancelClosesChannel(t *testing.T) {
	ctx := context.Background()
	hub, _ := newTestRedisHub(t)

	msgs, cancel, err := hub.Subscribe(ctx, 3)
	require.NoError(t, err)

	cancel()
	cancel() // Second call is a no-op

	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
