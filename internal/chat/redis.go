package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"marketplace/internal/domain"

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// RedisHub relays messages through Redis PUBLISH/SUBSCRIBE so every server instance sees them
type RedisHub struct {
	rdb *redis.Client
}

// NewRedisHub wraps an existing Redis client
func NewRedisHub(rdb *redis.Client) *RedisHub {
	return &RedisHub{rdb: rdb}
}

func (h *RedisHub) Publish(ctx context.Context, conversationID uint, msg domain.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, Channel(conversationID), payload).Err()
}

func (h *RedisHub) Subscribe(ctx context.Context, conversationID uint) (<-chan domain.Message, func(), error) {
	pubsub := h.rdb.Subscribe(ctx, Channel(conversationID))
	// Wait for the subscription confirmation so no message published after return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", Channel(conversationID), err)
	}

	out := make(chan domain.Message, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		in := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case raw, ok := <-in:
				if !ok {
					return
				}
				var msg domain.Message
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					logrus.WithFields(logrus.Fields{
						"channel": raw.Channel,
						"error":   err.Error(),
					}).Warn("Dropping malformed chat payload")
					continue
				}
				select {
				case out <- msg:
				default: // Subscriber is full, drop
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}
