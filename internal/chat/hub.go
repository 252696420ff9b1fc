package chat

import (
	"context"
	"strconv"

	"marketplace/internal/domain"
)

// subscriberBuffer is how many undelivered messages a subscriber may lag behind
const subscriberBuffer = 32

// Hub relays published chat messages to live subscribers of a conversation.
// Delivery is best effort: slow or disconnected subscribers miss messages and
// recover them through the message history endpoint.
type Hub interface {
	Publish(ctx context.Context, conversationID uint, msg domain.Message) error
	// Subscribe returns a channel of messages and a cancel func that must be called to release it
	Subscribe(ctx context.Context, conversationID uint) (<-chan domain.Message, func(), error)
}

// Channel is the pub/sub channel name of a conversation
func Channel(conversationID uint) string {
	return "chat:conversation:" + strconv.FormatUint(uint64(conversationID), 10)
}
