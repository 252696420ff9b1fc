package chat

import (
	"context"
	"sync"

	"marketplace/internal/domain"
)

// LocalHub fans messages out inside a single process
type LocalHub struct {
	mu   sync.RWMutex
	subs map[uint]map[*localSub]struct{}
}

type localSub struct {
	ch   chan domain.Message
	once sync.Once
}

// NewLocalHub returns an empty in-process hub
func NewLocalHub() *LocalHub {
	return &LocalHub{subs: make(map[uint]map[*localSub]struct{})}
}

func (h *LocalHub) Publish(_ context.Context, conversationID uint, msg domain.Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[conversationID] {
		select {
		case s.ch <- msg:
		default: // Subscriber is full, drop
		}
	}
	return nil
}

func (h *LocalHub) Subscribe(_ context.Context, conversationID uint) (<-chan domain.Message, func(), error) {
	s := &localSub{ch: make(chan domain.Message, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[*localSub]struct{})
	}
	h.subs[conversationID][s] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		s.once.Do(func() {
			h.mu.Lock()
			delete(h.subs[conversationID], s)
			if len(h.subs[conversationID]) == 0 {
				delete(h.subs, conversationID)
			}
			h.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, cancel, nil
}

// Subscribers reports the live subscriber count of a conversation
func (h *LocalHub) Subscribers(conversationID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[conversationID])
}
