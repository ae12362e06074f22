package pubsub

import (
	"context"
	"sync"
)

// Mock is an in-memory pubsub client for tests. Published events are
// delivered synchronously to subscribers and recorded for inspection.
type Mock struct {
	mu        sync.Mutex
	handlers  map[string][]EventHandler
	Published map[string][]Message
}

// NewMock returns a new mock pubsub client
func NewMock() *Mock {
	return &Mock{
		handlers:  make(map[string][]EventHandler),
		Published: make(map[string][]Message),
	}
}

// Publish records the event and delivers it synchronously
func (m *Mock) Publish(ctx context.Context, topic string, payload Event) error {
	msg, err := payload.Marshal()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.Published[topic] = append(m.Published[topic], msg)
	handlers := append([]EventHandler(nil), m.handlers[topic]...)
	m.mu.Unlock()

	for _, h := range handlers {
		_ = h(ctx, msg)
	}
	return nil
}

// Subscribe registers a handler for a topic
func (m *Mock) Subscribe(_ context.Context, topic string, callback EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = append(m.handlers[topic], callback)
}
