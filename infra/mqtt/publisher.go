package mqtt

import (
	"context"
	"sync"

	"github.com/hospigo/fleetd/core/events"
	"github.com/hospigo/fleetd/infra/logger"
	"github.com/hospigo/fleetd/internal/eventbus"
)

// StartPublisher subscribes to the event bus and forwards fleet state and
// notifications to the broker. Fleet state is retained so late subscribers
// see the latest snapshot immediately. It stops when the context is canceled.
func StartPublisher(ctx context.Context, bus eventbus.EventBus, pub Publisher, cfg Config, log logger.Logger) {
	if bus == nil || pub == nil {
		return
	}
	cfg.SetDefaults()
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.TickEvent:
					if err := pub.Publish(cfg.StateTopic, true, e.Robots); err != nil {
						log.Errorf("publish fleet state: %v", err)
					}
				case events.NotificationEvent:
					if err := pub.Publish(cfg.NotificationTopic, false, e.Notification); err != nil {
						log.Errorf("publish notification: %v", err)
					}
				}
			}
		}
	}()
}

// MockPublisher records published payloads for tests.
type MockPublisher struct {
	mu       sync.Mutex
	Messages map[string][]any
}

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Messages: make(map[string][]any)}
}

// Publish records the payload under its topic.
func (m *MockPublisher) Publish(topic string, _ bool, payload any) error {
	m.mu.Lock()
	m.Messages[topic] = append(m.Messages[topic], payload)
	m.mu.Unlock()
	return nil
}

// Published returns the payloads recorded for a topic.
func (m *MockPublisher) Published(topic string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.Messages[topic]...)
}

// Close is a no-op.
func (m *MockPublisher) Close() {}
