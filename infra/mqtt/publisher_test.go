package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hospigo/fleetd/core/events"
	"github.com/hospigo/fleetd/core/model"
	"github.com/hospigo/fleetd/infra/logger"
	"github.com/hospigo/fleetd/internal/eventbus"
)

func TestStartPublisherForwardsEvents(t *testing.T) {
	bus := eventbus.New()
	pub := NewMockPublisher()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartPublisher(ctx, bus, pub, Config{}, logger.NopLogger{})

	bus.Publish(events.TickEvent{Seq: 1, Robots: []model.Robot{{ID: "Robot-A1"}}})
	bus.Publish(events.NotificationEvent{Notification: model.Notification{ID: "n1", Message: "hello"}})

	deadline := time.After(2 * time.Second)
	for {
		if len(pub.Published("hospigo/fleet/state")) > 0 && len(pub.Published("hospigo/notifications")) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("events not forwarded: %v", pub.Messages)
		case <-time.After(10 * time.Millisecond):
		}
	}
	assert.Len(t, pub.Published("hospigo/fleet/state"), 1)
	assert.Len(t, pub.Published("hospigo/notifications"), 1)
}
