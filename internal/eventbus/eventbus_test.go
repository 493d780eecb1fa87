package eventbus

import "testing"

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish("tick")
	if v := <-ch; v != "tick" {
		t.Fatalf("expected tick got %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusFullSubscriberDropsEvent(t *testing.T) {
	bus := New()
	ch := bus.SubscribeBuffered(1)
	bus.Publish(1)
	bus.Publish(2) // buffer full, dropped
	if v := <-ch; v != 1 {
		t.Fatalf("expected first event, got %v", v)
	}
	select {
	case v := <-ch:
		t.Fatalf("expected no second event, got %v", v)
	default:
	}
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	// Publish and Unsubscribe after Close must be safe no-ops.
	bus.Publish("late")
	bus.Unsubscribe(ch1)
}

func TestSubscribeAfterClose(t *testing.T) {
	bus := New()
	bus.Close()
	ch := bus.Subscribe()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel from closed bus")
	}
}
