package eventbus

import (
	"testing"
	"time"
)

func TestEventBus_PublishAndSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe("logo.check.completed")

	bus.Publish("logo.check.completed", "hello")

	select {
	case evt := <-ch:
		if evt.Topic != "logo.check.completed" {
			t.Errorf("expected topic 'logo.check.completed', got %q", evt.Topic)
		}
		if evt.Payload != "hello" {
			t.Errorf("expected payload 'hello', got %v", evt.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout: expected event to be received within 100ms")
	}
}

func TestEventBus_MultipleSubscribers_AllReceive(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe("multi.topic")
	ch2 := bus.Subscribe("multi.topic")

	bus.Publish("multi.topic", 42)

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Payload != 42 {
				t.Errorf("subscriber %d: expected payload 42, got %v", i, evt.Payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestEventBus_DifferentTopics_NoInterference(t *testing.T) {
	bus := New()
	chA := bus.Subscribe("topic.a")
	chB := bus.Subscribe("topic.b")

	bus.Publish("topic.a", "for-a")

	select {
	case evt := <-chA:
		if evt.Payload != "for-a" {
			t.Errorf("topic.a: unexpected payload %v", evt.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("topic.a: timeout waiting for event")
	}

	select {
	case evt := <-chB:
		t.Errorf("topic.b should not receive events, got %v", evt)
	default:
	}
}

func TestEventBus_FullBuffer_DropsWithoutBlocking(t *testing.T) {
	bus := NewWithBuffer(1)
	ch := bus.Subscribe("drop.topic")

	done := make(chan struct{})
	go func() {
		bus.Publish("drop.topic", 1)
		bus.Publish("drop.topic", 2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}

	if evt := <-ch; evt.Payload != 1 {
		t.Errorf("expected first event to be kept, got %v", evt.Payload)
	}
	select {
	case evt := <-ch:
		t.Errorf("expected second event to be dropped, got %v", evt.Payload)
	default:
	}
}

func TestEventBus_Close_EndsSubscriptions(t *testing.T) {
	bus := New()
	ch := bus.Subscribe("close.topic")

	bus.Close()
	bus.Close()
	bus.Publish("close.topic", "late")

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after Close")
	}
	if _, ok := <-bus.Subscribe("close.topic"); ok {
		t.Error("expected subscription on closed bus to be closed")
	}
}
