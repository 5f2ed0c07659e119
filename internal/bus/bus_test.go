package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("broadcast.", 10)
	defer unsub()

	n := b.Publish(Event{Kind: "broadcast.NEW_MESSAGE", Timestamp: time.Now(), Payload: []byte(`{}`)})
	if n != 1 {
		t.Errorf("Publish() delivered to %d, want 1", n)
	}

	select {
	case evt := <-ch:
		if evt.Kind != "broadcast.NEW_MESSAGE" {
			t.Errorf("got kind %q, want broadcast.NEW_MESSAGE", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("broadcast.", 10)
	defer unsub()

	b.Publish(Event{Kind: "session.state_changed"})
	b.Publish(Event{Kind: "broadcast.CHAT_CLEARED"})

	select {
	case evt := <-ch:
		if evt.Kind != "broadcast.CHAT_CLEARED" {
			t.Errorf("got kind %q, want broadcast.CHAT_CLEARED", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("broadcast.", 10)
	unsub()
	unsub()

	if n := b.Publish(Event{Kind: "broadcast.STATUS_UPDATE"}); n != 0 {
		t.Errorf("delivered to %d after unsubscribe, want 0", n)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	var dropped []string
	b := New(WithDropHook(func(evt Event) { dropped = append(dropped, evt.Kind) }))
	ch, unsub := b.Subscribe("test.", 1)
	defer unsub()

	b.Publish(Event{Kind: "test.one"})
	// Buffer is full; this one is dropped without blocking.
	b.Publish(Event{Kind: "test.two"})

	evt := <-ch
	if evt.Kind != "test.one" {
		t.Errorf("got %q, want test.one", evt.Kind)
	}
	if len(dropped) != 1 || dropped[0] != "test.two" {
		t.Errorf("dropped = %v, want [test.two]", dropped)
	}
}
