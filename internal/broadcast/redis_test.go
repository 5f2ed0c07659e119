package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fakePubSub fans published messages out to its live subscriptions, like
// one redis server shared by every tab.
type fakePubSub struct {
	mu         sync.Mutex
	subs       []*fakeSubscription
	publishErr error
}

func (f *fakePubSub) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	if f.publishErr != nil {
		return redis.NewIntResult(0, f.publishErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.subs {
		if s.channel != channel {
			continue
		}
		s.messages <- &redis.Message{Channel: channel, Payload: string(message.([]byte))}
		n++
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakePubSub) Subscribe(_ context.Context, channel string) Subscription {
	s := &fakeSubscription{owner: f, channel: channel, messages: make(chan *redis.Message, 16)}
	f.mu.Lock()
	f.subs = append(f.subs, s)
	f.mu.Unlock()
	return s
}

func (f *fakePubSub) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type fakeSubscription struct {
	owner    *fakePubSub
	channel  string
	messages chan *redis.Message
	once     sync.Once
}

func (s *fakeSubscription) Channel(...redis.ChannelOption) <-chan *redis.Message { return s.messages }

func (s *fakeSubscription) Close() error {
	s.once.Do(func() {
		s.owner.mu.Lock()
		defer s.owner.mu.Unlock()
		for i, sub := range s.owner.subs {
			if sub == s {
				s.owner.subs = append(s.owner.subs[:i], s.owner.subs[i+1:]...)
				break
			}
		}
		close(s.messages)
	})
	return nil
}

func TestRedisDeliversToEveryTabIncludingSelf(t *testing.T) {
	server := &fakePubSub{}
	tab1 := NewRedis(server, "livechat:broadcast", 8, zap.NewNop())
	tab2 := NewRedis(server, "livechat:broadcast", 8, zap.NewNop())
	defer func() { _ = tab1.Close() }()
	defer func() { _ = tab2.Close() }()

	got1 := make(chan Envelope, 1)
	got2 := make(chan Envelope, 1)
	tab1.Subscribe(func(e Envelope) { got1 <- e })
	tab2.Subscribe(func(e Envelope) { got2 <- e })

	tab1.Post(StatusUpdate, StatusUpdatePayload{UserID: "user-2"})

	for name, ch := range map[string]chan Envelope{"poster": got1, "other": got2} {
		select {
		case env := <-ch:
			if env.Type != StatusUpdate {
				t.Errorf("%s got %s, want STATUS_UPDATE", name, env.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s tab did not receive the event", name)
		}
	}
}

func TestRedisUnsubscribeStopsDelivery(t *testing.T) {
	server := &fakePubSub{}
	ch := NewRedis(server, "livechat:broadcast", 8, zap.NewNop())
	defer func() { _ = ch.Close() }()

	got := make(chan Envelope, 1)
	unsub := ch.Subscribe(func(e Envelope) { got <- e })
	unsub()
	unsub()
	if n := server.live(); n != 0 {
		t.Fatalf("live subscriptions = %d after unsubscribe, want 0", n)
	}

	ch.Post(ChatCleared, ChatClearedPayload{ChatID: "user-2"})
	select {
	case env := <-got:
		t.Errorf("received %s after unsubscribe", env.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedisPublishFailureIsSwallowed(t *testing.T) {
	server := &fakePubSub{publishErr: errors.New("connection refused")}
	ch := NewRedis(server, "livechat:broadcast", 8, zap.NewNop())
	defer func() { _ = ch.Close() }()

	got := make(chan Envelope, 1)
	ch.Subscribe(func(e Envelope) { got <- e })
	ch.Post(StatusUpdate, StatusUpdatePayload{UserID: "user-2"})

	select {
	case env := <-got:
		t.Errorf("received %s although publish failed", env.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedisCloseEndsSubscriptions(t *testing.T) {
	server := &fakePubSub{}
	ch := NewRedis(server, "livechat:broadcast", 8, zap.NewNop())
	ch.Subscribe(func(Envelope) {})
	ch.Subscribe(func(Envelope) {})

	done := make(chan struct{})
	go func() {
		_ = ch.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
	if n := server.live(); n != 0 {
		t.Errorf("live subscriptions = %d after Close, want 0", n)
	}

	// Posting after Close must not block or panic.
	ch.Post(StatusUpdate, StatusUpdatePayload{UserID: "user-2"})
}
