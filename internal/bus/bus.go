package bus

import (
	"strings"
	"sync"
)

// Bus is an in-process publish/subscribe event bus with namespace filtering.
// Delivery is at most once: a subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	next   int
	onDrop func(Event)
}

type subscription struct {
	namespace string
	ch        chan Event
}

// Option configures a Bus.
type Option func(*Bus)

// WithDropHook registers fn to be called for every event a full subscriber
// misses. fn runs on the publisher's goroutine and must not block.
func WithDropHook(fn func(Event)) Option {
	return func(b *Bus) { b.onDrop = fn }
}

// New creates a new event bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs: make(map[int]*subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends an event to all subscribers whose namespace is a prefix of
// event.Kind and returns how many received it. It never blocks.
func (b *Bus) Publish(evt Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for _, sub := range b.subs {
		if !strings.HasPrefix(evt.Kind, sub.namespace) {
			continue
		}
		select {
		case sub.ch <- evt:
			delivered++
		default:
			if b.onDrop != nil {
				b.onDrop(evt)
			}
		}
	}
	return delivered
}

// Subscribe returns a channel that receives events matching the given namespace prefix.
// bufSize controls the channel buffer. The returned function unsubscribes and
// closes the channel; calling it more than once is harmless.
func (b *Bus) Subscribe(namespace string, bufSize int) (<-chan Event, func()) {
	ch := make(chan Event, bufSize)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = &subscription{namespace: namespace, ch: ch}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
