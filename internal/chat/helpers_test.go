package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
	"github.com/stretchr/testify/require"
)

// Seeded demo users.
const (
	alice   = "user-1"
	bob     = "user-2"
	charlie = "user-3"
	diana   = "user-4"
)

// recorder is a Channel that keeps what was posted and lets the test hand
// envelopes to the subscriber.
type recorder struct {
	mu      sync.Mutex
	posted  []broadcast.Envelope
	handler broadcast.Handler
}

func (r *recorder) Post(t broadcast.EventType, payload any) {
	frame, err := broadcast.Encode(t, payload)
	if err != nil {
		panic(err)
	}
	env, err := broadcast.Parse(frame)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posted = append(r.posted, env)
}

func (r *recorder) Subscribe(h broadcast.Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = h
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.handler = nil
	}
}

func (r *recorder) Close() error { return nil }

func (r *recorder) count(t broadcast.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, env := range r.posted {
		if env.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) last(t broadcast.EventType) (broadcast.Envelope, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.posted) - 1; i >= 0; i-- {
		if r.posted[i].Type == t {
			return r.posted[i], true
		}
	}
	return broadcast.Envelope{}, false
}

// deliver hands an event to the subscribed manager as if another tab had
// posted it.
func (r *recorder) deliver(t *testing.T, eventType broadcast.EventType, payload any) {
	t.Helper()
	frame, err := broadcast.Encode(eventType, payload)
	require.NoError(t, err)
	env, err := broadcast.Parse(frame)
	require.NoError(t, err)
	r.mu.Lock()
	h := r.handler
	r.mu.Unlock()
	require.NotNil(t, h, "no subscriber")
	h(env)
}

type notifierFunc func(title, body string)

func (f notifierFunc) Notify(title, body string) { f(title, body) }

type fixture struct {
	store *store.Store
	clock *clock.Mock
	rec   *recorder
	m     *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC))
	st := store.New(store.NewMemory(), clk, nil)
	rec := &recorder{}
	m := New(Deps{Store: st, Channel: rec, Clock: clk})
	m.Start()
	t.Cleanup(m.Stop)
	return &fixture{store: st, clock: clk, rec: rec, m: m}
}

func (f *fixture) login(t *testing.T, name string) {
	t.Helper()
	require.True(t, f.m.Login(name, "password"), "login %s", name)
}

func (f *fixture) user(t *testing.T, id string) store.User {
	t.Helper()
	u, err := f.store.UserByID(id)
	require.NoError(t, err)
	return u
}

func (f *fixture) group(t *testing.T, id string) (store.Group, bool) {
	t.Helper()
	groups := f.store.Groups()
	if i := store.GroupIndex(groups, id); i >= 0 {
		return groups[i], true
	}
	return store.Group{}, false
}
