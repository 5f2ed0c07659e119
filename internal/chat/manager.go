// Package chat is the chat manager of one tab: it owns the tab's view of
// the profile, runs every user operation against the shared store and
// announces each change on the broadcast channel so other tabs catch up.
package chat

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/session"
	"github.com/matheus3301/livechat/internal/store"
	"go.uber.org/zap"
)

// Timings of the tab-local timers.
const (
	TypingIdle          = 1500 * time.Millisecond
	TypingExpiry        = 3 * time.Second
	NotificationTimeout = 5 * time.Second
	CallConnectDelay    = 3 * time.Second
	CallTick            = time.Second
	CallQualityInterval = 5 * time.Second
)

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(title, body string)
}

// Confirmer asks the user a yes/no question. The presentation layer asks
// before destructive operations; the manager never does.
type Confirmer interface {
	Confirm(prompt string) bool
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}

// Deps are the manager's collaborators. Store and Channel are required.
type Deps struct {
	Store    *store.Store
	Channel  broadcast.Channel
	Clock    clock.Clock
	Logger   *zap.Logger
	Notifier Notifier
	Session  *session.Machine
}

// Manager is the state of one tab. Every exported method runs to
// completion under one mutex; inbound events and timers take the same
// mutex.
type Manager struct {
	store    *store.Store
	channel  broadcast.Channel
	clock    clock.Clock
	logger   *zap.Logger
	notifier Notifier
	session  *session.Machine

	mu sync.Mutex

	// Cache of the store, replaced wholesale by refresh.
	users    []store.User
	groups   []store.Group
	chats    store.Chats
	statuses []store.Status
	history  store.SearchHistory
	me       *store.User

	visible            bool
	activeChatID       string
	replyingTo         *store.Message
	viewingProfileID   string
	activeStatusUserID string

	typing       map[string]string
	typingTimers map[string]*clock.Timer
	composer     composer

	notifications      []Notification
	notificationTimers map[string]*clock.Timer

	call *call

	unsubscribe func()
	changes     chan struct{}
}

// New creates a manager. Call Start before use.
func New(deps Deps) *Manager {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Session == nil {
		deps.Session = session.NewMachine(nil)
	}
	return &Manager{
		store:              deps.Store,
		channel:            deps.Channel,
		clock:              deps.Clock,
		logger:             deps.Logger,
		notifier:           deps.Notifier,
		session:            deps.Session,
		visible:            true,
		typing:             make(map[string]string),
		typingTimers:       make(map[string]*clock.Timer),
		notificationTimers: make(map[string]*clock.Timer),
		changes:            make(chan struct{}, 1),
	}
}

// Start subscribes to the broadcast channel and loads the store, restoring
// the signed-in user if the profile has one.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		return
	}
	m.unsubscribe = m.channel.Subscribe(m.handle)
	m.refresh()
	if m.me != nil {
		m.logger.Info("restored session", zap.String("user_id", m.me.ID))
	}
}

// Stop unsubscribes from the channel and cancels every pending timer.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.composer.reset()
	for id, t := range m.typingTimers {
		t.Stop()
		delete(m.typingTimers, id)
	}
	for id, t := range m.notificationTimers {
		t.Stop()
		delete(m.notificationTimers, id)
	}
	m.endCallLocked()
}

// Changes signals, coalesced, that the tab's state changed.
func (m *Manager) Changes() <-chan struct{} { return m.changes }

func (m *Manager) signal() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// State reports whether the tab is signed in.
func (m *Manager) State() session.State { return m.session.Current() }

func (m *Manager) post(t broadcast.EventType, payload any) {
	m.channel.Post(t, payload)
}

// refresh re-reads every collection from the store, resolves the signed-in
// user and re-derives the session state.
func (m *Manager) refresh() {
	m.users = m.store.Users()
	m.groups = m.store.Groups()
	m.chats = m.store.Chats()
	m.statuses = m.store.Statuses()
	m.history = m.store.SearchHistory()

	m.me = nil
	if id := m.store.AuthenticatedUserID(); id != "" {
		if i := store.UserIndex(m.users, id); i >= 0 {
			u := m.users[i]
			m.me = &u
		}
	}
	m.syncSession()

	if m.me != nil && m.activeChatID != "" {
		if t := m.activeTarget(); t != nil {
			if m.markRead(t.ChatID(m.me.ID)) {
				m.chats = m.store.Chats()
			}
		} else {
			m.activeChatID = ""
		}
	}
	m.signal()
}

func (m *Manager) syncSession() {
	var err error
	switch {
	case m.me == nil:
		if m.session.Current() == session.Authenticated {
			err = m.session.SignOut()
			m.clearUserState()
		}
	case m.session.UserID() != m.me.ID:
		if m.session.Current() == session.Authenticated {
			if err = m.session.SignOut(); err != nil {
				break
			}
			m.clearUserState()
		}
		err = m.session.SignIn(m.me.ID)
	}
	if err != nil {
		m.logger.Error("session transition failed", zap.Error(err))
	}
}

// clearUserState drops everything that belongs to the previous user.
func (m *Manager) clearUserState() {
	m.activeChatID = ""
	m.replyingTo = nil
	m.viewingProfileID = ""
	m.activeStatusUserID = ""
	m.composer.reset()
	m.endCallLocked()
}

func (m *Manager) requireUser() (store.User, error) {
	if m.me == nil {
		return store.User{}, ErrNotSignedIn
	}
	return *m.me, nil
}

func (m *Manager) userByID(id string) (store.User, bool) {
	if i := store.UserIndex(m.users, id); i >= 0 {
		return m.users[i], true
	}
	return store.User{}, false
}

func (m *Manager) userName(id, fallback string) string {
	if u, ok := m.userByID(id); ok {
		return u.Name
	}
	return fallback
}

func (m *Manager) now() time.Time { return m.clock.Now() }
