package chat

import (
	"slices"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/matheus3301/livechat/internal/store"
)

// NotificationType tells what a notification is about.
type NotificationType string

const (
	NotifyFriendRequest NotificationType = "friend_request"
	NotifyNewMessage    NotificationType = "new_message"
)

// Notification is an in-tab notice. It disappears after
// NotificationTimeout unless dismissed earlier.
type Notification struct {
	ID      string
	Type    NotificationType
	Message string
	// FromUserID is the sender, or the group id for group messages.
	FromUserID string
	Timestamp  time.Time
}

func (m *Manager) addNotification(n Notification) {
	n.ID = store.NewID("notif")
	n.Timestamp = m.now()
	m.notifications = append([]Notification{n}, m.notifications...)

	id := n.ID
	var t *clock.Timer
	t = m.clock.AfterFunc(NotificationTimeout, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.notificationTimers[id] == t {
			m.dismiss(id)
		}
	})
	m.notificationTimers[id] = t
	m.signal()
}

// DismissNotification removes the notification now.
func (m *Manager) DismissNotification(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismiss(id)
}

func (m *Manager) dismiss(id string) {
	if t := m.notificationTimers[id]; t != nil {
		t.Stop()
		delete(m.notificationTimers, id)
	}
	before := len(m.notifications)
	m.notifications = slices.DeleteFunc(m.notifications, func(n Notification) bool { return n.ID == id })
	if len(m.notifications) != before {
		m.signal()
	}
}
