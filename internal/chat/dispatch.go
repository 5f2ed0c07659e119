package chat

import (
	"github.com/benbjohnson/clock"
	"github.com/matheus3301/livechat/internal/broadcast"
	"go.uber.org/zap"
)

// handle applies one envelope from the channel. Typing events only touch
// the typing flags; everything else re-reads the store, after raising the
// notifications the event calls for.
func (m *Manager) handle(env broadcast.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unsubscribe == nil {
		return
	}

	switch env.Type {
	case broadcast.UserTypingStart:
		var p broadcast.TypingStartPayload
		if !m.decode(env, &p) {
			return
		}
		if m.me != nil && p.Route.Concerns(m.me.ID, p.SenderID) {
			m.typingStarted(p.ChatID, p.SenderName)
		}
		return
	case broadcast.UserTypingStop:
		var p broadcast.TypingStopPayload
		if !m.decode(env, &p) {
			return
		}
		if m.me != nil && p.Route.Concerns(m.me.ID, p.SenderID) {
			m.typingStopped(p.ChatID)
		}
		return
	case broadcast.FriendRequest:
		var p broadcast.FriendRequestPayload
		if m.decode(env, &p) && m.me != nil && p.RecipientID == m.me.ID {
			m.addNotification(Notification{
				Type:       NotifyFriendRequest,
				Message:    p.SenderName + " sent you a friend request.",
				FromUserID: p.SenderID,
			})
		}
	case broadcast.NewMessage:
		var p broadcast.NewMessagePayload
		if m.decode(env, &p) {
			m.messageArrived(p)
		}
	}
	m.refresh()
}

func (m *Manager) messageArrived(p broadcast.NewMessagePayload) {
	if m.me == nil || !p.Route.Concerns(m.me.ID, p.SenderID) {
		return
	}
	active := m.activeTarget()
	if active != nil && active.ChatID(m.me.ID) == p.ChatID {
		return
	}
	from := p.SenderID
	if p.IsGroup {
		from = p.ChatID
	}
	m.addNotification(Notification{
		Type:       NotifyNewMessage,
		Message:    "New message from " + p.SenderName,
		FromUserID: from,
	})
	if !m.visible {
		m.notifier.Notify("New Message", "From: "+p.SenderName+"\n"+p.Message.Text)
	}
}

func (m *Manager) decode(env broadcast.Envelope, v any) bool {
	if err := env.Unmarshal(v); err != nil {
		m.logger.Warn("ignoring undecodable event", zap.String("type", string(env.Type)), zap.Error(err))
		return false
	}
	return true
}

func (m *Manager) typingStarted(chatID, name string) {
	m.typing[chatID] = name
	if old := m.typingTimers[chatID]; old != nil {
		old.Stop()
	}
	var t *clock.Timer
	t = m.clock.AfterFunc(TypingExpiry, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.typingTimers[chatID] != t {
			return
		}
		delete(m.typingTimers, chatID)
		delete(m.typing, chatID)
		m.signal()
	})
	m.typingTimers[chatID] = t
	m.signal()
}

func (m *Manager) typingStopped(chatID string) {
	if t := m.typingTimers[chatID]; t != nil {
		t.Stop()
		delete(m.typingTimers, chatID)
	}
	if _, ok := m.typing[chatID]; ok {
		delete(m.typing, chatID)
		m.signal()
	}
}
