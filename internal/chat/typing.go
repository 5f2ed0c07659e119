package chat

import (
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/matheus3301/livechat/internal/broadcast"
)

// composer is the sending side of the typing indicator.
type composer struct {
	typing bool
	chatID string
	route  broadcast.Route
	idle   *clock.Timer
}

func (c *composer) reset() {
	if c.idle != nil {
		c.idle.Stop()
	}
	*c = composer{}
}

// ComposerChanged reports the composer's text for the active chat. The
// first non-empty text announces typing; the stop follows TypingIdle
// after the last change, or at once when the text is cleared.
func (m *Manager) ComposerChanged(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.me == nil {
		return
	}
	target := m.activeTarget()
	if target == nil {
		return
	}
	if strings.TrimSpace(text) == "" {
		m.stopTyping()
		return
	}

	chatID := target.ChatID(m.me.ID)
	if m.composer.typing && m.composer.chatID != chatID {
		m.stopTyping()
	}
	if !m.composer.typing {
		route := target.Route()
		m.post(broadcast.UserTypingStart, broadcast.TypingStartPayload{
			ChatID:     chatID,
			SenderID:   m.me.ID,
			SenderName: m.me.Name,
			Route:      route,
		})
		m.composer = composer{typing: true, chatID: chatID, route: route}
	}
	if m.composer.idle != nil {
		m.composer.idle.Stop()
	}
	var t *clock.Timer
	t = m.clock.AfterFunc(TypingIdle, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.composer.idle == t {
			m.stopTyping()
		}
	})
	m.composer.idle = t
}

// stopTyping announces the end of typing if a start is outstanding.
func (m *Manager) stopTyping() {
	if !m.composer.typing {
		return
	}
	c := m.composer
	m.composer.reset()
	senderID := ""
	if m.me != nil {
		senderID = m.me.ID
	}
	m.post(broadcast.UserTypingStop, broadcast.TypingStopPayload{
		ChatID:   c.chatID,
		SenderID: senderID,
		Route:    c.route,
	})
}

// TypingIn returns who is typing in chatID, or "".
func (m *Manager) TypingIn(chatID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.typing[chatID]
}
