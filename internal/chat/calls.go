package chat

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
)

// Call phases shown to the user.
const (
	CallRinging   = "Ringing..."
	CallConnected = "Connected"
)

// Video quality levels cycled through while a call is connected.
var qualityCycle = []string{"good", "good", "fair", "good", "poor", "good"}

// CallState is a read-only view of the simulated call.
type CallState struct {
	Kind     store.CallKind
	PeerID   string
	Status   string
	Duration time.Duration
	Quality  string
}

// call is a simulated call. Nothing is signalled to the peer until it
// ends.
type call struct {
	CallState
	qualityIdx int

	connect, tick, quality *clock.Timer
}

func (c *call) stop() {
	for _, t := range []*clock.Timer{c.connect, c.tick, c.quality} {
		if t != nil {
			t.Stop()
		}
	}
}

// StartCall starts a simulated call with the user of the active 1:1 chat.
func (m *Manager) StartCall(kind store.CallKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.requireUser(); err != nil {
		return err
	}
	if m.call != nil {
		return ErrCallInProgress
	}
	d, ok := m.activeTarget().(Direct)
	if !ok {
		if m.activeChatID == "" {
			return ErrNoActiveChat
		}
		return ErrCallNeedsDirectChat
	}
	c := &call{CallState: CallState{Kind: kind, PeerID: d.User.ID, Status: CallRinging, Quality: qualityCycle[0]}}
	m.call = c
	c.connect = m.arm(c, CallConnectDelay, func() {
		c.Status = CallConnected
		m.tickDuration(c)
		m.tickQuality(c)
	})
	m.signal()
	return nil
}

// arm schedules fn under the manager lock, as long as c is still the
// current call.
func (m *Manager) arm(c *call, d time.Duration, fn func()) *clock.Timer {
	return m.clock.AfterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.call != c {
			return
		}
		fn()
		m.signal()
	})
}

func (m *Manager) tickDuration(c *call) {
	c.tick = m.arm(c, CallTick, func() {
		c.Duration += CallTick
		m.tickDuration(c)
	})
}

func (m *Manager) tickQuality(c *call) {
	c.quality = m.arm(c, CallQualityInterval, func() {
		c.qualityIdx = (c.qualityIdx + 1) % len(qualityCycle)
		c.Quality = qualityCycle[c.qualityIdx]
		m.tickQuality(c)
	})
}

// Call returns the call in progress.
func (m *Manager) Call() (CallState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.call == nil {
		return CallState{}, false
	}
	return m.call.CallState, true
}

// EndCall ends the call and logs it in the chat with the peer.
func (m *Manager) EndCall() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return err
	}
	c := m.call
	if c == nil {
		return ErrNoActiveCall
	}
	m.endCallLocked()

	msg := store.Message{
		ID:        store.NewID("msg"),
		SenderID:  me.ID,
		Text:      "Call ended",
		Timestamp: m.now().UnixMilli(),
		Content:   store.CallContent{Call: store.CallInfo{Type: c.Kind, Ended: true}},
		ReadBy:    []string{me.ID},
	}
	chatID := store.DirectChatID(me.ID, c.PeerID)
	m.store.AppendMessage(chatID, msg)
	m.post(broadcast.NewMessage, broadcast.NewMessagePayload{
		ChatID:     chatID,
		Message:    msg,
		Route:      broadcast.Route{RecipientID: c.PeerID},
		SenderID:   me.ID,
		SenderName: me.Name,
	})
	m.refresh()
	return nil
}

func (m *Manager) endCallLocked() {
	if m.call == nil {
		return
	}
	m.call.stop()
	m.call = nil
}

// FormatCallDuration renders d as mm:ss.
func FormatCallDuration(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
