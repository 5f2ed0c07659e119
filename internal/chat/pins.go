package chat

import (
	"slices"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
)

// PinChat puts the user or group id at the front of the signed-in user's
// pinned chats. Pinning twice does nothing.
func (m *Manager) PinChat(id string) error {
	return m.updatePins(func(pins []string) ([]string, bool) {
		if slices.Contains(pins, id) {
			return pins, false
		}
		return append([]string{id}, pins...), true
	})
}

// UnpinChat removes id from the signed-in user's pinned chats.
func (m *Manager) UnpinChat(id string) error {
	return m.updatePins(func(pins []string) ([]string, bool) {
		if !slices.Contains(pins, id) {
			return pins, false
		}
		return remove(pins, id), true
	})
}

func (m *Manager) updatePins(fn func(pins []string) ([]string, bool)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return err
	}
	changed := false
	m.store.UpdateUsers(func(users []store.User) ([]store.User, bool) {
		i := store.UserIndex(users, me.ID)
		if i < 0 {
			return users, false
		}
		users[i].PinnedChatIDs, changed = fn(users[i].PinnedChatIDs)
		return users, changed
	})
	if !changed {
		return nil
	}
	m.post(broadcast.UserProfileUpdate, broadcast.UserProfileUpdatePayload{UserID: me.ID})
	m.refresh()
	return nil
}
