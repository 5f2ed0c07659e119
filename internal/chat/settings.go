package chat

import (
	"strings"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
)

// Settings is a partial update of the signed-in user's profile. Empty
// strings keep the current value, except StatusMessage which is applied
// whenever it is non-nil. NewPassword requires CurrentPassword.
type Settings struct {
	Name            string `validate:"omitempty,max=32"`
	ProfilePicURL   string `validate:"omitempty,uri"`
	StatusMessage   *string
	CurrentPassword string
	NewPassword     string
}

// UpdateUserSettings applies s to the signed-in user.
func (m *Manager) UpdateUserSettings(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return err
	}
	if err := validateStruct(s); err != nil {
		return err
	}
	if s.NewPassword != "" && s.CurrentPassword != me.Password {
		return ErrWrongPassword
	}
	if s.Name != "" && s.Name != me.Name {
		for _, u := range m.store.Users() {
			if u.ID != me.ID && strings.EqualFold(u.Name, s.Name) {
				return ErrUsernameTaken
			}
		}
	}

	found := false
	m.store.UpdateUsers(func(users []store.User) ([]store.User, bool) {
		i := store.UserIndex(users, me.ID)
		if i < 0 {
			return users, false
		}
		found = true
		u := &users[i]
		if s.Name != "" {
			u.Name = s.Name
		}
		if s.ProfilePicURL != "" {
			u.ProfilePicURL = s.ProfilePicURL
		}
		if s.StatusMessage != nil {
			u.StatusMessage = *s.StatusMessage
		}
		if s.NewPassword != "" {
			u.Password = s.NewPassword
		}
		return users, true
	})
	if !found {
		return ErrUserNotFound
	}
	m.post(broadcast.UserProfileUpdate, broadcast.UserProfileUpdatePayload{UserID: me.ID})
	m.refresh()
	return nil
}
