package chat

import (
	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
	"go.uber.org/zap"
)

// Login signs in as name. It reports false, changing nothing, when the
// name is unknown or the password does not match.
func (m *Manager) Login(name, password string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.store.AuthenticateUser(name, password)
	if !ok {
		m.logger.Info("login refused", zap.String("name", name))
		return false
	}
	m.signIn(u.ID)
	return true
}

// Register creates an account and signs in as it. It reports false,
// changing nothing, when the input is invalid or the name is already
// taken in any letter case.
func (m *Manager) Register(name, password, profilePicURL string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	in := Registration{Name: name, Password: password, ProfilePicURL: profilePicURL}
	if err := validateStruct(in); err != nil {
		m.logger.Info("registration refused", zap.Error(err))
		return false
	}
	if _, taken := m.store.FindUserByName(name); taken {
		m.logger.Info("registration refused", zap.Error(ErrUsernameTaken))
		return false
	}
	u := m.store.CreateUser(name, password, profilePicURL)
	m.logger.Info("registered user", zap.String("user_id", u.ID))
	m.signIn(u.ID)
	return true
}

func (m *Manager) signIn(userID string) {
	m.store.SetAuthenticatedUserID(userID)
	m.setPresence(userID, store.Online())
	m.refresh()
}

// Logout records the last-seen time and signs the profile out.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.me == nil {
		return
	}
	m.stopTyping()
	m.setPresence(m.me.ID, store.SeenAt(m.now()))
	m.store.SetAuthenticatedUserID("")
	m.clearUserState()
	m.refresh()
}

// SetVisible reports whether the tab is in the foreground. The signed-in
// user is online while it is and last-seen-now otherwise.
func (m *Manager) SetVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.visible = visible
	if m.me == nil {
		return
	}
	presence := store.Online()
	if !visible {
		presence = store.SeenAt(m.now())
	}
	m.setPresence(m.me.ID, presence)
	m.refresh()
}

func (m *Manager) setPresence(userID string, presence store.LastSeen) {
	m.store.UpdateUsers(func(users []store.User) ([]store.User, bool) {
		i := store.UserIndex(users, userID)
		if i < 0 {
			return users, false
		}
		users[i].LastSeen = presence
		return users, true
	})
	m.post(broadcast.UserStatusUpdate, broadcast.UserStatusUpdatePayload{UserID: userID, Status: presence})
}
