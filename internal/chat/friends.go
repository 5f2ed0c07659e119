package chat

import (
	"slices"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
)

// SendFriendRequest files a pending request from the signed-in user on
// userID. Repeating it leaves one pending entry.
func (m *Manager) SendFriendRequest(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return err
	}
	if userID == me.ID {
		return ErrSelfRequest
	}
	found, added := false, false
	m.store.UpdateUsers(func(users []store.User) ([]store.User, bool) {
		i := store.UserIndex(users, userID)
		if i < 0 {
			return users, false
		}
		found = true
		users[i].FriendRequestIDs, added = appendUnique(users[i].FriendRequestIDs, me.ID)
		return users, added
	})
	if !found {
		return ErrUserNotFound
	}
	// A pending request is announced once.
	if !added {
		return nil
	}
	m.post(broadcast.FriendRequest, broadcast.FriendRequestPayload{
		RecipientID: userID,
		SenderID:    me.ID,
		SenderName:  me.Name,
	})
	m.refresh()
	return nil
}

// AcceptFriendRequest clears the pending request from userID and makes the
// two users friends of each other.
func (m *Manager) AcceptFriendRequest(userID string) error {
	return m.updateFriendship(userID, func(me, other *store.User) {
		me.FriendRequestIDs = remove(me.FriendRequestIDs, other.ID)
		me.FriendIDs, _ = appendUnique(me.FriendIDs, other.ID)
		other.FriendIDs, _ = appendUnique(other.FriendIDs, me.ID)
	})
}

// DeclineFriendRequest drops the pending request from userID.
func (m *Manager) DeclineFriendRequest(userID string) error {
	return m.updateFriendship(userID, func(me, other *store.User) {
		me.FriendRequestIDs = remove(me.FriendRequestIDs, other.ID)
	})
}

// BlockUser ends any friendship with userID on both sides and blocks them
// for the signed-in user only. An open chat with them is closed.
func (m *Manager) BlockUser(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeChatID == userID {
		m.stopTyping()
		m.activeChatID = ""
	}
	return m.friendship(userID, func(me, other *store.User) {
		me.FriendIDs = remove(me.FriendIDs, other.ID)
		other.FriendIDs = remove(other.FriendIDs, me.ID)
		me.BlockedUserIDs, _ = appendUnique(me.BlockedUserIDs, other.ID)
	})
}

// UnblockUser removes userID from the signed-in user's blocked list.
func (m *Manager) UnblockUser(userID string) error {
	return m.updateFriendship(userID, func(me, other *store.User) {
		me.BlockedUserIDs = remove(me.BlockedUserIDs, other.ID)
	})
}

func (m *Manager) updateFriendship(userID string, fn func(me, other *store.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.friendship(userID, fn)
}

// friendship applies fn to the signed-in user and userID in one write and
// announces FRIEND_UPDATE.
func (m *Manager) friendship(userID string, fn func(me, other *store.User)) error {
	me, err := m.requireUser()
	if err != nil {
		return err
	}
	found := false
	m.store.UpdateUsers(func(users []store.User) ([]store.User, bool) {
		mi, oi := store.UserIndex(users, me.ID), store.UserIndex(users, userID)
		if mi < 0 || oi < 0 || mi == oi {
			return users, false
		}
		found = true
		fn(&users[mi], &users[oi])
		return users, true
	})
	if !found {
		return ErrUserNotFound
	}
	m.post(broadcast.FriendUpdate, broadcast.FriendUpdatePayload{UserID1: me.ID, UserID2: userID})
	m.refresh()
	return nil
}

// appendUnique appends v unless ids already holds it.
func appendUnique(ids []string, v string) ([]string, bool) {
	if slices.Contains(ids, v) {
		return ids, false
	}
	return append(ids, v), true
}

func remove(ids []string, v string) []string {
	return slices.DeleteFunc(ids, func(id string) bool { return id == v })
}
