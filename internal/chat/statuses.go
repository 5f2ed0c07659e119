package chat

import (
	"slices"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
)

// AddStatus posts a status for the signed-in user. url is normally a data
// URL from EncodeFile; MediaKindOf picks the kind from its MIME type.
func (m *Manager) AddStatus(kind store.MediaKind, url string) (store.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return store.Status{}, err
	}
	if url == "" {
		return store.Status{}, ErrBadAttachment
	}
	st := store.Status{
		ID:        store.NewID("status"),
		UserID:    me.ID,
		Type:      kind,
		URL:       url,
		Timestamp: m.now().UnixMilli(),
		ViewedBy:  []string{me.ID},
	}
	m.store.UpdateStatuses(func(all []store.Status) ([]store.Status, bool) {
		return append(all, st), true
	})
	m.post(broadcast.StatusUpdate, broadcast.StatusUpdatePayload{UserID: me.ID})
	m.refresh()
	return st, nil
}

// MarkStatusAsViewed records that the signed-in user saw the status.
// Viewing it again changes nothing.
func (m *Manager) MarkStatusAsViewed(statusID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return err
	}
	var owner string
	viewed := false
	m.store.UpdateStatuses(func(all []store.Status) ([]store.Status, bool) {
		i := slices.IndexFunc(all, func(s store.Status) bool { return s.ID == statusID })
		if i < 0 {
			return all, false
		}
		owner = all[i].UserID
		all[i].ViewedBy, viewed = appendUnique(all[i].ViewedBy, me.ID)
		return all, viewed
	})
	if owner == "" {
		return ErrStatusNotFound
	}
	if !viewed {
		return nil
	}
	m.post(broadcast.StatusUpdate, broadcast.StatusUpdatePayload{UserID: owner})
	m.refresh()
	return nil
}

// SendStatusReply replies to a status in the 1:1 chat with its owner,
// keeping a snapshot of the status with the message.
func (m *Manager) SendStatusReply(statusID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(m.statuses, func(s store.Status) bool { return s.ID == statusID })
	if i < 0 {
		return ErrStatusNotFound
	}
	st := m.statuses[i]
	owner, ok := m.userByID(st.UserID)
	if !ok {
		return ErrUserNotFound
	}
	if text == "" {
		return ErrEmptyMessage
	}
	msg := store.Message{
		ID:        store.NewID("msg"),
		SenderID:  me.ID,
		Text:      text,
		Timestamp: m.now().UnixMilli(),
		Content: store.StatusReplyContent{Status: store.StatusSnapshot{
			StatusURL:       st.URL,
			StatusType:      st.Type,
			StatusOwnerName: owner.Name,
		}},
		ReadBy: []string{me.ID},
	}
	chatID := store.DirectChatID(me.ID, owner.ID)
	m.store.AppendMessage(chatID, msg)
	m.post(broadcast.NewMessage, broadcast.NewMessagePayload{
		ChatID:     chatID,
		Message:    msg,
		Route:      broadcast.Route{RecipientID: owner.ID},
		SenderID:   me.ID,
		SenderName: me.Name,
	})
	m.refresh()
	return nil
}

// SetActiveStatusUser opens the status viewer on userID's statuses. An
// empty id closes it.
func (m *Manager) SetActiveStatusUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeStatusUserID = userID
	m.signal()
}

// SetViewingUserProfile opens userID's profile. An empty id closes it.
func (m *Manager) SetViewingUserProfile(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewingProfileID = userID
	m.signal()
}
