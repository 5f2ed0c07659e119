package chat

import (
	"strings"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
)

// Attachment is a file sent with a message. Kind must be one of the media
// message types; URL is normally a data URL from EncodeFile.
type Attachment struct {
	Kind store.MessageType
	Name string
	URL  string
}

// SetActiveChat selects the user or group chat id refers to, or clears the
// selection when id is empty. Selecting a chat marks it read.
func (m *Manager) SetActiveChat(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == m.activeChatID {
		return
	}
	m.stopTyping()
	m.activeChatID = id
	m.replyingTo = nil
	if m.me != nil {
		if t := m.activeTarget(); t != nil && m.markRead(t.ChatID(m.me.ID)) {
			m.chats = m.store.Chats()
		}
	}
	m.signal()
}

// SetReplyingTo sets the message the next SendMessage replies to. Nil
// cancels the reply.
func (m *Manager) SetReplyingTo(msg *store.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg != nil {
		cp := *msg
		msg = &cp
	}
	m.replyingTo = msg
	m.signal()
}

// SendMessage appends a message from the signed-in user to the active
// chat. A nil file sends plain text.
func (m *Manager) SendMessage(text string, file *Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return err
	}
	target := m.activeTarget()
	if target == nil {
		return ErrNoActiveChat
	}
	msg := store.Message{
		ID:        store.NewID("msg"),
		SenderID:  me.ID,
		Text:      text,
		Timestamp: m.now().UnixMilli(),
		Content:   store.TextContent{},
		ReadBy:    []string{me.ID},
	}
	switch {
	case file != nil:
		if !file.Kind.IsMedia() {
			return ErrBadAttachment
		}
		msg.Content = store.MediaContent{Kind: file.Kind, File: store.File{Name: file.Name, URL: file.URL}}
	case strings.TrimSpace(text) == "":
		return ErrEmptyMessage
	}
	if r := m.replyingTo; r != nil {
		msg.ReplyTo = &store.ReplySnapshot{
			MessageID:  r.ID,
			SenderName: m.userName(r.SenderID, "Unknown"),
			Text:       r.Text,
		}
	}

	chatID := target.ChatID(me.ID)
	m.store.AppendMessage(chatID, msg)
	m.replyingTo = nil
	m.stopTyping()
	m.post(broadcast.NewMessage, broadcast.NewMessagePayload{
		ChatID:     chatID,
		Message:    msg,
		Route:      target.Route(),
		SenderID:   me.ID,
		SenderName: me.Name,
	})
	m.refresh()
	return nil
}

// MarkMessagesAsRead adds the signed-in user to the readers of every
// message in chatID they have not read and did not send. MESSAGES_READ is
// only broadcast when something changed.
func (m *Manager) MarkMessagesAsRead(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.me == nil {
		return
	}
	if m.markRead(chatID) {
		m.chats = m.store.Chats()
		m.signal()
	}
}

func (m *Manager) markRead(chatID string) bool {
	me := m.me.ID
	changed := false
	m.store.UpdateChats(func(chats store.Chats) bool {
		for i, msg := range chats[chatID] {
			if msg.SenderID == me || msg.IsReadBy(me) {
				continue
			}
			chats[chatID][i].ReadBy = append(msg.ReadBy, me)
			changed = true
		}
		return changed
	})
	if changed {
		m.post(broadcast.MessagesRead, broadcast.MessagesReadPayload{ChatID: chatID, ReaderID: me})
	}
	return changed
}

// ClearChatHistory replaces the log of chatID with a single system message.
// Chats that hold no log yet are left alone.
func (m *Manager) ClearChatHistory(chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.requireUser(); err != nil {
		return err
	}
	cleared := false
	m.store.UpdateChats(func(chats store.Chats) bool {
		if _, ok := chats[chatID]; !ok {
			return false
		}
		chats[chatID] = []store.Message{m.systemMessage("Chat history cleared.")}
		cleared = true
		return true
	})
	if !cleared {
		return nil
	}
	m.post(broadcast.ChatCleared, broadcast.ChatClearedPayload{ChatID: chatID})
	m.refresh()
	return nil
}

func (m *Manager) systemMessage(text string) store.Message {
	return store.Message{
		ID:        store.NewID("sys"),
		SenderID:  store.SystemSenderID,
		Text:      text,
		Timestamp: m.now().UnixMilli(),
		Content:   store.SystemContent{},
		ReadBy:    []string{},
	}
}

func (m *Manager) appendSystemMessages(chatID string, texts ...string) {
	if len(texts) == 0 {
		return
	}
	m.store.UpdateChats(func(chats store.Chats) bool {
		for _, text := range texts {
			chats[chatID] = append(chats[chatID], m.systemMessage(text))
		}
		return true
	})
}
