package chat

import (
	"strings"

	"github.com/matheus3301/livechat/internal/store"
)

// AddSearchTerm records term at the front of chatID's search history.
func (m *Manager) AddSearchTerm(chatID, term string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	m.store.UpdateSearchHistory(func(h store.SearchHistory) bool {
		h[chatID] = store.PushSearchTerm(h[chatID], term)
		return true
	})
	m.history = m.store.SearchHistory()
	m.signal()
}

// ClearSearchHistory forgets chatID's search history.
func (m *Manager) ClearSearchHistory(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.UpdateSearchHistory(func(h store.SearchHistory) bool {
		if _, ok := h[chatID]; !ok {
			return false
		}
		delete(h, chatID)
		return true
	})
	m.history = m.store.SearchHistory()
	m.signal()
}

// SearchUsers returns the users whose name contains query, ignoring case,
// other than the signed-in user and the users they blocked.
func (s Snapshot) SearchUsers(query string) []store.User {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	var out []store.User
	for _, u := range s.Users {
		if u.ID == s.Me.ID || s.blocked(u.ID) {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), q) {
			out = append(out, u)
		}
	}
	return out
}

// SearchMessages returns the messages of chatID whose text contains query,
// ignoring case, oldest first.
func (s Snapshot) SearchMessages(chatID, query string) []store.Message {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []store.Message
	for _, msg := range s.Chats[chatID] {
		if strings.Contains(strings.ToLower(msg.Text), q) {
			out = append(out, msg)
		}
	}
	return out
}

// SearchHistoryFor returns chatID's recent search terms, newest first.
func (s Snapshot) SearchHistoryFor(chatID string) []string {
	return s.SearchHistory[chatID]
}
