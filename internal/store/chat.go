package store

// Chats returns every chat log. Missing or unreadable data yields an empty map.
func (s *Store) Chats() Chats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chats()
}

func (s *Store) chats() Chats {
	chats := get[Chats](s, KeyChats, nil)
	if chats == nil {
		chats = Chats{}
	}
	return chats
}

// SaveChats overwrites the chats collection.
func (s *Store) SaveChats(chats Chats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set(s, KeyChats, chats)
}

// UpdateChats reads all chats, applies fn and writes them back when fn
// reports a change. fn may mutate the map in place.
func (s *Store) UpdateChats(fn func(chats Chats) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chats := s.chats()
	if fn(chats) {
		set(s, KeyChats, chats)
	}
}

// AppendMessage adds msg to the end of chatID's log, creating the log if
// needed.
func (s *Store) AppendMessage(chatID string, msg Message) {
	s.UpdateChats(func(chats Chats) bool {
		chats[chatID] = append(chats[chatID], msg)
		return true
	})
}
