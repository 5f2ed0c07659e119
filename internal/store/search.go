package store

import "strings"

// MaxSearchTerms bounds each chat's search history.
const MaxSearchTerms = 5

// SearchHistory returns the per-chat search history.
func (s *Store) SearchHistory() SearchHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchHistory()
}

func (s *Store) searchHistory() SearchHistory {
	h := get[SearchHistory](s, KeySearchHistory, nil)
	if h == nil {
		h = SearchHistory{}
	}
	return h
}

// SaveSearchHistory overwrites the search history.
func (s *Store) SaveSearchHistory(h SearchHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set(s, KeySearchHistory, h)
}

// UpdateSearchHistory reads the history, applies fn and writes it back
// when fn reports a change.
func (s *Store) UpdateSearchHistory(fn func(h SearchHistory) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.searchHistory()
	if fn(h) {
		set(s, KeySearchHistory, h)
	}
}

// PushSearchTerm puts term at the front of terms, removing any earlier
// case-insensitive duplicate and keeping at most MaxSearchTerms entries.
func PushSearchTerm(terms []string, term string) []string {
	out := make([]string, 0, MaxSearchTerms)
	out = append(out, term)
	for _, t := range terms {
		if len(out) == MaxSearchTerms {
			break
		}
		if !strings.EqualFold(t, term) {
			out = append(out, t)
		}
	}
	return out
}
