package store

// Statuses returns the statuses posted within the last 24 hours. The demo
// statuses are seeded when nothing has been stored yet.
func (s *Store) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses()
}

func (s *Store) statuses() []Status {
	all := get[[]Status](s, KeyStatuses, nil)
	if len(all) == 0 {
		all = seedStatuses(s.clock.Now())
		set(s, KeyStatuses, all)
	}
	now := s.clock.Now().UnixMilli()
	live := make([]Status, 0, len(all))
	for _, st := range all {
		if now-st.Timestamp < StatusTTL.Milliseconds() {
			live = append(live, st)
		}
	}
	return live
}

// SaveStatuses overwrites the statuses collection.
func (s *Store) SaveStatuses(statuses []Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set(s, KeyStatuses, statuses)
}

// UpdateStatuses applies fn to the live statuses and writes the result
// back when fn reports a change. Expired statuses are dropped by the write.
func (s *Store) UpdateStatuses(fn func(statuses []Status) ([]Status, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next, changed := fn(s.statuses()); changed {
		set(s, KeyStatuses, next)
	}
}
