package store

import "slices"

// Groups returns every group, seeding the demo group on first use.
func (s *Store) Groups() []Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups()
}

func (s *Store) groups() []Group {
	groups := get[[]Group](s, KeyGroups, nil)
	if len(groups) == 0 {
		groups = seedGroups()
		set(s, KeyGroups, groups)
	}
	return groups
}

// SaveGroups overwrites the groups collection.
func (s *Store) SaveGroups(groups []Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set(s, KeyGroups, groups)
}

// UpdateGroups reads the groups collection, applies fn and writes the
// result back when fn reports a change.
func (s *Store) UpdateGroups(fn func(groups []Group) ([]Group, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next, changed := fn(s.groups()); changed {
		set(s, KeyGroups, next)
	}
}

// GroupIndex returns the position of id in groups, or -1.
func GroupIndex(groups []Group, id string) int {
	return slices.IndexFunc(groups, func(g Group) bool { return g.ID == id })
}

// IsMember reports whether userID belongs to g.
func (g Group) IsMember(userID string) bool { return slices.Contains(g.Members, userID) }

// IsAdmin reports whether userID administers g.
func (g Group) IsAdmin(userID string) bool { return slices.Contains(g.Admins, userID) }
