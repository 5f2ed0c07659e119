package store

import (
	"errors"
	"slices"
	"strings"
)

var ErrUserNotFound = errors.New("user not found")

// DefaultStatusMessage is given to newly registered users.
const DefaultStatusMessage = "Hi! I am new to Live Chat."

// Users returns every user, seeding the demo users on first use.
func (s *Store) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users()
}

func (s *Store) users() []User {
	users := get[[]User](s, KeyUsers, nil)
	if len(users) == 0 {
		users = seedUsers(s.clock.Now())
		set(s, KeyUsers, users)
	}
	return users
}

// SaveUsers overwrites the users collection.
func (s *Store) SaveUsers(users []User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set(s, KeyUsers, users)
}

// UpdateUsers reads the users collection, applies fn and writes the result
// back when fn reports a change.
func (s *Store) UpdateUsers(fn func(users []User) ([]User, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next, changed := fn(s.users()); changed {
		set(s, KeyUsers, next)
	}
}

// UserByID looks a user up by id.
func (s *Store) UserByID(id string) (User, error) {
	users := s.Users()
	if i := UserIndex(users, id); i >= 0 {
		return users[i], nil
	}
	return User{}, ErrUserNotFound
}

// FindUserByName returns the user whose name matches case-insensitively.
func (s *Store) FindUserByName(name string) (User, bool) {
	for _, u := range s.Users() {
		if strings.EqualFold(u.Name, name) {
			return u, true
		}
	}
	return User{}, false
}

// AuthenticateUser returns the user iff name matches and password equals
// the stored password.
func (s *Store) AuthenticateUser(name, password string) (User, bool) {
	u, ok := s.FindUserByName(name)
	if !ok || u.Password != password {
		return User{}, false
	}
	return u, true
}

// CreateUser appends a new online user. It does not check name
// uniqueness; callers do.
func (s *Store) CreateUser(name, password, profilePicURL string) User {
	if profilePicURL == "" {
		profilePicURL = "https://picsum.photos/seed/" + strings.ToLower(name) + "/200"
	}
	u := User{
		ID:               NewID("user"),
		Name:             name,
		Password:         password,
		ProfilePicURL:    profilePicURL,
		LastSeen:         Online(),
		StatusMessage:    DefaultStatusMessage,
		FriendIDs:        []string{},
		FriendRequestIDs: []string{},
		BlockedUserIDs:   []string{},
		PinnedChatIDs:    []string{},
	}
	s.UpdateUsers(func(users []User) ([]User, bool) {
		return append(users, u), true
	})
	return u
}

// UserIndex returns the position of id in users, or -1.
func UserIndex(users []User, id string) int {
	return slices.IndexFunc(users, func(u User) bool { return u.ID == id })
}
