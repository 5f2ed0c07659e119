package chat

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/matheus3301/livechat/internal/session"
	"github.com/matheus3301/livechat/internal/store"
)

// Snapshot is a copy of a tab's state at one instant. Collections are
// shared with the manager's cache, which is only ever replaced, never
// modified; callers must not modify them either.
type Snapshot struct {
	State    session.State
	Me       store.User
	SignedIn bool

	Users         []store.User
	Groups        []store.Group
	Chats         store.Chats
	Statuses      []store.Status
	SearchHistory store.SearchHistory

	ActiveChat       Target
	ReplyingTo       *store.Message
	Typing           map[string]string
	Notifications    []Notification
	Call             *CallState
	ViewingProfile   *store.User
	ActiveStatusUser *store.User

	Now time.Time
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		State:         m.session.Current(),
		Users:         m.users,
		Groups:        m.groups,
		Chats:         m.chats,
		Statuses:      m.statuses,
		SearchHistory: m.history,
		ActiveChat:    m.activeTarget(),
		Typing:        maps.Clone(m.typing),
		Notifications: slices.Clone(m.notifications),
		Now:           m.now(),
	}
	if m.me != nil {
		s.Me, s.SignedIn = *m.me, true
	}
	if m.replyingTo != nil {
		r := *m.replyingTo
		s.ReplyingTo = &r
	}
	if m.call != nil {
		c := m.call.CallState
		s.Call = &c
	}
	if u, ok := m.userByID(m.viewingProfileID); ok {
		s.ViewingProfile = &u
	}
	if u, ok := m.userByID(m.activeStatusUserID); ok {
		s.ActiveStatusUser = &u
	}
	return s
}

func (s Snapshot) blocked(id string) bool { return slices.Contains(s.Me.BlockedUserIDs, id) }

// User looks a user up by id.
func (s Snapshot) User(id string) (store.User, bool) {
	if i := store.UserIndex(s.Users, id); i >= 0 {
		return s.Users[i], true
	}
	return store.User{}, false
}

// Target resolves a user or group id to a chat target.
func (s Snapshot) Target(id string) Target {
	return resolveTarget(id, s.Users, s.Groups)
}

// ChatID is the key of t's chat log for the signed-in user.
func (s Snapshot) ChatID(t Target) string { return t.ChatID(s.Me.ID) }

// Messages returns t's chat log.
func (s Snapshot) Messages(t Target) []store.Message {
	if t == nil {
		return nil
	}
	return s.Chats[s.ChatID(t)]
}

// Friends lists the signed-in user's friends, pinned chats first.
func (s Snapshot) Friends() []store.User {
	out := s.filterUsers(func(u store.User) bool {
		return slices.Contains(s.Me.FriendIDs, u.ID) && !s.blocked(u.ID)
	})
	pinnedFirst(s.Me.PinnedChatIDs, out, func(u store.User) string { return u.ID })
	return out
}

// FriendRequests lists users with a pending request on the signed-in user.
func (s Snapshot) FriendRequests() []store.User {
	return s.filterUsers(func(u store.User) bool {
		return slices.Contains(s.Me.FriendRequestIDs, u.ID) && !s.blocked(u.ID)
	})
}

// PeopleYouMayKnow lists users who are neither friends, nor blocked, nor
// part of a pending request in either direction.
func (s Snapshot) PeopleYouMayKnow() []store.User {
	return s.filterUsers(func(u store.User) bool {
		return u.ID != s.Me.ID &&
			!slices.Contains(s.Me.FriendIDs, u.ID) &&
			!slices.Contains(s.Me.FriendRequestIDs, u.ID) &&
			!slices.Contains(u.FriendRequestIDs, s.Me.ID) &&
			!s.blocked(u.ID)
	})
}

// BlockedUsers lists the users the signed-in user blocked.
func (s Snapshot) BlockedUsers() []store.User {
	return s.filterUsers(func(u store.User) bool { return s.blocked(u.ID) })
}

// RequestSent reports whether the signed-in user has a pending request on
// userID.
func (s Snapshot) RequestSent(userID string) bool {
	u, ok := s.User(userID)
	return ok && slices.Contains(u.FriendRequestIDs, s.Me.ID)
}

// MyGroups lists the groups the signed-in user belongs to, pinned first.
func (s Snapshot) MyGroups() []store.Group {
	if !s.SignedIn {
		return nil
	}
	var out []store.Group
	for _, g := range s.Groups {
		if g.IsMember(s.Me.ID) {
			out = append(out, g)
		}
	}
	pinnedFirst(s.Me.PinnedChatIDs, out, func(g store.Group) string { return g.ID })
	return out
}

// UnreadCount counts the messages in t's chat the signed-in user has not
// read: from the other user in a 1:1 chat, from anyone else in a group.
func (s Snapshot) UnreadCount(t Target) int {
	if !s.SignedIn || t == nil {
		return 0
	}
	n := 0
	for _, msg := range s.Messages(t) {
		if msg.IsReadBy(s.Me.ID) {
			continue
		}
		switch t.(type) {
		case Direct:
			if msg.SenderID == t.ID() {
				n++
			}
		case GroupChat:
			if msg.SenderID != s.Me.ID {
				n++
			}
		}
	}
	return n
}

// StatusGroup is one user's live statuses, oldest first.
type StatusGroup struct {
	User     store.User
	Statuses []store.Status
	Unviewed int
}

// StatusFeed groups the live statuses of the signed-in user, then of each
// friend that posted any.
func (s Snapshot) StatusFeed() []StatusGroup {
	if !s.SignedIn {
		return nil
	}
	owners := append([]store.User{s.Me}, s.Friends()...)
	var feed []StatusGroup
	for _, u := range owners {
		g := StatusGroup{User: u}
		for _, st := range s.Statuses {
			if st.UserID != u.ID {
				continue
			}
			g.Statuses = append(g.Statuses, st)
			if !slices.Contains(st.ViewedBy, s.Me.ID) {
				g.Unviewed++
			}
		}
		if len(g.Statuses) == 0 && u.ID != s.Me.ID {
			continue
		}
		slices.SortStableFunc(g.Statuses, func(a, b store.Status) int {
			return cmp.Compare(a.Timestamp, b.Timestamp)
		})
		feed = append(feed, g)
	}
	return feed
}

func (s Snapshot) filterUsers(keep func(store.User) bool) []store.User {
	if !s.SignedIn {
		return nil
	}
	var out []store.User
	for _, u := range s.Users {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

func pinnedFirst[T any](pins []string, items []T, id func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		pa, pb := slices.Contains(pins, id(a)), slices.Contains(pins, id(b))
		switch {
		case pa && !pb:
			return -1
		case pb && !pa:
			return 1
		}
		return 0
	})
}

// FormatLastSeen renders a presence relative to now.
func FormatLastSeen(ls store.LastSeen, now time.Time) string {
	if ls.IsOnline() {
		return "online"
	}
	at := ls.Time()
	mins := int(now.Sub(at) / time.Minute)
	switch {
	case mins < 1:
		return "last seen just now"
	case mins < 60:
		if mins == 1 {
			return "last seen 1 minute ago"
		}
		return fmt.Sprintf("last seen %d minutes ago", mins)
	}
	at = at.In(now.Location())
	if sameDay(at, now) {
		return "last seen today at " + at.Format("15:04")
	}
	if sameDay(at, now.AddDate(0, 0, -1)) {
		return "last seen yesterday at " + at.Format("15:04")
	}
	return "last seen on " + at.Format("2006-01-02")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
