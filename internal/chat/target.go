package chat

import (
	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
)

// Target is what a chat is held with: a Direct user or a GroupChat.
type Target interface {
	// ID is the user or group id, the value kept in pinnedChatIds.
	ID() string
	// ChatID is the key of the chat log as seen by me.
	ChatID(me string) string
	Name() string
	// Route tells other tabs who the chat concerns.
	Route() broadcast.Route
	isTarget()
}

// Direct is a 1:1 chat with User.
type Direct struct {
	User store.User
}

// GroupChat is a chat with every member of Group.
type GroupChat struct {
	Group store.Group
}

func (d Direct) ID() string              { return d.User.ID }
func (d Direct) ChatID(me string) string { return store.DirectChatID(me, d.User.ID) }
func (d Direct) Name() string            { return d.User.Name }
func (d Direct) Route() broadcast.Route  { return broadcast.Route{RecipientID: d.User.ID} }
func (Direct) isTarget()                 {}

func (g GroupChat) ID() string           { return g.Group.ID }
func (g GroupChat) ChatID(string) string { return g.Group.ID }
func (g GroupChat) Name() string         { return g.Group.Name }
func (g GroupChat) Route() broadcast.Route {
	return broadcast.Route{MemberIDs: g.Group.Members, IsGroup: true}
}
func (GroupChat) isTarget() {}

// activeTarget resolves the active chat id against the cache: a user
// first, then a group. Nil when nothing is selected or the id is gone.
func (m *Manager) activeTarget() Target {
	return resolveTarget(m.activeChatID, m.users, m.groups)
}

func resolveTarget(id string, users []store.User, groups []store.Group) Target {
	if id == "" {
		return nil
	}
	if i := store.UserIndex(users, id); i >= 0 {
		return Direct{User: users[i]}
	}
	if i := store.GroupIndex(groups, id); i >= 0 {
		return GroupChat{Group: groups[i]}
	}
	return nil
}
