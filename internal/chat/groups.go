package chat

import (
	"fmt"
	"strings"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
)

// DefaultGroupDescription is given to groups created without one.
const DefaultGroupDescription = "A new group"

// GroupInfo is a partial update of a group's profile. Nil fields are kept.
type GroupInfo struct {
	Name          *string
	ProfilePicURL *string
	Description   *string
}

// CreateGroup creates a group administered by the signed-in user, who is
// always its first member.
func (m *Manager) CreateGroup(name, profilePicURL string, memberIDs []string) (store.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return store.Group{}, err
	}
	if err := validateStruct(groupInput{Name: name}); err != nil {
		return store.Group{}, err
	}
	if profilePicURL == "" {
		profilePicURL = "https://picsum.photos/seed/" + strings.ToLower(name) + "/200"
	}
	members := []string{me.ID}
	for _, id := range memberIDs {
		members, _ = appendUnique(members, id)
	}
	g := store.Group{
		ID:            store.NewID("group"),
		Name:          name,
		ProfilePicURL: profilePicURL,
		Description:   DefaultGroupDescription,
		Members:       members,
		Admins:        []string{me.ID},
		CreatedBy:     me.ID,
	}
	m.store.UpdateGroups(func(groups []store.Group) ([]store.Group, bool) {
		return append(groups, g), true
	})
	m.appendSystemMessages(g.ID, fmt.Sprintf("%s created the group \"%s\".", me.Name, name))
	m.post(broadcast.GroupUpdate, broadcast.GroupUpdatePayload{Group: &g})
	m.refresh()
	return g, nil
}

// UpdateGroupInfo changes the group's name, picture or description. Admins
// only.
func (m *Manager) UpdateGroupInfo(groupID string, info GroupInfo) error {
	return m.adminEdit(groupID, func(g *store.Group, me store.User) ([]string, error) {
		var notes []string
		if info.Name != nil && *info.Name != g.Name {
			if err := validateStruct(groupInput{Name: *info.Name}); err != nil {
				return nil, err
			}
			g.Name = *info.Name
			notes = append(notes, fmt.Sprintf("%s changed the group name to \"%s\".", me.Name, g.Name))
		}
		if info.ProfilePicURL != nil && *info.ProfilePicURL != g.ProfilePicURL {
			g.ProfilePicURL = *info.ProfilePicURL
			notes = append(notes, me.Name+" changed the group icon.")
		}
		if info.Description != nil && *info.Description != g.Description {
			g.Description = *info.Description
			notes = append(notes, me.Name+" changed the group description.")
		}
		return notes, nil
	})
}

// AddMemberToGroup adds userID to the group. Admins only; adding a member
// twice does nothing.
func (m *Manager) AddMemberToGroup(groupID, userID string) error {
	return m.adminEdit(groupID, func(g *store.Group, me store.User) ([]string, error) {
		if g.IsMember(userID) {
			return nil, nil
		}
		g.Members = append(g.Members, userID)
		return []string{fmt.Sprintf("%s added %s.", me.Name, m.userName(userID, "a new user"))}, nil
	})
}

// RemoveMemberFromGroup removes userID from the group's members and admins.
// Admins only; the creator cannot be removed.
func (m *Manager) RemoveMemberFromGroup(groupID, userID string) error {
	return m.adminEdit(groupID, func(g *store.Group, me store.User) ([]string, error) {
		if userID == g.CreatedBy {
			return nil, ErrCannotRemoveCreator
		}
		if !g.IsMember(userID) {
			return nil, ErrNotMember
		}
		g.Members = remove(g.Members, userID)
		g.Admins = remove(g.Admins, userID)
		return []string{fmt.Sprintf("%s removed %s.", me.Name, m.userName(userID, "a user"))}, nil
	})
}

// PromoteToAdmin makes a member an admin. Admins only.
func (m *Manager) PromoteToAdmin(groupID, userID string) error {
	return m.adminEdit(groupID, func(g *store.Group, _ store.User) ([]string, error) {
		if !g.IsMember(userID) {
			return nil, ErrNotMember
		}
		if g.IsAdmin(userID) {
			return nil, nil
		}
		g.Admins = append(g.Admins, userID)
		return []string{m.userName(userID, "A user") + " was promoted to admin."}, nil
	})
}

// DemoteAdmin takes admin rights away from userID. Admins only; the
// creator keeps theirs.
func (m *Manager) DemoteAdmin(groupID, userID string) error {
	return m.adminEdit(groupID, func(g *store.Group, _ store.User) ([]string, error) {
		if userID == g.CreatedBy {
			return nil, ErrCannotDemoteCreator
		}
		if !g.IsAdmin(userID) {
			return nil, nil
		}
		g.Admins = remove(g.Admins, userID)
		return []string{m.userName(userID, "An admin") + " is no longer an admin."}, nil
	})
}

// adminEdit runs fn on the group when the signed-in user administers it.
// fn returns the system messages describing its change; none means
// nothing changed and nothing is written or announced.
func (m *Manager) adminEdit(groupID string, fn func(g *store.Group, me store.User) ([]string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return err
	}
	var notes []string
	m.store.UpdateGroups(func(groups []store.Group) ([]store.Group, bool) {
		i := store.GroupIndex(groups, groupID)
		if i < 0 {
			err = ErrGroupNotFound
			return groups, false
		}
		if !groups[i].IsAdmin(me.ID) {
			err = ErrNotAdmin
			return groups, false
		}
		g := groups[i]
		g.Members = append([]string(nil), g.Members...)
		g.Admins = append([]string(nil), g.Admins...)
		notes, err = fn(&g, me)
		if err != nil || len(notes) == 0 {
			return groups, false
		}
		groups[i] = g
		return groups, true
	})
	if err != nil || len(notes) == 0 {
		return err
	}
	m.appendSystemMessages(groupID, notes...)
	m.post(broadcast.GroupUpdate, broadcast.GroupUpdatePayload{GroupID: groupID})
	m.refresh()
	return nil
}

// LeaveGroup removes the signed-in user from the group. The creator may
// only leave a populated group once someone else is an admin. The last
// member to leave deletes the group.
func (m *Manager) LeaveGroup(groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	me, err := m.requireUser()
	if err != nil {
		return err
	}
	var notes []string
	m.store.UpdateGroups(func(groups []store.Group) ([]store.Group, bool) {
		i := store.GroupIndex(groups, groupID)
		if i < 0 {
			err = ErrGroupNotFound
			return groups, false
		}
		g := groups[i]
		if !g.IsMember(me.ID) {
			err = ErrNotMember
			return groups, false
		}
		isCreator := g.CreatedBy == me.ID
		if isCreator && len(g.Members) > 1 && len(g.Admins) < 2 {
			err = ErrCreatorMustPromote
			return groups, false
		}
		g.Members = remove(append([]string(nil), g.Members...), me.ID)
		g.Admins = remove(append([]string(nil), g.Admins...), me.ID)
		notes = append(notes, me.Name+" left the group.")

		if len(g.Members) == 0 {
			return append(groups[:i], groups[i+1:]...), true
		}
		if len(g.Admins) == 0 {
			heir := g.Members[0]
			g.Admins = append(g.Admins, heir)
			notes = append(notes, m.userName(heir, "A user")+" is now an admin.")
		}
		groups[i] = g
		return groups, true
	})
	if err != nil {
		return err
	}
	m.appendSystemMessages(groupID, notes...)
	if m.activeChatID == groupID {
		m.stopTyping()
		m.activeChatID = ""
	}
	m.post(broadcast.GroupUpdate, broadcast.GroupUpdatePayload{GroupID: groupID})
	m.refresh()
	return nil
}
