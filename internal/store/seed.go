package store

import (
	"fmt"
	"time"
)

// Demo dataset written the first time a collection is found empty.

func seedUsers(now time.Time) []User {
	return []User{
		{ID: "user-1", Name: "Alice", Password: "password", ProfilePicURL: "https://picsum.photos/seed/alice/200", LastSeen: Online(), StatusMessage: "Hey there! I am using Live Chat.", FriendIDs: []string{"user-2"}, FriendRequestIDs: []string{}, BlockedUserIDs: []string{}, PinnedChatIDs: []string{}},
		{ID: "user-2", Name: "Bob", Password: "password", ProfilePicURL: "https://picsum.photos/seed/bob/200", LastSeen: SeenAt(now.Add(-5 * time.Minute)), StatusMessage: "At the gym.", FriendIDs: []string{"user-1"}, FriendRequestIDs: []string{}, BlockedUserIDs: []string{}, PinnedChatIDs: []string{}},
		{ID: "user-3", Name: "Charlie", Password: "password", ProfilePicURL: "https://picsum.photos/seed/charlie/200", LastSeen: Online(), StatusMessage: "Coding away...", FriendIDs: []string{}, FriendRequestIDs: []string{}, BlockedUserIDs: []string{}, PinnedChatIDs: []string{}},
		{ID: "user-4", Name: "Diana", Password: "password", ProfilePicURL: "https://picsum.photos/seed/diana/200", LastSeen: SeenAt(now.Add(-24 * time.Hour)), StatusMessage: "On vacation!", FriendIDs: []string{}, FriendRequestIDs: []string{}, BlockedUserIDs: []string{}, PinnedChatIDs: []string{}},
	}
}

func seedGroups() []Group {
	return []Group{{
		ID:            "group-1",
		Name:          "Weekend Coders",
		ProfilePicURL: "https://picsum.photos/seed/coders/200",
		Description:   "A group for passionate developers to discuss projects, share ideas, and collaborate on weekend hacks. All skill levels welcome!",
		Members:       []string{"user-1", "user-2", "user-3"},
		Admins:        []string{"user-1"},
		CreatedBy:     "user-1",
	}}
}

func seedStatuses(now time.Time) []Status {
	return []Status{
		{
			ID:        fmt.Sprintf("status-%d", now.Add(-10*time.Second).UnixMilli()),
			UserID:    "user-2",
			Type:      MediaImage,
			URL:       "https://picsum.photos/seed/bob-status/1080/1920",
			Timestamp: now.Add(-30 * time.Minute).UnixMilli(),
			ViewedBy:  []string{},
		},
		{
			ID:        fmt.Sprintf("status-%d", now.Add(-20*time.Second).UnixMilli()),
			UserID:    "user-2",
			Type:      MediaImage,
			URL:       "https://picsum.photos/seed/bob-status-2/1080/1920",
			Timestamp: now.Add(-35 * time.Minute).UnixMilli(),
			ViewedBy:  []string{},
		},
	}
}
