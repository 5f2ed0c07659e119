package broadcast

import (
	"slices"

	"github.com/matheus3301/livechat/internal/store"
)

// EventType names a state change announced to every tab.
type EventType string

const (
	UserStatusUpdate  EventType = "USER_STATUS_UPDATE"
	FriendRequest     EventType = "FRIEND_REQUEST"
	FriendUpdate      EventType = "FRIEND_UPDATE"
	NewMessage        EventType = "NEW_MESSAGE"
	MessagesRead      EventType = "MESSAGES_READ"
	StatusUpdate      EventType = "STATUS_UPDATE"
	ChatCleared       EventType = "CHAT_CLEARED"
	GroupUpdate       EventType = "GROUP_UPDATE"
	UserProfileUpdate EventType = "USER_PROFILE_UPDATE"
	UserTypingStart   EventType = "USER_TYPING_START"
	UserTypingStop    EventType = "USER_TYPING_STOP"
)

// Route tells receivers who a message or typing event concerns without a
// store lookup: the recipient of a 1:1 chat, or the members of a group.
// Both keys are always on the wire; the unused one is empty or null.
type Route struct {
	RecipientID string   `json:"recipientId"`
	MemberIDs   []string `json:"memberIds"`
	IsGroup     bool     `json:"isGroup"`
}

// Concerns reports whether userID should react to an event sent by
// senderID over this route.
func (r Route) Concerns(userID, senderID string) bool {
	if userID == "" || userID == senderID {
		return false
	}
	if r.IsGroup {
		return slices.Contains(r.MemberIDs, userID)
	}
	return r.RecipientID == userID
}

type UserStatusUpdatePayload struct {
	UserID string         `json:"userId"`
	Status store.LastSeen `json:"status"`
}

type FriendRequestPayload struct {
	RecipientID string `json:"recipientId"`
	SenderID    string `json:"senderId"`
	SenderName  string `json:"senderName"`
}

type FriendUpdatePayload struct {
	UserID1 string `json:"userId1"`
	UserID2 string `json:"userId2"`
}

type NewMessagePayload struct {
	ChatID  string        `json:"chatId"`
	Message store.Message `json:"message"`
	Route
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
}

type MessagesReadPayload struct {
	ChatID   string `json:"chatId"`
	ReaderID string `json:"readerId"`
}

type StatusUpdatePayload struct {
	UserID string `json:"userId"`
}

type ChatClearedPayload struct {
	ChatID string `json:"chatId"`
}

// GroupUpdatePayload carries only the group id, except at creation when the
// whole group is sent.
type GroupUpdatePayload struct {
	GroupID string       `json:"groupId,omitempty"`
	Group   *store.Group `json:"group,omitempty"`
}

type UserProfileUpdatePayload struct {
	UserID string `json:"userId"`
}

type TypingStartPayload struct {
	ChatID     string `json:"chatId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Route
}

type TypingStopPayload struct {
	ChatID   string `json:"chatId"`
	SenderID string `json:"senderId"`
	Route
}
