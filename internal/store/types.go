package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SystemSenderID is the sender of synthetic messages (group changes,
// cleared history).
const SystemSenderID = "system"

const onlineSentinel = "online"

// LastSeen is a user's presence: either online, or the time they were last
// active. It is stored as the string "online" or a Unix millisecond number.
type LastSeen struct {
	online bool
	at     int64
}

// Online returns the online presence.
func Online() LastSeen { return LastSeen{online: true} }

// SeenAt returns an offline presence last active at t.
func SeenAt(t time.Time) LastSeen { return LastSeen{at: t.UnixMilli()} }

func (l LastSeen) IsOnline() bool { return l.online }

// Time returns the last-active time. Zero when online.
func (l LastSeen) Time() time.Time {
	if l.online {
		return time.Time{}
	}
	return time.UnixMilli(l.at)
}

func (l LastSeen) MarshalJSON() ([]byte, error) {
	if l.online {
		return json.Marshal(onlineSentinel)
	}
	return json.Marshal(l.at)
}

func (l *LastSeen) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != onlineSentinel {
			return fmt.Errorf("lastSeen: unexpected value %q", s)
		}
		*l = Online()
		return nil
	}
	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("lastSeen: %w", err)
	}
	*l = LastSeen{at: int64(ms)}
	return nil
}

// User is an account on this profile. Passwords are plaintext.
type User struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Password         string   `json:"password"`
	ProfilePicURL    string   `json:"profilePicUrl"`
	LastSeen         LastSeen `json:"lastSeen"`
	StatusMessage    string   `json:"statusMessage"`
	FriendIDs        []string `json:"friendIds"`
	FriendRequestIDs []string `json:"friendRequestIds"`
	BlockedUserIDs   []string `json:"blockedUserIds"`
	PinnedChatIDs    []string `json:"pinnedChatIds"`
}

// Group is a multi-member chat. Admins is a subset of Members.
type Group struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ProfilePicURL string   `json:"profilePicUrl"`
	Description   string   `json:"description"`
	Members       []string `json:"members"`
	Admins        []string `json:"admins"`
	CreatedBy     string   `json:"createdBy"`
}

// MediaKind is the media type of a status post.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Status is a 24-hour media post.
type Status struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      MediaKind `json:"type"`
	URL       string    `json:"url"`
	Timestamp int64     `json:"timestamp"`
	ViewedBy  []string  `json:"viewedBy"`
}

// Chats maps a chat id (see DirectChatID for 1:1 chats, the group id for
// groups) to its insertion-ordered message log.
type Chats map[string][]Message

// DirectChatID is the chat id shared by the two users of a 1:1 chat: both
// user ids, sorted and joined with ":". Either side derives the same id.
func DirectChatID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// SearchHistory maps a chat id to its recent search terms, newest first.
type SearchHistory map[string][]string
