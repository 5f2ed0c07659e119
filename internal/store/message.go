package store

import (
	"encoding/json"
	"fmt"
	"slices"
)

// MessageType is the wire discriminator of a message.
type MessageType string

const (
	TypeText        MessageType = "text"
	TypeImage       MessageType = "image"
	TypeFile        MessageType = "file"
	TypeSystem      MessageType = "system"
	TypeStatusReply MessageType = "status_reply"
	TypeVoice       MessageType = "voice"
	TypeSticker     MessageType = "sticker"
	TypeCallInfo    MessageType = "call_info"
)

// IsMedia reports whether t carries a file attachment.
func (t MessageType) IsMedia() bool {
	switch t {
	case TypeImage, TypeFile, TypeVoice, TypeSticker:
		return true
	}
	return false
}

// File is an attachment. URL is normally a data URL.
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ReplySnapshot is a static copy of the message being replied to.
type ReplySnapshot struct {
	MessageID  string `json:"messageId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
}

// CallKind is the kind of a simulated call.
type CallKind string

const (
	CallVoice CallKind = "voice"
	CallVideo CallKind = "video"
)

type CallInfo struct {
	Type  CallKind `json:"type"`
	Ended bool     `json:"ended"`
}

// Content is the type-specific part of a message. Exactly one of the
// concrete types below.
type Content interface {
	Type() MessageType
	isContent()
}

type TextContent struct{}

// MediaContent covers image, file, voice and sticker messages.
type MediaContent struct {
	Kind MessageType
	File File
}

type SystemContent struct{}

// StatusSnapshot is the part of a status post kept with a reply to it.
type StatusSnapshot struct {
	StatusURL       string    `json:"statusUrl"`
	StatusType      MediaKind `json:"statusType"`
	StatusOwnerName string    `json:"statusOwnerName"`
}

// StatusReplyContent is a reply to a status post.
type StatusReplyContent struct {
	Status StatusSnapshot
}

type CallContent struct {
	Call CallInfo
}

func (TextContent) Type() MessageType        { return TypeText }
func (c MediaContent) Type() MessageType     { return c.Kind }
func (SystemContent) Type() MessageType      { return TypeSystem }
func (StatusReplyContent) Type() MessageType { return TypeStatusReply }
func (CallContent) Type() MessageType        { return TypeCallInfo }

func (TextContent) isContent()        {}
func (MediaContent) isContent()       {}
func (SystemContent) isContent()      {}
func (StatusReplyContent) isContent() {}
func (CallContent) isContent()        {}

// Message is one entry of a chat log. Only ReadBy changes after creation.
type Message struct {
	ID        string
	SenderID  string
	Text      string
	Timestamp int64
	Content   Content
	ReplyTo   *ReplySnapshot
	ReadBy    []string
}

// Type returns the message discriminator; a nil Content is plain text.
func (m Message) Type() MessageType {
	if m.Content == nil {
		return TypeText
	}
	return m.Content.Type()
}

// IsReadBy reports whether userID has seen the message.
func (m Message) IsReadBy(userID string) bool {
	return slices.Contains(m.ReadBy, userID)
}

type messageJSON struct {
	ID            string          `json:"id"`
	SenderID      string          `json:"senderId"`
	Text          string          `json:"text"`
	Timestamp     int64           `json:"timestamp"`
	Type          MessageType     `json:"type"`
	File          *File           `json:"file,omitempty"`
	ReplyTo       *ReplySnapshot  `json:"replyTo,omitempty"`
	ReplyToStatus *StatusSnapshot `json:"replyToStatus,omitempty"`
	ReadBy        []string        `json:"readBy"`
	CallInfo      *CallInfo       `json:"callInfo,omitempty"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		Timestamp: m.Timestamp,
		Type:      m.Type(),
		ReplyTo:   m.ReplyTo,
		ReadBy:    m.ReadBy,
	}
	if out.ReadBy == nil {
		out.ReadBy = []string{}
	}
	switch c := m.Content.(type) {
	case MediaContent:
		f := c.File
		out.File = &f
	case StatusReplyContent:
		s := c.Status
		out.ReplyToStatus = &s
	case CallContent:
		ci := c.Call
		out.CallInfo = &ci
	}
	return json.Marshal(out)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var in messageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = Message{
		ID:        in.ID,
		SenderID:  in.SenderID,
		Text:      in.Text,
		Timestamp: in.Timestamp,
		ReplyTo:   in.ReplyTo,
		ReadBy:    in.ReadBy,
	}
	switch {
	case in.Type == TypeText || in.Type == "":
		m.Content = TextContent{}
	case in.Type.IsMedia():
		mc := MediaContent{Kind: in.Type}
		if in.File != nil {
			mc.File = *in.File
		}
		m.Content = mc
	case in.Type == TypeSystem:
		m.Content = SystemContent{}
	case in.Type == TypeStatusReply:
		var sc StatusReplyContent
		if in.ReplyToStatus != nil {
			sc.Status = *in.ReplyToStatus
		}
		m.Content = sc
	case in.Type == TypeCallInfo:
		var cc CallContent
		if in.CallInfo != nil {
			cc.Call = *in.CallInfo
		}
		m.Content = cc
	default:
		return fmt.Errorf("message %s: unknown type %q", in.ID, in.Type)
	}
	return nil
}
