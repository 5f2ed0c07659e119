package chat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheus3301/livechat/internal/apperr"
	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageToEmptyChat(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	f.m.SetActiveChat(bob)

	require.NoError(t, f.m.SendMessage("hello", nil))

	log := f.store.Chats()[store.DirectChatID(alice, bob)]
	require.Len(t, log, 1)
	msg := log[0]
	assert.Equal(t, alice, msg.SenderID)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, store.TypeText, msg.Type())
	assert.Equal(t, []string{alice}, msg.ReadBy)
	assert.True(t, strings.HasPrefix(msg.ID, "msg-"))

	env, ok := f.rec.last(broadcast.NewMessage)
	require.True(t, ok)
	var p broadcast.NewMessagePayload
	require.NoError(t, env.Unmarshal(&p))
	assert.Equal(t, store.DirectChatID(alice, bob), p.ChatID)
	assert.Equal(t, bob, p.RecipientID)
	assert.False(t, p.IsGroup)
	assert.Equal(t, "Alice", p.SenderName)
}

func TestBothSidesShareDirectChat(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	f.m.SetActiveChat(bob)
	require.NoError(t, f.m.SendMessage("hi bob", nil))

	f.login(t, "Bob")
	snap := f.m.Snapshot()
	msgs := snap.Messages(snap.Target(alice))
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi bob", msgs[0].Text)
	assert.Equal(t, 1, snap.UnreadCount(snap.Target(alice)))
}

func TestSendMessagePreconditions(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")

	assert.ErrorIs(t, f.m.SendMessage("hi", nil), ErrNoActiveChat)

	f.m.SetActiveChat(bob)
	assert.ErrorIs(t, f.m.SendMessage("   ", nil), ErrEmptyMessage)
	err := f.m.SendMessage("", &Attachment{Kind: store.TypeText, Name: "x", URL: "data:,"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
	assert.Empty(t, f.store.Chats())
	assert.Zero(t, f.rec.count(broadcast.NewMessage))
}

func TestSendAttachment(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	f.m.SetActiveChat(bob)

	att := &Attachment{Kind: store.TypeVoice, Name: "voice-note.webm", URL: "data:audio/webm;base64,AAAA"}
	require.NoError(t, f.m.SendMessage("", att))

	msg := f.store.Chats()[store.DirectChatID(alice, bob)][0]
	assert.Equal(t, store.TypeVoice, msg.Type())
	assert.Equal(t, store.MediaContent{Kind: store.TypeVoice, File: store.File{Name: "voice-note.webm", URL: att.URL}}, msg.Content)
}

func TestReplySnapshotIsStatic(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	f.m.SetActiveChat(bob)
	require.NoError(t, f.m.SendMessage("original", nil))
	orig := f.store.Chats()[store.DirectChatID(alice, bob)][0]

	f.m.SetReplyingTo(&orig)
	orig.Text = "edited afterwards"
	require.NoError(t, f.m.SendMessage("reply", nil))

	log := f.store.Chats()[store.DirectChatID(alice, bob)]
	require.Len(t, log, 2)
	require.NotNil(t, log[1].ReplyTo)
	assert.Equal(t, store.ReplySnapshot{MessageID: orig.ID, SenderName: "Alice", Text: "original"}, *log[1].ReplyTo)
	assert.Nil(t, f.m.Snapshot().ReplyingTo, "reply is cleared after sending")
}

func TestClearChatHistory(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	f.m.SetActiveChat(bob)
	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, f.m.SendMessage(text, nil))
	}
	chatID := store.DirectChatID(alice, bob)

	require.NoError(t, f.m.ClearChatHistory(chatID))

	log := f.store.Chats()[chatID]
	require.Len(t, log, 1)
	assert.Equal(t, store.TypeSystem, log[0].Type())
	assert.Equal(t, store.SystemSenderID, log[0].SenderID)
	assert.Equal(t, "Chat history cleared.", log[0].Text)
	assert.Equal(t, 1, f.rec.count(broadcast.ChatCleared))

	require.NoError(t, f.m.ClearChatHistory("no-such-chat"))
	assert.Equal(t, 1, f.rec.count(broadcast.ChatCleared))
	assert.NotContains(t, f.store.Chats(), "no-such-chat")
}

func TestMarkMessagesAsReadBroadcastsOnlyOnChange(t *testing.T) {
	f := newFixture(t)
	chatID := store.DirectChatID(alice, bob)
	f.store.AppendMessage(chatID, store.Message{ID: "m1", SenderID: alice, Text: "hi", Content: store.TextContent{}, ReadBy: []string{alice}})
	f.store.AppendMessage(chatID, store.Message{ID: "m2", SenderID: bob, Text: "mine", Content: store.TextContent{}, ReadBy: []string{bob}})
	f.login(t, "Bob")

	f.m.MarkMessagesAsRead(chatID)
	f.m.MarkMessagesAsRead(chatID)

	assert.Equal(t, 1, f.rec.count(broadcast.MessagesRead))
	log := f.store.Chats()[chatID]
	assert.ElementsMatch(t, []string{alice, bob}, log[0].ReadBy)
	assert.Equal(t, []string{bob}, log[1].ReadBy)
}

func TestSelectingChatMarksItRead(t *testing.T) {
	f := newFixture(t)
	chatID := store.DirectChatID(alice, bob)
	f.store.AppendMessage(chatID, store.Message{ID: "m1", SenderID: alice, Text: "hi", Content: store.TextContent{}, ReadBy: []string{alice}})
	f.login(t, "Bob")
	snap := f.m.Snapshot()
	require.Equal(t, 1, snap.UnreadCount(snap.Target(alice)))

	f.m.SetActiveChat(alice)

	snap = f.m.Snapshot()
	assert.Zero(t, snap.UnreadCount(snap.Target(alice)))
	assert.Equal(t, 1, f.rec.count(broadcast.MessagesRead))

	// A message arriving in the open chat is read on refresh.
	f.store.AppendMessage(chatID, store.Message{ID: "m2", SenderID: alice, Text: "again", Content: store.TextContent{}, ReadBy: []string{alice}})
	f.rec.deliver(t, broadcast.NewMessage, broadcast.NewMessagePayload{ChatID: chatID, Route: broadcast.Route{RecipientID: bob}, SenderID: alice, SenderName: "Alice"})
	assert.Equal(t, 2, f.rec.count(broadcast.MessagesRead))
	snap = f.m.Snapshot()
	assert.Zero(t, snap.UnreadCount(snap.Target(alice)), "read without waiting for MESSAGES_READ to come back")
	log := snap.Chats[chatID]
	assert.Contains(t, log[len(log)-1].ReadBy, bob)
	assert.Empty(t, snap.Notifications, "no notification for the open chat")
}

func TestSendStatusReply(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	st := f.store.Statuses()[0]

	require.NoError(t, f.m.SendStatusReply(st.ID, "nice!"))

	log := f.store.Chats()[store.DirectChatID(alice, st.UserID)]
	require.Len(t, log, 1)
	assert.Equal(t, store.TypeStatusReply, log[0].Type())
	assert.Equal(t, store.StatusReplyContent{Status: store.StatusSnapshot{
		StatusURL:       st.URL,
		StatusType:      st.Type,
		StatusOwnerName: "Bob",
	}}, log[0].Content)

	assert.ErrorIs(t, f.m.SendStatusReply("missing", "x"), ErrStatusNotFound)
}

func TestSearchHistory(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	chatID := store.DirectChatID(alice, bob)

	for _, term := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		f.m.AddSearchTerm(chatID, term)
	}
	assert.Equal(t, []string{"g", "f", "e", "d", "c"}, f.m.Snapshot().SearchHistoryFor(chatID))

	f.m.AddSearchTerm(chatID, "E")
	assert.Equal(t, []string{"E", "g", "f", "d", "c"}, f.m.Snapshot().SearchHistoryFor(chatID))

	f.m.AddSearchTerm(chatID, "   ")
	assert.Len(t, f.store.SearchHistory()[chatID], 5)

	f.m.ClearSearchHistory(chatID)
	assert.Empty(t, f.m.Snapshot().SearchHistoryFor(chatID))
}

func TestSearchMessages(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	f.m.SetActiveChat(bob)
	for _, text := range []string{"Lunch today?", "sure", "LUNCH at noon"} {
		require.NoError(t, f.m.SendMessage(text, nil))
	}

	got := f.m.Snapshot().SearchMessages(store.DirectChatID(alice, bob), "lunch")
	require.Len(t, got, 2)
	assert.Equal(t, "Lunch today?", got[0].Text)
	assert.Equal(t, "LUNCH at noon", got[1].Text)
}

func TestAttachFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	att, err := AttachFile(path)
	require.NoError(t, err)
	assert.Equal(t, store.TypeImage, att.Kind)
	assert.Equal(t, "photo.png", att.Name)
	assert.True(t, strings.HasPrefix(att.URL, "data:image/png;base64,"))

	_, err = AttachFile(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestMediaKinds(t *testing.T) {
	assert.Equal(t, store.MediaVideo, MediaKindOf("video/mp4"))
	assert.Equal(t, store.MediaImage, MediaKindOf("image/jpeg"))
	assert.Equal(t, store.TypeVoice, MessageTypeOf("audio/webm"))
	assert.Equal(t, store.TypeFile, MessageTypeOf("application/pdf"))
}
