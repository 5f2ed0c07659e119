package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = time.Second

func TestComposerTypingDebounce(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	f.m.SetActiveChat(bob)

	f.m.ComposerChanged("h")
	f.m.ComposerChanged("he")
	f.m.ComposerChanged("hel")
	assert.Equal(t, 1, f.rec.count(broadcast.UserTypingStart))
	assert.Zero(t, f.rec.count(broadcast.UserTypingStop))

	f.clock.Add(time.Second)
	f.m.ComposerChanged("hell")
	f.clock.Add(time.Second)
	assert.Zero(t, f.rec.count(broadcast.UserTypingStop), "each keystroke restarts the idle timer")

	f.clock.Add(TypingIdle)
	require.Eventually(t, func() bool {
		return f.rec.count(broadcast.UserTypingStop) == 1
	}, waitFor, 5*time.Millisecond)

	env, _ := f.rec.last(broadcast.UserTypingStart)
	var p broadcast.TypingStartPayload
	require.NoError(t, env.Unmarshal(&p))
	assert.Equal(t, store.DirectChatID(alice, bob), p.ChatID)
	assert.Equal(t, bob, p.RecipientID)
	assert.Equal(t, "Alice", p.SenderName)
}

func TestComposerStopsOnClearAndSend(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	f.m.SetActiveChat(bob)

	f.m.ComposerChanged("draft")
	f.m.ComposerChanged("")
	assert.Equal(t, 1, f.rec.count(broadcast.UserTypingStop))

	f.m.ComposerChanged("hello")
	require.NoError(t, f.m.SendMessage("hello", nil))
	assert.Equal(t, 2, f.rec.count(broadcast.UserTypingStart))
	assert.Equal(t, 2, f.rec.count(broadcast.UserTypingStop))

	f.m.ComposerChanged("")
	assert.Equal(t, 2, f.rec.count(broadcast.UserTypingStop), "no stop without a start")
}

func TestTypingFlagExpires(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Bob")
	chatID := store.DirectChatID(alice, bob)
	start := broadcast.TypingStartPayload{ChatID: chatID, SenderID: alice, SenderName: "Alice", Route: broadcast.Route{RecipientID: bob}}

	f.rec.deliver(t, broadcast.UserTypingStart, start)
	assert.Equal(t, "Alice", f.m.TypingIn(chatID))

	f.clock.Add(2 * time.Second)
	f.rec.deliver(t, broadcast.UserTypingStart, start)
	f.clock.Add(2 * time.Second)
	assert.Equal(t, "Alice", f.m.TypingIn(chatID), "a repeated start re-arms the expiry")

	f.clock.Add(time.Second)
	require.Eventually(t, func() bool { return f.m.TypingIn(chatID) == "" }, waitFor, 5*time.Millisecond)
}

func TestTypingIgnoresOtherRecipientsAndStops(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Charlie")
	chatID := store.DirectChatID(alice, bob)

	f.rec.deliver(t, broadcast.UserTypingStart, broadcast.TypingStartPayload{ChatID: chatID, SenderID: alice, SenderName: "Alice", Route: broadcast.Route{RecipientID: bob}})
	assert.Empty(t, f.m.TypingIn(chatID))

	f.rec.deliver(t, broadcast.UserTypingStart, broadcast.TypingStartPayload{ChatID: "group-1", SenderID: alice, SenderName: "Alice", Route: broadcast.Route{IsGroup: true, MemberIDs: []string{alice, bob, charlie}}})
	assert.Equal(t, "Alice", f.m.TypingIn("group-1"))

	f.rec.deliver(t, broadcast.UserTypingStop, broadcast.TypingStopPayload{ChatID: "group-1", SenderID: alice, Route: broadcast.Route{IsGroup: true, MemberIDs: []string{alice, bob, charlie}}})
	assert.Empty(t, f.m.TypingIn("group-1"))
}

func TestNotificationsAutoDismiss(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Diana")

	f.rec.deliver(t, broadcast.FriendRequest, broadcast.FriendRequestPayload{RecipientID: diana, SenderID: charlie, SenderName: "Charlie"})
	f.rec.deliver(t, broadcast.FriendRequest, broadcast.FriendRequestPayload{RecipientID: bob, SenderID: charlie, SenderName: "Charlie"})

	notes := f.m.Snapshot().Notifications
	require.Len(t, notes, 1)
	assert.Equal(t, NotifyFriendRequest, notes[0].Type)
	assert.Equal(t, "Charlie sent you a friend request.", notes[0].Message)
	assert.Equal(t, charlie, notes[0].FromUserID)

	f.clock.Add(NotificationTimeout)
	require.Eventually(t, func() bool { return len(f.m.Snapshot().Notifications) == 0 }, waitFor, 5*time.Millisecond)
}

func TestDismissNotification(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Bob")
	f.rec.deliver(t, broadcast.NewMessage, broadcast.NewMessagePayload{ChatID: "group-1", SenderID: alice, SenderName: "Alice", Route: broadcast.Route{IsGroup: true, MemberIDs: []string{alice, bob}}})

	notes := f.m.Snapshot().Notifications
	require.Len(t, notes, 1)
	assert.Equal(t, "New message from Alice", notes[0].Message)
	assert.Equal(t, "group-1", notes[0].FromUserID)

	f.m.DismissNotification(notes[0].ID)
	assert.Empty(t, f.m.Snapshot().Notifications)
}

func TestDesktopNotificationOnlyWhenHidden(t *testing.T) {
	f := newFixture(t)
	var mu sync.Mutex
	var shown []string
	f.m.notifier = notifierFunc(func(title, body string) {
		mu.Lock()
		defer mu.Unlock()
		shown = append(shown, title+"|"+body)
	})
	f.login(t, "Bob")
	msg := broadcast.NewMessagePayload{
		ChatID:     store.DirectChatID(alice, bob),
		Message:    store.Message{ID: "m1", SenderID: alice, Text: "ping", Content: store.TextContent{}},
		Route:      broadcast.Route{RecipientID: bob},
		SenderID:   alice,
		SenderName: "Alice",
	}

	f.rec.deliver(t, broadcast.NewMessage, msg)
	f.m.SetVisible(false)
	f.rec.deliver(t, broadcast.NewMessage, msg)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"New Message|From: Alice\nping"}, shown)
	assert.Len(t, f.m.Snapshot().Notifications, 2)
}

func TestCallSimulation(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")

	f.m.SetActiveChat("group-1")
	assert.ErrorIs(t, f.m.StartCall(store.CallVoice), ErrCallNeedsDirectChat)

	f.m.SetActiveChat(bob)
	require.NoError(t, f.m.StartCall(store.CallVideo))
	assert.ErrorIs(t, f.m.StartCall(store.CallVideo), ErrCallInProgress)
	c, ok := f.m.Call()
	require.True(t, ok)
	assert.Equal(t, CallRinging, c.Status)

	f.clock.Add(CallConnectDelay)
	require.Eventually(t, func() bool {
		c, _ := f.m.Call()
		return c.Status == CallConnected
	}, waitFor, 5*time.Millisecond)

	state := func() (CallState, int) {
		f.m.mu.Lock()
		defer f.m.mu.Unlock()
		if f.m.call == nil {
			return CallState{}, -1
		}
		return f.m.call.CallState, f.m.call.qualityIdx
	}
	for i := 1; i <= 10; i++ {
		f.clock.Add(CallTick)
		want := time.Duration(i) * CallTick
		require.Eventually(t, func() bool {
			c, q := state()
			return c.Duration == want && q == i/5
		}, waitFor, 5*time.Millisecond)
	}
	c, _ = f.m.Call()
	assert.Equal(t, "fair", c.Quality)
	assert.Equal(t, "00:10", FormatCallDuration(c.Duration))

	require.NoError(t, f.m.EndCall())
	_, ok = f.m.Call()
	assert.False(t, ok)
	assert.ErrorIs(t, f.m.EndCall(), ErrNoActiveCall)

	log := f.store.Chats()[store.DirectChatID(alice, bob)]
	require.Len(t, log, 1)
	assert.Equal(t, "Call ended", log[0].Text)
	assert.Equal(t, store.CallContent{Call: store.CallInfo{Type: store.CallVideo, Ended: true}}, log[0].Content)
	assert.Equal(t, 1, f.rec.count(broadcast.NewMessage))
}

func TestStopCancelsTimers(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	f.m.SetActiveChat(bob)
	f.m.ComposerChanged("typing")
	require.NoError(t, f.m.StartCall(store.CallVoice))

	f.m.Stop()
	f.clock.Add(time.Minute)

	_, ok := f.m.Call()
	assert.False(t, ok)
	assert.Zero(t, f.rec.count(broadcast.UserTypingStop))
}
