package chat

import (
	"testing"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartWithoutSession(t *testing.T) {
	f := newFixture(t)

	snap := f.m.Snapshot()
	assert.Equal(t, session.Unauthenticated, snap.State)
	assert.False(t, snap.SignedIn)
	assert.Len(t, snap.Users, 4, "demo users are seeded")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.m.Login("alice", "wrong"))
	assert.False(t, f.m.Login("nobody", "password"))
	assert.Equal(t, session.Unauthenticated, f.m.State())
	assert.Empty(t, f.store.AuthenticatedUserID())

	require.True(t, f.m.Login("ALICE", "password"))
	assert.Equal(t, session.Authenticated, f.m.State())
	assert.Equal(t, alice, f.store.AuthenticatedUserID())
	assert.True(t, f.user(t, alice).LastSeen.IsOnline())
	assert.Equal(t, 1, f.rec.count(broadcast.UserStatusUpdate))
}

func TestRegisterExistingNameFails(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"Bob", "bob", "BOB"} {
		assert.False(t, f.m.Register(name, "secret", ""), name)
	}
	assert.Len(t, f.store.Users(), 4)
	assert.Empty(t, f.store.AuthenticatedUserID())
	assert.Zero(t, f.rec.count(broadcast.UserStatusUpdate))
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.m.Register("", "secret", ""))
	assert.False(t, f.m.Register("eve", "", ""))
	assert.False(t, f.m.Register("eve", "secret", "not a url"))
	assert.Len(t, f.store.Users(), 4)
}

func TestRegisterSignsIn(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.m.Register("Eve", "secret", ""))

	snap := f.m.Snapshot()
	require.True(t, snap.SignedIn)
	assert.Equal(t, "Eve", snap.Me.Name)
	assert.Equal(t, "https://picsum.photos/seed/eve/200", snap.Me.ProfilePicURL)
	assert.True(t, snap.Me.LastSeen.IsOnline())
	assert.Equal(t, session.Authenticated, snap.State)
	assert.Len(t, f.store.Users(), 5)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")
	f.m.SetActiveChat(bob)

	f.m.Logout()

	snap := f.m.Snapshot()
	assert.Equal(t, session.Unauthenticated, snap.State)
	assert.Nil(t, snap.ActiveChat)
	assert.Empty(t, f.store.AuthenticatedUserID())
	ls := f.user(t, alice).LastSeen
	assert.False(t, ls.IsOnline())
	assert.True(t, ls.Time().Equal(f.clock.Now()))
	assert.Equal(t, 2, f.rec.count(broadcast.UserStatusUpdate))
}

func TestSetVisible(t *testing.T) {
	f := newFixture(t)
	f.login(t, "Alice")

	f.m.SetVisible(false)
	assert.False(t, f.user(t, alice).LastSeen.IsOnline())

	f.m.SetVisible(true)
	assert.True(t, f.user(t, alice).LastSeen.IsOnline())
}

func TestSessionFollowsOtherTabs(t *testing.T) {
	f := newFixture(t)

	// Another tab signs in by writing the shared key and announcing it.
	f.store.SetAuthenticatedUserID(bob)
	f.rec.deliver(t, broadcast.UserStatusUpdate, broadcast.UserStatusUpdatePayload{UserID: bob})
	assert.Equal(t, session.Authenticated, f.m.State())
	assert.Equal(t, bob, f.m.Snapshot().Me.ID)

	f.store.SetAuthenticatedUserID("")
	f.rec.deliver(t, broadcast.UserStatusUpdate, broadcast.UserStatusUpdatePayload{UserID: bob})
	assert.Equal(t, session.Unauthenticated, f.m.State())
}

func TestOperationsRequireSignIn(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.m.SendMessage("hi", nil), ErrNotSignedIn)
	assert.ErrorIs(t, f.m.SendFriendRequest(bob), ErrNotSignedIn)
	assert.ErrorIs(t, f.m.PinChat(bob), ErrNotSignedIn)
	_, err := f.m.CreateGroup("g", "", nil)
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.ErrorIs(t, f.m.StartCall("voice"), ErrNotSignedIn)
	assert.Empty(t, f.rec.posted)
}
