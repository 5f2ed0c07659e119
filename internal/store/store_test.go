package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testStore(t *testing.T) (*Store, *Memory, *clock.Mock) {
	t.Helper()
	mem := NewMemory()
	clk := clock.NewMock()
	clk.Set(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	return New(mem, clk, zap.NewNop()), mem, clk
}

func TestMigrateAppliesOnFreshDB(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate, so a second run must be a no-op.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestDBGetSet(t *testing.T) {
	db := testDB(t)

	if _, ok, err := db.Get("users"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want not found", ok, err)
	}
	if err := db.Set("users", `[1]`); err != nil {
		t.Fatal(err)
	}
	if err := db.Set("users", `[2]`); err != nil {
		t.Fatal(err)
	}
	got, ok, err := db.Get("users")
	if err != nil || !ok {
		t.Fatalf("Get() ok=%v err=%v", ok, err)
	}
	if got != `[2]` {
		t.Errorf("Get() = %q, want last write [2]", got)
	}
}

// TestTwoStoresShareOneFile mirrors two tabs opening the same profile.
func TestTwoStoresShareOneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livechat.db")
	open := func() *DB {
		db, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.Migrate(); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = db.Close() })
		return db
	}
	a := New(open(), nil, nil)
	b := New(open(), nil, nil)

	a.SetAuthenticatedUserID("user-3")
	if got := b.AuthenticatedUserID(); got != "user-3" {
		t.Errorf("second store sees %q, want user-3", got)
	}
}

func TestUsersSeededOnFirstRead(t *testing.T) {
	s, mem, _ := testStore(t)

	users := s.Users()
	if len(users) != 4 {
		t.Fatalf("got %d users, want 4 seeded", len(users))
	}
	if _, ok, _ := mem.Get(KeyUsers); !ok {
		t.Error("seeded users were not persisted")
	}
	if users[0].Name != "Alice" || !users[0].LastSeen.IsOnline() {
		t.Errorf("first seed user = %+v, want online Alice", users[0])
	}
	if len(s.Groups()) != 1 {
		t.Error("expected the demo group to be seeded")
	}
}

func TestCorruptBlobFallsBackToDefault(t *testing.T) {
	s, mem, _ := testStore(t)
	_ = mem.Set(KeyChats, "{not json")
	_ = mem.Set(KeySearchHistory, "[]]")

	if chats := s.Chats(); len(chats) != 0 {
		t.Errorf("Chats() = %v, want empty", chats)
	}
	if h := s.SearchHistory(); len(h) != 0 {
		t.Errorf("SearchHistory() = %v, want empty", h)
	}
}

func TestStatusesExpireAfter24h(t *testing.T) {
	s, _, clk := testStore(t)
	now := clk.Now()

	s.SaveStatuses([]Status{
		{ID: "old", UserID: "user-2", Type: MediaImage, Timestamp: now.Add(-24 * time.Hour).UnixMilli()},
		{ID: "fresh", UserID: "user-2", Type: MediaImage, Timestamp: now.Add(-(23*time.Hour + 59*time.Minute)).UnixMilli()},
	})

	got := s.Statuses()
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("Statuses() = %+v, want only fresh", got)
	}

	clk.Add(time.Minute)
	if got := s.Statuses(); len(got) != 0 {
		t.Errorf("after another minute Statuses() = %+v, want none", got)
	}
}

func TestStatusesSeededWhenEmpty(t *testing.T) {
	s, _, _ := testStore(t)
	got := s.Statuses()
	if len(got) != 2 {
		t.Fatalf("got %d statuses, want 2 seeded", len(got))
	}
	for _, st := range got {
		if st.UserID != "user-2" {
			t.Errorf("seeded status owner = %q, want user-2", st.UserID)
		}
	}
}

func TestAuthenticateUser(t *testing.T) {
	s, _, _ := testStore(t)

	tests := []struct {
		name     string
		user     string
		password string
		wantOK   bool
	}{
		{"exact", "Alice", "password", true},
		{"case insensitive name", "aLiCe", "password", true},
		{"wrong password", "Alice", "Password", false},
		{"unknown user", "Mallory", "password", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := s.AuthenticateUser(tt.user, tt.password)
			if ok != tt.wantOK {
				t.Fatalf("AuthenticateUser(%q) ok = %v, want %v", tt.user, ok, tt.wantOK)
			}
			if ok && u.ID != "user-1" {
				t.Errorf("got user %q, want user-1", u.ID)
			}
		})
	}
}

func TestCreateUserDefaults(t *testing.T) {
	s, _, _ := testStore(t)

	u := s.CreateUser("Eve", "secret", "")
	if u.ProfilePicURL != "https://picsum.photos/seed/eve/200" {
		t.Errorf("ProfilePicURL = %q", u.ProfilePicURL)
	}
	if u.StatusMessage != DefaultStatusMessage {
		t.Errorf("StatusMessage = %q", u.StatusMessage)
	}
	if !u.LastSeen.IsOnline() {
		t.Error("new user should be online")
	}
	got, err := s.UserByID(u.ID)
	if err != nil {
		t.Fatalf("UserByID() error = %v", err)
	}
	if got.Name != "Eve" {
		t.Errorf("stored name = %q", got.Name)
	}
	if len(s.Users()) != 5 {
		t.Errorf("got %d users, want 5", len(s.Users()))
	}
}

func TestAuthenticatedUserID(t *testing.T) {
	s, mem, _ := testStore(t)

	if got := s.AuthenticatedUserID(); got != "" {
		t.Fatalf("initial id = %q, want empty", got)
	}
	s.SetAuthenticatedUserID("user-2")
	if got := s.AuthenticatedUserID(); got != "user-2" {
		t.Errorf("id = %q, want user-2", got)
	}
	s.SetAuthenticatedUserID("")
	raw, _, _ := mem.Get(KeyAuthUserID)
	if raw != "null" {
		t.Errorf("stored value = %q, want null", raw)
	}
}

func TestPushSearchTerm(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
		term  string
		want  []string
	}{
		{"empty", nil, "go", []string{"go"}},
		{"newest first", []string{"b", "a"}, "c", []string{"c", "b", "a"}},
		{"duplicate moves to front", []string{"b", "GO", "a"}, "go", []string{"go", "b", "a"}},
		{"capped at five", []string{"5", "4", "3", "2", "1"}, "6", []string{"6", "5", "4", "3", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PushSearchTerm(tt.terms, tt.term)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMessageWireShape(t *testing.T) {
	msg := Message{
		ID:       "m1",
		SenderID: "user-1",
		Text:     "photo.png",
		Content:  MediaContent{Kind: TypeImage, File: File{Name: "photo.png", URL: "data:image/png;base64,AA=="}},
		ReadBy:   []string{"user-1"},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatal(err)
	}
	if wire["type"] != "image" {
		t.Errorf("type = %v, want image", wire["type"])
	}
	if _, ok := wire["callInfo"]; ok {
		t.Error("callInfo should be omitted for media messages")
	}

	var back Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	mc, ok := back.Content.(MediaContent)
	if !ok || mc.File.Name != "photo.png" {
		t.Errorf("decoded content = %#v", back.Content)
	}

	if err := json.Unmarshal([]byte(`{"id":"x","type":"hologram"}`), &back); err == nil {
		t.Error("expected error for unknown message type")
	}
}

func TestLastSeenJSON(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"id":"u","lastSeen":"online"}`), &u); err != nil {
		t.Fatal(err)
	}
	if !u.LastSeen.IsOnline() {
		t.Error("want online")
	}
	if err := json.Unmarshal([]byte(`{"id":"u","lastSeen":1700000000000}`), &u); err != nil {
		t.Fatal(err)
	}
	if u.LastSeen.IsOnline() || u.LastSeen.Time().UnixMilli() != 1700000000000 {
		t.Errorf("lastSeen = %+v", u.LastSeen)
	}
	data, _ := json.Marshal(SeenAt(time.UnixMilli(42)))
	if string(data) != "42" {
		t.Errorf("marshal = %s, want 42", data)
	}
}
