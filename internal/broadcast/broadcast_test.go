package broadcast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/matheus3301/livechat/internal/bus"
	"github.com/matheus3301/livechat/internal/store"
	"go.uber.org/zap"
)

func TestEnvelopeWireFormat(t *testing.T) {
	frame, err := Encode(MessagesRead, MessagesReadPayload{ChatID: "user-2", ReaderID: "user-1"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"MESSAGES_READ","payload":{"chatId":"user-2","readerId":"user-1"}}`
	if string(frame) != want {
		t.Errorf("frame = %s\nwant    %s", frame, want)
	}

	env, err := Parse(frame)
	if err != nil {
		t.Fatal(err)
	}
	var p MessagesReadPayload
	if err := env.Unmarshal(&p); err != nil {
		t.Fatal(err)
	}
	if p.ReaderID != "user-1" {
		t.Errorf("ReaderID = %q", p.ReaderID)
	}
}

func TestParseRejectsMissingType(t *testing.T) {
	if _, err := Parse([]byte(`{"payload":{}}`)); err == nil {
		t.Error("expected error for frame without type")
	}
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Error("expected error for non-JSON frame")
	}
}

func TestNewMessagePayloadFlattensRoute(t *testing.T) {
	p := NewMessagePayload{
		ChatID:     "group-1",
		Message:    store.Message{ID: "m1", SenderID: "user-1", Text: "hi", Content: store.TextContent{}},
		Route:      Route{MemberIDs: []string{"user-1", "user-2"}, IsGroup: true},
		SenderID:   "user-1",
		SenderName: "Alice",
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"chatId", "message", "memberIds", "isGroup", "senderId", "senderName"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("payload missing %q: %s", key, data)
		}
	}
}

func TestRouteKeysAlwaysOnTheWire(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		absent  string
		want    any
	}{
		{"group message", NewMessagePayload{ChatID: "group-1", Route: Route{MemberIDs: []string{"user-1"}, IsGroup: true}}, "recipientId", ""},
		{"direct message", NewMessagePayload{ChatID: "user-1_user-2", Route: Route{RecipientID: "user-2"}}, "memberIds", nil},
		{"direct typing", TypingStopPayload{ChatID: "user-1_user-2", Route: Route{RecipientID: "user-2"}}, "memberIds", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.payload)
			if err != nil {
				t.Fatal(err)
			}
			var wire map[string]any
			if err := json.Unmarshal(data, &wire); err != nil {
				t.Fatal(err)
			}
			got, ok := wire[tt.absent]
			if !ok {
				t.Fatalf("payload missing %q: %s", tt.absent, data)
			}
			if got != tt.want {
				t.Errorf("%s = %v, want %v", tt.absent, got, tt.want)
			}
		})
	}
}

func TestRouteConcerns(t *testing.T) {
	direct := Route{RecipientID: "user-2"}
	group := Route{MemberIDs: []string{"user-1", "user-2", "user-3"}, IsGroup: true}

	tests := []struct {
		name   string
		route  Route
		user   string
		sender string
		want   bool
	}{
		{"direct recipient", direct, "user-2", "user-1", true},
		{"direct bystander", direct, "user-3", "user-1", false},
		{"group member", group, "user-3", "user-1", true},
		{"group sender", group, "user-1", "user-1", false},
		{"group outsider", group, "user-4", "user-1", false},
		{"signed out", group, "", "user-1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.route.Concerns(tt.user, tt.sender); got != tt.want {
				t.Errorf("Concerns(%q, %q) = %v, want %v", tt.user, tt.sender, got, tt.want)
			}
		})
	}
}

func TestLocalDeliversToEveryTabIncludingSelf(t *testing.T) {
	b := bus.New()
	tab1 := NewLocal(b, zap.NewNop())
	tab2 := NewLocal(b, zap.NewNop())

	got1 := make(chan Envelope, 1)
	got2 := make(chan Envelope, 1)
	defer tab1.Subscribe(func(e Envelope) { got1 <- e })()
	defer tab2.Subscribe(func(e Envelope) { got2 <- e })()

	tab1.Post(ChatCleared, ChatClearedPayload{ChatID: "user-2"})

	for name, ch := range map[string]chan Envelope{"poster": got1, "other": got2} {
		select {
		case env := <-ch:
			if env.Type != ChatCleared {
				t.Errorf("%s got %s, want CHAT_CLEARED", name, env.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s tab did not receive the event", name)
		}
	}
}

func TestLocalUnsubscribeStopsDelivery(t *testing.T) {
	b := bus.New()
	ch := NewLocal(b, zap.NewNop())

	got := make(chan Envelope, 1)
	unsub := ch.Subscribe(func(e Envelope) { got <- e })
	unsub()

	ch.Post(StatusUpdate, StatusUpdatePayload{UserID: "user-2"})
	select {
	case env := <-got:
		t.Errorf("received %s after unsubscribe", env.Type)
	case <-time.After(50 * time.Millisecond):
	}
}
