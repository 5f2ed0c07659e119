package api

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/bus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// startRelay serves a relay on a temp socket and returns its bus and
// socket path.
func startRelay(t *testing.T) (*bus.Bus, string) {
	t.Helper()
	// Short path to stay under the 104-char Unix socket limit on macOS.
	tmpDir, err := os.MkdirTemp("/tmp", "livechat-relay-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })
	socketPath := filepath.Join(tmpDir, "r.sock")

	b := bus.New()
	srv := grpc.NewServer()
	RegisterRelayServer(srv, NewRelayService(b, zap.NewNop()))

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = srv.Serve(listener) }()
	t.Cleanup(srv.Stop)
	return b, socketPath
}

func dialRelay(t *testing.T, socketPath string) *RelayClient {
	t.Helper()
	conn, err := Dial(socketPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewRelayClient(conn)
}

func waitSubscribers(t *testing.T, b *bus.Bus, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("relay has %d subscribers, want %d", b.Len(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRelayPing(t *testing.T) {
	_, socketPath := startRelay(t)
	client := dialRelay(t, socketPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestRelayRejectsMalformedFrame(t *testing.T) {
	_, socketPath := startRelay(t)
	client := dialRelay(t, socketPath)

	err := client.Publish(context.Background(), []byte("not a frame"))
	if grpcstatus.Code(err) != codes.InvalidArgument {
		t.Errorf("Publish(garbage) code = %v, want InvalidArgument", grpcstatus.Code(err))
	}
}

func TestRelayChannelFansOutToEveryTab(t *testing.T) {
	b, socketPath := startRelay(t)

	tab1 := NewRelayChannel(dialRelay(t, socketPath), 16, zap.NewNop())
	tab2 := NewRelayChannel(dialRelay(t, socketPath), 16, zap.NewNop())
	t.Cleanup(func() {
		_ = tab1.Close()
		_ = tab2.Close()
	})

	got1 := make(chan broadcast.Envelope, 4)
	got2 := make(chan broadcast.Envelope, 4)
	tab1.Subscribe(func(e broadcast.Envelope) { got1 <- e })
	tab2.Subscribe(func(e broadcast.Envelope) { got2 <- e })
	waitSubscribers(t, b, 2)

	tab1.Post(broadcast.FriendRequest, broadcast.FriendRequestPayload{
		RecipientID: "user-3",
		SenderID:    "user-1",
		SenderName:  "Alice",
	})

	for name, ch := range map[string]chan broadcast.Envelope{"poster": got1, "other": got2} {
		select {
		case env := <-ch:
			var p broadcast.FriendRequestPayload
			if err := env.Unmarshal(&p); err != nil {
				t.Fatal(err)
			}
			if env.Type != broadcast.FriendRequest || p.RecipientID != "user-3" {
				t.Errorf("%s got %s %+v", name, env.Type, p)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("%s tab did not receive the frame", name)
		}
	}
}

func TestRelayChannelCloseEndsSubscription(t *testing.T) {
	b, socketPath := startRelay(t)

	tab := NewRelayChannel(dialRelay(t, socketPath), 16, zap.NewNop())
	tab.Subscribe(func(broadcast.Envelope) {})
	waitSubscribers(t, b, 1)

	if err := tab.Close(); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for b.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("relay still holds the closed tab's subscription")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
