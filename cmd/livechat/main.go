package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/matheus3301/livechat/internal/api"
	"github.com/matheus3301/livechat/internal/app"
	"github.com/matheus3301/livechat/internal/config"
	"github.com/matheus3301/livechat/internal/session"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	profile := session.Resolve(*profileFlag, cfg)
	if err := session.ValidateName(profile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Broadcast.Transport == "relay" {
		socketPath := session.SocketPath(profile)
		// Probe the relay; auto-start it if needed.
		if !probeRelay(socketPath) {
			fmt.Fprintf(os.Stderr, "relay not running for profile %q, starting...\n", profile)
			if err := startRelay(profile); err != nil {
				fmt.Fprintf(os.Stderr, "failed to start relay: %v\n", err)
				os.Exit(1)
			}
			if !waitForRelay(socketPath, 10*time.Second) {
				fmt.Fprintf(os.Stderr, "relay did not become ready\n")
				os.Exit(1)
			}
		}
	}

	tab := fx.New(
		app.Module(app.Params{Profile: profile, Config: cfg}),
	)
	tab.Run()
}

// probeRelay reports whether a relay answers on the socket.
func probeRelay(socketPath string) bool {
	conn, err := api.Dial(socketPath)
	if err != nil {
		return false
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return api.NewRelayClient(conn).Ping(ctx) == nil
}

func startRelay(profile string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	livechatd := filepath.Join(filepath.Dir(executable), "livechatd")

	if _, err := os.Stat(livechatd); err != nil {
		livechatd = "livechatd"
	}

	cmd := exec.Command(livechatd, "--profile", profile)
	// Inherit stderr so relay startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

// waitForRelay polls with a real Ping, not just a socket connect.
func waitForRelay(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probeRelay(socketPath) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
