package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/matheus3301/livechat/internal/api"
	"github.com/matheus3301/livechat/internal/app"
	"github.com/matheus3301/livechat/internal/broadcast"
	"github.com/matheus3301/livechat/internal/config"
	"github.com/matheus3301/livechat/internal/logging"
	"github.com/matheus3301/livechat/internal/session"
	"github.com/matheus3301/livechat/internal/store"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fatalf("error: %v", err)
	}
	profile := session.Resolve(*profileFlag, cfg)
	if err := session.ValidateName(profile); err != nil {
		fatalf("error: %v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "profiles":
		cmdProfiles(*jsonFlag)
		return
	case "status", "users", "groups", "chats", "statuses", "watch":
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if args[0] == "watch" && cfg.Broadcast.Transport == "relay" && !relayRunning(profile) {
		fatalf("error: relay for profile %q is not running", profile)
	}

	st, ch, stop := openProfile(profile, cfg)
	defer stop()

	switch args[0] {
	case "status":
		cmdStatus(profile, cfg, st, *jsonFlag)
	case "users":
		cmdUsers(st, *jsonFlag)
	case "groups":
		cmdGroups(st, *jsonFlag)
	case "chats":
		cmdChats(st, *jsonFlag)
	case "statuses":
		cmdStatuses(st, *jsonFlag)
	case "watch":
		cmdWatch(ch, *jsonFlag)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: livechatctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status      Show the profile's store, transport and signed-in user")
	fmt.Fprintln(os.Stderr, "  profiles    List known profiles")
	fmt.Fprintln(os.Stderr, "  users       List users")
	fmt.Fprintln(os.Stderr, "  groups      List groups")
	fmt.Fprintln(os.Stderr, "  chats       List chats with message counts")
	fmt.Fprintln(os.Stderr, "  statuses    List live statuses")
	fmt.Fprintln(os.Stderr, "  watch       Print broadcast events until interrupted")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// openProfile starts the profile's store and channel without a manager.
func openProfile(profile string, cfg *config.Config) (*store.Store, broadcast.Channel, func()) {
	if err := session.EnsureDir(profile); err != nil {
		fatalf("error: %v", err)
	}
	logger, err := logging.New(filepath.Join(session.LogDir(profile), "livechatctl.log"), profile, "ctl", logging.FileOnly())
	if err != nil {
		fatalf("error: %v", err)
	}

	var (
		st *store.Store
		ch broadcast.Channel
	)
	fxApp := fx.New(
		app.Storage(app.Params{Profile: profile, Config: cfg, Logger: logger}),
		fx.Populate(&st, &ch),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fxApp.Start(ctx); err != nil {
		fatalf("error: %v", err)
	}
	return st, ch, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = fxApp.Stop(ctx)
	}
}

func relayRunning(profile string) bool {
	conn, err := api.Dial(session.SocketPath(profile))
	if err != nil {
		return false
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return api.NewRelayClient(conn).Ping(ctx) == nil
}

type statusOutput struct {
	Profile   string `json:"profile"`
	Store     string `json:"store"`
	Transport string `json:"transport"`
	Relay     string `json:"relay,omitempty"`
	SignedIn  string `json:"signedIn,omitempty"`
	Users     int    `json:"users"`
	Groups    int    `json:"groups"`
	Chats     int    `json:"chats"`
}

func cmdStatus(profile string, cfg *config.Config, st *store.Store, jsonOut bool) {
	out := statusOutput{
		Profile:   profile,
		Store:     cfg.Store.Backend,
		Transport: cfg.Broadcast.Transport,
		Users:     len(st.Users()),
		Groups:    len(st.Groups()),
		Chats:     len(st.Chats()),
	}
	if cfg.Broadcast.Transport == "relay" {
		out.Relay = "stopped"
		if relayRunning(profile) {
			out.Relay = "running"
		}
	}
	if id := st.AuthenticatedUserID(); id != "" {
		if u, err := st.UserByID(id); err == nil {
			out.SignedIn = u.Name
		}
	}
	if jsonOut {
		outputJSON(out)
		return
	}
	fmt.Printf("Profile:   %s\n", out.Profile)
	fmt.Printf("Store:     %s\n", out.Store)
	fmt.Printf("Transport: %s\n", out.Transport)
	if out.Relay != "" {
		fmt.Printf("Relay:     %s\n", out.Relay)
	}
	if out.SignedIn != "" {
		fmt.Printf("Signed in: %s\n", out.SignedIn)
	} else {
		fmt.Println("Signed in: -")
	}
	fmt.Printf("Data:      %d users, %d groups, %d chats\n", out.Users, out.Groups, out.Chats)
}

type profileOutput struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Running bool   `json:"relayRunning"`
}

func cmdProfiles(jsonOut bool) {
	entries, err := os.ReadDir(filepath.Join(session.BaseDir(), "profiles"))
	if err != nil && !os.IsNotExist(err) {
		fatalf("error: %v", err)
	}
	var out []profileOutput
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		out = append(out, profileOutput{
			Name:    e.Name(),
			Path:    session.Dir(e.Name()),
			Running: relayRunning(e.Name()),
		})
	}
	if jsonOut {
		outputJSON(out)
		return
	}
	if len(out) == 0 {
		fmt.Println("No profiles found.")
		return
	}
	for _, p := range out {
		running := "stopped"
		if p.Running {
			running = "running"
		}
		fmt.Printf("%-20s %s (%s)\n", p.Name, p.Path, running)
	}
}

// userOutput is a user without the password.
type userOutput struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	StatusMessage string   `json:"statusMessage,omitempty"`
	LastSeen      string   `json:"lastSeen"`
	Friends       []string `json:"friendIds"`
	Requests      []string `json:"friendRequestIds"`
	Blocked       []string `json:"blockedUserIds"`
}

func cmdUsers(st *store.Store, jsonOut bool) {
	now := time.Now()
	var out []userOutput
	for _, u := range st.Users() {
		lastSeen := "online"
		if !u.LastSeen.IsOnline() {
			lastSeen = u.LastSeen.Time().Format(time.RFC3339)
		}
		out = append(out, userOutput{
			ID:            u.ID,
			Name:          u.Name,
			StatusMessage: u.StatusMessage,
			LastSeen:      lastSeen,
			Friends:       u.FriendIDs,
			Requests:      u.FriendRequestIDs,
			Blocked:       u.BlockedUserIDs,
		})
		if !jsonOut {
			fmt.Printf("%-24s %-20s %-28s %d friends\n", u.ID, u.Name, lastSeenText(u.LastSeen, now), len(u.FriendIDs))
		}
	}
	if jsonOut {
		outputJSON(out)
	}
}

func lastSeenText(ls store.LastSeen, now time.Time) string {
	if ls.IsOnline() {
		return "online"
	}
	return "seen " + now.Sub(ls.Time()).Round(time.Minute).String() + " ago"
}

func cmdGroups(st *store.Store, jsonOut bool) {
	groups := st.Groups()
	if jsonOut {
		outputJSON(groups)
		return
	}
	for _, g := range groups {
		fmt.Printf("%-24s %-24s %d members, %d admins\n", g.ID, g.Name, len(g.Members), len(g.Admins))
	}
}

type chatOutput struct {
	ID       string `json:"id"`
	Messages int    `json:"messages"`
	Last     string `json:"last,omitempty"`
}

func cmdChats(st *store.Store, jsonOut bool) {
	chats := st.Chats()
	ids := make([]string, 0, len(chats))
	for id := range chats {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []chatOutput
	for _, id := range ids {
		c := chatOutput{ID: id, Messages: len(chats[id])}
		if n := len(chats[id]); n > 0 {
			c.Last = time.UnixMilli(chats[id][n-1].Timestamp).Format(time.RFC3339)
		}
		out = append(out, c)
	}
	if jsonOut {
		outputJSON(out)
		return
	}
	for _, c := range out {
		fmt.Printf("%-48s %5d messages  %s\n", c.ID, c.Messages, c.Last)
	}
}

func cmdStatuses(st *store.Store, jsonOut bool) {
	statuses := st.Statuses()
	if jsonOut {
		// Data URLs are large; print their MIME type only.
		for i := range statuses {
			if mimeType, _, ok := strings.Cut(statuses[i].URL, ";"); ok && strings.HasPrefix(mimeType, "data:") {
				statuses[i].URL = mimeType
			}
		}
		outputJSON(statuses)
		return
	}
	for _, s := range statuses {
		at := time.UnixMilli(s.Timestamp).Format(time.RFC3339)
		fmt.Printf("%-24s %-24s %-6s %s viewed by %d\n", s.ID, s.UserID, s.Type, at, len(s.ViewedBy))
	}
}

func cmdWatch(ch broadcast.Channel, jsonOut bool) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	unsubscribe := ch.Subscribe(func(env broadcast.Envelope) {
		if jsonOut {
			outputJSON(env)
			return
		}
		fmt.Printf("%s %-20s %s\n", time.Now().Format("15:04:05.000"), env.Type, env.Payload)
	})
	defer unsubscribe()

	fmt.Fprintln(os.Stderr, "watching broadcast events, Ctrl-C to stop")
	<-ctx.Done()
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
