package tui

import (
	"strings"
	"unicode"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':'). Aliases
// resolve to their command name.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	if canonical, ok := aliases[cmd.Name]; ok {
		cmd.Name = canonical
	}
	return cmd
}

// Fields splits Args on spaces. Double quotes group words, so
// `"Weekend trip" alice` is two fields.
func (c Command) Fields() []string {
	var (
		fields  []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	flush := func() {
		if pending {
			fields = append(fields, cur.String())
			cur.Reset()
			pending = false
		}
	}
	for _, r := range c.Args {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	flush()
	return fields
}

// Rest returns Args with the first n fields removed, as typed.
func (c Command) Rest(n int) string {
	s := c.Args
	for range n {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if strings.HasPrefix(s, `"`) {
			if i := strings.IndexByte(s[1:], '"'); i >= 0 {
				s = s[i+2:]
				continue
			}
			return ""
		}
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			return ""
		}
		s = s[i:]
	}
	return strings.TrimSpace(s)
}

// commandInfo documents a command for the help page.
type commandInfo struct {
	Name    string
	Usage   string
	Summary string
	Aliases []string
}

var commandTable = []commandInfo{
	{Name: "chat", Usage: "chat <name>", Summary: "Open a chat by friend or group name"},
	{Name: "add", Usage: "add <name>", Summary: "Send a friend request"},
	{Name: "people", Usage: "people", Summary: "Requests, suggestions and blocked users"},
	{Name: "find", Usage: "find [name]", Summary: "Search users by name"},
	{Name: "profile", Usage: "profile [name]", Summary: "Show a user profile"},
	{Name: "block", Usage: "block <name>", Summary: "Block a user"},
	{Name: "unblock", Usage: "unblock <name>", Summary: "Unblock a user"},
	{Name: "group", Usage: `group "<name>" <member>,...`, Summary: "Create a group"},
	{Name: "rename", Usage: "rename <name>", Summary: "Rename the open group"},
	{Name: "about", Usage: "about <text>", Summary: "Set the open group's description", Aliases: []string{"desc"}},
	{Name: "picture", Usage: "picture <url>", Summary: "Set the open group's picture"},
	{Name: "invite", Usage: "invite <name>", Summary: "Add a member to the open group"},
	{Name: "kick", Usage: "kick <name>", Summary: "Remove a member from the open group"},
	{Name: "promote", Usage: "promote <name>", Summary: "Make a member admin"},
	{Name: "demote", Usage: "demote <name>", Summary: "Revoke admin"},
	{Name: "leave", Usage: "leave", Summary: "Leave the open group"},
	{Name: "pin", Usage: "pin", Summary: "Pin the open chat"},
	{Name: "unpin", Usage: "unpin", Summary: "Unpin the open chat"},
	{Name: "clear", Usage: "clear", Summary: "Clear the open chat's history"},
	{Name: "attach", Usage: "attach <file> [caption]", Summary: "Send a file"},
	{Name: "reply", Usage: "reply [text]", Summary: "Reply to the last message, or to the viewed status"},
	{Name: "call", Usage: "call voice|video", Summary: "Call the open chat's user"},
	{Name: "hangup", Usage: "hangup", Summary: "End the call"},
	{Name: "search", Usage: "search [query]", Summary: "Search the open chat", Aliases: []string{"s"}},
	{Name: "statuses", Usage: "statuses", Summary: "Open the status feed"},
	{Name: "status", Usage: "status <file>", Summary: "Post a status"},
	{Name: "nick", Usage: "nick <name>", Summary: "Change your name"},
	{Name: "mood", Usage: "mood [text]", Summary: "Set your status message"},
	{Name: "avatar", Usage: "avatar <url>", Summary: "Set your profile picture"},
	{Name: "password", Usage: "password <current> <new>", Summary: "Change your password"},
	{Name: "away", Usage: "away", Summary: "Appear offline"},
	{Name: "back", Usage: "back", Summary: "Appear online"},
	{Name: "dismiss", Usage: "dismiss", Summary: "Dismiss notifications"},
	{Name: "logout", Usage: "logout", Summary: "Sign out"},
	{Name: "help", Usage: "help", Summary: "Show this help", Aliases: []string{"h"}},
	{Name: "quit", Usage: "quit", Summary: "Quit", Aliases: []string{"q"}},
}

var aliases = func() map[string]string {
	m := make(map[string]string)
	for _, c := range commandTable {
		for _, a := range c.Aliases {
			m[a] = c.Name
		}
	}
	return m
}()
