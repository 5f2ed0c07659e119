package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/livechat/internal/apperr"
	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/store"
	"github.com/matheus3301/livechat/internal/tui/keys"
	"github.com/matheus3301/livechat/internal/tui/ui"
	"github.com/matheus3301/livechat/internal/tui/views"
)

var (
	errNeedGroup = apperr.FailedPrecondition("open a group first")
	errNeedChat  = apperr.FailedPrecondition("open a chat first")

	// errCanceled is returned by actions the user declined to confirm.
	errCanceled = errors.New("canceled")
)

func (a *App) setupBindings() {
	r := a.registry

	r.AddGlobal(
		keys.Rune('?', "Help", func() { a.show(pageHelp) }),
		keys.Rune('q', "Back/Quit", func() {
			if len(a.pages.Visible()) > 1 {
				a.back()
				return
			}
			a.app.Stop()
		}),
	)

	r.AddPage(pageChats,
		keys.Rune('p', "Pin/Unpin", func() { a.togglePin(a.chats.SelectedID()) }),
		keys.Rune('d', "Details", func() { a.showDetails(a.chats.SelectedID()) }),
		keys.Rune('P', "People", func() { a.show(pagePeople) }),
		keys.Rune('S', "Statuses", func() { a.show(pageStatuses) }),
		keys.Rune('f', "Find people", func() { a.findPeople("") }),
	)
	for n := '1'; n <= '9'; n++ {
		action := keys.Rune(n, "Jump to chat", func() {
			if id := a.chats.IDByIndex(int(n - '0')); id != "" {
				a.openChat(id)
			}
		})
		action.Hidden = true
		r.AddPage(pageChats, action)
	}

	r.AddPage(pageThread,
		keys.Rune('i', "Compose", func() { a.app.SetFocus(a.thread.Composer()) }),
		keys.Rune('r', "Reply to last", func() {
			a.replyToLast()
			a.app.SetFocus(a.thread.Composer())
		}),
		keys.Rune('x', "Cancel reply", func() { a.m.SetReplyingTo(nil) }),
		keys.Rune('d', "Details", func() { a.showDetails("") }),
		keys.Rune('c', "Voice call", func() { a.do("", func() error { return a.m.StartCall(store.CallVoice) }) }),
		keys.Rune('v', "Video call", func() { a.do("", func() error { return a.m.StartCall(store.CallVideo) }) }),
		keys.Rune('h', "Hang up", func() { a.do("Call ended", a.m.EndCall) }),
		keys.Rune('s', "Search", func() { a.searchChat("") }),
	)

	r.AddPage(pagePeople,
		keys.Rune('a', "Accept", func() { a.onPerson(views.SectionRequests, "Request accepted", a.m.AcceptFriendRequest) }),
		keys.Rune('x', "Decline", func() { a.onPerson(views.SectionRequests, "Request declined", a.m.DeclineFriendRequest) }),
		keys.Rune('f', "Friend request", func() { a.onPerson(views.SectionSuggested, "Friend request sent", a.m.SendFriendRequest) }),
		keys.Rune('b', "Block", func() {
			u, _ := a.people.Selected()
			a.block(u)
		}),
		keys.Rune('u', "Unblock", func() { a.onPerson(views.SectionBlocked, "Unblocked", a.m.UnblockUser) }),
	)

	r.AddPage(pageStatuses,
		keys.Rune('n', "Next", func() { a.stepStatus(1) }),
		keys.Rune('b', "Previous", func() { a.stepStatus(-1) }),
	)

	r.AddPage(pageSearch,
		keys.Rune('f', "Friend request", func() {
			if id := a.search.SelectedUserID(); id != "" {
				a.do("Friend request sent", func() error { return a.m.SendFriendRequest(id) })
			}
		}),
		keys.Key(tcell.KeyCtrlX, "Clear history", func() {
			if a.search.Mode() == views.SearchInChat {
				a.m.ClearSearchHistory(a.search.ChatID())
			}
		}),
	)
}

func (a *App) setupCallbacks() {
	a.auth.SetOnLogin(func(name, password string) {
		go func() {
			if !a.m.Login(name, password) {
				a.flash.Warn("Invalid name or password")
			}
		}()
	})
	a.auth.SetOnRegister(func(name, password, pictureURL string) {
		go func() {
			if !a.m.Register(name, password, pictureURL) {
				a.flash.Warn("Registration failed: the name is taken or the input is invalid")
			}
		}()
	})

	a.chats.SetSelectedFunc(func(int, int) {
		if id := a.chats.SelectedID(); id != "" {
			a.openChat(id)
		}
	})

	a.thread.SetOnChanged(func(text string) { a.m.ComposerChanged(text) })
	a.thread.SetOnSend(func(text string) {
		a.thread.ClearComposer()
		a.do("", func() error { return a.m.SendMessage(text, nil) })
	})

	a.search.SetOnQuery(func(query string) {
		if a.search.Mode() == views.SearchInChat && query != "" {
			a.m.AddSearchTerm(a.search.ChatID(), query)
		}
		a.search.Render(a.m.Snapshot())
		a.app.SetFocus(a.search.Results())
	})
	a.search.Results().SetSelectedFunc(func(int, int) {
		if id := a.search.SelectedUserID(); id != "" {
			a.showProfile(id)
		}
	})

	a.people.SetSelectedFunc(func(int, int) {
		if u, _ := a.people.Selected(); u.ID != "" {
			a.showProfile(u.ID)
		}
	})

	a.statuses.SetOnOpen(func(userID string) {
		a.statuses.Open()
		a.m.SetActiveStatusUser(userID)
		for _, g := range a.m.Snapshot().StatusFeed() {
			if g.User.ID == userID && len(g.Statuses) > 0 {
				id := g.Statuses[0].ID
				a.do("", func() error { return a.m.MarkStatusAsViewed(id) })
			}
		}
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptFilter:
			a.chats.SetFilter(text)
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(a.hidePrompt)
}

func (a *App) helpSections() []views.HelpSection {
	var sections []views.HelpSection
	hints := func(page string) []ui.MenuHint {
		var out []ui.MenuHint
		for _, h := range a.registry.Hints(page) {
			out = append(out, ui.MenuHint{Key: h.Key, Description: h.Description})
		}
		return out
	}

	sections = append(sections, views.HelpSection{
		Title: "Global",
		Entries: []ui.MenuHint{
			{Key: ":", Description: "Command mode"},
			{Key: "Esc", Description: "Back"},
			{Key: "?", Description: "Help"},
			{Key: "q", Description: "Back, or quit on the last page"},
			{Key: "Ctrl-C", Description: "Quit"},
		},
	})
	sections = append(sections,
		views.HelpSection{Title: "Chats", Entries: append([]ui.MenuHint{
			{Key: "Enter", Description: "Open"},
			{Key: "1-9", Description: "Open the nth chat"},
			{Key: "/", Description: "Filter by name"},
		}, hints(pageChats)...)},
		views.HelpSection{Title: "Chat", Entries: append(hints(pageThread),
			ui.MenuHint{Key: "Enter", Description: "Send (in composer)"})},
		views.HelpSection{Title: "People", Entries: hints(pagePeople)},
		views.HelpSection{Title: "Statuses", Entries: hints(pageStatuses)},
	)

	var cmds []ui.MenuHint
	for _, c := range commandTable {
		cmds = append(cmds, ui.MenuHint{Key: ":" + c.Usage, Description: c.Summary})
	}
	return append(sections, views.HelpSection{Title: "Commands", Entries: cmds})
}

// openChat selects a user or group chat and shows it.
func (a *App) openChat(id string) {
	a.m.SetViewingUserProfile("")
	a.m.SetActiveChat(id)
	if a.pages.Current() != pageChats {
		a.pages.Reset(pageChats)
	}
	a.show(pageThread)
}

// showDetails opens the details page for id, or for the active chat when
// id is empty.
func (a *App) showDetails(id string) {
	if id == "" {
		if a.snap.ActiveChat == nil {
			return
		}
		a.m.SetViewingUserProfile("")
		a.show(pageInfo)
		return
	}
	switch a.snap.Target(id).(type) {
	case chat.GroupChat:
		a.m.SetActiveChat(id)
		a.m.SetViewingUserProfile("")
		a.show(pageInfo)
	default:
		a.showProfile(id)
	}
}

func (a *App) showProfile(userID string) {
	a.m.SetViewingUserProfile(userID)
	a.show(pageInfo)
}

func (a *App) findPeople(query string) {
	a.search.Reset(views.SearchPeople, "")
	a.show(pageSearch)
	if query != "" {
		a.search.SetQuery(query)
	}
}

func (a *App) searchChat(query string) {
	if a.snap.ActiveChat == nil {
		a.flash.Err(errNeedChat)
		return
	}
	a.search.Reset(views.SearchInChat, a.snap.ChatID(a.snap.ActiveChat))
	a.show(pageSearch)
	if query != "" {
		a.search.SetQuery(query)
	}
}

func (a *App) togglePin(id string) {
	if id == "" {
		return
	}
	if slices.Contains(a.snap.Me.PinnedChatIDs, id) {
		a.do("Unpinned", func() error { return a.m.UnpinChat(id) })
		return
	}
	a.do("Pinned", func() error { return a.m.PinChat(id) })
}

// replyToLast replies to the newest message someone else sent in the
// active chat.
func (a *App) replyToLast() {
	if a.snap.ActiveChat == nil {
		return
	}
	msgs := a.snap.Messages(a.snap.ActiveChat)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].SenderID != a.snap.Me.ID && msgs[i].Type() != store.TypeSystem {
			a.m.SetReplyingTo(&msgs[i])
			return
		}
	}
	a.flash.Info("Nothing to reply to")
}

func (a *App) onPerson(section views.PeopleSection, ok string, fn func(userID string) error) {
	u, sec := a.people.Selected()
	if u.ID == "" || sec != section {
		return
	}
	a.do(ok, func() error { return fn(u.ID) })
}

func (a *App) block(u store.User) {
	if u.ID == "" {
		return
	}
	a.do("Blocked "+u.Name, func() error {
		if !a.Confirm(fmt.Sprintf("Block %s? They will not be able to message you.", u.Name)) {
			return errCanceled
		}
		return a.m.BlockUser(u.ID)
	})
}

func (a *App) stepStatus(delta int) {
	id := a.statuses.Step(delta)
	if id == "" {
		return
	}
	a.statuses.Render(a.m.Snapshot())
	a.do("", func() error { return a.m.MarkStatusAsViewed(id) })
}

// findUser resolves a user by name, ignoring case.
func (a *App) findUser(name string) (store.User, error) {
	for _, u := range a.snap.Users {
		if strings.EqualFold(u.Name, name) {
			return u, nil
		}
	}
	return store.User{}, fmt.Errorf("%w: %q", chat.ErrUserNotFound, name)
}

func (a *App) activeGroup() (store.Group, error) {
	if g, ok := a.snap.ActiveChat.(chat.GroupChat); ok {
		return g.Group, nil
	}
	return store.Group{}, errNeedGroup
}

// memberCommand runs fn on the open group and the user named in cmd.
func (a *App) memberCommand(cmd Command, ok string, confirm string, fn func(groupID, userID string) error) {
	g, err := a.activeGroup()
	if err != nil {
		a.flash.Err(err)
		return
	}
	u, err := a.findUser(cmd.Args)
	if err != nil {
		a.flash.Err(err)
		return
	}
	a.do(fmt.Sprintf(ok, u.Name), func() error {
		if confirm != "" && !a.Confirm(fmt.Sprintf(confirm, u.Name, g.Name)) {
			return errCanceled
		}
		return fn(g.ID, u.ID)
	})
}

func (a *App) runCommand(cmd Command) {
	args := cmd.Fields()
	needArg := func() bool {
		if len(args) == 0 {
			a.flash.Warn(fmt.Sprintf(":%s needs an argument, see :help", cmd.Name))
			return false
		}
		return true
	}

	switch cmd.Name {
	case "chat":
		if !needArg() {
			return
		}
		for _, t := range a.chatTargets() {
			if strings.EqualFold(t.Name(), cmd.Args) {
				a.openChat(t.ID())
				return
			}
		}
		a.flash.Warn(fmt.Sprintf("No chat named %q", cmd.Args))

	case "add":
		if !needArg() {
			return
		}
		u, err := a.findUser(cmd.Args)
		if err != nil {
			a.flash.Err(err)
			return
		}
		a.do("Friend request sent to "+u.Name, func() error { return a.m.SendFriendRequest(u.ID) })

	case "people":
		a.show(pagePeople)

	case "find":
		a.findPeople(cmd.Args)

	case "profile":
		if cmd.Args == "" {
			a.showProfile(a.snap.Me.ID)
			return
		}
		u, err := a.findUser(cmd.Args)
		if err != nil {
			a.flash.Err(err)
			return
		}
		a.showProfile(u.ID)

	case "block":
		if !needArg() {
			return
		}
		u, err := a.findUser(cmd.Args)
		if err != nil {
			a.flash.Err(err)
			return
		}
		a.block(u)

	case "unblock":
		if !needArg() {
			return
		}
		u, err := a.findUser(cmd.Args)
		if err != nil {
			a.flash.Err(err)
			return
		}
		a.do("Unblocked "+u.Name, func() error { return a.m.UnblockUser(u.ID) })

	case "group":
		if !needArg() {
			return
		}
		name := args[0]
		var ids []string
		for _, n := range strings.Split(cmd.Rest(1), ",") {
			if n = strings.TrimSpace(n); n == "" {
				continue
			}
			u, err := a.findUser(n)
			if err != nil {
				a.flash.Err(err)
				return
			}
			ids = append(ids, u.ID)
		}
		a.do("Created "+name, func() error {
			g, err := a.m.CreateGroup(name, "", ids)
			if err != nil {
				return err
			}
			a.onUI(func() { a.openChat(g.ID) })
			return nil
		})

	case "rename", "about", "picture":
		g, err := a.activeGroup()
		if err != nil {
			a.flash.Err(err)
			return
		}
		value := cmd.Args
		var info chat.GroupInfo
		switch cmd.Name {
		case "rename":
			if !needArg() {
				return
			}
			info.Name = &value
		case "about":
			info.Description = &value
		case "picture":
			info.ProfilePicURL = &value
		}
		a.do("Group updated", func() error { return a.m.UpdateGroupInfo(g.ID, info) })

	case "invite":
		if needArg() {
			a.memberCommand(cmd, "Added %s", "", a.m.AddMemberToGroup)
		}
	case "kick":
		if needArg() {
			a.memberCommand(cmd, "Removed %s", "Remove %s from %s?", a.m.RemoveMemberFromGroup)
		}
	case "promote":
		if needArg() {
			a.memberCommand(cmd, "%s is now an admin", "", a.m.PromoteToAdmin)
		}
	case "demote":
		if needArg() {
			a.memberCommand(cmd, "%s is no longer an admin", "", a.m.DemoteAdmin)
		}

	case "leave":
		g, err := a.activeGroup()
		if err != nil {
			a.flash.Err(err)
			return
		}
		a.do("", func() error {
			if !a.Confirm(fmt.Sprintf("Leave %s?", g.Name)) {
				return errCanceled
			}
			if err := a.m.LeaveGroup(g.ID); err != nil {
				return err
			}
			a.flash.Info("Left " + g.Name)
			a.onUI(func() {
				a.m.SetActiveChat("")
				a.pages.Reset(pageChats)
				a.focusPage()
			})
			return nil
		})

	case "pin", "unpin":
		id := a.chats.SelectedID()
		if a.snap.ActiveChat != nil {
			id = a.snap.ActiveChat.ID()
		}
		if id == "" {
			a.flash.Err(errNeedChat)
			return
		}
		if cmd.Name == "pin" {
			a.do("Pinned", func() error { return a.m.PinChat(id) })
		} else {
			a.do("Unpinned", func() error { return a.m.UnpinChat(id) })
		}

	case "clear":
		t := a.snap.ActiveChat
		if t == nil {
			a.flash.Err(errNeedChat)
			return
		}
		chatID := a.snap.ChatID(t)
		a.do("", func() error {
			if !a.Confirm(fmt.Sprintf("Clear the history of %s for everyone?", t.Name())) {
				return errCanceled
			}
			return a.m.ClearChatHistory(chatID)
		})

	case "attach":
		if !needArg() {
			return
		}
		path, caption := args[0], cmd.Rest(1)
		a.do("Sent "+path, func() error {
			att, err := chat.AttachFile(path)
			if err != nil {
				return err
			}
			return a.m.SendMessage(caption, att)
		})

	case "reply":
		if a.pages.Current() == pageStatuses {
			st, ok := a.statuses.CurrentStatus()
			if !ok || st.UserID == a.snap.Me.ID {
				a.flash.Warn("Open someone's status to reply to it")
				return
			}
			if !needArg() {
				return
			}
			text := cmd.Args
			a.do("Reply sent", func() error { return a.m.SendStatusReply(st.ID, text) })
			return
		}
		a.replyToLast()
		if cmd.Args != "" {
			text := cmd.Args
			a.do("", func() error { return a.m.SendMessage(text, nil) })
		}

	case "call":
		kind := store.CallVoice
		if len(args) > 0 && strings.EqualFold(args[0], "video") {
			kind = store.CallVideo
		}
		a.do("", func() error { return a.m.StartCall(kind) })

	case "hangup":
		a.do("Call ended", a.m.EndCall)

	case "search":
		a.searchChat(cmd.Args)

	case "statuses":
		a.show(pageStatuses)

	case "status":
		if !needArg() {
			return
		}
		path := cmd.Args
		a.do("Status posted", func() error {
			url, mimeType, err := chat.EncodeFile(path)
			if err != nil {
				return err
			}
			_, err = a.m.AddStatus(chat.MediaKindOf(mimeType), url)
			return err
		})

	case "nick":
		if !needArg() {
			return
		}
		name := cmd.Args
		a.do("Name changed", func() error { return a.m.UpdateUserSettings(chat.Settings{Name: name}) })

	case "mood":
		mood := cmd.Args
		a.do("Status message updated", func() error { return a.m.UpdateUserSettings(chat.Settings{StatusMessage: &mood}) })

	case "avatar":
		if !needArg() {
			return
		}
		url := cmd.Args
		a.do("Picture updated", func() error { return a.m.UpdateUserSettings(chat.Settings{ProfilePicURL: url}) })

	case "password":
		if len(args) != 2 {
			a.flash.Warn("usage: :password <current> <new>")
			return
		}
		s := chat.Settings{CurrentPassword: args[0], NewPassword: args[1]}
		a.do("Password changed", func() error { return a.m.UpdateUserSettings(s) })

	case "away":
		a.m.SetVisible(false)
	case "back":
		a.m.SetVisible(true)

	case "dismiss":
		for _, n := range a.snap.Notifications {
			a.m.DismissNotification(n.ID)
		}

	case "logout":
		a.do("", func() error {
			if a.Confirm("Log out?") {
				a.m.Logout()
			}
			return nil
		})

	case "help":
		a.show(pageHelp)

	case "quit":
		a.app.Stop()

	default:
		a.flash.Warn(fmt.Sprintf("Unknown command %q, see :help", cmd.Name))
	}
}

func (a *App) chatTargets() []chat.Target {
	var out []chat.Target
	for _, u := range a.snap.Friends() {
		out = append(out, chat.Direct{User: u})
	}
	for _, g := range a.snap.MyGroups() {
		out = append(out, chat.GroupChat{Group: g})
	}
	return out
}
