package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/store"
	"github.com/matheus3301/livechat/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationInfo shows a user profile, or the details of a group.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

func (ci *ConversationInfo) Name() string { return "Details" }

func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
	}
}

// Render shows snap.ViewingProfile when set, else the active chat.
func (ci *ConversationInfo) Render(snap chat.Snapshot) {
	ci.Clear()

	switch {
	case snap.ViewingProfile != nil:
		u, ok := snap.User(snap.ViewingProfile.ID)
		if !ok {
			u = *snap.ViewingProfile
		}
		ci.renderUser(snap, u)
	case snap.ActiveChat != nil:
		switch t := snap.ActiveChat.(type) {
		case chat.Direct:
			u, _ := snap.User(t.User.ID)
			ci.renderUser(snap, u)
		case chat.GroupChat:
			ci.renderGroup(snap, t.Group)
		}
	default:
		ci.SetTitle(" Details ")
		_, _ = fmt.Fprint(ci, "\n  Nothing selected.")
	}
	ci.ScrollToBeginning()
}

func (ci *ConversationInfo) field(label, value string) {
	_, _ = fmt.Fprintf(ci, " [%s::b]%-14s[-:-:-] %s\n", ui.Tag(ci.theme.CounterColor), label+":", value)
}

func (ci *ConversationInfo) renderUser(snap chat.Snapshot, u store.User) {
	ci.SetTitle(" " + clean(u.Name) + " ")
	_, _ = fmt.Fprintln(ci)

	presence := chat.FormatLastSeen(u.LastSeen, snap.Now)
	if u.LastSeen.IsOnline() {
		presence = fmt.Sprintf("[%s]%s[-]", ui.Tag(ci.theme.OnlineColor), presence)
	}

	relation := "-"
	switch {
	case u.ID == snap.Me.ID:
		relation = "you"
	case slices.Contains(snap.Me.FriendIDs, u.ID):
		relation = "friend"
	case slices.Contains(snap.Me.BlockedUserIDs, u.ID):
		relation = "blocked"
	case snap.RequestSent(u.ID):
		relation = "request sent"
	case slices.Contains(snap.Me.FriendRequestIDs, u.ID):
		relation = "wants to be friends"
	}

	ci.field("Name", clean(u.Name))
	ci.field("About", clean(orDash(u.StatusMessage)))
	ci.field("Presence", presence)
	ci.field("Relation", relation)
	ci.field("Friends", fmt.Sprint(len(u.FriendIDs)))

	if u.ID != snap.Me.ID {
		ci.field("Messages", fmt.Sprint(len(snap.Messages(chat.Direct{User: u}))))
	}
	ci.picture(u.ProfilePicURL)
}

func (ci *ConversationInfo) renderGroup(snap chat.Snapshot, g store.Group) {
	ci.SetTitle(" " + clean(g.Name) + " ")
	_, _ = fmt.Fprintln(ci)

	creator := "-"
	if u, ok := snap.User(g.CreatedBy); ok {
		creator = u.Name
	}
	ci.field("Name", clean(g.Name))
	ci.field("Description", clean(orDash(g.Description)))
	ci.field("Created by", clean(creator))
	ci.field("Messages", fmt.Sprint(len(snap.Messages(chat.GroupChat{Group: g}))))

	_, _ = fmt.Fprintf(ci, "\n [%s::b]Members (%d)[-:-:-]\n", ui.Tag(ci.theme.CounterColor), len(g.Members))
	for _, id := range g.Members {
		var tags []string
		if id == g.CreatedBy {
			tags = append(tags, "creator")
		}
		if g.IsAdmin(id) {
			tags = append(tags, "admin")
		}
		if id == snap.Me.ID {
			tags = append(tags, "you")
		}
		name := senderName(id, snap)
		line := "   " + clean(name)
		if u, ok := snap.User(id); ok && u.LastSeen.IsOnline() {
			line = fmt.Sprintf("   [%s]%s[-]", ui.Tag(ci.theme.OnlineColor), clean(name))
		}
		if len(tags) > 0 {
			line += " [::d](" + strings.Join(tags, ", ") + ")[-:-:-]"
		}
		_, _ = fmt.Fprintln(ci, line)
	}
	ci.picture(g.ProfilePicURL)
}

// picture renders url as a QR code so it can be opened from a phone.
func (ci *ConversationInfo) picture(url string) {
	if url == "" || strings.HasPrefix(url, "data:") {
		return
	}
	ci.field("Picture", clean(url))
	qr, err := renderQR(url)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(ci, "\n%s\n", tview.Escape(qr))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
