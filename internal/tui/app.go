// Package tui is the terminal front end of a tab. It renders manager
// snapshots and turns keys and ":" commands into manager calls.
package tui

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/session"
	"github.com/matheus3301/livechat/internal/tui/keys"
	"github.com/matheus3301/livechat/internal/tui/ui"
	"github.com/matheus3301/livechat/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const (
	pageAuth     = "auth"
	pageChats    = "chats"
	pageThread   = "chat"
	pageInfo     = "details"
	pageSearch   = "search"
	pagePeople   = "people"
	pageStatuses = "statuses"
	pageHelp     = "help"

	pageMain    = "main"
	pageConfirm = "confirm"

	headerHeight = 6
	promptHeight = 3
)

var (
	_ chat.Notifier  = (*App)(nil)
	_ chat.Confirmer = (*App)(nil)
)

// App is the main TUI application shell. Notify may be called from any
// goroutine and never blocks. Confirm blocks and must not be called from
// the UI goroutine.
type App struct {
	app     *tview.Application
	theme   *ui.Theme
	profile string
	logger  *zap.Logger
	m       *chat.Manager

	root        *tview.Pages
	main        *tview.Flex
	pages       *ui.Pages
	sessionInfo *ui.SessionInfo
	menu        *ui.Menu
	crumbs      *ui.Crumbs
	prompt      *ui.Prompt
	flash       *ui.FlashModel
	flashBar    *ui.FlashBar
	confirm     *ui.Confirm
	registry    *keys.Registry

	auth     *views.AuthView
	chats    *views.ConversationList
	thread   *views.MessageThread
	info     *views.ConversationInfo
	search   *views.SearchView
	people   *views.PeopleView
	statuses *views.StatusView
	help     *views.HelpView

	// UI goroutine only.
	snap       chat.Snapshot
	confirming bool

	screenMu sync.Mutex
	screen   tcell.Screen

	done     chan struct{}
	stopOnce sync.Once
}

// New builds the widgets. Bind must be called before Run.
func New(profile string, logger *zap.Logger) *App {
	theme := ui.DefaultTheme()
	a := &App{
		app:         tview.NewApplication(),
		theme:       theme,
		profile:     profile,
		logger:      logger,
		root:        tview.NewPages(),
		pages:       ui.NewPages(),
		sessionInfo: ui.NewSessionInfo(theme),
		menu:        ui.NewMenu(theme),
		crumbs:      ui.NewCrumbs(theme),
		prompt:      ui.NewPrompt(theme),
		flash:       ui.NewFlashModel(),
		flashBar:    ui.NewFlashBar(theme),
		confirm:     ui.NewConfirm(theme),
		registry:    keys.NewRegistry(),
		auth:        views.NewAuthView(theme),
		chats:       views.NewConversationList(theme),
		thread:      views.NewMessageThread(theme),
		info:        views.NewConversationInfo(theme),
		search:      views.NewSearchView(theme),
		people:      views.NewPeopleView(theme),
		statuses:    views.NewStatusView(theme),
		help:        views.NewHelpView(theme),
		done:        make(chan struct{}),
	}
	a.setupLayout()
	a.setupBindings()
	a.help.SetSections(a.helpSections())
	return a
}

// Bind attaches the manager and wires the views to it.
func (a *App) Bind(m *chat.Manager) {
	a.m = m
	a.setupCallbacks()
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		AddItem(a.sessionInfo, 0, 2, false).
		AddItem(a.menu, 0, 3, false).
		AddItem(ui.NewLogo(a.theme), 26, 0, false)

	a.pages.Add(pageAuth, a.auth)
	a.pages.Add(pageChats, a.chats)
	a.pages.Add(pageThread, a.thread)
	a.pages.Add(pageInfo, a.info)
	a.pages.Add(pageSearch, a.search)
	a.pages.Add(pagePeople, a.people)
	a.pages.Add(pageStatuses, a.statuses)
	a.pages.Add(pageHelp, a.help)
	a.pages.SetOnChange(func(top ui.Component, stack []ui.Component) {
		titles := make([]string, len(stack))
		for i, c := range stack {
			titles[i] = c.Name()
		}
		a.crumbs.Update(titles)
		a.menu.Update(append(top.Hints(), a.globalHints()...))
	})

	a.main = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerHeight, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.root.AddPage(pageMain, a.main, true, true)
	a.root.AddPage(pageConfirm, a.confirm, true, false)

	a.pages.Reset(pageAuth)
	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) globalHints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
		{Key: "q", Description: "Back/Quit"},
	}
}

// Run draws the TUI until Stop or :quit.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	a.screenMu.Lock()
	a.screen = screen
	a.screenMu.Unlock()
	a.app.SetScreen(screen)

	go a.watch()
	return a.app.Run()
}

// Stop ends Run. Safe to call more than once.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
		a.app.Stop()
	})
}

// watch redraws on every manager change, every flash, and once a second
// for clocks and expiring flashes.
func (a *App) watch() {
	if a.m.State() == session.Authenticated {
		a.m.SetVisible(true)
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	a.refresh()
	for {
		select {
		case <-a.done:
			return
		case <-a.m.Changes():
			a.refresh()
		case <-a.flash.Watch():
			a.app.QueueUpdateDraw(a.drawFlash)
		case <-ticker.C:
			a.refresh()
		}
	}
}

func (a *App) refresh() {
	snap := a.m.Snapshot()
	a.app.QueueUpdateDraw(func() { a.render(snap) })
}

// render runs on the UI goroutine.
func (a *App) render(snap chat.Snapshot) {
	a.snap = snap

	switch {
	case !snap.SignedIn && a.pages.Current() != pageAuth:
		a.auth.Reset()
		a.pages.Reset(pageAuth)
		a.focusPage()
	case snap.SignedIn && a.pages.Current() == pageAuth:
		a.pages.Reset(pageChats)
		a.focusPage()
	}

	if top := a.pages.Top(); top != nil {
		top.Render(snap)
	}
	a.sessionInfo.Update(a.sessionData(snap))
	a.drawFlash()
}

func (a *App) sessionData(snap chat.Snapshot) ui.SessionData {
	d := ui.SessionData{Profile: a.profile}
	if !snap.SignedIn {
		return d
	}
	friends, groups := snap.Friends(), snap.MyGroups()
	d.User = snap.Me.Name
	d.Presence = chat.FormatLastSeen(snap.Me.LastSeen, snap.Now)
	d.Friends = len(friends)
	d.Groups = len(groups)
	for _, u := range friends {
		d.Unread += snap.UnreadCount(chat.Direct{User: u})
	}
	for _, g := range groups {
		d.Unread += snap.UnreadCount(chat.GroupChat{Group: g})
	}
	d.Requests = len(snap.FriendRequests())
	d.Alerts = len(snap.Notifications)
	if c := snap.Call; c != nil {
		d.Call = fmt.Sprintf("%s, %s", c.Kind, c.Status)
		if c.Status == chat.CallConnected {
			d.Call += " " + chat.FormatCallDuration(c.Duration)
		}
	}
	return d
}

func (a *App) drawFlash() {
	a.flashBar.Update(a.flash.Current())
}

// Notify shows a notification in the flash bar and rings the bell.
func (a *App) Notify(title, body string) {
	a.flash.Warn(title + ": " + body)
	a.screenMu.Lock()
	screen := a.screen
	a.screenMu.Unlock()
	if screen != nil {
		screen.Beep()
	}
}

// Confirm asks prompt in a modal and waits for the answer. It reports
// false if the TUI stops first.
func (a *App) Confirm(prompt string) bool {
	answer := make(chan bool, 1)
	a.app.QueueUpdateDraw(func() {
		prev := a.app.GetFocus()
		a.confirming = true
		a.confirm.Ask(prompt, func(yes bool) {
			a.confirming = false
			a.root.HidePage(pageConfirm)
			a.app.SetFocus(prev)
			answer <- yes
		})
		a.root.ShowPage(pageConfirm)
		a.app.SetFocus(a.confirm)
	})
	select {
	case yes := <-answer:
		return yes
	case <-a.done:
		return false
	}
}

// focusPage gives focus to the main widget of the top page.
func (a *App) focusPage() {
	switch a.pages.Current() {
	case pageThread:
		a.app.SetFocus(a.thread.Messages())
	case pageSearch:
		a.app.SetFocus(a.search.Input())
	default:
		if top := a.pages.Top(); top != nil {
			a.app.SetFocus(top)
		}
	}
}

// show pushes page, draws it from a fresh snapshot and focuses it.
func (a *App) show(page string) {
	a.pages.Push(page)
	a.render(a.m.Snapshot())
	a.focusPage()
}

// back pops the top page, closing whatever it had open in the manager.
func (a *App) back() {
	switch a.pages.Current() {
	case pageInfo:
		a.m.SetViewingUserProfile("")
	case pageStatuses:
		a.m.SetActiveStatusUser("")
	}
	if a.pages.Pop() == pageChats {
		a.m.SetActiveChat("")
	}
	a.focusPage()
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.main.ResizeItem(a.prompt, promptHeight, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.main.ResizeItem(a.prompt, 0, 0)
	a.focusPage()
}

// typing reports whether focus is in a text field.
func (a *App) typing() bool {
	switch a.app.GetFocus().(type) {
	case *ui.Prompt, *tview.InputField:
		return true
	}
	return false
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() == tcell.KeyCtrlC {
		a.app.Stop()
		return nil
	}
	if a.confirming || a.pages.Current() == pageAuth {
		return ev
	}

	if a.pages.Current() == pageSearch && ev.Key() == tcell.KeyTab {
		if a.app.GetFocus() == a.search.Input() {
			a.app.SetFocus(a.search.Results())
		} else {
			a.app.SetFocus(a.search.Input())
		}
		return nil
	}

	if a.typing() {
		if ev.Key() == tcell.KeyEscape && a.app.GetFocus() != a.prompt {
			a.focusPage()
			return nil
		}
		return ev
	}

	switch {
	case ev.Key() == tcell.KeyEscape:
		a.back()
		return nil
	case ev.Key() == tcell.KeyRune && ev.Rune() == ':':
		a.showPrompt(ui.PromptCommand)
		return nil
	case ev.Key() == tcell.KeyRune && ev.Rune() == '/' && a.pages.Current() == pageChats:
		a.showPrompt(ui.PromptFilter)
		return nil
	}

	if a.registry.HandleEvent(a.pages.Current(), ev) {
		return nil
	}
	return ev
}

// do runs fn off the UI goroutine, flashing its error or ok.
func (a *App) do(ok string, fn func() error) {
	go func() {
		err := fn()
		if errors.Is(err, errCanceled) {
			return
		}
		if err != nil {
			a.logger.Debug("action failed", zap.Error(err))
			a.flash.Err(err)
			return
		}
		if ok != "" {
			a.flash.Info(ok)
		}
	}()
}

// onUI queues fn on the UI goroutine.
func (a *App) onUI(fn func()) {
	a.app.QueueUpdateDraw(fn)
}
