package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/livechat/internal/chat"
	"github.com/matheus3301/livechat/internal/tui/ui"
	"github.com/rivo/tview"
)

const (
	labelName     = "Name"
	labelPassword = "Password"
	labelPicture  = "Picture URL"
)

// AuthView is the sign-in page: log in with an existing account or
// register a new one.
type AuthView struct {
	*tview.Form
	theme      *ui.Theme
	onLogin    func(name, password string)
	onRegister func(name, password, pictureURL string)
}

func NewAuthView(theme *ui.Theme) *AuthView {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" Sign in ")
	form.SetTitleColor(theme.TitleColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.TableCursorBg)
	form.SetButtonTextColor(theme.TableCursorFg)

	av := &AuthView{Form: form, theme: theme}

	form.AddInputField(labelName, "", 32, nil, nil)
	form.AddPasswordField(labelPassword, "", 32, '*', nil)
	form.AddInputField(labelPicture, "", 48, nil, nil)
	form.AddButton("Log in", func() {
		if av.onLogin != nil {
			av.onLogin(av.field(labelName), av.field(labelPassword))
		}
	})
	form.AddButton("Register", func() {
		if av.onRegister != nil {
			av.onRegister(av.field(labelName), av.field(labelPassword), av.field(labelPicture))
		}
	})

	// Enter in the password field logs in straight away.
	if pw, ok := form.GetFormItemByLabel(labelPassword).(*tview.InputField); ok {
		pw.SetDoneFunc(func(key tcell.Key) {
			if key == tcell.KeyEnter && av.onLogin != nil {
				av.onLogin(av.field(labelName), av.field(labelPassword))
			}
		})
	}
	return av
}

func (av *AuthView) field(label string) string {
	if in, ok := av.GetFormItemByLabel(label).(*tview.InputField); ok {
		return in.GetText()
	}
	return ""
}

func (av *AuthView) SetOnLogin(fn func(name, password string)) { av.onLogin = fn }

func (av *AuthView) SetOnRegister(fn func(name, password, pictureURL string)) { av.onRegister = fn }

// Reset clears the form and focuses the name field.
func (av *AuthView) Reset() {
	for _, label := range []string{labelName, labelPassword, labelPicture} {
		if in, ok := av.GetFormItemByLabel(label).(*tview.InputField); ok {
			in.SetText("")
		}
	}
	av.SetFocus(0)
}

func (av *AuthView) Name() string { return "Sign in" }

func (av *AuthView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Log in"},
		{Key: "Ctrl-C", Description: "Quit"},
	}
}

func (av *AuthView) Render(chat.Snapshot) {}
