// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/microstep-tui/internal/api"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
)

// Auth form messages.
const (
	msgLoginFailed    = "Login failed"
	msgRegisterFailed = "Registration failed"
	msgFillAllFields  = "Please fill in all fields"
	msgWelcomeBack    = "Welcome back! 👋"
	msgAccountCreated = "Account created! Let's get started 🚀"
)

// LoggedInMsg reports a successful login or registration. The token is
// already in the session store.
type LoggedInMsg struct {
	Identity model.Identity
}

// SwitchAuthMsg asks the shell to swap between the login and register forms.
type SwitchAuthMsg struct {
	Register bool
}

type authResultMsg struct {
	register bool
	reply    model.AuthReply
	err      error
}

var switchAuthKey = key.NewBinding(
	key.WithKeys("ctrl+r"),
	key.WithHelp("C-r", "switch form"),
)

// AuthForm is the login form, or the register form when Register is set.
type AuthForm struct {
	deps       *Deps
	keys       KeyMap
	register   bool
	inputs     []textinput.Model
	focus      int
	submitting bool
	err        string
}

// NewLogin creates the login form (email, password).
func NewLogin(deps *Deps) AuthForm {
	return newAuthForm(deps, false)
}

// NewRegister creates the register form (name, email, password).
func NewRegister(deps *Deps) AuthForm {
	return newAuthForm(deps, true)
}

func newAuthForm(deps *Deps, register bool) AuthForm {
	m := AuthForm{deps: deps, keys: DefaultKeyMap(), register: register}

	var fields []string
	if register {
		fields = append(fields, "Full name")
	}
	fields = append(fields, "you@example.com", "Password")

	for i, placeholder := range fields {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 128
		if i == len(fields)-1 {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.inputs = append(m.inputs, ti)
	}
	m.inputs[0].Focus()
	return m
}

// IsRegister reports whether this is the register form.
func (m AuthForm) IsRegister() bool {
	return m.register
}

// Err returns the inline error shown under the form.
func (m AuthForm) Err() string {
	return m.err
}

// Submitting reports whether a request is outstanding.
func (m AuthForm) Submitting() bool {
	return m.submitting
}

// Init focuses the first field.
func (m AuthForm) Init() tea.Cmd {
	return textinput.Blink
}

// values returns the trimmed fields: name (register only), email, password.
func (m AuthForm) values() (name, email, password string) {
	off := 0
	if m.register {
		name = strings.TrimSpace(m.inputs[0].Value())
		off = 1
	}
	email = strings.TrimSpace(m.inputs[off].Value())
	password = m.inputs[off+1].Value()
	return name, email, password
}

// Update handles form keys and the auth result.
func (m AuthForm) Update(msg tea.Msg) (AuthForm, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		if msg.register != m.register {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			fallback := msgLoginFailed
			if m.register {
				fallback = msgRegisterFailed
			}
			m.err = api.MessageOr(msg.err, fallback)
			return m, components.ErrorToastCmd(m.err)
		}
		m.err = ""
		welcome := msgWelcomeBack
		if m.register {
			welcome = msgAccountCreated
		}
		id := model.Identity{User: msg.reply.User, Source: model.SourceServer}
		return m, tea.Batch(
			func() tea.Msg { return LoggedInMsg{Identity: id} },
			components.SuccessToastCmd(welcome),
		)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, switchAuthKey):
			register := !m.register
			return m, func() tea.Msg { return SwitchAuthMsg{Register: register} }
		case key.Matches(msg, m.keys.Submit):
			if m.focus < len(m.inputs)-1 {
				return m, m.setFocus(m.focus + 1)
			}
			return m.submit()
		case msg.String() == "tab" || msg.String() == "down":
			return m, m.setFocus((m.focus + 1) % len(m.inputs))
		case msg.String() == "shift+tab" || msg.String() == "up":
			return m, m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *AuthForm) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m AuthForm) submit() (AuthForm, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	name, email, password := m.values()
	if email == "" || password == "" || (m.register && name == "") {
		m.err = msgFillAllFields
		return m, nil
	}
	m.err = ""
	m.submitting = true

	d, register := m.deps, m.register
	return m, func() tea.Msg {
		ctx, cancel := d.callContext()
		defer cancel()
		var (
			reply model.AuthReply
			err   error
		)
		if register {
			reply, err = d.Auth.Register(ctx, model.Registration{Name: name, Email: email, Password: password})
		} else {
			reply, err = d.Auth.Login(ctx, model.Credentials{Email: email, Password: password})
		}
		return authResultMsg{register: register, reply: reply, err: err}
	}
}

// View renders the form centered in the terminal.
func (m AuthForm) View() string {
	theme := m.deps.Theme

	title, subtitle, button, other := "Welcome Back", "Sign in to continue your micro-steps", "Sign In", "No account? C-r to create one"
	labels := []string{"Email", "Password"}
	if m.register {
		title, subtitle, button, other = "Create Account", "Start building momentum today", "Create Account", "Have an account? C-r to sign in"
		labels = append([]string{"Name"}, labels...)
	}

	lines := []string{
		theme.Title.Render(components.Brand),
		theme.Section.Render(title),
		theme.Muted.Render(subtitle),
		"",
	}
	for i, in := range m.inputs {
		label := theme.FormLabel.Render(labels[i])
		if i == m.focus {
			label = theme.FormLabelFocus.Render(labels[i])
		}
		lines = append(lines, label, in.View())
	}

	btn := button
	if m.submitting {
		btn = button + "..."
	}
	lines = append(lines, "", theme.FormButton.Render(btn))
	if m.err != "" {
		lines = append(lines, theme.FormError.Render(fmt.Sprintf("%s %s", styles.StatusIndicators.Error, m.err)))
	}
	lines = append(lines, "", theme.Help.Render(other+" • tab next field • ctrl+c quit"))

	box := theme.FormBox.Render(strings.Join(lines, "\n"))
	if w := m.deps.width(); w > 0 {
		return lipgloss.PlaceHorizontal(w, lipgloss.Center, box)
	}
	return box
}
