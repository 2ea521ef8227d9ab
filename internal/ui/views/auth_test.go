// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/microstep-tui/internal/api"
	"github.com/jeranaias/microstep-tui/internal/api/apitest"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/session"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
)

func newAuthFixture(t *testing.T) (*apitest.Server, *session.Store, *Deps) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore("")
	client := api.New(srv.BaseURL(), store)
	theme := styles.NewTheme()
	theme.SetSize(100, 40)
	return srv, store, &Deps{Auth: api.NewAuthService(client), Theme: theme, Timeout: 5 * time.Second}
}

// fill types each value into the form, moving to the next field with tab.
func fill(m AuthForm, values ...string) AuthForm {
	for i, v := range values {
		if i > 0 {
			m, _ = m.Update(keyType(tea.KeyTab))
		}
		m, _ = m.Update(keyRunes(v))
	}
	return m
}

func submitForm(t *testing.T, m AuthForm) (AuthForm, []tea.Msg) {
	t.Helper()
	m, cmd := m.Update(keyType(tea.KeyEnter))
	require.NotNil(t, cmd)
	require.True(t, m.Submitting())

	msgs := collect(t, cmd)
	require.Len(t, msgs, 1)
	m, cmd = m.Update(msgs[0])
	assert.False(t, m.Submitting())
	return m, collect(t, cmd)
}

func loggedIn(msgs []tea.Msg) (LoggedInMsg, bool) {
	for _, msg := range msgs {
		if li, ok := msg.(LoggedInMsg); ok {
			return li, true
		}
	}
	return LoggedInMsg{}, false
}

func TestLogin_Success(t *testing.T) {
	srv, store, deps := newAuthFixture(t)
	user := srv.AddUser("Ada", "ada@example.com", "secret")

	m := fill(NewLogin(deps), "ada@example.com", "secret")
	_, out := submitForm(t, m)

	li, ok := loggedIn(out)
	require.True(t, ok)
	assert.Equal(t, user.UserID, li.Identity.UserID)
	assert.True(t, li.Identity.Verified())
	assert.True(t, store.HasToken())
	assert.Equal(t, []components.ToastMsg{{Kind: components.ToastKindSuccess, Message: "Welcome back! 👋"}}, toasts(out))
}

func TestLogin_BadCredentials(t *testing.T) {
	srv, store, deps := newAuthFixture(t)
	srv.AddUser("Ada", "ada@example.com", "secret")

	m := fill(NewLogin(deps), "ada@example.com", "wrong")
	m, out := submitForm(t, m)

	_, ok := loggedIn(out)
	assert.False(t, ok)
	assert.Equal(t, "Invalid credentials!", m.Err())
	assert.False(t, store.HasToken())
	assert.Contains(t, m.View(), "Invalid credentials!")
}

func TestLogin_RequiresAllFields(t *testing.T) {
	_, _, deps := newAuthFixture(t)

	m := fill(NewLogin(deps), "ada@example.com")
	m, _ = m.Update(keyType(tea.KeyTab))
	m, cmd := m.Update(keyType(tea.KeyEnter))

	assert.Nil(t, cmd)
	assert.Equal(t, "Please fill in all fields", m.Err())
	assert.False(t, m.Submitting())
}

func TestLogin_EnterAdvancesFields(t *testing.T) {
	_, _, deps := newAuthFixture(t)
	m := NewLogin(deps)

	m, _ = m.Update(keyType(tea.KeyEnter))
	assert.Equal(t, 1, m.focus)
	assert.False(t, m.Submitting())
}

func TestRegister_Success(t *testing.T) {
	_, store, deps := newAuthFixture(t)

	m := fill(NewRegister(deps), "Grace", "grace@example.com", "hopper")
	require.True(t, m.IsRegister())
	_, out := submitForm(t, m)

	li, ok := loggedIn(out)
	require.True(t, ok)
	assert.Equal(t, "Grace", li.Identity.Name)
	assert.True(t, store.HasToken())
	assert.Equal(t, []components.ToastMsg{{Kind: components.ToastKindSuccess, Message: "Account created! Let's get started 🚀"}}, toasts(out))
}

func TestRegister_Duplicate(t *testing.T) {
	srv, _, deps := newAuthFixture(t)
	srv.AddUser("Grace", "grace@example.com", "hopper")

	m := fill(NewRegister(deps), "Grace", "grace@example.com", "hopper")
	m, out := submitForm(t, m)

	assert.Equal(t, "User already exists!", m.Err())
	assert.Equal(t, []components.ToastMsg{{Kind: components.ToastKindError, Message: "User already exists!"}}, toasts(out))
}

func TestAuthForm_Switch(t *testing.T) {
	_, _, deps := newAuthFixture(t)

	_, cmd := NewLogin(deps).Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, []tea.Msg{SwitchAuthMsg{Register: true}}, collect(t, cmd))

	_, cmd = NewRegister(deps).Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, []tea.Msg{SwitchAuthMsg{Register: false}}, collect(t, cmd))
}

func TestAuthForm_IgnoresOtherFormsResult(t *testing.T) {
	_, _, deps := newAuthFixture(t)
	m := NewLogin(deps)

	m, cmd := m.Update(authResultMsg{register: true, reply: model.AuthReply{Token: "x"}})
	assert.Nil(t, cmd)
	assert.Empty(t, m.Err())
}

func TestAuthForm_PasswordIsMasked(t *testing.T) {
	_, _, deps := newAuthFixture(t)
	m := fill(NewLogin(deps), "ada@example.com", "hunter2")
	assert.NotContains(t, m.View(), "hunter2")
}
