// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/microstep-tui/internal/api/apitest"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/session"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	return tok
}

// =============================================================================
// TOKEN DECODING
// =============================================================================

func TestDecodeToken(t *testing.T) {
	tok := signed(t, jwt.MapClaims{
		"user_id":      "u-42",
		"email":        "ada@example.com",
		"name":         "Ada",
		"streak":       4,
		"total_points": 120,
		"exp":          time.Now().Add(time.Hour).Unix(),
	})

	claims, err := DecodeToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-42", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, 4, claims.Streak)
	assert.Equal(t, 120, claims.TotalPoints)
}

func TestDecodeToken_Invalid(t *testing.T) {
	for _, tok := range []string{"", "garbage", "a.b", "a.b.c", "x..sig", "x.bm90IGpzb24.sig"} {
		_, err := DecodeToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

// unsignedToken builds header.payload.sig from raw JSON segments.
func unsignedToken(header, payload string, sig bool) string {
	enc := base64.RawURLEncoding
	tok := enc.EncodeToString([]byte(header)) + "." + enc.EncodeToString([]byte(payload))
	if sig {
		tok += ".c2ln"
	}
	return tok
}

func TestDecodeToken_IgnoresHeaderAndSignature(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	payload := fmt.Sprintf(`{"user_id":"u-9","name":"Lin","exp":%d}`, exp)

	tests := []struct {
		name  string
		token string
	}{
		{"header without alg", unsignedToken(`{"typ":"JWT"}`, payload, true)},
		{"unknown alg", unsignedToken(`{"alg":"XYZ512","typ":"JWT"}`, payload, true)},
		{"alg none", unsignedToken(`{"alg":"none"}`, payload, true)},
		{"two segments", unsignedToken(`{"alg":"HS256"}`, payload, false)},
		{"junk header", "!!!." + strings.Split(unsignedToken("{}", payload, false), ".")[1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := DecodeToken(tt.token)
			require.NoError(t, err)
			assert.Equal(t, "u-9", claims.UserID)
			assert.Equal(t, "Lin", claims.Name)

			auth := NewAuthService(New("http://unused", session.NewMemoryStore(tt.token)))
			assert.True(t, auth.IsAuthenticated())
			id, err := auth.CurrentUser()
			require.NoError(t, err)
			assert.Equal(t, "u-9", id.UserID)
		})
	}
}

// =============================================================================
// LOCAL SESSION CHECKS
// =============================================================================

func TestIsAuthenticated(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"no token", "", false},
		{"malformed", "not-a-jwt", false},
		{"future exp", signed(t, jwt.MapClaims{"user_id": "u", "exp": now.Add(time.Minute).Unix()}), true},
		{"past exp", signed(t, jwt.MapClaims{"user_id": "u", "exp": now.Add(-time.Minute).Unix()}), false},
		{"exp equals now", signed(t, jwt.MapClaims{"user_id": "u", "exp": now.Unix()}), false},
		{"no exp", signed(t, jwt.MapClaims{"user_id": "u"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewAuthService(New("http://unused", session.NewMemoryStore(tt.token)))
			assert.Equal(t, tt.want, auth.IsAuthenticatedAt(now))
		})
	}
}

func TestIsAuthenticated_SingleUser(t *testing.T) {
	auth := NewAuthService(New("http://unused", nil))
	assert.False(t, auth.IsAuthenticated())

	_, err := auth.CurrentUser()
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NoError(t, auth.Logout())
}

func TestCurrentUser(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"user_id": "u-7", "name": "Grace", "exp": time.Now().Add(time.Hour).Unix()})
	auth := NewAuthService(New("http://unused", session.NewMemoryStore(tok)))

	id, err := auth.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "u-7", id.UserID)
	assert.Equal(t, "Grace", id.DisplayName())
	assert.Equal(t, model.SourceToken, id.Source)
	assert.False(t, id.Verified())
}

func TestCurrentUser_Invalid(t *testing.T) {
	auth := NewAuthService(New("http://unused", session.NewMemoryStore("")))
	_, err := auth.CurrentUser()
	assert.ErrorIs(t, err, ErrInvalidToken)

	auth = NewAuthService(New("http://unused", session.NewMemoryStore("bad")))
	_, err = auth.CurrentUser()
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// =============================================================================
// SERVER FLOWS
// =============================================================================

func TestLogin_StoresToken(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	user := srv.AddUser("Ada", "ada@example.com", "hunter22")

	store, err := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	auth := NewAuthService(New(srv.BaseURL(), store))

	reply, err := auth.Login(context.Background(), model.Credentials{Email: "ada@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful!", reply.Message)
	assert.Equal(t, user.UserID, reply.User.UserID)
	assert.Equal(t, reply.Token, store.Token())
	assert.True(t, auth.IsAuthenticated())

	ev := <-store.Events()
	assert.Equal(t, session.EventLogin, ev.Kind)

	// Survives a restart.
	reopened, err := session.NewStore(store.Path())
	require.NoError(t, err)
	assert.Equal(t, reply.Token, reopened.Token())
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.AddUser("Ada", "ada@example.com", "hunter22")

	store := session.NewMemoryStore("")
	auth := NewAuthService(New(srv.BaseURL(), store))

	_, err := auth.Login(context.Background(), model.Credentials{Email: "ada@example.com", Password: "wrong"})
	assert.EqualError(t, err, "Invalid credentials!")
	assert.False(t, store.HasToken())
}

func TestLogin_FallbackMessage(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.Respond(http.MethodPost, "/login", http.StatusInternalServerError, "")

	auth := NewAuthService(New(srv.BaseURL(), session.NewMemoryStore("")))
	_, err := auth.Login(context.Background(), model.Credentials{Email: "a@b.c", Password: "x"})
	assert.EqualError(t, err, "Login failed")
}

func TestRegister(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	store := session.NewMemoryStore("")
	auth := NewAuthService(New(srv.BaseURL(), store))

	reply, err := auth.Register(context.Background(), model.Registration{Name: "Lin", Email: "lin@example.com", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, "Lin", reply.User.Name)
	assert.True(t, store.HasToken())

	_, err = auth.Register(context.Background(), model.Registration{Name: "Lin", Email: "lin@example.com", Password: "pw123456"})
	assert.EqualError(t, err, "User already exists!")
}

func TestRegister_FallbackMessage(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.Respond(http.MethodPost, "/register", http.StatusBadGateway, `{}`)

	auth := NewAuthService(New(srv.BaseURL(), session.NewMemoryStore("")))
	_, err := auth.Register(context.Background(), model.Registration{Email: "a@b.c", Password: "x"})
	assert.EqualError(t, err, "Registration failed")
}

func TestLogout(t *testing.T) {
	store := session.NewMemoryStore("tok")
	auth := NewAuthService(New("http://unused", store))

	require.NoError(t, auth.Logout())
	assert.False(t, store.HasToken())
	assert.Equal(t, session.EventLogout, (<-store.Events()).Kind)
}
