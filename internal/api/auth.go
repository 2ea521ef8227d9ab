// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/session"
)

// Fallback messages for auth failures without a server message.
const (
	msgRegisterFailed = "Registration failed"
	msgLoginFailed    = "Login failed"
)

// =============================================================================
// TOKEN CLAIMS
// =============================================================================

// TokenClaims is the payload the server puts in its bearer tokens. Only
// user_id and exp are guaranteed; the display fields are optional.
type TokenClaims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	Name        string `json:"name,omitempty"`
	Streak      int    `json:"streak,omitempty"`
	TotalPoints int    `json:"total_points,omitempty"`
	jwt.RegisteredClaims
}

// DecodeToken reads the claims segment of a JWT WITHOUT verifying its
// signature or looking at its header. The result is display data only; the
// server remains the authority and answers a forged or expired token with 401.
func DecodeToken(token string) (*TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 || parts[1] == "" {
		return nil, ErrInvalidToken
	}
	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims := &TokenClaims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// =============================================================================
// AUTH SERVICE
// =============================================================================

// AuthService wraps the registration and login endpoints and the local
// session checks of the multi-user variant.
type AuthService struct {
	client *Client
	store  *session.Store
	now    func() time.Time
}

// NewAuthService returns an auth service sharing client's session store.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client, store: client.Session(), now: time.Now}
}

// Register creates an account. On success the returned token becomes the session.
func (s *AuthService) Register(ctx context.Context, reg model.Registration) (model.AuthReply, error) {
	var reply model.AuthReply
	if err := s.client.Do(ctx, http.MethodPost, "/register", reg, &reply, msgRegisterFailed); err != nil {
		return model.AuthReply{}, err
	}
	if err := s.adopt(reply.Token); err != nil {
		return model.AuthReply{}, err
	}
	log.Printf("AUTH_REGISTER | user=%s", reply.User.UserID)
	return reply, nil
}

// Login exchanges credentials for a token and stores it.
func (s *AuthService) Login(ctx context.Context, creds model.Credentials) (model.AuthReply, error) {
	var reply model.AuthReply
	if err := s.client.Do(ctx, http.MethodPost, "/login", creds, &reply, msgLoginFailed); err != nil {
		return model.AuthReply{}, err
	}
	if err := s.adopt(reply.Token); err != nil {
		return model.AuthReply{}, err
	}
	log.Printf("AUTH_LOGIN | user=%s", reply.User.UserID)
	return reply, nil
}

func (s *AuthService) adopt(token string) error {
	if token == "" || s.store == nil {
		return nil
	}
	if err := s.store.Set(token); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// CurrentUser decodes the stored token into an identity tagged
// model.SourceToken. No network call is made. A missing or undecodable
// token yields ErrInvalidToken.
func (s *AuthService) CurrentUser() (model.Identity, error) {
	if s.store == nil {
		return model.Identity{}, ErrInvalidToken
	}
	claims, err := DecodeToken(s.store.Token())
	if err != nil {
		return model.Identity{}, ErrInvalidToken
	}
	return model.Identity{
		User: model.User{
			UserID:      claims.UserID,
			Email:       claims.Email,
			Name:        claims.Name,
			Streak:      claims.Streak,
			TotalPoints: claims.TotalPoints,
		},
		Source: model.SourceToken,
	}, nil
}

// IsAuthenticated reports whether a token is held and its exp claim is
// strictly in the future. It never fails and never calls the server.
func (s *AuthService) IsAuthenticated() bool {
	return s.IsAuthenticatedAt(s.now())
}

// IsAuthenticatedAt is IsAuthenticated evaluated at t.
func (s *AuthService) IsAuthenticatedAt(t time.Time) bool {
	if s.store == nil {
		return false
	}
	claims, err := DecodeToken(s.store.Token())
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.After(t)
}

// Logout forgets the token. The server is not contacted.
func (s *AuthService) Logout() error {
	if s.store == nil {
		return nil
	}
	log.Printf("AUTH_LOGOUT | source=local")
	return s.store.Clear()
}
