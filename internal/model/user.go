// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// User is the account profile. The copy held by the client may be stale.
type User struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Streak      int    `json:"streak"`
	TotalPoints int    `json:"total_points"`
}

// Source records where the client obtained an identity.
type Source string

const (
	// SourceServer is a profile returned by login or registration.
	SourceServer Source = "server"
	// SourceToken is decoded from the bearer token without verification.
	// It is display data only and must never drive authorization.
	SourceToken Source = "token-unverified"
	// SourceStatic is the fixed identity of the single-user variant.
	SourceStatic Source = "static"
)

// Identity is a User tagged with its provenance.
type Identity struct {
	User
	Source Source `json:"source"`
}

// Verified reports whether the identity came from the server.
func (i Identity) Verified() bool {
	return i.Source == SourceServer
}

// DisplayName returns the name, falling back to the email and then a placeholder.
func (i Identity) DisplayName() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.Email != "":
		return i.Email
	default:
		return "friend"
	}
}

// StaticIdentity is the constant user of the single-user variant.
func StaticIdentity() Identity {
	return Identity{
		User: User{
			UserID: "default_user_123",
			Name:   "AI Motivation User",
			Email:  "user@example.com",
		},
		Source: SourceStatic,
	}
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
