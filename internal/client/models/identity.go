// Package models defines the client-side domain types: the authenticated
// identity, the credential pair, cracking jobs and statistics.
package models

import "time"

// Identity is the profile of the authenticated user. It exists only while
// the session is resolved and authenticated.
type Identity struct {
	ID        int64
	Username  string
	Email     string
	IsPaid    bool
	IsAdmin   bool
	CreatedAt time.Time
	LastLogin *time.Time
}

// Credentials is the opaque token pair issued on login or registration.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no access token is held.
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}

// AuthResult is what a successful login or registration returns.
type AuthResult struct {
	Credentials Credentials
	Identity    Identity
}
