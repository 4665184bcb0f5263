// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"strings"
	"time"
)

// User represents an identity handed to us by an identity provider.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session represents an active user session.
type Session struct {
	Token     string
	UserID    string
	Email     string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// User returns the identity the session was issued for.
func (s *Session) User() *User {
	return &User{ID: s.UserID, Email: s.Email}
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) error
}

// Account is a locally configured sign-in, used when no SSO provider is set up.
type Account struct {
	Email        string
	PasswordHash string
}

// AllowList is the static set of email addresses permitted to use the app.
type AllowList struct {
	emails map[string]struct{}
}

// NewAllowList builds an allow-list. Matching ignores case and surrounding
// whitespace.
func NewAllowList(emails ...string) AllowList {
	a := AllowList{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		e = normalizeEmail(e)
		if e != "" {
			a.emails[e] = struct{}{}
		}
	}
	return a
}

// Permits reports whether email is on the list. An empty list permits nobody.
func (a AllowList) Permits(email string) bool {
	_, ok := a.emails[normalizeEmail(email)]
	return ok
}

// Len returns the number of permitted addresses.
func (a AllowList) Len() int {
	return len(a.emails)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
