// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"liftlog/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
)

// SessionTTL is how long a session stays valid after sign-in.
const SessionTTL = 24 * time.Hour

// AuthService handles sign-in against the identity providers and session
// management.
type AuthService struct {
	sessions domain.SessionRepository
	allow    domain.AllowList
	accounts map[string]domain.Account
	now      func() time.Time
}

// NewAuthService creates a new authentication service. accounts are the
// locally configured email/password sign-ins and may be empty.
func NewAuthService(sessions domain.SessionRepository, allow domain.AllowList, accounts []domain.Account) *AuthService {
	byEmail := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		byEmail[strings.ToLower(strings.TrimSpace(a.Email))] = a
	}
	return &AuthService{
		sessions: sessions,
		allow:    allow,
		accounts: byEmail,
		now:      time.Now,
	}
}

// HasLocalAccounts reports whether email/password sign-in is configured.
func (s *AuthService) HasLocalAccounts() bool {
	return len(s.accounts) > 0
}

// Login authenticates a local account and creates a session.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent string) (string, error) {
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.LoginIdentity(ctx, LocalUser(acct.Email), userAgent)
}

// LoginIdentity creates a session for an identity that was already
// authenticated elsewhere (e.g. via SSO). Identities missing from the
// allow-list get no session.
func (s *AuthService) LoginIdentity(ctx context.Context, user domain.User, userAgent string) (string, error) {
	if !s.allow.Permits(user.Email) {
		return "", domain.ErrAccessDenied
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	err = s.sessions.CreateSession(ctx, domain.Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		UserAgent: userAgent,
		ExpiresAt: now.Add(SessionTTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// ValidateSession checks if a session token is valid and matches the user agent.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, error) {
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, ErrSessionExpired
	}

	if !ConstantTimeCompare(session.UserAgent, userAgent) {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, ErrSessionExpired
	}

	return session.User(), nil
}

// PruneExpired removes expired sessions from the store.
func (s *AuthService) PruneExpired(ctx context.Context) error {
	return s.sessions.DeleteExpiredSessions(ctx)
}

// ForwardedUser builds the identity asserted by a trusted forward-auth proxy
// (Remote-User / Remote-Email headers).
func ForwardedUser(remoteUser, remoteEmail string) (*domain.User, error) {
	email := remoteEmail
	if email == "" && strings.Contains(remoteUser, "@") {
		email = remoteUser
	}
	if email == "" {
		return nil, errors.New("no remote user header")
	}
	u := LocalUser(email)
	return &u, nil
}

// LocalUser returns the identity for an email that has no provider-issued id.
// The id is a name-based UUID, so it is stable across restarts.
func LocalUser(email string) domain.User {
	email = strings.ToLower(strings.TrimSpace(email))
	return domain.User{
		ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
		Email: email,
	}
}

// HashPassword returns the bcrypt hash stored for a local account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
