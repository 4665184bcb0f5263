package app

import (
	"context"
	"log"

	"liftlog/internal/domain"
)

// Transition describes how an auth-state change moved the signed-in user.
type Transition int

const (
	Unchanged Transition = iota
	SignedIn
	SignedOut
)

// Guard enforces the allow-list on every auth-state change and remembers who
// is signed in. It is not safe for concurrent use; the owning Tracker
// serializes access.
type Guard struct {
	allow   domain.AllowList
	signOut func(ctx context.Context) error
	notify  func(kind NoticeKind, msg string)

	user    *domain.User
	checked bool
}

// NewGuard returns a guard that signs out identities missing from allow.
// notify may be nil.
func NewGuard(allow domain.AllowList, signOut func(ctx context.Context) error, notify func(NoticeKind, string)) *Guard {
	return &Guard{allow: allow, signOut: signOut, notify: notify}
}

// Observe handles an auth-state change. A nil identity means signed out.
// Identities that are not allow-listed are signed out with the provider and
// reported as ErrAccessDenied.
func (g *Guard) Observe(ctx context.Context, identity *domain.User) (Transition, error) {
	prev := g.user
	g.checked = true

	if identity == nil {
		g.user = nil
		return transition(prev, nil), nil
	}

	if !g.allow.Permits(identity.Email) {
		log.Printf("guard: %s is not on the allow-list", identity.Email)
		if g.notify != nil {
			g.notify(NoticeDenied, "Access denied. This site is only available to authorized users.")
		}
		if g.signOut != nil {
			if err := g.signOut(ctx); err != nil {
				log.Printf("guard: sign out %s: %v", identity.Email, err)
			}
		}
		g.user = nil
		return transition(prev, nil), domain.ErrAccessDenied
	}

	u := *identity
	g.user = &u
	return transition(prev, g.user), nil
}

// Current returns a copy of the signed-in user, or nil.
func (g *Guard) Current() *domain.User {
	if g.user == nil {
		return nil
	}
	u := *g.user
	return &u
}

// Checked reports whether at least one auth-state change has been observed,
// which separates "still loading" from "confirmed signed out".
func (g *Guard) Checked() bool {
	return g.checked
}

func transition(prev, next *domain.User) Transition {
	switch {
	case next == nil && prev != nil:
		return SignedOut
	case next != nil && (prev == nil || prev.ID != next.ID):
		return SignedIn
	}
	return Unchanged
}
