// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"errors"
	"log"
	"net/http"

	"liftlog/internal/app"
	"liftlog/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"golang.org/x/oauth2"
)

// OIDCConfig is the single-sign-on provider. The zero value disables SSO.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// NewOIDCConfig discovers issuer and builds the OAuth2 client for it.
func NewOIDCConfig(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (OIDCConfig, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return OIDCConfig{}, err
	}
	return OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	c := &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // sent on the redirect back from the provider
		MaxAge:   int(app.SessionTTL.Seconds()),
	}
	if len(s.cfg.CORSOrigins) > 0 {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, c)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled":   s.oidc.Enabled,
		"local_enabled": s.auth.HasLocalAccounts(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.auth.HasLocalAccounts() {
		writeError(w, http.StatusNotFound, errors.New("local sign-in disabled"))
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := s.auth.Login(r.Context(), req.Email, req.Password, r.UserAgent())
	switch {
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err)
		return
	case err != nil:
		writeError(w, statusFor(err), err)
		return
	}

	s.setSessionCookie(w, r, token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	key, _, err := s.identify(r)
	if err == nil {
		if err := s.trackers.Get(key).SignOut(r.Context()); err != nil {
			log.Printf("logout: %v", err)
		}
		s.trackers.Drop(key)
	} else if cookie, cerr := r.Cookie(sessionCookie); cerr == nil {
		_ = s.auth.Logout(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if !s.oidc.Enabled {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.oidc.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if !s.oidc.Enabled {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}

	state, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != state.Value {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "oauth_state", MaxAge: -1, Path: "/"})

	token, err := s.oidc.OAuth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "failed to exchange token", http.StatusInternalServerError)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "no id_token", http.StatusInternalServerError)
		return
	}

	idToken, err := s.oidc.Provider.Verifier(&oidc.Config{ClientID: s.oidc.OAuth2Config.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		http.Error(w, "failed to verify token", http.StatusInternalServerError)
		return
	}

	var claims struct {
		Email string `json:"email"`
		Sub   string `json:"sub"`
	}
	if err = idToken.Claims(&claims); err != nil {
		http.Error(w, "failed to parse claims", http.StatusInternalServerError)
		return
	}

	sessionToken, err := s.auth.LoginIdentity(r.Context(), domain.User{ID: claims.Sub, Email: claims.Email}, r.UserAgent())
	if errors.Is(err, domain.ErrAccessDenied) {
		log.Printf("sso: %s is not on the allow-list", claims.Email)
		http.Redirect(w, r, "/?error=access_denied", http.StatusFound)
		return
	}
	if err != nil {
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	s.setSessionCookie(w, r, sessionToken)
	http.Redirect(w, r, "/", http.StatusFound)
}

type sessionResponse struct {
	app.State
	Notices []app.Notice `json:"notices"`
}

// handleSession reports who is signed in and drains pending notices. It
// answers for anonymous callers too, so the front-end can tell "not signed
// in" from "still checking".
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if len(s.cfg.CSRFKey) > 0 {
		w.Header().Set("X-CSRF-Token", csrf.Token(r))
	}

	t, err := s.tracker(r)
	if errors.Is(err, errUnauthenticated) {
		writeJSON(w, http.StatusOK, sessionResponse{
			State:   app.State{AuthChecked: true},
			Notices: []app.Notice{},
		})
		return
	}
	if t == nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := sessionResponse{State: t.State(), Notices: t.DrainNotices()}
	if resp.Notices == nil {
		resp.Notices = []app.Notice{}
	}
	writeJSON(w, http.StatusOK, resp)
}
