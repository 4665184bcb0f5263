package adapthttp

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"liftlog/internal/app"
	"liftlog/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

type contextKey string

const trackerContextKey contextKey = "tracker"

const (
	sessionCookie   = "session"
	testTrackerKey  = "test"
	forwardKeyScope = "forward:"
)

var errUnauthenticated = errors.New("unauthorized")

// identify resolves the caller to a tracker key and an identity, from the
// forward-auth headers when trusted and otherwise from the session cookie.
func (s *Server) identify(r *http.Request) (string, *domain.User, error) {
	if s.disableAuth {
		u := s.testUser
		return testTrackerKey, &u, nil
	}

	if s.cfg.TrustForwardAuth {
		remoteUser, remoteEmail := r.Header.Get("Remote-User"), r.Header.Get("Remote-Email")
		if remoteUser != "" || remoteEmail != "" {
			u, err := app.ForwardedUser(remoteUser, remoteEmail)
			if err != nil {
				return "", nil, errUnauthenticated
			}
			return forwardKeyScope + u.Email, u, nil
		}
	}

	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return "", nil, errUnauthenticated
	}
	user, err := s.auth.ValidateSession(r.Context(), cookie.Value, r.UserAgent())
	if errors.Is(err, app.ErrSessionNotFound) || errors.Is(err, app.ErrSessionExpired) {
		s.trackers.Drop(cookie.Value)
		return "", nil, errUnauthenticated
	}
	if err != nil {
		return "", nil, err
	}
	return cookie.Value, user, nil
}

// tracker returns the caller's tracker after feeding the identity through
// its guard. A denied identity yields the tracker and ErrAccessDenied; the
// tracker is no longer registered, so it lives only for this request.
func (s *Server) tracker(r *http.Request) (*app.Tracker, error) {
	key, user, err := s.identify(r)
	if err != nil {
		return nil, err
	}
	t := s.trackers.Get(key)
	err = t.OnAuthStateChanged(r.Context(), user)
	if errors.Is(err, domain.ErrAccessDenied) {
		s.trackers.Drop(key)
	}
	return t, err
}

// authMiddleware rejects requests without an allow-listed identity and puts
// the caller's tracker in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, err := s.tracker(r)
		switch {
		case errors.Is(err, errUnauthenticated):
			writeError(w, http.StatusUnauthorized, err)
			return
		case err != nil:
			writeError(w, statusFor(err), err)
			return
		}
		ctx := context.WithValue(r.Context(), trackerContextKey, t)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func trackerFrom(r *http.Request) *app.Tracker {
	t, _ := r.Context().Value(trackerContextKey).(*app.Tracker)
	return t
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Printf("%s %s %d %s %s", r.Method, r.URL.Path, status, time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

// csrfMiddleware protects cookie-authenticated requests that a browser can
// send cross-site without a preflight. JSON requests need a preflight and
// are left to CORS. Requests from the CORS origins are trusted, and their
// token cookie is SameSite=None so a front-end on another site can send it.
func csrfMiddleware(key []byte, corsOrigins []string) func(http.Handler) http.Handler {
	opts := []csrf.Option{csrf.Path("/")}
	if len(corsOrigins) > 0 {
		opts = append(opts,
			csrf.Secure(true), // browsers drop SameSite=None cookies without it
			csrf.SameSite(csrf.SameSiteNoneMode),
			csrf.TrustedOrigins(originHosts(corsOrigins)),
		)
	} else {
		opts = append(opts,
			csrf.Secure(false), // plain-HTTP installs behind a LAN proxy
			csrf.SameSite(csrf.SameSiteStrictMode),
		)
	}
	protect := csrf.Protect(key, opts...)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isJSON(r) {
				next.ServeHTTP(w, r)
				return
			}
			if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// originHosts turns origins such as "https://app.example.com" into the
// host form csrf.TrustedOrigins matches against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			hosts = append(hosts, o)
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
