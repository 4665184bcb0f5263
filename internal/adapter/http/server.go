package adapthttp

import (
	"net/http"
	"time"

	"liftlog/internal/app"
	"liftlog/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Config holds the HTTP-level settings.
type Config struct {
	WebDir string
	// TrustForwardAuth accepts Remote-User / Remote-Email headers set by an
	// authenticating reverse proxy.
	TrustForwardAuth bool
	// CORSOrigins enables CORS for a separately hosted front-end.
	CORSOrigins []string
	// CSRFKey enables CSRF protection when set (32 bytes).
	CSRFKey []byte
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth     *app.AuthService
	trackers *app.Registry
	oidc     OIDCConfig
	cfg      Config

	disableAuth bool
	testUser    domain.User
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, trackers *app.Registry, oidc OIDCConfig, cfg Config) *Server {
	return &Server{auth: auth, trackers: trackers, oidc: oidc, cfg: cfg}
}

// WithoutAuth makes every request act as user. For tests.
func (s *Server) WithoutAuth(user domain.User) *Server {
	s.disableAuth = true
	s.testUser = user
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(withNoCache)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(30 * time.Second))
		if len(s.cfg.CORSOrigins) > 0 {
			api.Use(cors.New(cors.Options{
				AllowedOrigins:   s.cfg.CORSOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
				ExposedHeaders:   []string{"X-CSRF-Token"},
				AllowCredentials: true,
			}).Handler)
		}
		if len(s.cfg.CSRFKey) > 0 {
			api.Use(csrfMiddleware(s.cfg.CSRFKey, s.cfg.CORSOrigins))
		}

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		api.Get("/config", s.handleConfig)
		api.Post("/login", s.handleLogin)
		api.Post("/logout", s.handleLogout)
		api.Get("/sso/login", s.handleSSOLogin)
		api.Get("/sso/callback", s.handleSSOCallback)
		api.Get("/session", s.handleSession)

		api.Group(func(p chi.Router) {
			p.Use(s.authMiddleware)

			p.Get("/calendar", s.handleCalendar)
			p.Post("/calendar/shift", s.handleCalendarShift)
			p.Get("/workouts", s.handleWorkouts)

			p.Post("/days/{date}/open", s.handleOpenDay)
			p.Get("/draft", s.handleDraft)
			p.Delete("/draft", s.handleCloseDraft)
			p.Patch("/draft", s.handleUpdateDraft)
			p.Put("/draft/weights", s.handleSetWeight)
			p.Post("/draft/save", s.handleSaveDraft)
			p.Post("/draft/delete", s.handleDeleteDraft)

			p.Get("/program", s.handleProgram)
			p.Put("/program/edit-mode", s.handleEditMode)
			p.Post("/program/days/{day}/edit", s.handleStartEditing)
			p.Patch("/program/editing", s.handleUpdateEditingDay)
			p.Delete("/program/editing", s.handleCancelEditing)
			p.Post("/program/editing/exercises", s.handleAddExercise)
			p.Patch("/program/editing/exercises/{index}", s.handleUpdateExercise)
			p.Delete("/program/editing/exercises/{index}", s.handleRemoveExercise)
			p.Post("/program/editing/save", s.handleSaveProgram)
		})
	})

	r.Handle("/*", spaFromDisk(s.cfg.WebDir))
	return r
}
