package app

import (
	"context"
	"log"
	"sync"
	"time"

	"liftlog/internal/domain"
)

// NoticeKind classifies a user-visible notice.
type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeDenied  NoticeKind = "denied"
	NoticeWarning NoticeKind = "warning"
)

// Notice is a message the front-end must show the user.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// TrackerDeps carries the collaborators of a Tracker.
type TrackerDeps struct {
	Workouts domain.WorkoutRepository
	Programs domain.ProgramRepository
	Allow    domain.AllowList
	// SignOut ends the identity-provider session. It is called when the
	// guard rejects an identity and on explicit sign-out.
	SignOut  func(ctx context.Context) error
	Location *time.Location
	Now      func() time.Time
}

// Tracker owns the state of one signed-in client: who is signed in, the
// local workout cache keyed by date, the program template, the visible month
// and the open editors. Methods are safe for concurrent use; each call is one
// event and events are applied one at a time. Store calls run without the
// lock held, and their effect is applied after the store confirms it.
type Tracker struct {
	workouts domain.WorkoutRepository
	programs domain.ProgramRepository
	signOut  func(ctx context.Context) error
	loc      *time.Location
	now      func() time.Time

	mu       sync.Mutex
	guard    *Guard
	loading  bool
	cache    map[string]domain.Workout
	program  domain.Program
	view     time.Time // first of the visible month
	selected string    // date key of the open workout
	draft    *domain.Workout
	editMode bool
	editing  *EditingDay
	notices  []Notice
}

// NewTracker creates a signed-out tracker showing the current month.
func NewTracker(d TrackerDeps) *Tracker {
	t := &Tracker{
		workouts: d.Workouts,
		programs: d.Programs,
		signOut:  d.SignOut,
		loc:      d.Location,
		now:      d.Now,
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if t.now == nil {
		t.now = time.Now
	}
	t.guard = NewGuard(d.Allow, d.SignOut, t.noticeLocked)
	t.resetLocked()

	today := t.now().In(t.loc)
	t.view = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, t.loc)
	return t
}

// OnAuthStateChanged feeds an identity-provider state change through the
// guard. When it signs a user in, workouts and the program are loaded before
// it returns.
func (t *Tracker) OnAuthStateChanged(ctx context.Context, identity *domain.User) error {
	t.mu.Lock()
	tr, err := t.guard.Observe(ctx, identity)
	switch tr {
	case SignedIn:
		t.resetLocked()
		t.loading = true
	case SignedOut:
		t.resetLocked()
	}
	t.mu.Unlock()

	if tr == SignedIn {
		t.load(ctx)
	}
	return err
}

// SignOut ends the provider session and drops everything that belonged to
// the user, restoring the default program.
func (t *Tracker) SignOut(ctx context.Context) error {
	if t.signOut != nil {
		if err := t.signOut(ctx); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.guard.Observe(ctx, nil)
	t.resetLocked()
	return nil
}

func (t *Tracker) load(ctx context.Context) {
	if err := t.LoadWorkouts(ctx); err != nil {
		log.Printf("tracker: %v", err)
	}
	if err := t.LoadProgram(ctx); err != nil {
		log.Printf("tracker: %v", err)
	}
}

// State is a snapshot of the session-level state.
type State struct {
	User        *domain.User `json:"user"`
	AuthChecked bool         `json:"authChecked"`
	Loading     bool         `json:"loading"`
}

// State returns the current session snapshot.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		User:        t.guard.Current(),
		AuthChecked: t.guard.Checked(),
		Loading:     t.loading,
	}
}

// User returns the signed-in user, or nil.
func (t *Tracker) User() *domain.User {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.guard.Current()
}

// Workouts returns a copy of the local cache.
func (t *Tracker) Workouts() map[string]domain.Workout {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]domain.Workout, len(t.cache))
	for k, w := range t.cache {
		out[k] = w.Clone()
	}
	return out
}

// Workout returns the cached workout for a date key.
func (t *Tracker) Workout(dateKey string) (domain.Workout, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.cache[dateKey]
	return w.Clone(), ok
}

// DrainNotices returns and clears the queued notices.
func (t *Tracker) DrainNotices() []Notice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.notices
	t.notices = nil
	return out
}

// Location is the time zone date keys are computed in.
func (t *Tracker) Location() *time.Location {
	return t.loc
}

func (t *Tracker) noticeLocked(kind NoticeKind, msg string) {
	t.notices = append(t.notices, Notice{Kind: kind, Message: msg})
}

func (t *Tracker) resetLocked() {
	t.loading = false
	t.cache = make(map[string]domain.Workout)
	t.program = domain.DefaultProgram()
	t.selected = ""
	t.draft = nil
	t.editMode = false
	t.editing = nil
}

// sameUserLocked reports whether u is still the signed-in user, so results
// of a store call that outlived its session are dropped.
func (t *Tracker) sameUserLocked(u *domain.User) bool {
	cur := t.guard.Current()
	return cur != nil && cur.ID == u.ID
}

func (t *Tracker) dateKey(date time.Time) string {
	return domain.DateKey(date.In(t.loc))
}
