// Package memory implements an in-memory document store for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"liftlog/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	workouts map[string]domain.Workout
	programs map[string]domain.Program
	sessions map[string]domain.Session

	now func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		workouts: make(map[string]domain.Workout),
		programs: make(map[string]domain.Program),
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

// Ensure interfaces are met.
var _ domain.WorkoutRepository = (*DB)(nil)
var _ domain.ProgramRepository = (*DB)(nil)
var _ domain.SessionRepository = (*DB)(nil)

// --- WorkoutRepository ---

// ListWorkouts returns every workout owned by userID, ordered by date.
func (db *DB) ListWorkouts(ctx context.Context, userID string) ([]domain.Workout, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Workout
	for _, w := range db.workouts {
		if w.UserID == userID {
			out = append(out, w.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out, nil
}

// PutWorkout replaces the workout stored under id.
func (db *DB) PutWorkout(ctx context.Context, id string, w domain.Workout) (time.Time, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	w = w.Clone()
	w.UpdatedAt = db.now().UTC()
	db.workouts[id] = w
	return w.UpdatedAt, nil
}

// DeleteWorkout removes the workout stored under id. Missing ids are not an error.
func (db *DB) DeleteWorkout(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.workouts, id)
	return nil
}

// --- ProgramRepository ---

// GetProgram returns the stored program, or nil if the user has none.
func (db *DB) GetProgram(ctx context.Context, userID string) (*domain.Program, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.programs[userID]
	if !ok {
		return nil, nil
	}
	p = p.Clone()
	return &p, nil
}

// PutProgram replaces the user's program.
func (db *DB) PutProgram(ctx context.Context, userID string, p domain.Program) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.programs[userID] = p.Clone()
	return nil
}

// --- SessionRepository ---

// CreateSession stores a new session.
func (db *DB) CreateSession(ctx context.Context, s domain.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sessions[s.Token] = s
	return nil
}

// GetSession retrieves a session by token.
func (db *DB) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.sessions[token]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// DeleteSession deletes a session.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.sessions, token)
	return nil
}

// DeleteExpiredSessions deletes all expired sessions.
func (db *DB) DeleteExpiredSessions(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := db.now()
	for k, v := range db.sessions {
		if now.After(v.ExpiresAt) {
			delete(db.sessions, k)
		}
	}
	return nil
}
