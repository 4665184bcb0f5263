package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"liftlog/internal/domain"
)

// LoadWorkouts replaces the local cache with every workout the signed-in
// user owns, keyed by date. On failure the cache is left as it was.
func (t *Tracker) LoadWorkouts(ctx context.Context) error {
	t.mu.Lock()
	user := t.guard.Current()
	if user == nil {
		t.mu.Unlock()
		return nil
	}
	t.loading = true
	t.mu.Unlock()

	list, err := t.workouts.ListWorkouts(ctx, user.ID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.sameUserLocked(user) {
		return nil
	}
	t.loading = false
	if err != nil {
		t.noticeLocked(NoticeError, "Could not load workouts")
		return fmt.Errorf("%w: load workouts: %w", domain.ErrRemoteRead, err)
	}

	cache := make(map[string]domain.Workout, len(list))
	for _, w := range list {
		cache[w.Date] = w
	}
	t.cache = cache
	return nil
}

// LoadProgram replaces the in-memory program with the stored one. When the
// user has none, or the read fails, the current template stays.
func (t *Tracker) LoadProgram(ctx context.Context) error {
	t.mu.Lock()
	user := t.guard.Current()
	t.mu.Unlock()
	if user == nil {
		return nil
	}

	p, err := t.programs.GetProgram(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("%w: load program: %w", domain.ErrRemoteRead, err)
	}
	if p == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sameUserLocked(user) {
		t.program = p.Clone()
	}
	return nil
}

// SaveProgram replaces the user's program document. The in-memory program
// changes only after the write succeeds.
func (t *Tracker) SaveProgram(ctx context.Context, p domain.Program) error {
	t.mu.Lock()
	user := t.guard.Current()
	t.mu.Unlock()
	if user == nil {
		return nil
	}

	p = p.Clone()
	err := t.programs.PutProgram(ctx, user.ID, p)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		log.Printf("save program for %s: %v", user.ID, err)
		if t.sameUserLocked(user) {
			t.noticeLocked(NoticeError, "Could not save the program")
		}
		return fmt.Errorf("%w: save program: %w", domain.ErrRemoteWrite, err)
	}
	if t.sameUserLocked(user) {
		t.program = p
	}
	return nil
}

// SaveWorkout writes w as the workout for date and, once the store confirms,
// makes it the cache entry for that date.
func (t *Tracker) SaveWorkout(ctx context.Context, date time.Time, w domain.Workout) error {
	return t.saveWorkout(ctx, t.dateKey(date), w)
}

// DeleteWorkout removes the workout for date and, once the store confirms,
// drops it from the cache.
func (t *Tracker) DeleteWorkout(ctx context.Context, date time.Time) error {
	return t.deleteWorkout(ctx, t.dateKey(date))
}

func (t *Tracker) saveWorkout(ctx context.Context, key string, w domain.Workout) error {
	t.mu.Lock()
	user := t.guard.Current()
	t.mu.Unlock()
	if user == nil {
		return nil
	}

	payload := w.Clone()
	payload.UserID = user.ID
	payload.Date = key
	payload.UpdatedAt = time.Time{}

	updatedAt, err := t.workouts.PutWorkout(ctx, domain.WorkoutID(user.ID, key), payload)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		log.Printf("save workout %s for %s: %v", key, user.ID, err)
		if t.sameUserLocked(user) {
			t.noticeLocked(NoticeError, "Could not save the workout")
		}
		return fmt.Errorf("%w: save workout %s: %w", domain.ErrRemoteWrite, key, err)
	}
	if t.sameUserLocked(user) {
		payload.UpdatedAt = updatedAt
		t.cache[key] = payload
	}
	return nil
}

func (t *Tracker) deleteWorkout(ctx context.Context, key string) error {
	t.mu.Lock()
	user := t.guard.Current()
	t.mu.Unlock()
	if user == nil {
		return nil
	}

	err := t.workouts.DeleteWorkout(ctx, domain.WorkoutID(user.ID, key))

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		log.Printf("delete workout %s for %s: %v", key, user.ID, err)
		if t.sameUserLocked(user) {
			t.noticeLocked(NoticeError, "Could not delete the workout")
		}
		return fmt.Errorf("%w: delete workout %s: %w", domain.ErrRemoteWrite, key, err)
	}
	if t.sameUserLocked(user) {
		delete(t.cache, key)
	}
	return nil
}
