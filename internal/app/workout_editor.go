package app

import (
	"context"
	"fmt"
	"time"

	"liftlog/internal/domain"
)

// Field names a single editable field in a tagged update.
type Field string

const (
	FieldName       Field = "name"
	FieldSets       Field = "sets"
	FieldReps       Field = "reps"
	FieldCardio     Field = "cardio"
	FieldCardioTime Field = "cardioTime"
	FieldNotes      Field = "notes"
)

// Draft is the workout open in the editor.
type Draft struct {
	Date    string         `json:"date"`
	Workout domain.Workout `json:"workout"`
}

// OpenDay opens the workout editor for date. An existing workout is loaded
// as is; otherwise a fresh draft is built from the program template. Dates
// that are not training days are rejected without touching any state.
func (t *Tracker) OpenDay(date time.Time) (Draft, error) {
	date = date.In(t.loc)
	dayType := domain.DayOfWeek(date)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.guard.Current() == nil {
		return Draft{}, domain.ErrNoUser
	}
	if dayType == domain.DayNone {
		t.noticeLocked(NoticeWarning, "Workouts are only on Monday, Wednesday and Friday!")
		return Draft{}, domain.ErrInvalidDay
	}

	key := domain.DateKey(date)
	var w domain.Workout
	if existing, ok := t.cache[key]; ok {
		w = existing.Clone()
	} else {
		tmpl, _ := t.program.Day(dayType)
		w = domain.NewWorkout(dayType, tmpl)
	}

	t.selected = key
	t.draft = &w
	return t.draftLocked(), nil
}

// Draft returns the open draft. ok is false when the editor is closed.
func (t *Tracker) Draft() (d Draft, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.draft == nil {
		return Draft{}, false
	}
	return t.draftLocked(), true
}

// SetWeight records the weight of one set in the draft. Nothing is written
// to the store until SaveDraft.
func (t *Tracker) SetWeight(exercise, set int, value string) (Draft, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.draft == nil {
		return Draft{}, domain.ErrNoDraft
	}
	next, err := t.draft.WithWeight(exercise, set, value)
	if err != nil {
		return Draft{}, fmt.Errorf("exercise %d set %d: %w", exercise, set, err)
	}
	t.draft = &next
	return t.draftLocked(), nil
}

// UpdateDraft sets the cardio time or notes of the draft.
func (t *Tracker) UpdateDraft(field Field, value string) (Draft, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.draft == nil {
		return Draft{}, domain.ErrNoDraft
	}
	next := t.draft.Clone()
	switch field {
	case FieldCardioTime:
		next.CardioTime = value
	case FieldNotes:
		next.Notes = value
	default:
		return Draft{}, fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}
	t.draft = &next
	return t.draftLocked(), nil
}

// SaveDraft writes the draft and closes the editor. The editor is closed
// whether or not the write succeeds; failures are also queued as notices.
func (t *Tracker) SaveDraft(ctx context.Context) error {
	t.mu.Lock()
	if t.draft == nil {
		t.mu.Unlock()
		return domain.ErrNoDraft
	}
	key, w := t.selected, *t.draft
	t.closeDraftLocked()
	t.mu.Unlock()

	return t.saveWorkout(ctx, key, w)
}

// DeleteDraft deletes the workout open in the editor. Without confirmation
// it does nothing and reports false.
func (t *Tracker) DeleteDraft(ctx context.Context, confirmed bool) (bool, error) {
	t.mu.Lock()
	if t.draft == nil {
		t.mu.Unlock()
		return false, domain.ErrNoDraft
	}
	if !confirmed {
		t.mu.Unlock()
		return false, nil
	}
	key := t.selected
	t.closeDraftLocked()
	t.mu.Unlock()

	return true, t.deleteWorkout(ctx, key)
}

// CloseDraft discards the draft.
func (t *Tracker) CloseDraft() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeDraftLocked()
}

func (t *Tracker) closeDraftLocked() {
	t.draft = nil
	t.selected = ""
}

func (t *Tracker) draftLocked() Draft {
	return Draft{Date: t.selected, Workout: t.draft.Clone()}
}
