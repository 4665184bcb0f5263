package app

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"liftlog/internal/domain"
)

// EditingDay is a mutable copy of one program day, tagged with its key.
type EditingDay struct {
	Key domain.DayType `json:"dayKey"`
	domain.ProgramDay
}

// ProgramView is the program together with the program editor state.
type ProgramView struct {
	Program  domain.Program `json:"program"`
	EditMode bool           `json:"editMode"`
	Editing  *EditingDay    `json:"editing"`
}

// Program returns the current program and editor state.
func (t *Tracker) Program() ProgramView {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := ProgramView{Program: t.program.Clone(), EditMode: t.editMode}
	if t.editing != nil {
		e := t.editingLocked()
		v.Editing = &e
	}
	return v
}

// SetEditMode toggles the program editor. Leaving edit mode drops any
// unsaved day.
func (t *Tracker) SetEditMode(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.editMode = on
	if !on {
		t.editing = nil
	}
}

// StartEditing loads a copy of a program day into the editor.
func (t *Tracker) StartEditing(day domain.DayType) (EditingDay, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.guard.Current() == nil {
		return EditingDay{}, domain.ErrNoUser
	}
	pd, ok := t.program.Day(day)
	if !ok {
		return EditingDay{}, fmt.Errorf("%w: %q", domain.ErrInvalidDay, day)
	}
	t.editMode = true
	t.editing = &EditingDay{Key: day, ProgramDay: pd.Clone()}
	return t.editingLocked(), nil
}

// AddExercise appends a blank exercise with default sets and reps.
func (t *Tracker) AddExercise() (EditingDay, error) {
	return t.editDay(func(d *domain.ProgramDay) error {
		d.Exercises = append(d.Exercises, domain.Exercise{Sets: domain.DefaultSets, Reps: domain.DefaultReps})
		return nil
	})
}

// RemoveExercise drops the exercise at index.
func (t *Tracker) RemoveExercise(index int) (EditingDay, error) {
	return t.editDay(func(d *domain.ProgramDay) error {
		if index < 0 || index >= len(d.Exercises) {
			return domain.ErrOutOfRange
		}
		d.Exercises = slices.Delete(d.Exercises, index, index+1)
		return nil
	})
}

// UpdateExercise sets the name, sets or reps of the exercise at index.
func (t *Tracker) UpdateExercise(index int, field Field, value string) (EditingDay, error) {
	return t.editDay(func(d *domain.ProgramDay) error {
		if index < 0 || index >= len(d.Exercises) {
			return domain.ErrOutOfRange
		}
		ex := &d.Exercises[index]
		switch field {
		case FieldName:
			ex.Name = value
		case FieldReps:
			ex.Reps = value
		case FieldSets:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 1 {
				return domain.ErrInvalidSets
			}
			ex.Sets = n
		default:
			return fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
		}
		return nil
	})
}

// UpdateEditingDay sets the name or cardio of the day being edited.
func (t *Tracker) UpdateEditingDay(field Field, value string) (EditingDay, error) {
	return t.editDay(func(d *domain.ProgramDay) error {
		switch field {
		case FieldName:
			d.Name = value
		case FieldCardio:
			d.Cardio = value
		default:
			return fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
		}
		return nil
	})
}

// SaveEditedDay puts the edited day into the program and saves the whole
// program. Edit mode ends whatever the outcome.
func (t *Tracker) SaveEditedDay(ctx context.Context) error {
	t.mu.Lock()
	if t.editing == nil {
		t.mu.Unlock()
		return domain.ErrNotEditing
	}
	updated := t.program.WithDay(t.editing.Key, t.editing.ProgramDay.Clone())
	t.editing = nil
	t.editMode = false
	t.mu.Unlock()

	return t.SaveProgram(ctx, updated)
}

// CancelEditing discards the day being edited.
func (t *Tracker) CancelEditing() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.editing = nil
}

// editDay applies fn to a copy of the editing day and keeps the copy only if
// fn succeeds.
func (t *Tracker) editDay(fn func(d *domain.ProgramDay) error) (EditingDay, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.editing == nil {
		return EditingDay{}, domain.ErrNotEditing
	}
	next := t.editing.ProgramDay.Clone()
	if err := fn(&next); err != nil {
		return EditingDay{}, err
	}
	t.editing = &EditingDay{Key: t.editing.Key, ProgramDay: next}
	return t.editingLocked(), nil
}

func (t *Tracker) editingLocked() EditingDay {
	return EditingDay{Key: t.editing.Key, ProgramDay: t.editing.ProgramDay.Clone()}
}
