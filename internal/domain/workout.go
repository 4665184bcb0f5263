package domain

import (
	"context"
	"slices"
	"time"
)

// ExerciseLog is an exercise with one recorded weight per set. Weights is
// index-aligned with the sets; an empty string means not yet recorded.
type ExerciseLog struct {
	Name    string   `firestore:"name" json:"name"`
	Sets    int      `firestore:"sets" json:"sets"`
	Reps    string   `firestore:"reps" json:"reps"`
	Weights []string `firestore:"weights" json:"weights"`
}

// Workout is the log of one training day. At most one exists per user and date.
type Workout struct {
	UserID     string        `firestore:"userId" json:"userId"`
	Date       string        `firestore:"date" json:"date"`
	DayType    DayType       `firestore:"dayType" json:"dayType"`
	Name       string        `firestore:"name" json:"name"`
	Exercises  []ExerciseLog `firestore:"exercises" json:"exercises"`
	Cardio     string        `firestore:"cardio" json:"cardio"`
	CardioTime string        `firestore:"cardioTime" json:"cardioTime"`
	Notes      string        `firestore:"notes" json:"notes"`
	// UpdatedAt is assigned by the store on every write.
	UpdatedAt time.Time `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}

// NewWorkout builds a fresh draft for a training day from its template, with
// an empty weight slot for every set.
func NewWorkout(dayType DayType, tmpl ProgramDay) Workout {
	w := Workout{
		DayType:   dayType,
		Name:      tmpl.Name,
		Exercises: make([]ExerciseLog, 0, len(tmpl.Exercises)),
		Cardio:    tmpl.Cardio,
	}
	for _, ex := range tmpl.Exercises {
		w.Exercises = append(w.Exercises, ExerciseLog{
			Name:    ex.Name,
			Sets:    ex.Sets,
			Reps:    ex.Reps,
			Weights: make([]string, max(ex.Sets, 0)),
		})
	}
	return w
}

// Clone returns a deep copy of w.
func (w Workout) Clone() Workout {
	if w.Exercises == nil {
		return w
	}
	exs := make([]ExerciseLog, len(w.Exercises))
	for i, ex := range w.Exercises {
		ex.Weights = slices.Clone(ex.Weights)
		exs[i] = ex
	}
	w.Exercises = exs
	return w
}

// WithWeight returns a copy of w with a single weight slot replaced.
func (w Workout) WithWeight(exercise, set int, value string) (Workout, error) {
	if exercise < 0 || exercise >= len(w.Exercises) {
		return w, ErrOutOfRange
	}
	if set < 0 || set >= len(w.Exercises[exercise].Weights) {
		return w, ErrOutOfRange
	}
	out := w.Clone()
	out.Exercises[exercise].Weights[set] = value
	return out, nil
}

// WorkoutRepository is the port for workout persistence. Writes replace the
// whole document.
type WorkoutRepository interface {
	ListWorkouts(ctx context.Context, userID string) ([]Workout, error)
	// PutWorkout stores w under id and returns the timestamp the store
	// assigned to the write.
	PutWorkout(ctx context.Context, id string, w Workout) (time.Time, error)
	DeleteWorkout(ctx context.Context, id string) error
}
