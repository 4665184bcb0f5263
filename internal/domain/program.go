package domain

import (
	"context"
	"slices"
)

// DayType identifies one of the fixed training days. The zero value means
// "not a training day".
type DayType string

const (
	DayNone      DayType = ""
	DayMonday    DayType = "monday"
	DayWednesday DayType = "wednesday"
	DayFriday    DayType = "friday"
)

// TrainingDays lists the training days in week order.
var TrainingDays = []DayType{DayMonday, DayWednesday, DayFriday}

// Valid reports whether d is one of the training days.
func (d DayType) Valid() bool {
	return slices.Contains(TrainingDays, d)
}

// Default values for an exercise appended in the program editor.
const (
	DefaultSets = 4
	DefaultReps = "8-10"
)

// Exercise is one line of a program day.
type Exercise struct {
	Name string `firestore:"name" json:"name"`
	Sets int    `firestore:"sets" json:"sets"`
	Reps string `firestore:"reps" json:"reps"` // may be a range such as "8-10"
}

// ProgramDay is the template for one training day.
type ProgramDay struct {
	Name      string     `firestore:"name" json:"name"`
	Exercises []Exercise `firestore:"exercises" json:"exercises"`
	Cardio    string     `firestore:"cardio" json:"cardio"`
}

// Clone returns a copy that shares no slices with d.
func (d ProgramDay) Clone() ProgramDay {
	d.Exercises = slices.Clone(d.Exercises)
	if d.Exercises == nil {
		d.Exercises = []Exercise{}
	}
	return d
}

// Program is the three-day template a user trains from. It is stored as a
// single document keyed by user id.
type Program struct {
	Monday    ProgramDay `firestore:"monday" json:"monday"`
	Wednesday ProgramDay `firestore:"wednesday" json:"wednesday"`
	Friday    ProgramDay `firestore:"friday" json:"friday"`
}

// Day returns the template for d. ok is false for non-training days.
func (p Program) Day(d DayType) (day ProgramDay, ok bool) {
	switch d {
	case DayMonday:
		return p.Monday, true
	case DayWednesday:
		return p.Wednesday, true
	case DayFriday:
		return p.Friday, true
	}
	return ProgramDay{}, false
}

// WithDay returns a copy of p with day d replaced.
func (p Program) WithDay(d DayType, day ProgramDay) Program {
	p = p.Clone()
	switch d {
	case DayMonday:
		p.Monday = day
	case DayWednesday:
		p.Wednesday = day
	case DayFriday:
		p.Friday = day
	}
	return p
}

// Clone returns a deep copy of p.
func (p Program) Clone() Program {
	return Program{
		Monday:    p.Monday.Clone(),
		Wednesday: p.Wednesday.Clone(),
		Friday:    p.Friday.Clone(),
	}
}

// ProgramRepository is the port for program persistence.
type ProgramRepository interface {
	// GetProgram returns nil, nil when the user has no stored program.
	GetProgram(ctx context.Context, userID string) (*Program, error)
	PutProgram(ctx context.Context, userID string, p Program) error
}

const defaultCardio = "20-25 min treadmill cardio"

// DefaultProgram returns the template used until a user saves their own.
func DefaultProgram() Program {
	return Program{
		Monday: ProgramDay{
			Name: "Chest",
			Exercises: []Exercise{
				{Name: "Incline press", Sets: 4, Reps: "8-10"},
				{Name: "Seated machine shoulder press", Sets: 4, Reps: "8-10"},
				{Name: "Pec deck", Sets: 4, Reps: "8-10"},
				{Name: "Dumbbell front raise", Sets: 3, Reps: "8"},
			},
			Cardio: defaultCardio,
		},
		Wednesday: ProgramDay{
			Name: "Back",
			Exercises: []Exercise{
				{Name: "Lat pulldown", Sets: 4, Reps: "8-10"},
				{Name: "T-bar row", Sets: 4, Reps: "8-10"},
				{Name: "Pullover", Sets: 4, Reps: "8-10"},
				{Name: "Rear delt machine fly", Sets: 3, Reps: "8-10"},
			},
			Cardio: defaultCardio,
		},
		Friday: ProgramDay{
			Name: "Arms",
			Exercises: []Exercise{
				{Name: "Dumbbell biceps curl", Sets: 4, Reps: "8-10"},
				{Name: "Machine triceps pushdown", Sets: 4, Reps: "8-10"},
				{Name: "Dumbbell lateral raise", Sets: 4, Reps: "8-10"},
				{Name: "Back extension", Sets: 3, Reps: "12-15"},
			},
			Cardio: defaultCardio,
		},
	}
}
