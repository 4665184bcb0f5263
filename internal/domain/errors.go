package domain

import "errors"

var (
	// ErrAccessDenied indicates an authenticated identity that is not on the allow-list.
	ErrAccessDenied = errors.New("access denied")
	// ErrRemoteRead indicates that loading from the document store failed.
	ErrRemoteRead = errors.New("remote read failed")
	// ErrRemoteWrite indicates that a save or delete against the document store failed.
	ErrRemoteWrite = errors.New("remote write failed")
	// ErrInvalidDay indicates an attempt to log a workout on a non-training day.
	ErrInvalidDay = errors.New("workouts are only logged on Monday, Wednesday and Friday")

	ErrNoUser       = errors.New("not signed in")
	ErrNoDraft      = errors.New("no workout is open")
	ErrNotEditing   = errors.New("no program day is being edited")
	ErrOutOfRange   = errors.New("index out of range")
	ErrInvalidSets  = errors.New("sets must be a whole number of at least 1")
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
)
