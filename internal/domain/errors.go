package domain

import "errors"

var (
	// ErrInterviewNotFound is returned when no durable interview record
	// exists for the given id.
	ErrInterviewNotFound = errors.New("interview not found")

	// ErrSessionNotFound is returned when a live session cannot be
	// resolved for an operation that requires one.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInterviewEnded is returned when an operation arrives for a
	// session that has already been marked finished.
	ErrInterviewEnded = errors.New("interview already ended")
)
