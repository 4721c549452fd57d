package domain

import "errors"

// Repository errors.
var (
	ErrOperatorNotFound = errors.New("operator not found")
	ErrUsernameConflict = errors.New("username conflict")
	ErrRunNotFound      = errors.New("run report not found")
)

// Simulation session errors.
var (
	ErrSessionNotFound = errors.New("simulation session not found")
	ErrSessionFinished = errors.New("simulation session already finished")
)
