package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrContestFull           = errors.New("contest is full")
	ErrAlreadyJoined         = errors.New("contest already joined")
)
