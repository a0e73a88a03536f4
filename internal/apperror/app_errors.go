package apperror

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionFull        = errors.New("session is already full")
	ErrAlreadyInSession   = errors.New("connection is already in a session")
	ErrUnknownAction      = errors.New("unknown action")
	ErrConnectionNotFound = errors.New("connection not found")
)
