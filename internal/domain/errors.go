package domain

import "errors"

var (
	// ErrUserExists is returned when registering an already-taken user ID.
	ErrUserExists = errors.New("user id already exists")
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned for both unknown users and wrong
	// passwords, so logins cannot be used to enumerate user IDs.
	ErrInvalidCredentials = errors.New("invalid user id or password")
	// ErrMissingCredentials is returned when user ID or password is empty.
	ErrMissingCredentials = errors.New("user id and password are required")
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionExpired is returned when a quiz session has been idle past
	// the inactivity timeout and was discarded.
	ErrSessionExpired = errors.New("quiz session expired")
	// ErrQuestionIndex is returned for submissions outside the question set.
	ErrQuestionIndex = errors.New("question index out of range")
)
