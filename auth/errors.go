package auth

import "errors"

// Authentication errors
var (
	ErrMissingField       = errors.New("username and password are required")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoActiveSession    = errors.New("no active session")
	ErrInvalidCredential  = errors.New("credential is invalid or expired")
	ErrUnknownStrategy    = errors.New("unknown authentication strategy")
)
