package service

import "errors"

var (
	// ErrAlreadyExists is returned by registration when the username is taken.
	ErrAlreadyExists = errors.New("username already exists")
	// ErrNotFound is returned when the referenced user record does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited is returned while the login throttle window is closed.
	ErrRateLimited = errors.New("too many login attempts")
	// ErrUnauthorized is returned when no admin key was presented at all.
	ErrUnauthorized = errors.New("admin key required")
	// ErrForbidden is returned when the presented admin key does not match.
	ErrForbidden = errors.New("invalid admin key")
)
