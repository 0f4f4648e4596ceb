// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates the requested action is not defined
	// for the item's current status, or the caller's view of the item was
	// stale (version or status conflict).
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the actor lacks edit rights for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates a required field is missing or malformed.
	ErrValidation = errors.New("validation")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., sector name taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInUse indicates the entity is still referenced by others and
	// cannot be removed.
	ErrInUse = errors.New("in use")
)
