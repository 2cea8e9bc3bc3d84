package authz

import "errors"

// Sentinel errors returned by Service operations. Callers match with
// errors.Is; the HTTP layer maps each kind to a stable wire code. Nothing in
// this package panics or aborts the process.
var (
	// ErrInvalidCredentials is returned by Login for an unknown username or
	// a password mismatch. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrForbidden is returned when a non-admin attempts an admin-only
	// operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidParams is returned for structurally invalid input:
	// non-positive ids, empty required strings, editing an admin's
	// permissions, or deleting the bootstrap admin.
	ErrInvalidParams = errors.New("invalid params")

	// ErrNotFound is returned when the target user does not exist.
	ErrNotFound = errors.New("target user not found")

	// ErrAlreadyExists is returned by CreateUser on an id or username
	// collision.
	ErrAlreadyExists = errors.New("user already exists")

	// ErrInvalidToken is returned when a token does not resolve to a live
	// user.
	ErrInvalidToken = errors.New("invalid token")
)
