// Package service implements the TaskHub domain services: authentication,
// tasks, users, comments, and the dashboard aggregation. Every operation
// takes the caller as an explicit policy.Principal and reports failures
// through the sentinel taxonomy below, which the transport layer maps onto
// response codes without inspecting message text.
package service

import (
	"errors"

	"github.com/taskhub/taskhub/store"
)

// Failure kinds. NotFound and Conflict share identity with the store
// sentinels so errors.Is works on either side of the boundary.
var (
	// ErrNotFound: the resource id does not exist. Checked before
	// authorization in read/update/delete paths.
	ErrNotFound = store.ErrNotFound

	// ErrUnauthorized: the caller lacks the role or ownership required for
	// the action. Distinct from ErrNotFound; never retryable.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument: malformed or semantically invalid input, such as
	// a blank password, an unknown role name, or a nonexistent assignee.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict: a uniqueness violation, such as a duplicate username.
	ErrConflict = store.ErrDuplicate

	// ErrInvalidCredentials: login failed. Deliberately does not
	// distinguish an unknown user from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
