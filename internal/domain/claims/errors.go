// Package claims provides domain types for the expense claim system.
package claims

import "errors"

// Domain errors returned by the claim store and lifecycle operations.
// Wrong-state transitions and unknown ids are expected, recoverable
// outcomes that callers branch on with errors.Is; they are never panics.
var (
	// ErrNotFound is returned when no claim exists for the given id.
	ErrNotFound = errors.New("claim not found")

	// ErrInvalidTransition is returned when a transition is attempted from
	// a disallowed source status. No state changes.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPolicyBlocked is returned when submit is attempted on a claim with
	// outstanding policy blocks. The claim stays in Draft.
	ErrPolicyBlocked = errors.New("claim blocked by policy")

	// ErrReasonRequired is returned when reject is called without a reason.
	ErrReasonRequired = errors.New("rejection reason required")

	// ErrVisitNotFound is returned when no visit exists for the given id.
	ErrVisitNotFound = errors.New("visit not found")
)
