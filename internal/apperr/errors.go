package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrInsufficientFunds is returned when a wallet debit would drive the
// balance negative. Nothing is appended to the ledger in that case.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrLocationMismatch is returned when a cylinder movement claims a source
// location that does not match the cylinder's current derived location.
var ErrLocationMismatch = errors.New("cylinder location mismatch")

// ErrProofMissing is returned when a delivery completion carries no usable proof.
var ErrProofMissing = errors.New("delivery proof missing")

// ErrProofMismatch is returned when an OTP proof does not match the issued code.
var ErrProofMismatch = errors.New("delivery proof mismatch")

// ErrNoDriverAvailable is returned when dispatch exhausts all candidates.
// The order stays confirmed and is retried by the sweep.
var ErrNoDriverAvailable = errors.New("no driver available")

// ErrCapacityExceeded is returned for a forced assignment to a driver
// already at its concurrent-delivery cap.
var ErrCapacityExceeded = errors.New("driver capacity exceeded")

// ErrInvalidTransition is the errors.Is target for InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid status transition")

// InvalidTransitionError identifies the offending (from, to) pair of a
// rejected order status change.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Is makes errors.Is(err, ErrInvalidTransition) match.
func (e InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
