package usecase

import (
	"errors"
	"fmt"
	"strings"

	"movietix/pkg/utils"
)

// Sentinel errors of the booking core. Handlers translate these into the
// response envelope; nothing here leaks infrastructure detail to callers.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("requester does not own this resource")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrBookingExpired   = errors.New("booking has expired and cannot be cancelled")
	ErrAlreadyUsed      = errors.New("ticket has already been used")
	ErrInvalidTicket    = errors.New("ticket belongs to a cancelled booking")
	ErrInvalidCode      = errors.New("verification code does not match")
	ErrPolicyViolation  = errors.New("cancellation window for this show has closed")
	ErrShowtimeInactive = errors.New("showtime is not open for booking")
)

// ValidationError is a malformed or incomplete request. Caller's fault,
// never retried.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

// SeatsUnavailableError reports which requested seats conflict with booked
// seats or foreign holds. Distinguishable from policy errors so clients can
// prompt seat re-selection instead of showing a hard failure.
type SeatsUnavailableError struct {
	Seats []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats no longer available: %s", strings.Join(e.Seats, ", "))
}

// TransactionAbortedError wraps an infrastructure-level commit failure. By
// construction no partial state was persisted, so the whole operation is
// safe to retry.
type TransactionAbortedError struct {
	Err error
}

func (e *TransactionAbortedError) Error() string {
	return fmt.Sprintf("transaction aborted: %v", e.Err)
}

func (e *TransactionAbortedError) Unwrap() error {
	return e.Err
}
