package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShowtimeUnavailable means the showtime does not exist or has been
	// deactivated; no seat operation may proceed against it.
	ErrShowtimeUnavailable = errors.New("showtime not found or inactive")

	// ErrNotCancellable means the guarded cancel UPDATE matched no row: a
	// concurrent cancel or expiry already moved the booking out of
	// confirmed.
	ErrNotCancellable = errors.New("booking is no longer cancellable")
)

// SeatConflictError is raised inside the seat-commit transaction when any
// requested seat is already booked or held by another user. The transaction
// is rolled back in full, so no partial seat state ever persists.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat conflict: %s", strings.Join(e.Seats, ", "))
}
