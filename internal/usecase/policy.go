package usecase

import (
	"time"
)

// DefaultCancelWindow is how long before the show a booking must be
// cancelled when no window is configured.
const DefaultCancelWindow = 24 * time.Hour

// IsCancellable reports whether a booking for the given show start may
// still be cancelled at now. Exactly the window before the show is
// allowed; anything less blocks.
func IsCancellable(showStart, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultCancelWindow
	}
	return showStart.Sub(now) >= window
}

// ComputeRefund returns the amount to refund for a cancellation at now.
// The reference policy is a full refund once cancellation is permitted at
// all; kept amount-in/amount-out so partial-refund tiering can slot in
// without touching the ledger.
func ComputeRefund(total float64, showStart, now time.Time, window time.Duration) float64 {
	if !IsCancellable(showStart, now, window) {
		return 0
	}
	return total
}
