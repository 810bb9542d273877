package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusExpired
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// SeatPricing is the price breakdown for a single seat within a booking.
// It is embedded in the booking record, never shared.
type SeatPricing struct {
	SeatID   string  `json:"seat_id"`
	SeatType string  `json:"seat_type"`
	Price    float64 `json:"price"`
}

// PriceDetails is the aggregate price breakdown of a booking.
type PriceDetails struct {
	Subtotal       float64 `json:"subtotal"`
	ConvenienceFee float64 `json:"convenience_fee"`
	Taxes          float64 `json:"taxes"`
	Discount       float64 `json:"discount"`
	Total          float64 `json:"total"`
}

// Booking is the durable commercial record of seats purchased for a
// showtime. Seat identifiers are plain references; the showtime owns the
// seat state and is only ever mutated through the showtime repository.
type Booking struct {
	Base
	BookingID     string        `db:"booking_id"` // human-shareable, immutable
	UserID        uuid.UUID     `db:"user_id"`
	MovieID       uuid.UUID     `db:"movie_id"`
	TheaterID     uuid.UUID     `db:"theater_id"`
	ScreenID      uuid.UUID     `db:"screen_id"`
	ShowtimeID    uuid.UUID     `db:"showtime_id"`
	Seats         []string      `db:"seats"`
	SeatPricing   []SeatPricing `db:"seat_pricing"`
	Price         PriceDetails  `db:"price_details"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	PaymentID     *string       `db:"payment_id"`
	BookingStatus BookingStatus `db:"booking_status"`
	BookedAt      time.Time     `db:"booked_at"`
	CancelledAt   *time.Time    `db:"cancelled_at"`
	ShowDate      time.Time     `db:"show_date"` // snapshot at booking time
	ShowTime      time.Time     `db:"show_time"`
	ContactEmail  string        `db:"contact_email"`
	ContactPhone  string        `db:"contact_phone"`
}

// ShowStart combines the snapshotted show date with the show time's clock.
func (b *Booking) ShowStart() time.Time {
	return time.Date(
		b.ShowDate.Year(), b.ShowDate.Month(), b.ShowDate.Day(),
		b.ShowTime.Hour(), b.ShowTime.Minute(), 0, 0, b.ShowDate.Location(),
	)
}
