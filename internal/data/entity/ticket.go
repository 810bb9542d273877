package entity

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is the per-seat admission artifact derived from a booking. Tickets
// carry a snapshot of the show so they stay printable even if the showtime
// record changes later. A cancelled booking makes its tickets non-honorable
// without physically deleting them.
type Ticket struct {
	BaseSimple
	TicketID         string     `db:"ticket_id"` // human-shareable
	BookingRef       string     `db:"booking_ref"`
	UserID           uuid.UUID  `db:"user_id"`
	ShowtimeID       uuid.UUID  `db:"showtime_id"`
	MovieID          uuid.UUID  `db:"movie_id"`
	TheaterID        uuid.UUID  `db:"theater_id"`
	ScreenID         uuid.UUID  `db:"screen_id"`
	SeatID           string     `db:"seat_id"`
	SeatType         string     `db:"seat_type"`
	Price            float64    `db:"price"`
	ShowDate         time.Time  `db:"show_date"`
	ShowTime         time.Time  `db:"show_time"`
	IsUsed           bool       `db:"is_used"`
	UsedAt           *time.Time `db:"used_at"`
	VerificationCode string     `db:"verification_code"`
}
