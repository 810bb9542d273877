package entity

import (
	"time"

	"github.com/google/uuid"
)

type Showtime struct {
	Base
	MovieID        uuid.UUID `db:"movie_id"`
	TheaterID      uuid.UUID `db:"theater_id"`
	ScreenID       uuid.UUID `db:"screen_id"`
	ShowDate       time.Time `db:"show_date"`
	ShowTime       time.Time `db:"show_time"`
	EndTime        time.Time `db:"end_time"`
	Format         string    `db:"format"`   // 2D, 3D, IMAX
	Language       string    `db:"language"`
	TotalSeats     int       `db:"total_seats"`
	AvailableSeats int       `db:"available_seats"`
	IsActive       bool      `db:"is_active"`
}

// ShowStart combines the show date with the clock part of the show time.
func (s *Showtime) ShowStart() time.Time {
	return time.Date(
		s.ShowDate.Year(), s.ShowDate.Month(), s.ShowDate.Day(),
		s.ShowTime.Hour(), s.ShowTime.Minute(), 0, 0, s.ShowDate.Location(),
	)
}

// RowPricing is the per-row price schedule of a showtime. Rows are priced
// independently so a showtime can mix regular, premium and recliner seats.
type RowPricing struct {
	BaseSimple
	ShowtimeID     uuid.UUID `db:"showtime_id"`
	RowLabel       string    `db:"row_label"` // A, B, C, ...
	SeatType       string    `db:"seat_type"` // regular, premium, recliner
	BasePrice      float64   `db:"base_price"`
	ShowtimePrice  float64   `db:"showtime_price"`
	TotalSeats     int       `db:"total_seats"`
	AvailableSeats int       `db:"available_seats"`
}

// SeatHold is a short-lived reservation of a seat pending checkout. Holds
// are enforced at commit time: a seat held by another user cannot be
// committed until the hold expires, and the holder's own holds are promoted
// into booked seats atomically with the booking.
type SeatHold struct {
	BaseSimple
	ShowtimeID uuid.UUID `db:"showtime_id"`
	SeatID     string    `db:"seat_id"`
	UserID     uuid.UUID `db:"user_id"`
	SessionID  string    `db:"session_id"`
	ExpiresAt  time.Time `db:"expires_at"`
}

// Active reports whether the hold is still in force at the given instant.
func (h *SeatHold) Active(now time.Time) bool {
	return h.ExpiresAt.After(now)
}
