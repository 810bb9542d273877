package response

import (
	"time"

	"movietix/internal/data/entity"
)

type BookingResponse struct {
	BookingID     string               `json:"booking_id"`
	UserID        string               `json:"user_id"`
	MovieID       string               `json:"movie_id"`
	TheaterID     string               `json:"theater_id"`
	ScreenID      string               `json:"screen_id"`
	ShowtimeID    string               `json:"showtime_id"`
	Seats         []string             `json:"seats"`
	SeatPricing   []entity.SeatPricing `json:"seat_pricing"`
	Price         entity.PriceDetails  `json:"price"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	BookingStatus entity.BookingStatus `json:"booking_status"`
	BookedAt      time.Time            `json:"booked_at"`
	CancelledAt   *time.Time           `json:"cancelled_at,omitempty"`
	ShowDate      string               `json:"show_date"`
	ShowTime      string               `json:"show_time"`

	// TicketError is set when the booking committed but ticket issuance
	// failed; the booking itself stands and tickets can be re-issued.
	TicketError string `json:"ticket_error,omitempty"`

	Tickets []TicketResponse `json:"tickets,omitempty"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		BookingID:     b.BookingID,
		UserID:        b.UserID.String(),
		MovieID:       b.MovieID.String(),
		TheaterID:     b.TheaterID.String(),
		ScreenID:      b.ScreenID.String(),
		ShowtimeID:    b.ShowtimeID.String(),
		Seats:         b.Seats,
		SeatPricing:   b.SeatPricing,
		Price:         b.Price,
		PaymentStatus: b.PaymentStatus,
		BookingStatus: b.BookingStatus,
		BookedAt:      b.BookedAt,
		CancelledAt:   b.CancelledAt,
		ShowDate:      b.ShowDate.Format("2006-01-02"),
		ShowTime:      b.ShowTime.Format("15:04"),
	}
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = BookingToResponse(b)
	}
	return out
}
