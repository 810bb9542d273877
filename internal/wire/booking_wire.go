package wire

import (
	"movietix/internal/adaptor"
	"movietix/internal/data/repository"
	"movietix/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/bookings - Commit seats into a booking
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/bookings/{id} - Booking details (owner or admin)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)

		// PUT /api/bookings/{id}/cancel - Cancel with refund policy applied
		r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)

		// PUT /api/bookings/payment - Record the payment outcome
		r.Put("/api/bookings/payment", bookingHandler.UpdatePaymentStatus)

		// GET /api/user/bookings - Paginated booking list
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)

		// GET /api/user/bookings/upcoming - Confirmed bookings with a future show
		r.Get("/api/user/bookings/upcoming", bookingHandler.GetUpcomingBookings)

		// GET /api/user/bookings/history - Past and terminal bookings
		r.Get("/api/user/bookings/history", bookingHandler.GetBookingHistory)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(log))

		// GET /api/admin/showtimes/{id}/bookings - All bookings of a showtime
		r.Get("/api/admin/showtimes/{id}/bookings", bookingHandler.GetBookingsByShowtime)

		// POST /api/admin/bookings/expire - Run the expiry sweep now
		r.Post("/api/admin/bookings/expire", bookingHandler.RunExpirySweep)
	})
}
