package wire

import (
	"movietix/internal/adaptor"
	"movietix/internal/data/repository"
	"movietix/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTicket(
	r chi.Router,
	ticketHandler *adaptor.TicketHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// GET /api/bookings/{id}/tickets - Tickets of a booking
		r.Get("/api/bookings/{id}/tickets", ticketHandler.GetBookingTickets)

		// POST /api/bookings/{id}/tickets/reissue - Recover a failed issuance
		r.Post("/api/bookings/{id}/tickets/reissue", ticketHandler.ReissueTickets)

		// GET /api/tickets/{id}/qr - Ticket QR image for check-in
		r.Get("/api/tickets/{id}/qr", ticketHandler.TicketQR)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(log))

		// POST /api/admin/tickets/validate - Gate scan, marks the ticket used
		r.Post("/api/admin/tickets/validate", ticketHandler.ValidateTicket)

		// PUT /api/admin/tickets/{id}/use - Manual override without the code
		r.Put("/api/admin/tickets/{id}/use", ticketHandler.MarkTicketUsed)
	})
}
