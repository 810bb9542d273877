package wire

import (
	"movietix/internal/adaptor"
	"movietix/internal/data/repository"
	"movietix/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireShowtime(
	r chi.Router,
	showtimeHandler *adaptor.ShowtimeHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/showtimes/{id}/seats - Seat map with holds and pricing
	r.Get("/api/showtimes/{id}/seats", showtimeHandler.GetSeatMap)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/showtimes/availability - Advisory conflict check
		r.Post("/api/showtimes/availability", showtimeHandler.CheckAvailability)

		// POST /api/showtimes/holds - Place short-lived seat holds
		r.Post("/api/showtimes/holds", showtimeHandler.HoldSeats)

		// DELETE /api/showtimes/holds - Release own holds early
		r.Delete("/api/showtimes/holds", showtimeHandler.ReleaseHolds)
	})
}
