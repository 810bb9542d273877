package repository

import (
	"movietix/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User     UserRepository
	Session  SessionRepository
	Showtime ShowtimeRepository
	Booking  BookingRepository
	Ticket   TicketRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	showtime := NewShowtimeRepository(db, log)

	return &Repository{
		User:     NewUserRepository(db, log),
		Session:  NewSessionRepository(db, log),
		Showtime: showtime,
		Booking:  NewBookingRepository(db, showtime, log),
		Ticket:   NewTicketRepository(db, log),
	}
}
