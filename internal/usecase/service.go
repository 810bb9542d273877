package usecase

import (
	"movietix/internal/data/repository"
	"movietix/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	User     UserService
	Showtime ShowtimeService
	Booking  BookingService
	Ticket   TicketService
}

func NewService(repo *repository.Repository, cache SeatCache, notifier Notifier, config *utils.Config, log *zap.Logger) *Service {
	ticket := NewTicketService(repo, log)

	return &Service{
		User:     NewUserService(repo.User, log),
		Showtime: NewShowtimeService(repo, cache, config, log),
		Booking:  NewBookingService(repo, ticket, cache, notifier, config, log),
		Ticket:   ticket,
	}
}
