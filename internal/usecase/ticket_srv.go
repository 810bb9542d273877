package usecase

import (
	"context"
	"fmt"
	"time"

	"movietix/internal/data/entity"
	"movietix/internal/data/repository"
	"movietix/internal/dto/request"
	"movietix/internal/dto/response"
	"movietix/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TicketService interface {
	IssueTickets(ctx context.Context, booking *entity.Booking) ([]*entity.Ticket, error)
	ReissueTickets(ctx context.Context, bookingID, requesterID string, isAdmin bool) ([]response.TicketResponse, error)
	GetBookingTickets(ctx context.Context, bookingID, requesterID string, isAdmin bool) ([]response.TicketResponse, error)
	ValidateTicket(ctx context.Context, req *request.ValidateTicketRequest) (*response.TicketResponse, error)
	MarkUsed(ctx context.Context, ticketID string) (*response.TicketResponse, error)
	TicketQR(ctx context.Context, ticketID, requesterID string, isAdmin bool) ([]byte, error)
}

type ticketService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewTicketService(repo *repository.Repository, log *zap.Logger) TicketService {
	return &ticketService{
		repo: repo,
		log:  log.With(zap.String("service", "ticket")),
	}
}

// IssueTickets materializes one ticket per booked seat. The batch insert is
// atomic, so issuance either produces the full set or nothing, which keeps
// re-issue after a failure straightforward.
func (s *ticketService) IssueTickets(ctx context.Context, booking *entity.Booking) ([]*entity.Ticket, error) {
	tickets, err := buildTickets(booking)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Ticket.CreateBatch(ctx, tickets); err != nil {
		return nil, fmt.Errorf("issue tickets for booking %s: %w", booking.BookingID, err)
	}

	s.log.Info("Tickets issued",
		zap.String("booking_id", booking.BookingID),
		zap.Int("count", len(tickets)),
	)

	return tickets, nil
}

// ReissueTickets creates the tickets for a booking whose initial issuance
// failed. It refuses when any tickets already exist to keep ticket IDs
// stable once handed out.
func (s *ticketService) ReissueTickets(ctx context.Context, bookingID, requesterID string, isAdmin bool) ([]response.TicketResponse, error) {
	booking, err := s.authorizedBooking(ctx, bookingID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	if booking.BookingStatus != entity.BookingStatusConfirmed {
		return nil, ErrInvalidTicket
	}

	existing, err := s.repo.Ticket.CountByBookingRef(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}
	if existing > 0 {
		tickets, err := s.repo.Ticket.FindByBookingRef(ctx, bookingID)
		if err != nil {
			return nil, fmt.Errorf("load tickets: %w", err)
		}
		return response.TicketsToResponse(tickets), nil
	}

	tickets, err := s.IssueTickets(ctx, booking)
	if err != nil {
		return nil, err
	}

	return response.TicketsToResponse(tickets), nil
}

func (s *ticketService) GetBookingTickets(ctx context.Context, bookingID, requesterID string, isAdmin bool) ([]response.TicketResponse, error) {
	if _, err := s.authorizedBooking(ctx, bookingID, requesterID, isAdmin); err != nil {
		return nil, err
	}

	tickets, err := s.repo.Ticket.FindByBookingRef(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}

	return response.TicketsToResponse(tickets), nil
}

// ValidateTicket is the venue check-in. A ticket is honored once: the
// verification code must match, the backing booking must still be
// confirmed, and the used flag flips atomically so a duplicate scan is
// rejected even when two gates validate concurrently.
func (s *ticketService) ValidateTicket(ctx context.Context, req *request.ValidateTicketRequest) (*response.TicketResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	ticket, err := s.repo.Ticket.FindByTicketID(ctx, req.TicketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrNotFound
	}

	if ticket.VerificationCode != req.VerificationCode {
		s.log.Warn("Ticket validation with wrong code", zap.String("ticket_id", req.TicketID))
		return nil, ErrInvalidCode
	}

	return s.consumeTicket(ctx, ticket)
}

// MarkUsed flips a ticket to used without a code check, for manual
// override at the gate. Same single-use and cancelled-booking guards as
// ValidateTicket.
func (s *ticketService) MarkUsed(ctx context.Context, ticketID string) (*response.TicketResponse, error) {
	ticket, err := s.repo.Ticket.FindByTicketID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrNotFound
	}

	return s.consumeTicket(ctx, ticket)
}

func (s *ticketService) consumeTicket(ctx context.Context, ticket *entity.Ticket) (*response.TicketResponse, error) {
	booking, err := s.repo.Booking.FindByBookingID(ctx, ticket.BookingRef)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil || booking.BookingStatus != entity.BookingStatusConfirmed {
		return nil, ErrInvalidTicket
	}

	if ticket.IsUsed {
		return nil, ErrAlreadyUsed
	}

	now := time.Now()
	marked, err := s.repo.Ticket.MarkUsed(ctx, ticket.TicketID, now)
	if err != nil {
		return nil, fmt.Errorf("mark ticket used: %w", err)
	}
	if !marked {
		// Lost the race to another gate.
		return nil, ErrAlreadyUsed
	}

	ticket.IsUsed = true
	ticket.UsedAt = &now

	s.log.Info("Ticket used",
		zap.String("ticket_id", ticket.TicketID),
		zap.String("booking_id", ticket.BookingRef),
		zap.String("seat_id", ticket.SeatID),
	)

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

// TicketQR renders the ticket's check-in payload as a PNG QR image.
func (s *ticketService) TicketQR(ctx context.Context, ticketID, requesterID string, isAdmin bool) ([]byte, error) {
	ticket, err := s.repo.Ticket.FindByTicketID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrNotFound
	}

	if !isAdmin {
		requester, err := uuid.Parse(requesterID)
		if err != nil || ticket.UserID != requester {
			return nil, ErrForbidden
		}
	}

	payload := fmt.Sprintf("%s:%s", ticket.TicketID, ticket.VerificationCode)
	img, err := utils.GenerateQRCode(payload, 256)
	if err != nil {
		return nil, fmt.Errorf("render ticket qr: %w", err)
	}

	return img, nil
}

func (s *ticketService) authorizedBooking(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*entity.Booking, error) {
	booking, err := s.repo.Booking.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}

	if !isAdmin {
		requester, err := uuid.Parse(requesterID)
		if err != nil || booking.UserID != requester {
			return nil, ErrForbidden
		}
	}

	return booking, nil
}

func buildTickets(booking *entity.Booking) ([]*entity.Ticket, error) {
	priceBySeat := make(map[string]entity.SeatPricing, len(booking.SeatPricing))
	for _, sp := range booking.SeatPricing {
		priceBySeat[sp.SeatID] = sp
	}

	now := time.Now()
	tickets := make([]*entity.Ticket, 0, len(booking.Seats))
	for _, seatID := range booking.Seats {
		code, err := utils.GenerateVerificationCode(8)
		if err != nil {
			return nil, fmt.Errorf("generate verification code: %w", err)
		}

		sp := priceBySeat[seatID]
		tickets = append(tickets, &entity.Ticket{
			BaseSimple:       entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			TicketID:         utils.GenerateTicketID(),
			BookingRef:       booking.BookingID,
			UserID:           booking.UserID,
			ShowtimeID:       booking.ShowtimeID,
			MovieID:          booking.MovieID,
			TheaterID:        booking.TheaterID,
			ScreenID:         booking.ScreenID,
			SeatID:           seatID,
			SeatType:         sp.SeatType,
			Price:            sp.Price,
			ShowDate:         booking.ShowDate,
			ShowTime:         booking.ShowTime,
			VerificationCode: code,
		})
	}

	return tickets, nil
}
