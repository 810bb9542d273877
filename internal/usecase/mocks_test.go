package usecase

import (
	"context"
	"time"

	"movietix/internal/data/entity"
	"movietix/internal/dto/request"
	"movietix/internal/dto/response"
	"movietix/pkg/mailer"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockShowtimeRepository struct {
	mock.Mock
}

func (m *MockShowtimeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Showtime), args.Error(1)
}

func (m *MockShowtimeRepository) FindPricing(ctx context.Context, showtimeID uuid.UUID) ([]*entity.RowPricing, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.RowPricing), args.Error(1)
}

func (m *MockShowtimeRepository) BookedSeats(ctx context.Context, showtimeID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockShowtimeRepository) ActiveHolds(ctx context.Context, showtimeID uuid.UUID) ([]*entity.SeatHold, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.SeatHold), args.Error(1)
}

func (m *MockShowtimeRepository) HoldSeats(ctx context.Context, showtimeID uuid.UUID, seatIDs []string, userID uuid.UUID, sessionID string, ttl time.Duration) ([]*entity.SeatHold, error) {
	args := m.Called(ctx, showtimeID, seatIDs, userID, sessionID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.SeatHold), args.Error(1)
}

func (m *MockShowtimeRepository) ReleaseHolds(ctx context.Context, showtimeID, userID uuid.UUID, seatIDs []string) error {
	args := m.Called(ctx, showtimeID, userID, seatIDs)
	return args.Error(0)
}

func (m *MockShowtimeRepository) PurgeExpiredHolds(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShowtimeRepository) CommitSeatsTx(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID, seatIDs []string, bookingID, userID uuid.UUID) error {
	args := m.Called(ctx, tx, showtimeID, seatIDs, bookingID, userID)
	return args.Error(0)
}

func (m *MockShowtimeRepository) ReleaseSeatsTx(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID, seatIDs []string) (int, error) {
	args := m.Called(ctx, tx, showtimeID, seatIDs)
	return args.Int(0), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateWithSeats(ctx context.Context, booking *entity.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) CancelWithRelease(ctx context.Context, booking *entity.Booking, cancelledAt time.Time) error {
	args := m.Called(ctx, booking, cancelledAt)
	return args.Error(0)
}

func (m *MockBookingRepository) ExpireWithRelease(ctx context.Context, booking *entity.Booking) (bool, error) {
	args := m.Called(ctx, booking)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) FindByBookingID(ctx context.Context, bookingID string) (*entity.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) FindUpcomingByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindHistoryByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByShowtimeID(ctx context.Context, showtimeID uuid.UUID) ([]*entity.Booking, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Booking, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdatePaymentStatus(ctx context.Context, bookingID string, status entity.PaymentStatus, paymentID *string) error {
	args := m.Called(ctx, bookingID, status, paymentID)
	return args.Error(0)
}

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tickets []*entity.Ticket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) FindByTicketID(ctx context.Context, ticketID string) (*entity.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Ticket), args.Error(1)
}

func (m *MockTicketRepository) FindByBookingRef(ctx context.Context, bookingRef string) ([]*entity.Ticket, error) {
	args := m.Called(ctx, bookingRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountByBookingRef(ctx context.Context, bookingRef string) (int64, error) {
	args := m.Called(ctx, bookingRef)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) MarkUsed(ctx context.Context, ticketID string, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, ticketID, usedAt)
	return args.Bool(0), args.Error(1)
}

type MockSeatCache struct {
	mock.Mock
}

func (m *MockSeatCache) Get(ctx context.Context, showtimeID string, dest any) (bool, error) {
	args := m.Called(ctx, showtimeID, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatCache) Set(ctx context.Context, showtimeID string, value any) error {
	args := m.Called(ctx, showtimeID, value)
	return args.Error(0)
}

func (m *MockSeatCache) Invalidate(ctx context.Context, showtimeID string) {
	m.Called(ctx, showtimeID)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendBookingConfirmation(to string, data mailer.BookingMail) {
	m.Called(to, data)
}

func (m *MockNotifier) SendBookingCancellation(to string, data mailer.BookingMail) {
	m.Called(to, data)
}

type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) IssueTickets(ctx context.Context, booking *entity.Booking) ([]*entity.Ticket, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Ticket), args.Error(1)
}

func (m *MockTicketService) ReissueTickets(ctx context.Context, bookingID, requesterID string, isAdmin bool) ([]response.TicketResponse, error) {
	args := m.Called(ctx, bookingID, requesterID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]response.TicketResponse), args.Error(1)
}

func (m *MockTicketService) GetBookingTickets(ctx context.Context, bookingID, requesterID string, isAdmin bool) ([]response.TicketResponse, error) {
	args := m.Called(ctx, bookingID, requesterID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]response.TicketResponse), args.Error(1)
}

func (m *MockTicketService) ValidateTicket(ctx context.Context, req *request.ValidateTicketRequest) (*response.TicketResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.TicketResponse), args.Error(1)
}

func (m *MockTicketService) MarkUsed(ctx context.Context, ticketID string) (*response.TicketResponse, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.TicketResponse), args.Error(1)
}

func (m *MockTicketService) TicketQR(ctx context.Context, ticketID, requesterID string, isAdmin bool) ([]byte, error) {
	args := m.Called(ctx, ticketID, requesterID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
