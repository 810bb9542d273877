package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"movietix/internal/data/entity"
	"movietix/internal/data/repository"
	"movietix/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newBookingServiceForTest(showtimes *MockShowtimeRepository, bookings *MockBookingRepository, tickets *MockTicketService, cache *MockSeatCache, notifier *MockNotifier) *bookingService {
	return &bookingService{
		repo: &repository.Repository{
			Showtime: showtimes,
			Booking:  bookings,
		},
		tickets:      tickets,
		cache:        cache,
		notifier:     notifier,
		grace:        24 * time.Hour,
		cancelWindow: 24 * time.Hour,
		feePerSeat:   15,
		taxRate:      0.18,
		log:          zap.NewNop(),
	}
}

func futureShowtime(id uuid.UUID) *entity.Showtime {
	start := time.Now().Add(72 * time.Hour)
	return &entity.Showtime{
		Base:           entity.Base{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		MovieID:        uuid.New(),
		TheaterID:      uuid.New(),
		ScreenID:       uuid.New(),
		ShowDate:       start.Truncate(24 * time.Hour),
		ShowTime:       start,
		TotalSeats:     100,
		AvailableSeats: 98,
		IsActive:       true,
	}
}

func validCreateRequest(showtimeID uuid.UUID) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		ShowtimeID:    showtimeID.String(),
		MovieID:       uuid.New().String(),
		TheaterID:     uuid.New().String(),
		ScreenID:      uuid.New().String(),
		SelectedSeats: []string{"A1", "A2"},
		SeatPricing: []request.SeatPricingItem{
			{SeatID: "A1", SeatType: "regular", Price: 250},
			{SeatID: "A2", SeatType: "regular", Price: 250},
		},
		PriceDetails: request.PriceDetailsItem{
			Subtotal:       500,
			ConvenienceFee: 30,
			Taxes:          95.4,
			Total:          625.4,
		},
		PaymentStatus: "completed",
		Contact:       request.ContactInfo{Email: "guest@example.com"},
	}
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	showtimes := &MockShowtimeRepository{}
	bookings := &MockBookingRepository{}
	tickets := &MockTicketService{}
	cache := &MockSeatCache{}
	notifier := &MockNotifier{}
	service := newBookingServiceForTest(showtimes, bookings, tickets, cache, notifier)

	ctx := context.Background()
	userID := uuid.New()
	showtimeID := uuid.New()
	req := validCreateRequest(showtimeID)

	showtimes.On("FindByID", ctx, showtimeID).Return(futureShowtime(showtimeID), nil).Once()
	showtimes.On("BookedSeats", ctx, showtimeID).Return([]string{"B1"}, nil).Once()
	showtimes.On("ActiveHolds", ctx, showtimeID).Return([]*entity.SeatHold{}, nil).Once()
	bookings.On("CreateWithSeats", ctx, mock.AnythingOfType("*entity.Booking")).Return(nil).Once()
	cache.On("Invalidate", ctx, showtimeID.String()).Once()
	tickets.On("IssueTickets", ctx, mock.AnythingOfType("*entity.Booking")).Return([]*entity.Ticket{
		{TicketID: "TKT-20260310-00000001", SeatID: "A1"},
		{TicketID: "TKT-20260310-00000002", SeatID: "A2"},
	}, nil).Once()
	notifier.On("SendBookingConfirmation", "guest@example.com", mock.AnythingOfType("mailer.BookingMail")).Once()

	resp, err := service.CreateBooking(ctx, userID.String(), req)

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, []string{"A1", "A2"}, resp.Seats)
	assert.Equal(t, entity.BookingStatusConfirmed, resp.BookingStatus)
	assert.Empty(t, resp.TicketError)
	assert.Len(t, resp.Tickets, 2)
	assert.Contains(t, resp.BookingID, "MTX-")

	showtimes.AssertExpectations(t)
	bookings.AssertExpectations(t)
	tickets.AssertExpectations(t)
	cache.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestBookingService_CreateBooking_PreflightConflict(t *testing.T) {
	showtimes := &MockShowtimeRepository{}
	bookings := &MockBookingRepository{}
	service := newBookingServiceForTest(showtimes, bookings, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	showtimeID := uuid.New()
	req := validCreateRequest(showtimeID)

	showtimes.On("FindByID", ctx, showtimeID).Return(futureShowtime(showtimeID), nil).Once()
	showtimes.On("BookedSeats", ctx, showtimeID).Return([]string{"A2"}, nil).Once()
	showtimes.On("ActiveHolds", ctx, showtimeID).Return([]*entity.SeatHold{}, nil).Once()

	resp, err := service.CreateBooking(ctx, uuid.New().String(), req)

	assert.Nil(t, resp)
	var unavailable *SeatsUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A2"}, unavailable.Seats)

	bookings.AssertNotCalled(t, "CreateWithSeats", mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_ForeignHoldBlocks(t *testing.T) {
	showtimes := &MockShowtimeRepository{}
	bookings := &MockBookingRepository{}
	service := newBookingServiceForTest(showtimes, bookings, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	showtimeID := uuid.New()
	req := validCreateRequest(showtimeID)

	holds := []*entity.SeatHold{
		{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
			ShowtimeID: showtimeID,
			SeatID:     "A1",
			UserID:     uuid.New(),
			ExpiresAt:  time.Now().Add(5 * time.Minute),
		},
	}

	showtimes.On("FindByID", ctx, showtimeID).Return(futureShowtime(showtimeID), nil).Once()
	showtimes.On("BookedSeats", ctx, showtimeID).Return([]string{}, nil).Once()
	showtimes.On("ActiveHolds", ctx, showtimeID).Return(holds, nil).Once()

	resp, err := service.CreateBooking(ctx, uuid.New().String(), req)

	assert.Nil(t, resp)
	var unavailable *SeatsUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A1"}, unavailable.Seats)
	bookings.AssertNotCalled(t, "CreateWithSeats", mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_CommitConflict(t *testing.T) {
	showtimes := &MockShowtimeRepository{}
	bookings := &MockBookingRepository{}
	cache := &MockSeatCache{}
	service := newBookingServiceForTest(showtimes, bookings, &MockTicketService{}, cache, &MockNotifier{})

	ctx := context.Background()
	showtimeID := uuid.New()
	req := validCreateRequest(showtimeID)

	// Pre-flight is clean; another writer wins the race inside the
	// transaction.
	showtimes.On("FindByID", ctx, showtimeID).Return(futureShowtime(showtimeID), nil).Once()
	showtimes.On("BookedSeats", ctx, showtimeID).Return([]string{}, nil).Once()
	showtimes.On("ActiveHolds", ctx, showtimeID).Return([]*entity.SeatHold{}, nil).Once()
	bookings.On("CreateWithSeats", ctx, mock.AnythingOfType("*entity.Booking")).
		Return(&repository.SeatConflictError{Seats: []string{"A1"}}).Once()

	resp, err := service.CreateBooking(ctx, uuid.New().String(), req)

	assert.Nil(t, resp)
	var unavailable *SeatsUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A1"}, unavailable.Seats)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_InfrastructureFailure(t *testing.T) {
	showtimes := &MockShowtimeRepository{}
	bookings := &MockBookingRepository{}
	service := newBookingServiceForTest(showtimes, bookings, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	showtimeID := uuid.New()
	req := validCreateRequest(showtimeID)

	showtimes.On("FindByID", ctx, showtimeID).Return(futureShowtime(showtimeID), nil).Once()
	showtimes.On("BookedSeats", ctx, showtimeID).Return([]string{}, nil).Once()
	showtimes.On("ActiveHolds", ctx, showtimeID).Return([]*entity.SeatHold{}, nil).Once()
	bookings.On("CreateWithSeats", ctx, mock.AnythingOfType("*entity.Booking")).
		Return(errors.New("connection reset")).Once()

	resp, err := service.CreateBooking(ctx, uuid.New().String(), req)

	assert.Nil(t, resp)
	var aborted *TransactionAbortedError
	assert.ErrorAs(t, err, &aborted)
}

func TestBookingService_CreateBooking_TicketFailureKeepsBooking(t *testing.T) {
	showtimes := &MockShowtimeRepository{}
	bookings := &MockBookingRepository{}
	tickets := &MockTicketService{}
	cache := &MockSeatCache{}
	notifier := &MockNotifier{}
	service := newBookingServiceForTest(showtimes, bookings, tickets, cache, notifier)

	ctx := context.Background()
	showtimeID := uuid.New()
	req := validCreateRequest(showtimeID)

	showtimes.On("FindByID", ctx, showtimeID).Return(futureShowtime(showtimeID), nil).Once()
	showtimes.On("BookedSeats", ctx, showtimeID).Return([]string{}, nil).Once()
	showtimes.On("ActiveHolds", ctx, showtimeID).Return([]*entity.SeatHold{}, nil).Once()
	bookings.On("CreateWithSeats", ctx, mock.AnythingOfType("*entity.Booking")).Return(nil).Once()
	cache.On("Invalidate", ctx, showtimeID.String()).Once()
	tickets.On("IssueTickets", ctx, mock.AnythingOfType("*entity.Booking")).
		Return(nil, errors.New("tickets table unavailable")).Once()
	notifier.On("SendBookingConfirmation", "guest@example.com", mock.AnythingOfType("mailer.BookingMail")).Once()

	resp, err := service.CreateBooking(ctx, uuid.New().String(), req)

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.NotEmpty(t, resp.TicketError)
	assert.Empty(t, resp.Tickets)
	assert.Equal(t, entity.BookingStatusConfirmed, resp.BookingStatus)
}

func TestBookingService_CreateBooking_InactiveShowtime(t *testing.T) {
	showtimes := &MockShowtimeRepository{}
	service := newBookingServiceForTest(showtimes, &MockBookingRepository{}, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	showtimeID := uuid.New()
	st := futureShowtime(showtimeID)
	st.IsActive = false

	showtimes.On("FindByID", ctx, showtimeID).Return(st, nil).Once()

	resp, err := service.CreateBooking(ctx, uuid.New().String(), validCreateRequest(showtimeID))

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrShowtimeInactive)
}

func TestBookingService_CreateBooking_ShowtimeNotFound(t *testing.T) {
	showtimes := &MockShowtimeRepository{}
	service := newBookingServiceForTest(showtimes, &MockBookingRepository{}, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	showtimeID := uuid.New()

	showtimes.On("FindByID", ctx, showtimeID).Return(nil, nil).Once()

	resp, err := service.CreateBooking(ctx, uuid.New().String(), validCreateRequest(showtimeID))

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingService_CreateBooking_PricingMismatch(t *testing.T) {
	service := newBookingServiceForTest(&MockShowtimeRepository{}, &MockBookingRepository{}, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	showtimeID := uuid.New()
	req := validCreateRequest(showtimeID)
	req.SeatPricing = req.SeatPricing[:1]

	resp, err := service.CreateBooking(context.Background(), uuid.New().String(), req)

	assert.Nil(t, resp)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "seat_pricing")
}

func TestBookingService_CreateBooking_BreakdownMismatch(t *testing.T) {
	service := newBookingServiceForTest(&MockShowtimeRepository{}, &MockBookingRepository{}, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	showtimeID := uuid.New()
	req := validCreateRequest(showtimeID)
	req.PriceDetails.ConvenienceFee = 0
	req.PriceDetails.Total = 595.4

	resp, err := service.CreateBooking(context.Background(), uuid.New().String(), req)

	assert.Nil(t, resp)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "price_details.convenience_fee")
}

func confirmedBooking(userID uuid.UUID, showStart time.Time) *entity.Booking {
	now := time.Now()
	return &entity.Booking{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		BookingID:     "MTX-20260310-120000-000001",
		UserID:        userID,
		ShowtimeID:    uuid.New(),
		Seats:         []string{"A1", "A2"},
		Price:         entity.PriceDetails{Total: 625.4},
		PaymentStatus: entity.PaymentStatusCompleted,
		BookingStatus: entity.BookingStatusConfirmed,
		BookedAt:      now,
		ShowDate:      showStart.Truncate(24 * time.Hour),
		ShowTime:      showStart,
		ContactEmail:  "guest@example.com",
	}
}

func TestBookingService_CancelBooking_Success(t *testing.T) {
	bookings := &MockBookingRepository{}
	cache := &MockSeatCache{}
	notifier := &MockNotifier{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, cache, notifier)

	ctx := context.Background()
	userID := uuid.New()
	booking := confirmedBooking(userID, time.Now().Add(72*time.Hour))

	bookings.On("FindByBookingID", ctx, booking.BookingID).Return(booking, nil).Once()
	bookings.On("CancelWithRelease", ctx, booking, mock.AnythingOfType("time.Time")).Return(nil).Once()
	cache.On("Invalidate", ctx, booking.ShowtimeID.String()).Once()
	notifier.On("SendBookingCancellation", "guest@example.com", mock.AnythingOfType("mailer.BookingMail")).Once()

	resp, err := service.CancelBooking(ctx, booking.BookingID, userID.String(), false)

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, entity.BookingStatusCancelled, resp.BookingStatus)
	assert.Equal(t, entity.PaymentStatusRefunded, resp.PaymentStatus)

	bookings.AssertExpectations(t)
	cache.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestBookingService_CancelBooking_NotOwner(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	booking := confirmedBooking(uuid.New(), time.Now().Add(72*time.Hour))

	bookings.On("FindByBookingID", ctx, booking.BookingID).Return(booking, nil).Once()

	resp, err := service.CancelBooking(ctx, booking.BookingID, uuid.New().String(), false)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrForbidden)
	bookings.AssertNotCalled(t, "CancelWithRelease", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CancelBooking_AdminOverridesOwnership(t *testing.T) {
	bookings := &MockBookingRepository{}
	cache := &MockSeatCache{}
	notifier := &MockNotifier{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, cache, notifier)

	ctx := context.Background()
	booking := confirmedBooking(uuid.New(), time.Now().Add(72*time.Hour))

	bookings.On("FindByBookingID", ctx, booking.BookingID).Return(booking, nil).Once()
	bookings.On("CancelWithRelease", ctx, booking, mock.AnythingOfType("time.Time")).Return(nil).Once()
	cache.On("Invalidate", ctx, booking.ShowtimeID.String()).Once()
	notifier.On("SendBookingCancellation", mock.Anything, mock.Anything).Once()

	resp, err := service.CancelBooking(ctx, booking.BookingID, uuid.New().String(), true)

	assert.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestBookingService_CancelBooking_AlreadyCancelled(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	userID := uuid.New()
	booking := confirmedBooking(userID, time.Now().Add(72*time.Hour))
	booking.BookingStatus = entity.BookingStatusCancelled

	bookings.On("FindByBookingID", ctx, booking.BookingID).Return(booking, nil).Once()

	resp, err := service.CancelBooking(ctx, booking.BookingID, userID.String(), false)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestBookingService_CancelBooking_LostRaceSurfacesAlreadyCancelled(t *testing.T) {
	bookings := &MockBookingRepository{}
	cache := &MockSeatCache{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, cache, &MockNotifier{})

	ctx := context.Background()
	userID := uuid.New()
	booking := confirmedBooking(userID, time.Now().Add(72*time.Hour))

	// The in-memory snapshot still says confirmed, but another caller
	// cancelled first: the guarded UPDATE matches no row.
	bookings.On("FindByBookingID", ctx, booking.BookingID).Return(booking, nil).Once()
	bookings.On("CancelWithRelease", ctx, booking, mock.AnythingOfType("time.Time")).
		Return(fmt.Errorf("cancel booking %s: %w", booking.BookingID, repository.ErrNotCancellable)).Once()

	resp, err := service.CancelBooking(ctx, booking.BookingID, userID.String(), false)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestBookingService_CancelBooking_ConfiguredWindow(t *testing.T) {
	bookings := &MockBookingRepository{}
	cache := &MockSeatCache{}
	notifier := &MockNotifier{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, cache, notifier)
	service.cancelWindow = 2 * time.Hour

	ctx := context.Background()
	userID := uuid.New()
	booking := confirmedBooking(userID, time.Now().Add(3*time.Hour))

	bookings.On("FindByBookingID", ctx, booking.BookingID).Return(booking, nil).Once()
	bookings.On("CancelWithRelease", ctx, booking, mock.AnythingOfType("time.Time")).Return(nil).Once()
	cache.On("Invalidate", ctx, booking.ShowtimeID.String()).Once()
	notifier.On("SendBookingCancellation", mock.Anything, mock.Anything).Once()

	resp, err := service.CancelBooking(ctx, booking.BookingID, userID.String(), false)

	assert.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestBookingService_CancelBooking_InsideWindow(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	userID := uuid.New()
	booking := confirmedBooking(userID, time.Now().Add(2*time.Hour))

	bookings.On("FindByBookingID", ctx, booking.BookingID).Return(booking, nil).Once()

	resp, err := service.CancelBooking(ctx, booking.BookingID, userID.String(), false)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPolicyViolation)
	bookings.AssertNotCalled(t, "CancelWithRelease", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CancelBooking_NotFound(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	bookings.On("FindByBookingID", ctx, "MTX-unknown").Return(nil, nil).Once()

	resp, err := service.CancelBooking(ctx, "MTX-unknown", uuid.New().String(), false)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingService_UpdatePaymentStatus_CancelledBookingRejected(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	userID := uuid.New()
	booking := confirmedBooking(userID, time.Now().Add(72*time.Hour))
	booking.BookingStatus = entity.BookingStatusCancelled
	booking.PaymentStatus = entity.PaymentStatusRefunded

	bookings.On("FindByBookingID", ctx, booking.BookingID).Return(booking, nil).Once()

	resp, err := service.UpdatePaymentStatus(ctx, userID.String(), &request.UpdatePaymentStatusRequest{
		BookingID:     booking.BookingID,
		PaymentStatus: "completed",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	bookings.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_UpdatePaymentStatus_ExpiredBookingRejected(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	userID := uuid.New()
	booking := confirmedBooking(userID, time.Now().Add(72*time.Hour))
	booking.BookingStatus = entity.BookingStatusExpired
	booking.PaymentStatus = entity.PaymentStatusPending

	bookings.On("FindByBookingID", ctx, booking.BookingID).Return(booking, nil).Once()

	resp, err := service.UpdatePaymentStatus(ctx, userID.String(), &request.UpdatePaymentStatusRequest{
		BookingID:     booking.BookingID,
		PaymentStatus: "completed",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrBookingExpired)
	bookings.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_ProcessBookingExpiry(t *testing.T) {
	bookings := &MockBookingRepository{}
	cache := &MockSeatCache{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, cache, &MockNotifier{})

	ctx := context.Background()
	userID := uuid.New()
	first := confirmedBooking(userID, time.Now().Add(72*time.Hour))
	second := confirmedBooking(userID, time.Now().Add(72*time.Hour))
	second.BookingID = "MTX-20260310-120000-000002"

	bookings.On("FindStalePending", ctx, mock.AnythingOfType("time.Time"), 500).
		Return([]*entity.Booking{first, second}, nil).Once()
	// Second booking was already expired by a concurrent sweep.
	bookings.On("ExpireWithRelease", ctx, first).Return(true, nil).Once()
	bookings.On("ExpireWithRelease", ctx, second).Return(false, nil).Once()
	cache.On("Invalidate", ctx, first.ShowtimeID.String()).Once()

	expired, err := service.ProcessBookingExpiry(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, expired)

	bookings.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestBookingService_ProcessBookingExpiry_ContinuesPastFailures(t *testing.T) {
	bookings := &MockBookingRepository{}
	cache := &MockSeatCache{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, cache, &MockNotifier{})

	ctx := context.Background()
	userID := uuid.New()
	first := confirmedBooking(userID, time.Now().Add(72*time.Hour))
	second := confirmedBooking(userID, time.Now().Add(72*time.Hour))
	second.BookingID = "MTX-20260310-120000-000002"

	bookings.On("FindStalePending", ctx, mock.AnythingOfType("time.Time"), 500).
		Return([]*entity.Booking{first, second}, nil).Once()
	bookings.On("ExpireWithRelease", ctx, first).Return(false, errors.New("deadlock")).Once()
	bookings.On("ExpireWithRelease", ctx, second).Return(true, nil).Once()
	cache.On("Invalidate", ctx, second.ShowtimeID.String()).Once()

	expired, err := service.ProcessBookingExpiry(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, expired)
}

func TestBookingService_GetByBookingID_OwnershipEnforced(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := newBookingServiceForTest(&MockShowtimeRepository{}, bookings, &MockTicketService{}, &MockSeatCache{}, &MockNotifier{})

	ctx := context.Background()
	booking := confirmedBooking(uuid.New(), time.Now().Add(72*time.Hour))

	bookings.On("FindByBookingID", ctx, booking.BookingID).Return(booking, nil).Twice()

	resp, err := service.GetByBookingID(ctx, booking.BookingID, uuid.New().String(), false)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrForbidden)

	// Admin sees any booking.
	tickets := &MockTicketRepository{}
	service.repo.Ticket = tickets
	tickets.On("FindByBookingRef", ctx, booking.BookingID).Return([]*entity.Ticket{}, nil).Once()

	resp, err = service.GetByBookingID(ctx, booking.BookingID, uuid.New().String(), true)
	assert.NoError(t, err)
	assert.NotNil(t, resp)
}
