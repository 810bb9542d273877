package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"movietix/internal/data/entity"
	"movietix/internal/data/repository"
	"movietix/internal/dto/request"
	"movietix/internal/dto/response"
	"movietix/pkg/mailer"
	"movietix/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeatCache is the read-side seat-map cache. Mutating operations only ever
// invalidate; the database stays authoritative.
type SeatCache interface {
	Get(ctx context.Context, showtimeID string, dest any) (bool, error)
	Set(ctx context.Context, showtimeID string, value any) error
	Invalidate(ctx context.Context, showtimeID string)
}

// Notifier dispatches booking mail fire-and-forget. Delivery is never part
// of the booking's success.
type Notifier interface {
	SendBookingConfirmation(to string, data mailer.BookingMail)
	SendBookingCancellation(to string, data mailer.BookingMail)
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*response.BookingResponse, error)
	UpdatePaymentStatus(ctx context.Context, requesterID string, req *request.UpdatePaymentStatusRequest) (*response.BookingResponse, error)
	ProcessBookingExpiry(ctx context.Context) (int, error)

	GetByBookingID(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetUpcomingBookings(ctx context.Context, userID string) ([]response.BookingResponse, error)
	GetBookingHistory(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingsByShowtime(ctx context.Context, showtimeID string) ([]response.BookingResponse, error)
}

type bookingService struct {
	repo         *repository.Repository
	tickets      TicketService
	cache        SeatCache
	notifier     Notifier
	grace        time.Duration
	cancelWindow time.Duration
	feePerSeat   float64
	taxRate      float64
	log          *zap.Logger
}

func NewBookingService(repo *repository.Repository, tickets TicketService, cache SeatCache, notifier Notifier, config *utils.Config, log *zap.Logger) BookingService {
	return &bookingService{
		repo:         repo,
		tickets:      tickets,
		cache:        cache,
		notifier:     notifier,
		grace:        config.Booking.PaymentGrace,
		cancelWindow: config.Booking.CancelWindow,
		feePerSeat:   config.Booking.ConvenienceFee,
		taxRate:      config.Booking.TaxRate,
		log:          log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}
	if err := s.validatePricing(req); err != nil {
		return nil, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"user_id": "Must be a valid UUID"}}
	}
	showtimeID, err := uuid.Parse(req.ShowtimeID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"showtime_id": "Must be a valid UUID"}}
	}

	showtime, err := s.repo.Showtime.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("load showtime: %w", err)
	}
	if showtime == nil {
		return nil, ErrNotFound
	}
	if !showtime.IsActive || showtime.ShowStart().Before(time.Now()) {
		return nil, ErrShowtimeInactive
	}

	// Pre-flight conflict check. Advisory only: the authoritative check
	// repeats inside the seat-commit transaction.
	booked, err := s.repo.Showtime.BookedSeats(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("load booked seats: %w", err)
	}
	holds, err := s.repo.Showtime.ActiveHolds(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("load seat holds: %w", err)
	}

	conflicts := ConflictingSeats(booked, req.SelectedSeats)
	conflicts = append(conflicts, SeatsHeldByOthers(holds, req.SelectedSeats, userUUID, time.Now())...)
	if len(conflicts) > 0 {
		return nil, &SeatsUnavailableError{Seats: conflicts}
	}

	booking := buildBooking(userUUID, showtime, req)

	if err := s.repo.Booking.CreateWithSeats(ctx, booking); err != nil {
		return nil, s.translateCommitError(err)
	}

	s.cache.Invalidate(ctx, showtimeID.String())

	s.log.Info("Booking created",
		zap.String("booking_id", booking.BookingID),
		zap.String("user_id", userID),
		zap.String("showtime_id", showtimeID.String()),
		zap.Strings("seats", booking.Seats),
		zap.Float64("total", booking.Price.Total),
	)

	resp := response.BookingToResponse(booking)

	// Tickets are a derived projection: failure here never unwinds the
	// committed booking, it is surfaced for re-issue instead.
	tickets, err := s.tickets.IssueTickets(ctx, booking)
	if err != nil {
		s.log.Error("Ticket issuance failed after booking commit",
			zap.Error(err),
			zap.String("booking_id", booking.BookingID),
		)
		resp.TicketError = fmt.Sprintf("tickets could not be issued: %v", err)
	} else {
		resp.Tickets = response.TicketsToResponse(tickets)
	}

	if s.notifier != nil && booking.ContactEmail != "" {
		s.notifier.SendBookingConfirmation(booking.ContactEmail, mailer.BookingMail{
			BookingID: booking.BookingID,
			Seats:     booking.Seats,
			ShowDate:  resp.ShowDate,
			ShowTime:  resp.ShowTime,
			Total:     booking.Price.Total,
		})
	}

	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*response.BookingResponse, error) {
	requester, err := uuid.Parse(requesterID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"requester_id": "Must be a valid UUID"}}
	}

	booking, err := s.repo.Booking.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	if !isAdmin && booking.UserID != requester {
		return nil, ErrForbidden
	}

	if err := terminalStateError(booking.BookingStatus); err != nil {
		return nil, err
	}

	now := time.Now()
	if !IsCancellable(booking.ShowStart(), now, s.cancelWindow) {
		return nil, ErrPolicyViolation
	}
	refund := ComputeRefund(booking.Price.Total, booking.ShowStart(), now, s.cancelWindow)

	if err := s.repo.Booking.CancelWithRelease(ctx, booking, now); err != nil {
		return nil, s.translateCommitError(err)
	}

	s.cache.Invalidate(ctx, booking.ShowtimeID.String())

	booking.BookingStatus = entity.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.PaymentStatus = entity.PaymentStatusRefunded

	s.log.Info("Booking cancelled",
		zap.String("booking_id", booking.BookingID),
		zap.String("requester_id", requesterID),
		zap.Float64("refund", refund),
	)

	resp := response.BookingToResponse(booking)

	if s.notifier != nil && booking.ContactEmail != "" {
		s.notifier.SendBookingCancellation(booking.ContactEmail, mailer.BookingMail{
			BookingID: booking.BookingID,
			Seats:     booking.Seats,
			ShowDate:  resp.ShowDate,
			ShowTime:  resp.ShowTime,
			Total:     refund,
		})
	}

	return &resp, nil
}

func (s *bookingService) UpdatePaymentStatus(ctx context.Context, requesterID string, req *request.UpdatePaymentStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	requester, err := uuid.Parse(requesterID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"requester_id": "Must be a valid UUID"}}
	}

	booking, err := s.repo.Booking.FindByBookingID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	if booking.UserID != requester {
		return nil, ErrForbidden
	}

	// Cancelled and expired bookings keep their final payment state; a
	// refunded booking must never read as paid again.
	if err := terminalStateError(booking.BookingStatus); err != nil {
		return nil, err
	}

	status := entity.PaymentStatus(req.PaymentStatus)
	if err := s.repo.Booking.UpdatePaymentStatus(ctx, req.BookingID, status, req.PaymentID); err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	booking.PaymentStatus = status
	if req.PaymentID != nil {
		booking.PaymentID = req.PaymentID
	}

	s.log.Info("Payment status updated",
		zap.String("booking_id", req.BookingID),
		zap.String("status", req.PaymentStatus),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// ProcessBookingExpiry sweeps unpaid bookings past the grace window. Each
// transition is independently idempotent, so an interrupted sweep can
// simply run again.
func (s *bookingService) ProcessBookingExpiry(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.grace)

	stale, err := s.repo.Booking.FindStalePending(ctx, cutoff, 500)
	if err != nil {
		return 0, fmt.Errorf("find stale bookings: %w", err)
	}

	expired := 0
	for _, booking := range stale {
		transitioned, err := s.repo.Booking.ExpireWithRelease(ctx, booking)
		if err != nil {
			s.log.Error("Failed to expire booking",
				zap.Error(err),
				zap.String("booking_id", booking.BookingID),
			)
			continue
		}
		if transitioned {
			expired++
			s.cache.Invalidate(ctx, booking.ShowtimeID.String())
			s.log.Info("Booking expired",
				zap.String("booking_id", booking.BookingID),
				zap.Time("booked_at", booking.BookedAt),
				zap.Strings("seats_released", booking.Seats),
			)
		}
	}

	return expired, nil
}

func (s *bookingService) GetByBookingID(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*response.BookingResponse, error) {
	requester, err := uuid.Parse(requesterID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"requester_id": "Must be a valid UUID"}}
	}

	booking, err := s.repo.Booking.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	if !isAdmin && booking.UserID != requester {
		return nil, ErrForbidden
	}

	resp := response.BookingToResponse(booking)

	tickets, err := s.repo.Ticket.FindByBookingRef(ctx, bookingID)
	if err != nil {
		s.log.Warn("Failed to load tickets for booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
	} else {
		resp.Tickets = response.TicketsToResponse(tickets)
	}

	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"user_id": "Must be a valid UUID"}}
	}

	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetUpcomingBookings(ctx context.Context, userID string) ([]response.BookingResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"user_id": "Must be a valid UUID"}}
	}

	bookings, err := s.repo.Booking.FindUpcomingByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("get upcoming bookings: %w", err)
	}

	return response.BookingsToResponse(bookings), nil
}

func (s *bookingService) GetBookingHistory(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"user_id": "Must be a valid UUID"}}
	}

	bookings, err := s.repo.Booking.FindHistoryByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get booking history: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count booking history: %w", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetBookingsByShowtime(ctx context.Context, showtimeID string) ([]response.BookingResponse, error) {
	showtimeUUID, err := uuid.Parse(showtimeID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"showtime_id": "Must be a valid UUID"}}
	}

	bookings, err := s.repo.Booking.FindByShowtimeID(ctx, showtimeUUID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by showtime: %w", err)
	}

	return response.BookingsToResponse(bookings), nil
}

// translateCommitError maps repository failures onto the core taxonomy.
// Conflicts and unavailable showtimes are user-facing; everything else is
// infrastructure and safe to retry whole, since the unit of work left no
// partial state behind.
func (s *bookingService) translateCommitError(err error) error {
	var conflict *repository.SeatConflictError
	if errors.As(err, &conflict) {
		return &SeatsUnavailableError{Seats: conflict.Seats}
	}
	if errors.Is(err, repository.ErrShowtimeUnavailable) {
		return ErrShowtimeInactive
	}
	// A guarded cancel that matched no row means a concurrent cancel or
	// expiry won; the second caller sees the terminal state, not a 500.
	if errors.Is(err, repository.ErrNotCancellable) {
		return ErrAlreadyCancelled
	}
	return &TransactionAbortedError{Err: err}
}

// terminalStateError maps a terminal booking status to its sentinel; nil
// for statuses that still admit transitions.
func terminalStateError(status entity.BookingStatus) error {
	if !status.Terminal() {
		return nil
	}
	if status == entity.BookingStatusCancelled {
		return ErrAlreadyCancelled
	}
	return ErrBookingExpired
}

// priceTolerance absorbs float rounding in client-computed breakdowns.
const priceTolerance = 0.01

// validatePricing checks that every selected seat is priced and that the
// claimed breakdown adds up under the configured convenience fee and tax
// rate. Payment happens upstream, but the amounts recorded on the ledger
// must still be internally consistent.
func (s *bookingService) validatePricing(req *request.CreateBookingRequest) error {
	if len(req.SeatPricing) != len(req.SelectedSeats) {
		return &ValidationError{Fields: map[string]string{
			"seat_pricing": "Must cover every selected seat",
		}}
	}

	priced := make(map[string]struct{}, len(req.SeatPricing))
	subtotal := 0.0
	for _, sp := range req.SeatPricing {
		priced[sp.SeatID] = struct{}{}
		subtotal += sp.Price
	}
	for _, seat := range req.SelectedSeats {
		if _, ok := priced[seat]; !ok {
			return &ValidationError{Fields: map[string]string{
				"seat_pricing": fmt.Sprintf("Missing price for seat %s", seat),
			}}
		}
	}

	if math.Abs(req.PriceDetails.Subtotal-subtotal) > priceTolerance {
		return &ValidationError{Fields: map[string]string{
			"price_details.subtotal": "Must equal the sum of seat prices",
		}}
	}

	fee := s.feePerSeat * float64(len(req.SelectedSeats))
	if math.Abs(req.PriceDetails.ConvenienceFee-fee) > priceTolerance {
		return &ValidationError{Fields: map[string]string{
			"price_details.convenience_fee": fmt.Sprintf("Must be %.2f for %d seats", fee, len(req.SelectedSeats)),
		}}
	}

	taxes := (subtotal + fee) * s.taxRate
	if math.Abs(req.PriceDetails.Taxes-taxes) > priceTolerance {
		return &ValidationError{Fields: map[string]string{
			"price_details.taxes": fmt.Sprintf("Must be %.2f at the current tax rate", taxes),
		}}
	}

	total := subtotal + fee + taxes - req.PriceDetails.Discount
	if math.Abs(req.PriceDetails.Total-total) > priceTolerance {
		return &ValidationError{Fields: map[string]string{
			"price_details.total": "Breakdown does not add up",
		}}
	}

	return nil
}

func buildBooking(userID uuid.UUID, showtime *entity.Showtime, req *request.CreateBookingRequest) *entity.Booking {
	now := time.Now()

	seatPricing := make([]entity.SeatPricing, len(req.SeatPricing))
	for i, sp := range req.SeatPricing {
		seatPricing[i] = entity.SeatPricing{SeatID: sp.SeatID, SeatType: sp.SeatType, Price: sp.Price}
	}

	// Payment is confirmed externally before the booking reaches us; absent
	// an explicit status the booking is treated as paid.
	paymentStatus := entity.PaymentStatusCompleted
	if req.PaymentStatus != "" {
		paymentStatus = entity.PaymentStatus(req.PaymentStatus)
	}

	movieID, _ := uuid.Parse(req.MovieID)
	theaterID, _ := uuid.Parse(req.TheaterID)
	screenID, _ := uuid.Parse(req.ScreenID)

	return &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:     utils.GenerateBookingID(),
		UserID:        userID,
		MovieID:       movieID,
		TheaterID:     theaterID,
		ScreenID:      screenID,
		ShowtimeID:    showtime.ID,
		Seats:         req.SelectedSeats,
		SeatPricing:   seatPricing,
		Price: entity.PriceDetails{
			Subtotal:       req.PriceDetails.Subtotal,
			ConvenienceFee: req.PriceDetails.ConvenienceFee,
			Taxes:          req.PriceDetails.Taxes,
			Discount:       req.PriceDetails.Discount,
			Total:          req.PriceDetails.Total,
		},
		PaymentStatus: paymentStatus,
		PaymentID:     req.PaymentID,
		BookingStatus: entity.BookingStatusConfirmed,
		BookedAt:      now,
		ShowDate:      showtime.ShowDate,
		ShowTime:      showtime.ShowTime,
		ContactEmail:  req.Contact.Email,
		ContactPhone:  req.Contact.Phone,
	}
}
