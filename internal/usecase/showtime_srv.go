package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movietix/internal/data/repository"
	"movietix/internal/dto/request"
	"movietix/internal/dto/response"
	"movietix/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ShowtimeService interface {
	GetSeatMap(ctx context.Context, showtimeID string) (*response.SeatMapResponse, error)
	CheckAvailability(ctx context.Context, userID string, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error)
	HoldSeats(ctx context.Context, userID string, req *request.HoldSeatsRequest) (*response.SeatHoldResponse, error)
	ReleaseHolds(ctx context.Context, userID string, req *request.ReleaseHoldsRequest) error
	PurgeExpiredHolds(ctx context.Context) (int64, error)
}

type showtimeService struct {
	repo    *repository.Repository
	cache   SeatCache
	holdTTL time.Duration
	log     *zap.Logger
}

func NewShowtimeService(repo *repository.Repository, cache SeatCache, config *utils.Config, log *zap.Logger) ShowtimeService {
	return &showtimeService{
		repo:    repo,
		cache:   cache,
		holdTTL: config.Booking.HoldTTL,
		log:     log.With(zap.String("service", "showtime")),
	}
}

// GetSeatMap serves the polled availability snapshot. A short-TTL cache
// absorbs the poll traffic; the snapshot may lag the database by up to the
// TTL, which is acceptable because booking re-checks under the showtime
// lock anyway.
func (s *showtimeService) GetSeatMap(ctx context.Context, showtimeID string) (*response.SeatMapResponse, error) {
	id, err := uuid.Parse(showtimeID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"showtime_id": "Must be a valid UUID"}}
	}

	var cached response.SeatMapResponse
	hit, err := s.cache.Get(ctx, showtimeID, &cached)
	if err != nil {
		s.log.Warn("Seat map cache read failed", zap.Error(err), zap.String("showtime_id", showtimeID))
	}
	if hit {
		return &cached, nil
	}

	showtime, err := s.repo.Showtime.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load showtime: %w", err)
	}
	if showtime == nil {
		return nil, ErrNotFound
	}

	booked, err := s.repo.Showtime.BookedSeats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booked seats: %w", err)
	}

	holds, err := s.repo.Showtime.ActiveHolds(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load seat holds: %w", err)
	}
	held := make([]string, 0, len(holds))
	now := time.Now()
	for _, hold := range holds {
		if hold.Active(now) {
			held = append(held, hold.SeatID)
		}
	}

	pricing, err := s.repo.Showtime.FindPricing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}

	seatMap := &response.SeatMapResponse{
		ShowtimeID:     showtimeID,
		TotalSeats:     showtime.TotalSeats,
		AvailableSeats: showtime.AvailableSeats,
		BookedSeats:    booked,
		HeldSeats:      held,
		Pricing:        response.PricingToResponse(pricing),
		GeneratedAt:    now,
	}

	if err := s.cache.Set(ctx, showtimeID, seatMap); err != nil {
		s.log.Warn("Seat map cache write failed", zap.Error(err), zap.String("showtime_id", showtimeID))
	}

	return seatMap, nil
}

// CheckAvailability is an advisory read. A clean answer here does not
// reserve anything, it only tells the client the seats were free at the
// moment of asking.
func (s *showtimeService) CheckAvailability(ctx context.Context, userID string, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	showtimeID, err := uuid.Parse(req.ShowtimeID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"showtime_id": "Must be a valid UUID"}}
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"user_id": "Must be a valid UUID"}}
	}

	showtime, err := s.repo.Showtime.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("load showtime: %w", err)
	}
	if showtime == nil {
		return nil, ErrNotFound
	}
	if !showtime.IsActive {
		return nil, ErrShowtimeInactive
	}

	booked, err := s.repo.Showtime.BookedSeats(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("load booked seats: %w", err)
	}
	holds, err := s.repo.Showtime.ActiveHolds(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("load seat holds: %w", err)
	}

	conflicts := ConflictingSeats(booked, req.SeatIDs)
	conflicts = append(conflicts, SeatsHeldByOthers(holds, req.SeatIDs, userUUID, time.Now())...)

	return &response.AvailabilityResponse{
		Available:        len(conflicts) == 0,
		ConflictingSeats: conflicts,
	}, nil
}

func (s *showtimeService) HoldSeats(ctx context.Context, userID string, req *request.HoldSeatsRequest) (*response.SeatHoldResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	showtimeID, err := uuid.Parse(req.ShowtimeID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"showtime_id": "Must be a valid UUID"}}
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"user_id": "Must be a valid UUID"}}
	}

	holds, err := s.repo.Showtime.HoldSeats(ctx, showtimeID, req.SeatIDs, userUUID, req.SessionID, s.holdTTL)
	if err != nil {
		var conflict *repository.SeatConflictError
		if errors.As(err, &conflict) {
			return nil, &SeatsUnavailableError{Seats: conflict.Seats}
		}
		if errors.Is(err, repository.ErrShowtimeUnavailable) {
			return nil, ErrShowtimeInactive
		}
		return nil, fmt.Errorf("hold seats: %w", err)
	}

	s.cache.Invalidate(ctx, req.ShowtimeID)

	return &response.SeatHoldResponse{
		ShowtimeID: req.ShowtimeID,
		SeatIDs:    req.SeatIDs,
		ExpiresAt:  holds[0].ExpiresAt,
	}, nil
}

func (s *showtimeService) ReleaseHolds(ctx context.Context, userID string, req *request.ReleaseHoldsRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	showtimeID, err := uuid.Parse(req.ShowtimeID)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"showtime_id": "Must be a valid UUID"}}
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"user_id": "Must be a valid UUID"}}
	}

	if err := s.repo.Showtime.ReleaseHolds(ctx, showtimeID, userUUID, req.SeatIDs); err != nil {
		return fmt.Errorf("release holds: %w", err)
	}

	s.cache.Invalidate(ctx, req.ShowtimeID)

	return nil
}

func (s *showtimeService) PurgeExpiredHolds(ctx context.Context) (int64, error) {
	purged, err := s.repo.Showtime.PurgeExpiredHolds(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge expired holds: %w", err)
	}

	if purged > 0 {
		s.log.Info("Expired seat holds purged", zap.Int64("count", purged))
	}

	return purged, nil
}
