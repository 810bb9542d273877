package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"movietix/internal/data/entity"
	"movietix/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// BookingRepository owns booking records. The multi-table lifecycle
// operations (create, cancel, expire) are single transactions spanning the
// booking row and the showtime seat state, so callers never observe a
// booking without its seats or vice versa.
type BookingRepository interface {
	CreateWithSeats(ctx context.Context, booking *entity.Booking) error
	CancelWithRelease(ctx context.Context, booking *entity.Booking, cancelledAt time.Time) error
	ExpireWithRelease(ctx context.Context, booking *entity.Booking) (bool, error)

	FindByBookingID(ctx context.Context, bookingID string) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindUpcomingByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error)
	FindHistoryByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	FindByShowtimeID(ctx context.Context, showtimeID uuid.UUID) ([]*entity.Booking, error)
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Booking, error)

	UpdatePaymentStatus(ctx context.Context, bookingID string, status entity.PaymentStatus, paymentID *string) error
}

type bookingRepository struct {
	db        database.PgxIface
	showtimes ShowtimeRepository
	log       *zap.Logger
}

func NewBookingRepository(db database.PgxIface, showtimes ShowtimeRepository, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:        db,
		showtimes: showtimes,
		log:       log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `
	id, booking_id, user_id, movie_id, theater_id, screen_id, showtime_id,
	seats, seat_pricing, price_details, payment_status, payment_id,
	booking_status, booked_at, cancelled_at, show_date, show_time,
	contact_email, contact_phone, created_at, updated_at`

// CreateWithSeats inserts the booking and commits its seats as one
// transaction. A seat conflict rolls everything back and surfaces as
// *SeatConflictError; no orphaned booking row can remain.
func (r *bookingRepository) CreateWithSeats(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.showtimes.CommitSeatsTx(ctx, tx, booking.ShowtimeID, booking.Seats, booking.ID, booking.UserID); err != nil {
		return err
	}

	seatPricing, err := json.Marshal(booking.SeatPricing)
	if err != nil {
		return fmt.Errorf("encode seat pricing: %w", err)
	}
	priceDetails, err := json.Marshal(booking.Price)
	if err != nil {
		return fmt.Errorf("encode price details: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, booking_id, user_id, movie_id, theater_id, screen_id,
		                      showtime_id, seats, seat_pricing, price_details,
		                      payment_status, payment_id, booking_status, booked_at,
		                      show_date, show_time, contact_email, contact_phone,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`,
		booking.ID,
		booking.BookingID,
		booking.UserID,
		booking.MovieID,
		booking.TheaterID,
		booking.ScreenID,
		booking.ShowtimeID,
		booking.Seats,
		seatPricing,
		priceDetails,
		booking.PaymentStatus,
		booking.PaymentID,
		booking.BookingStatus,
		booking.BookedAt,
		booking.ShowDate,
		booking.ShowTime,
		booking.ContactEmail,
		booking.ContactPhone,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("booking_id", booking.BookingID),
		)
		return fmt.Errorf("insert booking %s: %w", booking.BookingID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking %s: %w", booking.BookingID, err)
	}

	return nil
}

// CancelWithRelease flips the booking to cancelled, releases its seats and
// marks the payment refunded, all in one transaction. The status guard in
// the UPDATE makes a lost cancellation race surface as ErrAlreadyCancelled
// handling upstream: zero rows means another caller got there first.
func (r *bookingRepository) CancelWithRelease(ctx context.Context, booking *entity.Booking, cancelledAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cancel transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE bookings
		SET booking_status = $2, cancelled_at = $3, payment_status = $4, updated_at = NOW()
		WHERE id = $1 AND booking_status = $5
	`,
		booking.ID,
		entity.BookingStatusCancelled,
		cancelledAt,
		entity.PaymentStatusRefunded,
		entity.BookingStatusConfirmed,
	)
	if err != nil {
		return fmt.Errorf("cancel booking %s: %w", booking.BookingID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("cancel booking %s: %w", booking.BookingID, ErrNotCancellable)
	}

	released, err := r.showtimes.ReleaseSeatsTx(ctx, tx, booking.ShowtimeID, booking.Seats)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cancellation of %s: %w", booking.BookingID, err)
	}

	r.log.Info("Booking cancelled",
		zap.String("booking_id", booking.BookingID),
		zap.Int("seats_released", released),
	)

	return nil
}

// ExpireWithRelease transitions an unpaid booking to expired and frees its
// seats in one transaction. It is idempotent: a booking already expired (or
// meanwhile paid or cancelled) is skipped and reported as not transitioned,
// so the sweep is safe to re-run after an interruption.
func (r *bookingRepository) ExpireWithRelease(ctx context.Context, booking *entity.Booking) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin expiry transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE bookings
		SET booking_status = $2, updated_at = NOW()
		WHERE id = $1 AND booking_status = $3 AND payment_status = $4
	`,
		booking.ID,
		entity.BookingStatusExpired,
		entity.BookingStatusConfirmed,
		entity.PaymentStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("expire booking %s: %w", booking.BookingID, err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := r.showtimes.ReleaseSeatsTx(ctx, tx, booking.ShowtimeID, booking.Seats); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit expiry of %s: %w", booking.BookingID, err)
	}

	return true, nil
}

func (r *bookingRepository) FindByBookingID(ctx context.Context, bookingID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, bookingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return nil, fmt.Errorf("find booking %s: %w", bookingID, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY booked_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryBookings(ctx, query, userID, limit, offset)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bookings for user %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindUpcomingByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND booking_status = 'confirmed' AND show_time >= NOW()
		ORDER BY show_time
	`

	return r.queryBookings(ctx, query, userID)
}

func (r *bookingRepository) FindHistoryByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND (show_time < NOW() OR booking_status <> 'confirmed')
		ORDER BY show_time DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryBookings(ctx, query, userID, limit, offset)
}

func (r *bookingRepository) FindByShowtimeID(ctx context.Context, showtimeID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE showtime_id = $1
		ORDER BY booked_at
	`

	return r.queryBookings(ctx, query, showtimeID)
}

func (r *bookingRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE payment_status = 'pending' AND booking_status = 'confirmed' AND booked_at < $1
		ORDER BY booked_at
		LIMIT $2
	`

	return r.queryBookings(ctx, query, cutoff, limit)
}

func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, bookingID string, status entity.PaymentStatus, paymentID *string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET payment_status = $2, payment_id = COALESCE($3, payment_id), updated_at = NOW()
		WHERE booking_id = $1
	`, bookingID, status, paymentID)
	if err != nil {
		r.log.Error("Failed to update payment status",
			zap.Error(err),
			zap.String("booking_id", bookingID),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update payment status of %s: %w", bookingID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID)
	}

	return nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query bookings", zap.Error(err))
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	var seatPricing, priceDetails []byte

	err := row.Scan(
		&booking.ID,
		&booking.BookingID,
		&booking.UserID,
		&booking.MovieID,
		&booking.TheaterID,
		&booking.ScreenID,
		&booking.ShowtimeID,
		&booking.Seats,
		&seatPricing,
		&priceDetails,
		&booking.PaymentStatus,
		&booking.PaymentID,
		&booking.BookingStatus,
		&booking.BookedAt,
		&booking.CancelledAt,
		&booking.ShowDate,
		&booking.ShowTime,
		&booking.ContactEmail,
		&booking.ContactPhone,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(seatPricing, &booking.SeatPricing); err != nil {
		return nil, fmt.Errorf("decode seat pricing: %w", err)
	}
	if err := json.Unmarshal(priceDetails, &booking.Price); err != nil {
		return nil, fmt.Errorf("decode price details: %w", err)
	}

	return &booking, nil
}
