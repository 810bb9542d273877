package repository

import (
	"context"
	"fmt"
	"time"

	"movietix/internal/data/entity"
	"movietix/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ShowtimeRepository is the single source of truth for seat occupancy.
// Booked seats and holds are only ever mutated through these methods; the
// booking repository participates via the Tx variants so a booking and its
// seat commitment share one transaction.
type ShowtimeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error)
	FindPricing(ctx context.Context, showtimeID uuid.UUID) ([]*entity.RowPricing, error)
	BookedSeats(ctx context.Context, showtimeID uuid.UUID) ([]string, error)
	ActiveHolds(ctx context.Context, showtimeID uuid.UUID) ([]*entity.SeatHold, error)

	// Holds
	HoldSeats(ctx context.Context, showtimeID uuid.UUID, seatIDs []string, userID uuid.UUID, sessionID string, ttl time.Duration) ([]*entity.SeatHold, error)
	ReleaseHolds(ctx context.Context, showtimeID, userID uuid.UUID, seatIDs []string) error
	PurgeExpiredHolds(ctx context.Context) (int64, error)

	// Seat transitions, caller-owned transaction
	CommitSeatsTx(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID, seatIDs []string, bookingID, userID uuid.UUID) error
	ReleaseSeatsTx(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID, seatIDs []string) (int, error)
}

type showtimeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowtimeRepository(db database.PgxIface, log *zap.Logger) ShowtimeRepository {
	return &showtimeRepository{
		db:  db,
		log: log.With(zap.String("repository", "showtime")),
	}
}

func (r *showtimeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error) {
	query := `
		SELECT id, movie_id, theater_id, screen_id, show_date, show_time, end_time,
		       format, language, total_seats, available_seats, is_active,
		       created_at, updated_at
		FROM showtimes
		WHERE id = $1
	`

	var st entity.Showtime
	err := r.db.QueryRow(ctx, query, id).Scan(
		&st.ID,
		&st.MovieID,
		&st.TheaterID,
		&st.ScreenID,
		&st.ShowDate,
		&st.ShowTime,
		&st.EndTime,
		&st.Format,
		&st.Language,
		&st.TotalSeats,
		&st.AvailableSeats,
		&st.IsActive,
		&st.CreatedAt,
		&st.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find showtime",
			zap.Error(err),
			zap.String("showtime_id", id.String()),
		)
		return nil, fmt.Errorf("find showtime %s: %w", id.String(), err)
	}

	return &st, nil
}

func (r *showtimeRepository) FindPricing(ctx context.Context, showtimeID uuid.UUID) ([]*entity.RowPricing, error) {
	query := `
		SELECT id, showtime_id, row_label, seat_type, base_price, showtime_price,
		       total_seats, available_seats, created_at
		FROM showtime_pricing
		WHERE showtime_id = $1
		ORDER BY row_label
	`

	rows, err := r.db.Query(ctx, query, showtimeID)
	if err != nil {
		r.log.Error("Failed to find showtime pricing",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return nil, fmt.Errorf("find pricing for showtime %s: %w", showtimeID.String(), err)
	}
	defer rows.Close()

	var pricing []*entity.RowPricing
	for rows.Next() {
		var rp entity.RowPricing
		err := rows.Scan(
			&rp.ID,
			&rp.ShowtimeID,
			&rp.RowLabel,
			&rp.SeatType,
			&rp.BasePrice,
			&rp.ShowtimePrice,
			&rp.TotalSeats,
			&rp.AvailableSeats,
			&rp.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pricing row: %w", err)
		}
		pricing = append(pricing, &rp)
	}

	return pricing, nil
}

func (r *showtimeRepository) BookedSeats(ctx context.Context, showtimeID uuid.UUID) ([]string, error) {
	query := `SELECT seat_id FROM booked_seats WHERE showtime_id = $1 ORDER BY seat_id`

	rows, err := r.db.Query(ctx, query, showtimeID)
	if err != nil {
		r.log.Error("Failed to load booked seats",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return nil, fmt.Errorf("load booked seats for showtime %s: %w", showtimeID.String(), err)
	}
	defer rows.Close()

	var seats []string
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, fmt.Errorf("scan booked seat: %w", err)
		}
		seats = append(seats, seat)
	}

	return seats, nil
}

func (r *showtimeRepository) ActiveHolds(ctx context.Context, showtimeID uuid.UUID) ([]*entity.SeatHold, error) {
	query := `
		SELECT id, showtime_id, seat_id, user_id, session_id, expires_at, created_at
		FROM seat_holds
		WHERE showtime_id = $1 AND expires_at > NOW()
	`

	rows, err := r.db.Query(ctx, query, showtimeID)
	if err != nil {
		r.log.Error("Failed to load seat holds",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return nil, fmt.Errorf("load holds for showtime %s: %w", showtimeID.String(), err)
	}
	defer rows.Close()

	var holds []*entity.SeatHold
	for rows.Next() {
		var hold entity.SeatHold
		err := rows.Scan(
			&hold.ID,
			&hold.ShowtimeID,
			&hold.SeatID,
			&hold.UserID,
			&hold.SessionID,
			&hold.ExpiresAt,
			&hold.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan seat hold: %w", err)
		}
		holds = append(holds, &hold)
	}

	return holds, nil
}

// HoldSeats places advisory holds on the requested seats. It runs in its
// own transaction with the showtime row locked, so holds never overlap each
// other or booked seats. Re-holding a seat the same user already holds
// refreshes the expiry instead of failing.
func (r *showtimeRepository) HoldSeats(ctx context.Context, showtimeID uuid.UUID, seatIDs []string, userID uuid.UUID, sessionID string, ttl time.Duration) ([]*entity.SeatHold, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin hold transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.lockShowtime(ctx, tx, showtimeID); err != nil {
		return nil, err
	}

	conflicts, err := r.conflictingSeatsTx(ctx, tx, showtimeID, seatIDs, userID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &SeatConflictError{Seats: conflicts}
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	holds := make([]*entity.SeatHold, 0, len(seatIDs))

	for _, seatID := range seatIDs {
		hold := &entity.SeatHold{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			ShowtimeID: showtimeID,
			SeatID:     seatID,
			UserID:     userID,
			SessionID:  sessionID,
			ExpiresAt:  expiresAt,
		}

		// The unique (showtime_id, seat_id) index turns a lost race into a
		// conflict; same-user re-holds refresh in place, and taking over an
		// expired hold reassigns the whole row to the new holder.
		_, err := tx.Exec(ctx, `
			INSERT INTO seat_holds (id, showtime_id, seat_id, user_id, session_id, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (showtime_id, seat_id) DO UPDATE
			SET id         = EXCLUDED.id,
			    user_id    = EXCLUDED.user_id,
			    session_id = EXCLUDED.session_id,
			    expires_at = EXCLUDED.expires_at,
			    created_at = EXCLUDED.created_at
			WHERE seat_holds.user_id = EXCLUDED.user_id OR seat_holds.expires_at <= NOW()
		`,
			hold.ID, hold.ShowtimeID, hold.SeatID, hold.UserID, hold.SessionID, hold.ExpiresAt, hold.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("hold seat %s: %w", seatID, err)
		}

		holds = append(holds, hold)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit holds: %w", err)
	}

	r.log.Info("Seats held",
		zap.String("showtime_id", showtimeID.String()),
		zap.String("user_id", userID.String()),
		zap.Strings("seats", seatIDs),
		zap.Time("expires_at", expiresAt),
	)

	return holds, nil
}

func (r *showtimeRepository) ReleaseHolds(ctx context.Context, showtimeID, userID uuid.UUID, seatIDs []string) error {
	query := `
		DELETE FROM seat_holds
		WHERE showtime_id = $1 AND user_id = $2 AND seat_id = ANY($3)
	`

	_, err := r.db.Exec(ctx, query, showtimeID, userID, seatIDs)
	if err != nil {
		r.log.Error("Failed to release holds",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("release holds for showtime %s: %w", showtimeID.String(), err)
	}

	return nil
}

func (r *showtimeRepository) PurgeExpiredHolds(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM seat_holds WHERE expires_at <= NOW()`)
	if err != nil {
		r.log.Error("Failed to purge expired holds", zap.Error(err))
		return 0, fmt.Errorf("purge expired holds: %w", err)
	}

	return result.RowsAffected(), nil
}

// CommitSeatsTx permanently books the requested seats inside the caller's
// transaction. The showtime row is locked FOR UPDATE, which serializes all
// seat writers on this showtime without blocking other showtimes; the
// conflict check is repeated under that lock, closing the gap between the
// pre-flight check and the commit. Any conflict aborts the whole set.
func (r *showtimeRepository) CommitSeatsTx(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID, seatIDs []string, bookingID, userID uuid.UUID) error {
	if err := r.lockShowtime(ctx, tx, showtimeID); err != nil {
		return err
	}

	conflicts, err := r.conflictingSeatsTx(ctx, tx, showtimeID, seatIDs, userID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &SeatConflictError{Seats: conflicts}
	}

	for _, seatID := range seatIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO booked_seats (showtime_id, seat_id, booking_id)
			VALUES ($1, $2, $3)
		`, showtimeID, seatID, bookingID)
		if err != nil {
			return fmt.Errorf("book seat %s: %w", seatID, err)
		}
	}

	// Promote the requester's own holds on these seats.
	_, err = tx.Exec(ctx, `
		DELETE FROM seat_holds
		WHERE showtime_id = $1 AND user_id = $2 AND seat_id = ANY($3)
	`, showtimeID, userID, seatIDs)
	if err != nil {
		return fmt.Errorf("promote holds: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE showtimes
		SET available_seats = available_seats - $2, updated_at = NOW()
		WHERE id = $1
	`, showtimeID, len(seatIDs))
	if err != nil {
		return fmt.Errorf("decrement available seats: %w", err)
	}

	return nil
}

// ReleaseSeatsTx frees booked seats inside the caller's transaction and
// returns how many were actually removed. Releasing an already-free seat is
// a no-op, so the operation is idempotent per seat.
func (r *showtimeRepository) ReleaseSeatsTx(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID, seatIDs []string) (int, error) {
	// Releases must work on deactivated showtimes too, otherwise
	// cancellations and expiry never complete once a show is past or
	// disabled.
	if err := r.lockShowtimeAnyState(ctx, tx, showtimeID); err != nil {
		return 0, err
	}

	result, err := tx.Exec(ctx, `
		DELETE FROM booked_seats
		WHERE showtime_id = $1 AND seat_id = ANY($2)
	`, showtimeID, seatIDs)
	if err != nil {
		return 0, fmt.Errorf("release seats: %w", err)
	}

	released := int(result.RowsAffected())
	if released > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE showtimes
			SET available_seats = available_seats + $2, updated_at = NOW()
			WHERE id = $1
		`, showtimeID, released)
		if err != nil {
			return 0, fmt.Errorf("increment available seats: %w", err)
		}
	}

	return released, nil
}

// lockShowtime takes the per-showtime row lock. Deactivated showtimes
// refuse new holds and commits outright.
func (r *showtimeRepository) lockShowtime(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID) error {
	return r.lockShowtimeRow(ctx, tx, showtimeID, true)
}

// lockShowtimeAnyState takes the same row lock without the active filter;
// seat releases go through here.
func (r *showtimeRepository) lockShowtimeAnyState(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID) error {
	return r.lockShowtimeRow(ctx, tx, showtimeID, false)
}

func (r *showtimeRepository) lockShowtimeRow(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID, activeOnly bool) error {
	query := `SELECT id FROM showtimes WHERE id = $1 FOR UPDATE`
	if activeOnly {
		query = `SELECT id FROM showtimes WHERE id = $1 AND is_active = TRUE FOR UPDATE`
	}

	var id uuid.UUID
	err := tx.QueryRow(ctx, query, showtimeID).Scan(&id)

	if err == pgx.ErrNoRows {
		return ErrShowtimeUnavailable
	}
	if err != nil {
		return fmt.Errorf("lock showtime %s: %w", showtimeID.String(), err)
	}
	return nil
}

// conflictingSeatsTx re-checks, under the showtime lock, which requested
// seats are booked or held by another user.
func (r *showtimeRepository) conflictingSeatsTx(ctx context.Context, tx pgx.Tx, showtimeID uuid.UUID, seatIDs []string, userID uuid.UUID) ([]string, error) {
	rows, err := tx.Query(ctx, `
		SELECT seat_id FROM booked_seats
		WHERE showtime_id = $1 AND seat_id = ANY($2)
		UNION
		SELECT seat_id FROM seat_holds
		WHERE showtime_id = $1 AND seat_id = ANY($2)
		  AND user_id <> $3 AND expires_at > NOW()
	`, showtimeID, seatIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("check seat conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []string
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, fmt.Errorf("scan conflicting seat: %w", err)
		}
		conflicts = append(conflicts, seat)
	}

	return conflicts, nil
}
