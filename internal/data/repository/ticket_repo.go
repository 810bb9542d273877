package repository

import (
	"context"
	"fmt"
	"time"

	"movietix/internal/data/entity"
	"movietix/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TicketRepository persists tickets separately from bookings. Tickets are a
// derived projection: losing a batch is recoverable by re-issuing from the
// booking, which is why creation failures never roll a booking back.
type TicketRepository interface {
	CreateBatch(ctx context.Context, tickets []*entity.Ticket) error
	FindByTicketID(ctx context.Context, ticketID string) (*entity.Ticket, error)
	FindByBookingRef(ctx context.Context, bookingRef string) ([]*entity.Ticket, error)
	CountByBookingRef(ctx context.Context, bookingRef string) (int64, error)
	MarkUsed(ctx context.Context, ticketID string, usedAt time.Time) (bool, error)
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

const ticketColumns = `
	id, ticket_id, booking_ref, user_id, showtime_id, movie_id, theater_id,
	screen_id, seat_id, seat_type, price, show_date, show_time, is_used,
	used_at, verification_code, created_at`

func (r *ticketRepository) CreateBatch(ctx context.Context, tickets []*entity.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(`
			INSERT INTO tickets (id, ticket_id, booking_ref, user_id, showtime_id,
			                     movie_id, theater_id, screen_id, seat_id, seat_type,
			                     price, show_date, show_time, is_used, verification_code,
			                     created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`,
			t.ID, t.TicketID, t.BookingRef, t.UserID, t.ShowtimeID,
			t.MovieID, t.TheaterID, t.ScreenID, t.SeatID, t.SeatType,
			t.Price, t.ShowDate, t.ShowTime, t.IsUsed, t.VerificationCode,
			t.CreatedAt,
		)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin ticket batch: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	for range tickets {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.log.Error("Failed to insert ticket batch",
				zap.Error(err),
				zap.String("booking_ref", tickets[0].BookingRef),
			)
			return fmt.Errorf("insert tickets for booking %s: %w", tickets[0].BookingRef, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close ticket batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ticket batch: %w", err)
	}

	return nil
}

func (r *ticketRepository) FindByTicketID(ctx context.Context, ticketID string) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id = $1`

	ticket, err := r.scanTicket(r.db.QueryRow(ctx, query, ticketID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket",
			zap.Error(err),
			zap.String("ticket_id", ticketID),
		)
		return nil, fmt.Errorf("find ticket %s: %w", ticketID, err)
	}

	return ticket, nil
}

func (r *ticketRepository) FindByBookingRef(ctx context.Context, bookingRef string) ([]*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE booking_ref = $1 ORDER BY seat_id`

	rows, err := r.db.Query(ctx, query, bookingRef)
	if err != nil {
		r.log.Error("Failed to find tickets for booking",
			zap.Error(err),
			zap.String("booking_ref", bookingRef),
		)
		return nil, fmt.Errorf("find tickets for booking %s: %w", bookingRef, err)
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		ticket, err := r.scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	return tickets, nil
}

func (r *ticketRepository) CountByBookingRef(ctx context.Context, bookingRef string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE booking_ref = $1`, bookingRef).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tickets for booking %s: %w", bookingRef, err)
	}

	return count, nil
}

// MarkUsed flips the usage flag exactly once. The is_used guard in the
// UPDATE makes concurrent check-ins race-safe: the second caller sees zero
// rows affected.
func (r *ticketRepository) MarkUsed(ctx context.Context, ticketID string, usedAt time.Time) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE tickets
		SET is_used = TRUE, used_at = $2
		WHERE ticket_id = $1 AND is_used = FALSE
	`, ticketID, usedAt)
	if err != nil {
		r.log.Error("Failed to mark ticket used",
			zap.Error(err),
			zap.String("ticket_id", ticketID),
		)
		return false, fmt.Errorf("mark ticket %s used: %w", ticketID, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *ticketRepository) scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.BookingRef,
		&ticket.UserID,
		&ticket.ShowtimeID,
		&ticket.MovieID,
		&ticket.TheaterID,
		&ticket.ScreenID,
		&ticket.SeatID,
		&ticket.SeatType,
		&ticket.Price,
		&ticket.ShowDate,
		&ticket.ShowTime,
		&ticket.IsUsed,
		&ticket.UsedAt,
		&ticket.VerificationCode,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &ticket, nil
}
