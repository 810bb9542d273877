package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RunMigrations applies the schema idempotently at startup.
func RunMigrations(ctx context.Context, db PgxIface, log *zap.Logger) error {
	migrations := []string{
		createUsersTable,
		createSessionsTable,
		createShowtimesTable,
		createShowtimePricingTable,
		createBookedSeatsTable,
		createSeatHoldsTable,
		createBookingsTable,
		createTicketsTable,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info("Database migrations completed", zap.Int("steps", len(migrations)))
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    phone VARCHAR(32),
    role VARCHAR(16) NOT NULL DEFAULT 'customer',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    token UUID UNIQUE NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    revoked_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createShowtimesTable = `
CREATE TABLE IF NOT EXISTS showtimes (
    id UUID PRIMARY KEY,
    movie_id UUID NOT NULL,
    theater_id UUID NOT NULL,
    screen_id UUID NOT NULL,
    show_date DATE NOT NULL,
    show_time TIMESTAMPTZ NOT NULL,
    end_time TIMESTAMPTZ NOT NULL,
    format VARCHAR(16) NOT NULL DEFAULT '2D',
    language VARCHAR(32) NOT NULL DEFAULT '',
    total_seats INTEGER NOT NULL,
    available_seats INTEGER NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (available_seats >= 0 AND available_seats <= total_seats)
);`

const createShowtimePricingTable = `
CREATE TABLE IF NOT EXISTS showtime_pricing (
    id UUID PRIMARY KEY,
    showtime_id UUID NOT NULL REFERENCES showtimes(id),
    row_label VARCHAR(8) NOT NULL,
    seat_type VARCHAR(16) NOT NULL,
    base_price NUMERIC(10,2) NOT NULL,
    showtime_price NUMERIC(10,2) NOT NULL,
    total_seats INTEGER NOT NULL,
    available_seats INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (showtime_id, row_label)
);`

// The primary key doubles as the double-sell backstop: even if application
// locking were bypassed, the same seat cannot appear twice for a showtime.
const createBookedSeatsTable = `
CREATE TABLE IF NOT EXISTS booked_seats (
    showtime_id UUID NOT NULL REFERENCES showtimes(id),
    seat_id VARCHAR(8) NOT NULL,
    booking_id UUID NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (showtime_id, seat_id)
);`

const createSeatHoldsTable = `
CREATE TABLE IF NOT EXISTS seat_holds (
    id UUID PRIMARY KEY,
    showtime_id UUID NOT NULL REFERENCES showtimes(id),
    seat_id VARCHAR(8) NOT NULL,
    user_id UUID NOT NULL,
    session_id VARCHAR(64) NOT NULL DEFAULT '',
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (showtime_id, seat_id)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    booking_id VARCHAR(32) UNIQUE NOT NULL,
    user_id UUID NOT NULL,
    movie_id UUID NOT NULL,
    theater_id UUID NOT NULL,
    screen_id UUID NOT NULL,
    showtime_id UUID NOT NULL REFERENCES showtimes(id),
    seats TEXT[] NOT NULL,
    seat_pricing JSONB NOT NULL DEFAULT '[]',
    price_details JSONB NOT NULL DEFAULT '{}',
    payment_status VARCHAR(16) NOT NULL DEFAULT 'pending',
    payment_id VARCHAR(64),
    booking_status VARCHAR(16) NOT NULL DEFAULT 'confirmed',
    booked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    cancelled_at TIMESTAMPTZ,
    show_date DATE NOT NULL,
    show_time TIMESTAMPTZ NOT NULL,
    contact_email VARCHAR(255) NOT NULL DEFAULT '',
    contact_phone VARCHAR(32) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id, booked_at DESC);
CREATE INDEX IF NOT EXISTS idx_bookings_showtime ON bookings(showtime_id);
CREATE INDEX IF NOT EXISTS idx_bookings_pending ON bookings(booked_at) WHERE payment_status = 'pending';`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id UUID PRIMARY KEY,
    ticket_id VARCHAR(32) UNIQUE NOT NULL,
    booking_ref VARCHAR(32) NOT NULL REFERENCES bookings(booking_id),
    user_id UUID NOT NULL,
    showtime_id UUID NOT NULL,
    movie_id UUID NOT NULL,
    theater_id UUID NOT NULL,
    screen_id UUID NOT NULL,
    seat_id VARCHAR(8) NOT NULL,
    seat_type VARCHAR(16) NOT NULL,
    price NUMERIC(10,2) NOT NULL,
    show_date DATE NOT NULL,
    show_time TIMESTAMPTZ NOT NULL,
    is_used BOOLEAN NOT NULL DEFAULT FALSE,
    used_at TIMESTAMPTZ,
    verification_code VARCHAR(64) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (booking_ref, seat_id)
);`
