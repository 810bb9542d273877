package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"movietix/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// stubTx records every statement a repository runs inside a transaction.
// Unimplemented pgx.Tx methods panic, which is the point: a test touching
// them needs a real database instead.
type stubTx struct {
	pgx.Tx
	queryRowSQL []string
	execSQL     []string
	execArgs    [][]any
	execTag     func(sql string) pgconn.CommandTag
	committed   bool
}

func (t *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	t.queryRowSQL = append(t.queryRowSQL, sql)
	return stubRow{scan: func(dest ...any) error {
		if id, ok := dest[0].(*uuid.UUID); ok {
			if arg, ok := args[0].(uuid.UUID); ok {
				*id = arg
			}
		}
		return nil
	}}
}

func (t *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return emptyRows{}, nil
}

func (t *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execSQL = append(t.execSQL, sql)
	t.execArgs = append(t.execArgs, args)
	if t.execTag != nil {
		return t.execTag(sql), nil
	}
	return pgconn.CommandTag{}, nil
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	return nil
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

type emptyRows struct {
	pgx.Rows
}

func (emptyRows) Next() bool { return false }
func (emptyRows) Close()     {}
func (emptyRows) Err() error { return nil }

type stubDB struct {
	database.PgxIface
	tx *stubTx
}

func (d *stubDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return d.tx, nil
}

var spaceRun = regexp.MustCompile(`\s+`)

func flatten(sql string) string {
	return spaceRun.ReplaceAllString(sql, " ")
}

func TestShowtimeRepository_HoldSeats_TakeoverReassignsHolder(t *testing.T) {
	tx := &stubTx{}
	repo := NewShowtimeRepository(&stubDB{tx: tx}, zap.NewNop())

	userID := uuid.New()
	holds, err := repo.HoldSeats(context.Background(), uuid.New(), []string{"A1"}, userID, "sess-1", 10*time.Minute)

	assert.NoError(t, err)
	assert.Len(t, holds, 1)
	assert.True(t, tx.committed)
	assert.Len(t, tx.execSQL, 1)

	// Reusing an expired row must hand the entire hold to the new holder;
	// refreshing only the expiry would leave the seat pinned to whoever
	// abandoned it.
	upsert := flatten(tx.execSQL[0])
	assert.Contains(t, upsert, "ON CONFLICT (showtime_id, seat_id) DO UPDATE")
	for _, col := range []string{"id", "user_id", "session_id", "expires_at", "created_at"} {
		assert.Contains(t, upsert, col+" = EXCLUDED."+col)
	}
	assert.Contains(t, upsert, "seat_holds.user_id = EXCLUDED.user_id OR seat_holds.expires_at <= NOW()")
	assert.Equal(t, userID, tx.execArgs[0][3])
}

func TestShowtimeRepository_HoldSeats_LocksActiveShowtimesOnly(t *testing.T) {
	tx := &stubTx{}
	repo := NewShowtimeRepository(&stubDB{tx: tx}, zap.NewNop())

	_, err := repo.HoldSeats(context.Background(), uuid.New(), []string{"A1"}, uuid.New(), "sess-1", 10*time.Minute)

	assert.NoError(t, err)
	assert.NotEmpty(t, tx.queryRowSQL)
	assert.Contains(t, flatten(tx.queryRowSQL[0]), "is_active = TRUE FOR UPDATE")
}

func TestShowtimeRepository_ReleaseSeatsTx_WorksOnDeactivatedShowtime(t *testing.T) {
	tx := &stubTx{
		execTag: func(sql string) pgconn.CommandTag {
			return pgconn.NewCommandTag("DELETE 2")
		},
	}
	repo := NewShowtimeRepository(&stubDB{tx: tx}, zap.NewNop())

	released, err := repo.ReleaseSeatsTx(context.Background(), tx, uuid.New(), []string{"A1", "A2"})

	assert.NoError(t, err)
	assert.Equal(t, 2, released)

	// Cancellations and expiry sweeps keep working after a showtime is
	// past or administratively disabled, so the release lock must not
	// filter on is_active.
	assert.NotEmpty(t, tx.queryRowSQL)
	lock := flatten(tx.queryRowSQL[0])
	assert.Contains(t, lock, "FOR UPDATE")
	assert.NotContains(t, lock, "is_active")
}
