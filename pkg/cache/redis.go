package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"movietix/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis connects the redis client and verifies it with a ping.
func InitRedis(config utils.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return client, nil
}

// SeatMapCache keeps short-TTL snapshots of per-showtime seat availability
// so the seat map endpoint does not hit Postgres on every poll. It is a
// read-side cache only: the booked_seats table stays authoritative and
// every seat-state mutation invalidates the snapshot.
type SeatMapCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewSeatMapCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *SeatMapCache {
	return &SeatMapCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("cache", "seatmap")),
	}
}

func seatMapKey(showtimeID string) string {
	return "seatmap:" + showtimeID
}

// Get decodes the cached snapshot into dest; false means a miss.
func (c *SeatMapCache) Get(ctx context.Context, showtimeID string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, seatMapKey(showtimeID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get seat map %s: %w", showtimeID, err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode seat map %s: %w", showtimeID, err)
	}
	return true, nil
}

func (c *SeatMapCache) Set(ctx context.Context, showtimeID string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode seat map %s: %w", showtimeID, err)
	}

	if err := c.client.Set(ctx, seatMapKey(showtimeID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set seat map %s: %w", showtimeID, err)
	}
	return nil
}

// Invalidate drops the snapshot after a commit, release or hold change.
// Failures are logged, not returned: a stale snapshot ages out via TTL.
func (c *SeatMapCache) Invalidate(ctx context.Context, showtimeID string) {
	if err := c.client.Del(ctx, seatMapKey(showtimeID)).Err(); err != nil {
		c.log.Warn("Failed to invalidate seat map",
			zap.Error(err),
			zap.String("showtime_id", showtimeID),
		)
	}
}
