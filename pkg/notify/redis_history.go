package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrHistoryUnavailable wraps redis failures from the history backend.
var ErrHistoryUnavailable = errors.New("delivery history unavailable")

const (
	historyKeyPrefix = "notify:history:"
	historyUsersKey  = "notify:history:users"

	// historyRetention bounds how long delivery records are kept. The
	// policy only ever looks one hour back, so a day of retention is
	// generous headroom for debugging.
	historyRetention = 24 * time.Hour
)

// RedisHistory is a History implementation backed by one sorted set per
// user, scored by send time. It lets multiple engine processes share a
// throttle window, which the in-memory history cannot.
type RedisHistory struct {
	client *redis.Client
}

// NewRedisHistory creates a redis-backed delivery history.
func NewRedisHistory(client *redis.Client) *RedisHistory {
	return &RedisHistory{client: client}
}

func (h *RedisHistory) key(userID string) string {
	return historyKeyPrefix + userID
}

func (h *RedisHistory) Append(ctx context.Context, rec DeliveryRecord) error {
	key := h.key(rec.UserID)
	cutoff := rec.SentAt.Add(-historyRetention)

	pipe := h.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(rec.SentAt.UnixNano()),
		Member: rec.NotificationID,
	})
	// Opportunistic trim keeps the set bounded without a sweeper.
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff.UnixNano(), 10))
	pipe.Expire(ctx, key, historyRetention)
	pipe.SAdd(ctx, historyUsersKey, rec.UserID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrHistoryUnavailable, err)
	}
	return nil
}

// CountSince counts records with SentAt strictly after since.
func (h *RedisHistory) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	min := "(" + strconv.FormatInt(since.UnixNano(), 10)
	count, err := h.client.ZCount(ctx, h.key(userID), min, "+inf").Result()
	if err != nil {
		return 0, errors.Join(ErrHistoryUnavailable, err)
	}
	return int(count), nil
}

func (h *RedisHistory) Clear(ctx context.Context) error {
	users, err := h.client.SMembers(ctx, historyUsersKey).Result()
	if err != nil {
		return errors.Join(ErrHistoryUnavailable, err)
	}

	keys := make([]string, 0, len(users)+1)
	for _, u := range users {
		keys = append(keys, h.key(u))
	}
	keys = append(keys, historyUsersKey)

	if err := h.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}
	return nil
}
