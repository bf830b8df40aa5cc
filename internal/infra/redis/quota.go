package redis

import (
	"context"
	"fmt"
	"time"
)

// QuotaCounter tracks per-user daily generation counts. The key rolls over
// at UTC midnight; the counter expires two days out so stale keys vanish.
type QuotaCounter struct {
	client RedisClient
}

func NewQuotaCounter(client RedisClient) *QuotaCounter {
	return &QuotaCounter{client: client}
}

func quotaKey(userID string, day time.Time) string {
	return fmt.Sprintf("gen_quota:%s:%s", userID, day.UTC().Format("2006-01-02"))
}

// Consume increments today's counter and reports whether the user is still
// within limit. The increment is not rolled back on rejection; a rejected
// submission still counts against abuse.
func (q *QuotaCounter) Consume(ctx context.Context, userID string, limit int) (bool, error) {
	key := quotaKey(userID, time.Now())
	n, err := q.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := q.client.Expire(ctx, key, 48*time.Hour); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}
