package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter enforces a per-subject ceiling on credential issuance using a
// fixed window counter. Key format: mintlimit:<subject_id>
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewLimiter creates a Limiter allowing limit requests per window.
func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window}
}

// Allow increments the subject's counter and reports whether the request
// stays within the window budget. Store errors are returned so callers
// can decide to fail open.
func (l *Limiter) Allow(ctx context.Context, subjectID string) (bool, error) {
	key := l.key(subjectID)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= int64(l.limit), nil
}

func (l *Limiter) key(subjectID string) string {
	return fmt.Sprintf("mintlimit:%s", subjectID)
}
