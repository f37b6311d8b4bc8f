// Package sequence hands out per-day invoice sequence numbers.
package sequence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bingkai/internal/invoice/domain"
)

// Sequencer returns the next sequence number for the calendar day of at,
// starting at 1.
type Sequencer interface {
	Next(ctx context.Context, at time.Time) (int64, error)
}

const (
	keyDailySequence = "bingkai:invoice:seq:%s"
	sequenceTTL      = 48 * time.Hour
)

func dayKey(at time.Time) string {
	return at.Format("20060102")
}

// RedisSequencer shares the counter between replicas.
type RedisSequencer struct {
	client redis.UniversalClient
}

func NewRedisSequencer(client redis.UniversalClient) *RedisSequencer {
	return &RedisSequencer{client: client}
}

func (s *RedisSequencer) Next(ctx context.Context, at time.Time) (int64, error) {
	key := fmt.Sprintf(keyDailySequence, dayKey(at))

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrSequence, err)
	}
	return incr.Val(), nil
}

// MemorySequencer keeps counters in-process. Days other than the latest one
// seen are dropped.
type MemorySequencer struct {
	mu    sync.Mutex
	day   string
	count int64
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{}
}

func (s *MemorySequencer) Next(ctx context.Context, at time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	day := dayKey(at)

	s.mu.Lock()
	defer s.mu.Unlock()
	if day != s.day {
		s.day = day
		s.count = 0
	}
	s.count++
	return s.count, nil
}

// New picks Redis when a client is available.
func New(client redis.UniversalClient) Sequencer {
	if client == nil {
		return NewMemorySequencer()
	}
	return NewRedisSequencer(client)
}
