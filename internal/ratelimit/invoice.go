package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bingkai/internal/config"
)

const (
	keyInvoiceClient = "bingkai:ratelimit:invoice:%s"
	keyInvoiceLock   = "bingkai:lock:invoice:%s"
)

// InvoiceLimiter throttles invoice generation per client IP and allows one
// in-flight generation per client. A nil or disabled limiter allows
// everything.
type InvoiceLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

// NewInvoiceLimiter returns nil when rate limiting is off or Redis is not
// configured.
func NewInvoiceLimiter(cfg config.Config, client redis.UniversalClient) (*InvoiceLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled || client == nil {
		return nil, nil
	}
	if limitCfg.Rate <= 0 || limitCfg.Burst <= 0 {
		return nil, errors.New("invoice rate limit must be positive")
	}
	lockTTL := limitCfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	locker, err := NewLocker(client, keyInvoiceLock, lockTTL)
	if err != nil {
		return nil, err
	}

	return &InvoiceLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  locker,
		rate:    limitCfg.Rate,
		burst:   limitCfg.Burst,
	}, nil
}

func (l *InvoiceLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *InvoiceLimiter) AllowClient(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, bucketKey(clientIP), l.rate, l.burst)
}

func (l *InvoiceLimiter) TryLockClient(ctx context.Context, clientIP string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, clientIP)
}

func (l *InvoiceLimiter) ReleaseClient(ctx context.Context, clientIP, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, clientIP, token)
}

func bucketKey(clientIP string) string {
	clientIP = strings.TrimSpace(clientIP)
	if clientIP == "" {
		clientIP = "unknown"
	}
	return fmt.Sprintf(keyInvoiceClient, clientIP)
}
