package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still carries the caller's
// token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker hands out short-lived exclusive locks keyed by owner, e.g. one
// per client IP.
type Locker struct {
	client    redis.UniversalClient
	release   *redis.Script
	keyFormat string
	ttl       time.Duration
}

// NewLocker returns nil without a client. keyFormat takes the owner as its
// only verb.
func NewLocker(client redis.UniversalClient, keyFormat string, ttl time.Duration) (*Locker, error) {
	if client == nil {
		return nil, nil
	}
	if !strings.Contains(keyFormat, "%s") {
		return nil, fmt.Errorf("lock key format %q has no owner verb", keyFormat)
	}
	if ttl <= 0 {
		return nil, errors.New("lock ttl must be positive")
	}
	return &Locker{
		client:    client,
		release:   redis.NewScript(releaseScript),
		keyFormat: keyFormat,
		ttl:       ttl,
	}, nil
}

// Key is the Redis key guarding owner. Blank owners share "unknown".
func (l *Locker) Key(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		owner = "unknown"
	}
	return fmt.Sprintf(l.keyFormat, owner)
}

// TryLock returns the token to release with and false when owner already
// holds the lock.
func (l *Locker) TryLock(ctx context.Context, owner string) (string, bool, error) {
	if l == nil {
		return "", false, errors.New("lock client not configured")
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.Key(owner), token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *Locker) Release(ctx context.Context, owner, token string) error {
	if l == nil || token == "" {
		return nil
	}
	return l.release.Run(ctx, l.client, []string{l.Key(owner)}, token).Err()
}
