package auth

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Revoker remembers logged-out token ids until they would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

// NopRevoker is used when no Redis is configured; logout is then client-side only.
type NopRevoker struct{}

func (NopRevoker) Revoke(context.Context, string, time.Time) error { return nil }

func (NopRevoker) Revoked(context.Context, string) (bool, error) { return false, nil }

// RedisRevoker keeps revoked token ids as expiring keys.
type RedisRevoker struct {
	c   *redis.Client
	now func() time.Time
}

func NewRedisRevoker(c *redis.Client, now func() time.Time) *RedisRevoker {
	if now == nil {
		now = time.Now
	}
	return &RedisRevoker{c: c, now: now}
}

func revokedKey(tokenID string) string { return "auth:revoked:" + tokenID }

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.c.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

func (r *RedisRevoker) Revoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.c.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
