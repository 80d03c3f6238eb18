package cache

import (
	"context"
	"log/slog"
	"time"

	"quill/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const tokenBlacklistPrefix = "blacklist:"

// TokenBlacklist records session token ids revoked at logout until they would have expired.
type TokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist returns a blacklist; a nil client makes every call a no-op.
func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: rdb}
}

// Revoke blacklists jti for ttl.
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if b == nil || b.client == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, tokenBlacklistPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked. Lookup errors fail open and are logged.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) bool {
	if b == nil || b.client == nil || jti == "" {
		return false
	}
	n, err := b.client.Exists(ctx, tokenBlacklistPrefix+jti).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token blacklist lookup failed", slog.String("error", err.Error()))
		return false
	}
	return n > 0
}
