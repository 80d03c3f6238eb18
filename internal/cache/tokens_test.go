package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBlacklist(t *testing.T) {
	mr, rdb := newTestRedis(t)
	bl := NewTokenBlacklist(rdb)
	ctx := context.Background()

	assert.False(t, bl.IsRevoked(ctx, "jti-1"))

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Hour))
	assert.True(t, bl.IsRevoked(ctx, "jti-1"))
	assert.True(t, mr.Exists("blacklist:jti-1"))
	assert.False(t, bl.IsRevoked(ctx, "jti-2"))

	mr.FastForward(2 * time.Hour)
	assert.False(t, bl.IsRevoked(ctx, "jti-1"))
}

func TestTokenBlacklist_NilClient(t *testing.T) {
	bl := NewTokenBlacklist(nil)
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti", time.Hour))
	assert.False(t, bl.IsRevoked(ctx, "jti"))
}
