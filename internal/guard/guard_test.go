package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res := rl.Check(ctx, "ip-1")
		assert.True(t, res.Allowed)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	rl.Check(ctx, "ip-1")
	rl.Check(ctx, "ip-1")

	res := rl.Check(ctx, "ip-1")
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "rate limit exceeded")
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx := context.Background()

	assert.True(t, rl.Check(ctx, "ip-1").Allowed)
	assert.True(t, rl.Check(ctx, "ip-2").Allowed)
	assert.False(t, rl.Check(ctx, "ip-1").Allowed)
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 5*time.Millisecond)
	ctx := context.Background()

	assert.True(t, rl.Check(ctx, "ip-1").Allowed)
	assert.False(t, rl.Check(ctx, "ip-1").Allowed)

	time.Sleep(10 * time.Millisecond)
	assert.True(t, rl.Check(ctx, "ip-1").Allowed)
}
