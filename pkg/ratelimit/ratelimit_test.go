package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitHelpers(t *testing.T) {
	assert.Equal(t, Limit{Rate: 5, Period: time.Second, Burst: 10}, PerSecond(5, 10))
	assert.Equal(t, Limit{Rate: 5, Period: time.Second, Burst: 5}, PerSecond(5, 0))
	assert.Equal(t, Limit{Rate: 3, Period: time.Minute, Burst: 3}, PerMinute(3))
	assert.True(t, Limit{}.IsZero())
	assert.False(t, PerMinute(1).IsZero())
}

func TestZeroLimitSkipsRedis(t *testing.T) {
	// A zero limit never touches Redis, so a nil client still allows
	r := &RedisRateLimiter{}
	res, err := r.Allow(context.Background(), "api:1.2.3.4", Limit{})
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
