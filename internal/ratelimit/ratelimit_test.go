package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryForReusesLimiter(t *testing.T) {
	reg := NewRegistry(DefaultConfig())
	a := reg.For("cred-1")
	b := reg.For("cred-1")
	c := reg.For("cred-2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestLimiterWaitRespectsContext(t *testing.T) {
	l := newLimiter(Config{RequestsPerSecond: 0.001, Burst: 1})
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx)) // consumes the single burst token

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	require.Error(t, err)
}

func TestLimiterObserveIgnoresMalformedHeaders(t *testing.T) {
	l := newLimiter(DefaultConfig())
	before := l.limiter.Limit()

	h := http.Header{}
	h.Set("X-RateLimit-Remaining", "not-a-number")
	h.Set("X-RateLimit-Reset", "also-not-a-number")
	l.Observe(h)

	assert.Equal(t, before, l.limiter.Limit())
}

func TestLimiterObserveAdjustsRate(t *testing.T) {
	l := newLimiter(DefaultConfig())

	h := http.Header{}
	h.Set("X-RateLimit-Remaining", "60")
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(60*time.Second).Unix(), 10))
	l.Observe(h)

	assert.InDelta(t, 1.0, float64(l.limiter.Limit()), 0.1)
}
