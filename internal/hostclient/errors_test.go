package hostclient

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	base := &Error{Kind: KindRateLimited, Op: "list_issues", RetryAfter: 30}
	wrapped := fmt.Errorf("sync repo: %w", base)

	assert.True(t, Is(wrapped, KindRateLimited))
	assert.False(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(errors.New("plain"), KindNotFound))
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want bool
	}{
		{"transport retries", &Error{Kind: KindTransport}, true},
		{"rate limited retries", &Error{Kind: KindRateLimited}, true},
		{"5xx retries", &Error{Kind: KindHostError, Status: 502}, true},
		{"4xx terminal", &Error{Kind: KindHostError, Status: 422}, false},
		{"unauthorized terminal", &Error{Kind: KindUnauthorized}, false},
		{"not found terminal", &Error{Kind: KindNotFound}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, retryable(tc.err))
		})
	}
}

func TestBackoffRespectsRetryAfter(t *testing.T) {
	e := &Error{Kind: KindRateLimited, RetryAfter: 45}
	assert.Equal(t, int64(45), int64(backoff(0, e).Seconds()))
}

func TestBackoffCapsAtCeiling(t *testing.T) {
	e := &Error{Kind: KindTransport}
	d := backoff(10, e) // would be far beyond the cap without clamping
	assert.LessOrEqual(t, d.Seconds(), backoffCeil.Seconds()*(1+jitterFraction))
}
