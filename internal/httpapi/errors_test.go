package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prabasiva/greport/internal/warehouse"
)

func TestClassifyPassesThroughTypedError(t *testing.T) {
	original := rateLimitedErr("slow down", 5*time.Second)
	wrapped := fmt.Errorf("wrapping: %w", original)

	got := classify(wrapped)
	assert.Same(t, original, got)
	assert.Equal(t, KindRateLimited, got.Kind)
}

func TestClassifyDeadlineExceeded(t *testing.T) {
	wrapped := fmt.Errorf("querying: %w", context.DeadlineExceeded)

	got := classify(wrapped)
	assert.Equal(t, KindDeadlineExceeded, got.Kind)
	assert.Equal(t, http.StatusGatewayTimeout, got.Status)
}

func TestClassifyNotFound(t *testing.T) {
	got := classify(warehouse.ErrNotFound)
	assert.Equal(t, KindNotFound, got.Kind)
	assert.Equal(t, http.StatusNotFound, got.Status)
}

func TestClassifyFallsBackToInternal(t *testing.T) {
	got := classify(errors.New("boom"))
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.NotContains(t, got.Message, "boom", "internal errors never leak the underlying message")
}
