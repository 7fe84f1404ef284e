package scheduler

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithEmptySpecIsDisabled(t *testing.T) {
	s, err := New("", func(ctx context.Context) error { return nil }, nil)
	require.NoError(t, err)
	assert.Nil(t, s, "an empty interval disables the scheduler entirely")
}

func TestNewRejectsInvalidCronSpec(t *testing.T) {
	_, err := New("not a cron expression", func(ctx context.Context) error { return nil }, nil)
	require.Error(t, err)
}

func TestStartStopIsIdempotentAndNilSafe(t *testing.T) {
	var nilSched *Scheduler
	require.NoError(t, nilSched.Start(context.Background()))
	require.NoError(t, nilSched.Stop(context.Background()))

	s, err := New("@every 1h", func(ctx context.Context) error { return nil }, nil)
	require.NoError(t, err)
	require.NotNil(t, s)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()), "starting twice is a no-op")
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()), "stopping twice is a no-op")
}

func TestTickInvokesBatchSyncAndSurvivesError(t *testing.T) {
	var calls int32
	s, err := New("@every 1h", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return assert.AnError
	}, nil)
	require.NoError(t, err)

	s.tick()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a failing sync is logged, not panicked on")
}

