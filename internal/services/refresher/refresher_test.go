package refresher_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/services/refresher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Refresh(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

type countingCache struct {
	calls atomic.Int32
}

func (c *countingCache) Refresh(_ context.Context) bool {
	c.calls.Add(1)
	return true
}

func newMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

func TestRunOnce(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("success", func(t *testing.T) {
		cache := new(mockCache)
		cache.On("Refresh", mock.Anything).Return(true).Once()
		m := newMetrics()

		err := refresher.NewService(logger, cache, m).RunOnce(t.Context())

		require.NoError(t, err)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Runs.WithLabelValues("success")), 0)
		assert.Positive(t, testutil.ToFloat64(m.LastSuccessfulRun))
		cache.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		cache := new(mockCache)
		cache.On("Refresh", mock.Anything).Return(false).Once()
		m := newMetrics()

		err := refresher.NewService(logger, cache, m).RunOnce(t.Context())

		require.ErrorIs(t, err, refresher.ErrRefreshFailed)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Runs.WithLabelValues("failure")), 0)
		assert.Zero(t, testutil.ToFloat64(m.LastSuccessfulRun))
		cache.AssertExpectations(t)
	})
}

func TestStart_InitialLoadFails(t *testing.T) {
	cache := new(mockCache)
	cache.On("Refresh", mock.Anything).Return(false).Once()

	err := refresher.NewService(slog.New(slog.DiscardHandler), cache, newMetrics()).Start(t.Context(), time.Hour)

	require.ErrorIs(t, err, refresher.ErrRefreshFailed)
	require.ErrorContains(t, err, "failed during initial load")
	cache.AssertExpectations(t)
}

func TestStart_RefreshesUntilCanceled(t *testing.T) {
	cache := &countingCache{}
	ctx, cancel := context.WithCancel(t.Context())

	done := make(chan error, 1)
	go func() {
		done <- refresher.NewService(slog.New(slog.DiscardHandler), cache, newMetrics()).Start(ctx, 10*time.Millisecond)
	}()

	require.Eventually(t, func() bool { return cache.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
