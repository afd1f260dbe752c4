package manager

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_SkipsOverlappingTicks(t *testing.T) {
	ctx := context.Background()
	metrics := NewMetrics(NewRegistry())

	release := make(chan struct{})
	var runs atomic.Int32
	p := NewPoller(func(context.Context) error {
		runs.Add(1)
		<-release
		return nil
	}, func() time.Duration { return time.Hour }, metrics)

	require.True(t, p.Trigger(ctx))
	assert.True(t, p.Running())
	assert.False(t, p.Trigger(ctx))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SkippedTicks))

	close(release)
	p.Stop()

	assert.False(t, p.Running())
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, p.Trigger(ctx), "stopped poller starts no ticks")
}

func TestPoller_StopWaitsForInFlightTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	var finished atomic.Bool
	p := NewPoller(func(tickCtx context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(tickCtx.Err() == nil)
		return nil
	}, func() time.Duration { return time.Hour }, nil)

	done := make(chan error)
	go func() {
		done <- p.Run(ctx)
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
	assert.True(t, finished.Load(), "in-flight tick runs to completion")
}

func TestPoller_ReadsIntervalEachTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks atomic.Int32
	var reads atomic.Int32
	p := NewPoller(func(context.Context) error {
		ticks.Add(1)
		return nil
	}, func() time.Duration {
		reads.Add(1)
		return 10 * time.Millisecond
	}, nil)

	go func() {
		_ = p.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return ticks.Load() >= 3 && reads.Load() >= 3
	}, 5*time.Second, 5*time.Millisecond)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.Hit("movie")
	m.Miss("movie")
	m.tickFinished(time.Second)
	m.tickSkipped()
	m.fileProcessed(nil)
	assert.Nil(t, m.Registry())
}
