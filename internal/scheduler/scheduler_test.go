package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/clock"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) RefreshAll(context.Context) {
	r.calls.Add(1)
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	types []string
	last  any
}

func (b *recordingBroadcaster) Broadcast(msgType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.types = append(b.types, msgType)
	b.last = data
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.types)
}

func TestClockTicksAreBroadcast(t *testing.T) {
	out := &recordingBroadcaster{}
	refresher := &countingRefresher{}
	s := New(clock.New("UTC", zap.NewNop()), refresher, out, 0, zap.NewNop())

	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	require.Eventually(t, func() bool { return out.count() > 0 }, 3*time.Second, 20*time.Millisecond)

	out.mu.Lock()
	assert.Equal(t, "clock.tick", out.types[0])
	tick, ok := out.last.(clock.Tick)
	out.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, "UTC", tick.Zone)
	assert.Zero(t, refresher.calls.Load(), "refresh disabled with a zero interval")
}

func TestRefreshWaitsForFirstInterval(t *testing.T) {
	refresher := &countingRefresher{}
	s := New(clock.New("UTC", zap.NewNop()), refresher, &recordingBroadcaster{}, time.Second, zap.NewNop())

	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	assert.Zero(t, refresher.calls.Load())
	require.Eventually(t, func() bool { return refresher.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
}
