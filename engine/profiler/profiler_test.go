package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTick_ReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := NewProfiler(WithClock(clock.now), WithQuiet())

	for i := 0; i < 9; i++ {
		clock.advance(100 * time.Millisecond)
		assert.False(t, p.Tick(7), "frame %d is inside the interval", i)
	}
	clock.advance(100 * time.Millisecond)
	require.True(t, p.Tick(7))

	s := p.Last()
	assert.Equal(t, 10, s.FramesInSample)
	assert.InDelta(t, 10.0, s.FPS, 1e-9)
	assert.InDelta(t, 7.0, s.DrawsPerFrame, 1e-9)
	assert.Positive(t, s.SysMB)
}

func TestTick_ResetsAfterReport(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithQuiet(), WithInterval(time.Second))

	clock.advance(time.Second)
	require.True(t, p.Tick(4))
	assert.InDelta(t, 4.0, p.Last().DrawsPerFrame, 1e-9)

	clock.advance(500 * time.Millisecond)
	assert.False(t, p.Tick(2))
	clock.advance(500 * time.Millisecond)
	require.True(t, p.Tick(6))
	assert.Equal(t, 2, p.Last().FramesInSample)
	assert.InDelta(t, 4.0, p.Last().DrawsPerFrame, 1e-9)
}

func TestWithInterval_IgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithQuiet())
	assert.Equal(t, time.Second, p.updateInterval)
}
