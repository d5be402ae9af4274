package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewAcquireRelease(t *testing.T) {
	destroyed := 0
	v := NewView(KindShaderResourceView, "bricks", "obj", func(object any) {
		assert.Equal(t, "obj", object)
		destroyed++
	})
	require.Equal(t, int32(1), v.RefCount())

	a := v.Acquire()
	b := a.Acquire()
	assert.Equal(t, int32(3), v.RefCount())
	assert.True(t, a.Same(v))
	assert.True(t, b.Same(v))

	a.Release()
	b.Release()
	assert.Equal(t, int32(1), v.RefCount())
	assert.Zero(t, destroyed)

	v.Release()
	assert.Equal(t, int32(0), v.RefCount())
	assert.Equal(t, 1, destroyed)
}

func TestViewDoubleReleaseIsNoop(t *testing.T) {
	destroyed := 0
	v := NewView(KindSampler, "sampler", nil, func(any) { destroyed++ })
	claim := v.Acquire()

	claim.Release()
	claim.Release()
	claim.Release()

	assert.Equal(t, int32(1), v.RefCount())
	assert.Zero(t, destroyed)
	assert.True(t, claim.Released())
	assert.False(t, v.Released())

	v.Release()
	v.Release()
	assert.Equal(t, 1, destroyed)
}

func TestNilView(t *testing.T) {
	var v *View
	assert.NotPanics(t, v.Release)
	assert.Nil(t, v.Acquire())
	assert.Zero(t, v.RefCount())
	assert.True(t, v.Released())
	assert.Nil(t, v.Object())
	assert.Equal(t, "", v.Label())
	assert.True(t, v.Same(nil))
}

func TestAcquireAfterReleasePanics(t *testing.T) {
	v := NewView(KindTexture, "tex", nil, nil)
	keep := v.Acquire()
	v.Release()

	assert.Panics(t, func() { v.Acquire() })
	assert.Equal(t, int32(1), keep.RefCount())
	keep.Release()
}

func TestScopeReleasesInReverseOrder(t *testing.T) {
	var order []string
	mk := func(name string) *View {
		return NewView(KindShaderResourceView, name, nil, func(any) { order = append(order, name) })
	}
	first, second := mk("first"), mk("second")

	var s Scope
	s.Hold(first)
	s.Hold(second)
	assert.Nil(t, s.Hold(nil))

	s.Close()
	assert.Equal(t, []string{"second", "first"}, order)

	s.Close()
	assert.Len(t, order, 2)
}

func TestScopeIsReusableAcrossDraws(t *testing.T) {
	v := NewView(KindShaderResourceView, "normal", nil, nil)

	var s Scope
	for i := 0; i < 3; i++ {
		got := s.Hold(v.Acquire())
		assert.True(t, got.Same(v))
		assert.Equal(t, int32(2), v.RefCount(), "draw %d", i)
		s.Close()
		assert.Equal(t, int32(1), v.RefCount(), "draw %d", i)
	}
}

func TestTrackerCountsLiveObjects(t *testing.T) {
	tr := NewTracker()
	a := tr.NewView(KindRenderTargetView, "a", nil, nil)
	b := tr.NewView(KindRenderTargetView, "b", nil, nil)
	c := tr.NewView(KindSampler, "c", nil, nil)

	assert.Equal(t, 2, tr.Live(KindRenderTargetView))
	assert.Equal(t, 3, tr.TotalLive())

	extra := a.Acquire()
	a.Release()
	assert.Equal(t, 2, tr.Live(KindRenderTargetView))

	extra.Release()
	b.Release()
	c.Release()
	assert.Zero(t, tr.TotalLive())
	assert.Equal(t, 2, tr.Created(KindRenderTargetView))
}
