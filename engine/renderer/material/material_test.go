package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func programs(t *testing.T, dev gfx.Device) (shader.Program, shader.Program) {
	t.Helper()
	vs, err := shader.NewProgram(dev, shader.Descriptor{Name: "vs", Stage: gfx.StageVertex, Source: "vs", EntryPoint: "main"})
	require.NoError(t, err)
	ps, err := shader.NewProgram(dev, shader.Descriptor{Name: "ps", Stage: gfx.StagePixel, Source: "ps", EntryPoint: "main"})
	require.NoError(t, err)
	return vs, ps
}

func views(tr *resource.Tracker) (color, normal, sampler *resource.View) {
	return tr.NewView(resource.KindShaderResourceView, "bricks", nil, nil),
		tr.NewView(resource.KindShaderResourceView, "bricksNM", nil, nil),
		tr.NewView(resource.KindSampler, "sampler", nil, nil)
}

func TestMaterialRefCountsBalance(t *testing.T) {
	dev := gfxtest.NewDevice(8, 8)
	color, normal, sampler := views(dev.Tracker)
	before := []int32{color.RefCount(), normal.RefCount(), sampler.RefCount()}

	vs, ps := programs(t, dev)
	m, err := NewMaterial(vs, ps, sampler, WithName("brick"), WithColorView(color), WithNormalView(normal))
	require.NoError(t, err)
	assert.Equal(t, "brick", m.Name())
	assert.Equal(t, []int32{2, 2, 2}, []int32{color.RefCount(), normal.RefCount(), sampler.RefCount()})

	m.Release()
	assert.Equal(t, before, []int32{color.RefCount(), normal.RefCount(), sampler.RefCount()})
	assert.Zero(t, dev.Tracker.Live(resource.KindProgram), "programs are owned by the material")

	m.Release()
	assert.Equal(t, before, []int32{color.RefCount(), normal.RefCount(), sampler.RefCount()})
}

func TestMaterialsSharingViews(t *testing.T) {
	dev := gfxtest.NewDevice(8, 8)
	color, normal, sampler := views(dev.Tracker)

	vs1, ps1 := programs(t, dev)
	a, err := NewMaterial(vs1, ps1, sampler, WithColorView(color), WithNormalView(normal))
	require.NoError(t, err)
	vs2, ps2 := programs(t, dev)
	b, err := NewMaterial(vs2, ps2, sampler, WithColorView(color))
	require.NoError(t, err)

	color.Release()
	normal.Release()
	sampler.Release()
	assert.Equal(t, 3, dev.Tracker.Live(resource.KindShaderResourceView)+dev.Tracker.Live(resource.KindSampler))

	a.Release()
	assert.Equal(t, 1, dev.Tracker.Live(resource.KindShaderResourceView), "b still holds the color view")
	assert.Equal(t, 1, dev.Tracker.Live(resource.KindSampler))

	b.Release()
	assert.Zero(t, dev.Tracker.Live(resource.KindShaderResourceView))
	assert.Zero(t, dev.Tracker.Live(resource.KindSampler))
}

func TestMaterialAccessorsBorrow(t *testing.T) {
	dev := gfxtest.NewDevice(8, 8)
	color, _, sampler := views(dev.Tracker)
	vs, ps := programs(t, dev)
	m, err := NewMaterial(vs, ps, sampler, WithColorView(color))
	require.NoError(t, err)

	assert.True(t, m.HasColorView())
	assert.False(t, m.HasNormalMap())
	assert.Nil(t, m.NormalView())

	var scope resource.Scope
	got := scope.Hold(m.ColorView())
	scope.Hold(m.Sampler())
	assert.True(t, got.Same(color))
	assert.Equal(t, int32(3), color.RefCount())
	assert.Equal(t, int32(3), sampler.RefCount())

	scope.Close()
	assert.Equal(t, int32(2), color.RefCount())
	assert.Equal(t, int32(2), sampler.RefCount())
	m.Release()
}

func TestNewMaterialValidation(t *testing.T) {
	dev := gfxtest.NewDevice(8, 8)
	_, _, sampler := views(dev.Tracker)
	vs, ps := programs(t, dev)

	_, err := NewMaterial(vs, ps, nil)
	assert.ErrorIs(t, err, ErrNilSampler)

	_, err = NewMaterial(nil, ps, sampler)
	assert.ErrorIs(t, err, ErrMissingProgram)

	_, err = NewMaterial(ps, vs, sampler)
	assert.ErrorIs(t, err, ErrStageMismatch)
	assert.Equal(t, int32(1), sampler.RefCount(), "failed construction takes no claims")
}
