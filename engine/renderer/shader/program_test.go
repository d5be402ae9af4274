package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blurDescriptor() Descriptor {
	return Descriptor{
		Name:       "blur ps",
		Stage:      gfx.StagePixel,
		Source:     "@fragment fn main() {}",
		EntryPoint: "main",
		Buffers: []Buffer{{
			Slot: 0,
			Size: 16,
			Variables: []Variable{
				{Name: "blurAmount", Offset: 0, Size: 4},
				{Name: "pixelWidth", Offset: 4, Size: 4},
				{Name: "pixelHeight", Offset: 8, Size: 4},
			},
		}},
		Textures: []Resource{{Name: "InitialRender", Slot: 0}},
		Samplers: []Resource{{Name: "Sampler", Slot: 0}},
	}
}

func TestNewProgramAndSetters(t *testing.T) {
	dev := gfxtest.NewDevice(4, 4)
	p, err := NewProgram(dev, blurDescriptor())
	require.NoError(t, err)
	assert.Equal(t, 1, dev.Tracker.Live(resource.KindProgram))

	assert.True(t, p.SetInt("blurAmount", 9))
	assert.True(t, p.SetFloat("pixelWidth", 0.5))
	assert.False(t, p.SetFloat("missing", 1))
	assert.False(t, p.SetMatrix4x4("pixelHeight", mgl32.Ident4()), "size mismatch is rejected")

	p.CopyAllBufferData(dev)
	data := dev.State().Constants(gfx.StagePixel, 0)
	require.Len(t, data, 16)
	assert.Equal(t, byte(9), data[0])
	assert.Equal(t, float32(0.5), float32At(data, 4))

	p.SetShader(dev)
	assert.True(t, dev.State().Program(gfx.StagePixel).Same(p.Handle()))

	p.Release()
	dev.Release()
	assert.Zero(t, dev.Tracker.Live(resource.KindProgram))
}

func TestBindByName(t *testing.T) {
	dev := gfxtest.NewDevice(4, 4)
	p, err := NewProgram(dev, blurDescriptor())
	require.NoError(t, err)
	srv := resource.NewView(resource.KindShaderResourceView, "offscreen srv", nil, nil)
	sampler := resource.NewView(resource.KindSampler, "sampler", nil, nil)

	assert.True(t, p.BindShaderResource(dev, "InitialRender", srv))
	assert.True(t, p.BindSampler(dev, "Sampler", sampler))
	assert.False(t, p.BindShaderResource(dev, "NormalMap", srv))
	assert.Equal(t, "offscreen srv", dev.State().Texture(gfx.StagePixel, 0).Label())

	assert.True(t, p.BindShaderResource(dev, "InitialRender", nil))
	assert.Nil(t, dev.State().Texture(gfx.StagePixel, 0))
	assert.Equal(t, int32(1), srv.RefCount())
}

func TestValidateRejectsBadLayouts(t *testing.T) {
	d := blurDescriptor()
	d.Buffers[0].Variables = append(d.Buffers[0].Variables, Variable{Name: "overflow", Offset: 12, Size: 8})
	assert.ErrorIs(t, d.Validate(), ErrInvalidLayout)

	d = blurDescriptor()
	d.Buffers[0].Size = 12
	assert.ErrorIs(t, d.Validate(), ErrInvalidLayout)

	d = blurDescriptor()
	d.Samplers = append(d.Samplers, Resource{Name: "blurAmount", Slot: 1})
	assert.ErrorIs(t, d.Validate(), ErrInvalidLayout)

	d = blurDescriptor()
	d.Source = ""
	assert.ErrorIs(t, d.Validate(), ErrInvalidLayout)
}

func TestNewProgramDeviceFailure(t *testing.T) {
	dev := gfxtest.NewDevice(4, 4)
	dev.Fail["CreateProgram"] = assert.AnError
	_, err := NewProgram(dev, blurDescriptor())
	assert.ErrorIs(t, err, assert.AnError)
}
