package render_target

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderTargetDropsTextureClaim(t *testing.T) {
	dev := gfxtest.NewDevice(1280, 720)
	baseTextures := dev.Tracker.Live(resource.KindTexture)

	rt, err := NewRenderTarget(dev, 1280, 720, gfx.FormatRGBA8Unorm, "offscreen")
	require.NoError(t, err)

	assert.Equal(t, 1, dev.Tracker.Live(resource.KindTexture)-baseTextures, "views keep the texture alive")
	assert.Equal(t, 1, dev.Tracker.Live(resource.KindShaderResourceView))

	rtv := rt.RenderView()
	tex := rtv.Object().(*gfxtest.TextureView).Texture
	assert.Equal(t, int32(2), tex.RefCount(), "one claim per derived view, none for the target")
	rtv.Release()

	w, h := rt.Size()
	assert.Equal(t, []int{1280, 720}, []int{w, h})
	assert.Equal(t, gfx.FormatRGBA8Unorm, rt.Format())

	rt.Release()
	assert.Equal(t, baseTextures, dev.Tracker.Live(resource.KindTexture))
}

func TestResizeReleasesOldViewsFirst(t *testing.T) {
	dev := gfxtest.NewDevice(1280, 720)
	rtvBase := dev.Tracker.Live(resource.KindRenderTargetView)
	rt, err := NewRenderTarget(dev, 1280, 720, gfx.FormatRGBA8Unorm, "offscreen")
	require.NoError(t, err)

	for _, size := range [][2]int{{640, 480}, {1920, 1080}, {1, 1}} {
		require.NoError(t, rt.Resize(size[0], size[1]))
		assert.Equal(t, 1, dev.Tracker.Live(resource.KindRenderTargetView)-rtvBase)
		assert.Equal(t, 1, dev.Tracker.Live(resource.KindShaderResourceView))

		srv := rt.ShaderView()
		tex := srv.Object().(*gfxtest.TextureView).Texture.Object().(*gfxtest.Texture)
		assert.Equal(t, uint32(size[0]), tex.Desc.Width)
		assert.Equal(t, uint32(size[1]), tex.Desc.Height)
		srv.Release()
	}
	assert.Equal(t, 4, dev.Tracker.Created(resource.KindShaderResourceView))
}

func TestResizeSameSizeIsNoop(t *testing.T) {
	dev := gfxtest.NewDevice(64, 64)
	rt, err := NewRenderTarget(dev, 64, 64, gfx.FormatRGBA8Unorm, "offscreen")
	require.NoError(t, err)

	require.NoError(t, rt.Resize(64, 64))
	assert.Equal(t, 1, dev.Tracker.Created(resource.KindShaderResourceView))
}

func TestResizeRejectsZero(t *testing.T) {
	dev := gfxtest.NewDevice(64, 64)
	rt, err := NewRenderTarget(dev, 64, 64, gfx.FormatRGBA8Unorm, "offscreen")
	require.NoError(t, err)

	assert.ErrorIs(t, rt.Resize(0, 720), ErrInvalidSize)
	w, h := rt.Size()
	assert.Equal(t, []int{64, 64}, []int{w, h})
	assert.Equal(t, 1, dev.Tracker.Live(resource.KindShaderResourceView))

	_, err = NewRenderTarget(dev, 0, 0, gfx.FormatRGBA8Unorm, "bad")
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestResizeFailureRestoresPreviousSize(t *testing.T) {
	dev := gfxtest.NewDevice(64, 64)
	rt, err := NewRenderTarget(dev, 64, 64, gfx.FormatRGBA8Unorm, "offscreen")
	require.NoError(t, err)

	dev.Fail["CreateShaderResourceView"] = assert.AnError
	err = rt.Resize(128, 128)
	assert.ErrorIs(t, err, assert.AnError)

	delete(dev.Fail, "CreateShaderResourceView")
	require.NoError(t, rt.Resize(128, 128))
	w, _ := rt.Size()
	assert.Equal(t, 128, w)
	assert.Equal(t, 1, dev.Tracker.Live(resource.KindShaderResourceView))
}

func TestCreateFailureLeaksNothing(t *testing.T) {
	dev := gfxtest.NewDevice(64, 64)
	before := dev.Tracker.TotalLive()
	dev.Fail["CreateShaderResourceView"] = assert.AnError

	_, err := NewRenderTarget(dev, 64, 64, gfx.FormatRGBA8Unorm, "offscreen")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, before, dev.Tracker.TotalLive())
}

func TestClearTargetsRenderView(t *testing.T) {
	dev := gfxtest.NewDevice(64, 64)
	rt, err := NewRenderTarget(dev, 64, 64, gfx.FormatRGBA8Unorm, "offscreen")
	require.NoError(t, err)

	rt.Clear(dev, gfx.Color{})
	require.Len(t, dev.Calls, 1)
	assert.Equal(t, gfxtest.Call{Op: "ClearRenderTarget", Label: "offscreen rtv"}, dev.Calls[0])
}
