package compositor

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-postfx/engine/camera"
	"github.com/Carmen-Shannon/oxy-postfx/engine/content"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-postfx/engine/light"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dev *gfxtest.Device
	reg content.Registry
	cam camera.Camera
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := gfxtest.NewDevice(1280, 720)
	reg, err := content.Load(dev, content.WithWorkers(2))
	require.NoError(t, err)
	t.Cleanup(reg.Release)

	cam := camera.NewCamera()
	cam.UpdateProjection(1280, 720)
	return &fixture{dev: dev, reg: reg, cam: cam}
}

func (fx *fixture) scene(names SceneNames, placements []Placement) Scene {
	return BuildScene(fx.reg, fx.cam, light.DemoLights(), names, placements)
}

func (fx *fixture) compositor(t *testing.T, scene Scene, options ...FrameCompositorBuilderOption) FrameCompositor {
	t.Helper()
	fc, err := NewFrameCompositor(fx.dev, fx.dev, fx.dev, scene, options...)
	require.NoError(t, err)
	t.Cleanup(fc.Release)
	return fc
}

func (fx *fixture) demo(t *testing.T, options ...FrameCompositorBuilderOption) FrameCompositor {
	t.Helper()
	fc := fx.compositor(t, fx.scene(DemoSceneNames(), DemoPlacements()), options...)
	fx.dev.Reset()
	return fc
}

func float32At(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func TestPassOrder(t *testing.T) {
	fx := newFixture(t)
	fc := fx.demo(t)

	assert.Equal(t, []string{PassClear, PassScene, PassSkybox, PassPost, PassPresent}, fc.Passes())

	require.NoError(t, fc.Draw())
	calls := fx.dev.Calls
	require.GreaterOrEqual(t, len(calls), 5)
	assert.Equal(t, gfxtest.Call{Op: "ClearRenderTarget", Label: "offscreen rtv"}, calls[0])
	assert.Equal(t, gfxtest.Call{Op: "ClearRenderTarget", Label: "backbuffer"}, calls[1])
	assert.Equal(t, gfxtest.Call{Op: "ClearDepthStencil", Label: "depth"}, calls[2])
	assert.Equal(t, gfxtest.Call{Op: "SetRenderTargets", Label: "offscreen rtv|depth"}, calls[3])
	assert.Equal(t, gfxtest.Call{Op: "SetRenderTargets", Label: "|"}, calls[len(calls)-2])
	assert.Equal(t, "Present", calls[len(calls)-1].Op)
	assert.Equal(t, uint32(0), calls[len(calls)-1].Count, "presents without waiting for vsync")
	assert.Equal(t, 1, fx.dev.Presents())
}

func TestDemoFrameIssuesSevenDraws(t *testing.T) {
	fx := newFixture(t)
	fc := fx.demo(t)

	require.NoError(t, fc.Draw())
	require.Len(t, fx.dev.Draws, 7)
	assert.Equal(t, 7, fc.DrawCalls())

	for i, d := range fx.dev.Draws[:5] {
		assert.True(t, d.Indexed, "entity %d", i)
		assert.Equal(t, "offscreen rtv", d.RenderTarget)
		assert.Equal(t, "depth", d.DepthTarget)
		assert.Empty(t, d.Rasterizer, "entities draw with the default rasterizer")
		assert.Empty(t, d.DepthState)
		assert.Equal(t, "vsLighting", d.VertexProgram)
		assert.Equal(t, "psLighting", d.PixelProgram)
		assert.Equal(t, map[uint32]string{0: "bricks srv", 1: "bricksNM srv"}, d.PixelTextures)
		assert.Equal(t, map[uint32]string{0: "sampler"}, d.PixelSamplers)
		assert.Equal(t, light.DemoLights().Marshal(), d.Constants["pixel/0"])
	}
	assert.Equal(t, "cube vertices", fx.dev.Draws[0].VertexBuffer)
	assert.Equal(t, "cone vertices", fx.dev.Draws[1].VertexBuffer)
	assert.Equal(t, "helix vertices", fx.dev.Draws[2].VertexBuffer)
	assert.Equal(t, "cube vertices", fx.dev.Draws[3].VertexBuffer)
	assert.Equal(t, "torus vertices", fx.dev.Draws[4].VertexBuffer)

	sky := fx.dev.Draws[5]
	assert.True(t, sky.Indexed)
	assert.Equal(t, "offscreen rtv", sky.RenderTarget)
	assert.Equal(t, "sky rasterizer", sky.Rasterizer)
	assert.Equal(t, "sky depth", sky.DepthState)
	assert.Equal(t, "cube vertices", sky.VertexBuffer)
	assert.Equal(t, map[uint32]string{0: "SunnyCubeMap srv"}, sky.PixelTextures, "no entity textures leak into the sky")
	assert.Equal(t, "SkyVS", sky.VertexProgram)

	post := fx.dev.Draws[6]
	assert.False(t, post.Indexed)
	assert.Equal(t, uint32(3), post.Count)
	assert.Equal(t, "backbuffer", post.RenderTarget)
	assert.Empty(t, post.DepthTarget)
	assert.Empty(t, post.Rasterizer, "sky rasterizer restored before post-process")
	assert.Empty(t, post.DepthState, "sky depth state restored before post-process")
	assert.Empty(t, post.VertexBuffer)
	assert.Empty(t, post.IndexBuffer)
	assert.Equal(t, map[uint32]string{0: "offscreen srv"}, post.PixelTextures)
	assert.Equal(t, "psBlur", post.PixelProgram)

	constants := post.Constants["pixel/0"]
	require.Len(t, constants, 16)
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(constants))
	assert.Equal(t, float32(1)/1280, float32At(constants, 4))
	assert.Equal(t, float32(1)/720, float32At(constants, 8))
}

func TestFrameLeavesNothingBound(t *testing.T) {
	fx := newFixture(t)
	fc := fx.demo(t)
	require.NoError(t, fc.Draw())

	state := fx.dev.State()
	assert.Nil(t, state.RenderTarget())
	assert.Nil(t, state.DepthTarget())
	assert.Nil(t, state.Rasterizer())
	assert.Nil(t, state.DepthState())
	for _, stage := range []gfx.Stage{gfx.StageVertex, gfx.StagePixel} {
		assert.Empty(t, state.TextureSlots(stage), stage.String())
		assert.Empty(t, state.SamplerSlots(stage), stage.String())
	}
}

func TestOffscreenViewUnboundRightAfterPostDraw(t *testing.T) {
	fx := newFixture(t)
	fc := fx.demo(t)
	require.NoError(t, fc.Draw())

	calls := fx.dev.Calls
	last := -1
	for i, c := range calls {
		if c.Op == "Draw" {
			last = i
		}
	}
	require.Positive(t, last)
	assert.Equal(t, gfxtest.Call{Op: "SetShaderResource", Stage: gfx.StagePixel, Slot: 0}, calls[last+1])
}

func TestFramesAreDeterministic(t *testing.T) {
	fx := newFixture(t)
	fc := fx.demo(t)

	require.NoError(t, fc.Draw())
	firstCalls, firstDraws := fx.dev.Calls, fx.dev.Draws
	fx.dev.Reset()

	require.NoError(t, fc.Draw())
	assert.Equal(t, firstCalls, fx.dev.Calls)
	assert.Equal(t, firstDraws, fx.dev.Draws)
}

func TestFrameKeepsRefCountsBalanced(t *testing.T) {
	fx := newFixture(t)
	fc := fx.demo(t)

	brick, err := fx.reg.GetMaterial(content.MaterialBrick)
	require.NoError(t, err)
	color, normal, sampler := brick.ColorView(), brick.NormalView(), brick.Sampler()
	defer color.Release()
	defer normal.Release()
	defer sampler.Release()
	before := []int32{color.RefCount(), normal.RefCount(), sampler.RefCount()}
	live := fx.dev.Tracker.TotalLive()

	for range 3 {
		require.NoError(t, fc.Draw())
		assert.Equal(t, before, []int32{color.RefCount(), normal.RefCount(), sampler.RefCount()})
		assert.Equal(t, live, fx.dev.Tracker.TotalLive())
	}
}

func TestMissingContentIsSkipped(t *testing.T) {
	fx := newFixture(t)
	placements := append(DemoPlacements(), Placement{Mesh: "sphere", Material: content.MaterialBrick})
	placements = append(placements, Placement{Mesh: content.MeshCube, Material: "bloom"})

	scene := fx.scene(SceneNames{SkyMesh: content.MeshCube, SkyMaterial: "stars", PostProcess: content.MaterialBlur}, placements)
	assert.Len(t, scene.Entities, 5)
	assert.Nil(t, scene.Sky)

	fc := fx.compositor(t, scene)
	assert.Equal(t, []string{PassClear, PassScene, PassPost, PassPresent}, fc.Passes())
	fx.dev.Reset()
	require.NoError(t, fc.Draw())
	assert.Equal(t, 6, fc.DrawCalls())
	assert.Zero(t, fx.dev.Tracker.Live(resource.KindRasterizerState))
}

func TestMissingPostProcessDrawsToBackBuffer(t *testing.T) {
	fx := newFixture(t)
	names := DemoSceneNames()
	names.PostProcess = "bloom"

	fc := fx.compositor(t, fx.scene(names, DemoPlacements()))
	assert.Equal(t, []string{PassClear, PassScene, PassSkybox, PassPresent}, fc.Passes())
	assert.Equal(t, 1, fx.dev.Tracker.Live(resource.KindRenderTargetView), "only the back buffer")

	fx.dev.Reset()
	require.NoError(t, fc.Draw())
	require.Len(t, fx.dev.Draws, 6)
	for _, d := range fx.dev.Draws {
		assert.Equal(t, "backbuffer", d.RenderTarget)
	}
}

func TestResize(t *testing.T) {
	fx := newFixture(t)
	fc := fx.demo(t, WithBlurAmount(3))
	rtvs := fx.dev.Tracker.Live(resource.KindRenderTargetView)
	srvs := fx.dev.Tracker.Live(resource.KindShaderResourceView)
	projection := fx.cam.Projection()

	require.NoError(t, fc.Resize(0, 0))
	assert.Equal(t, projection, fx.cam.Projection())

	require.NoError(t, fc.Resize(640, 480))
	assert.Equal(t, rtvs, fx.dev.Tracker.Live(resource.KindRenderTargetView))
	assert.Equal(t, srvs, fx.dev.Tracker.Live(resource.KindShaderResourceView))
	assert.NotEqual(t, projection, fx.cam.Projection())
	w, h := fx.dev.Size()
	assert.Equal(t, []int{640, 480}, []int{w, h})

	fx.dev.Reset()
	require.NoError(t, fc.Draw())
	post := fx.dev.Draws[len(fx.dev.Draws)-1]
	constants := post.Constants["pixel/0"]
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(constants))
	assert.Equal(t, float32(1)/640, float32At(constants, 4))
	assert.Equal(t, float32(1)/480, float32At(constants, 8))
}

func TestInitFailureReleasesPartialState(t *testing.T) {
	fx := newFixture(t)
	srvs := fx.dev.Tracker.Live(resource.KindShaderResourceView)
	fx.dev.Fail["CreateDepthStencilState"] = assert.AnError

	_, err := NewFrameCompositor(fx.dev, fx.dev, fx.dev, fx.scene(DemoSceneNames(), DemoPlacements()))
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, srvs, fx.dev.Tracker.Live(resource.KindShaderResourceView))
	assert.Zero(t, fx.dev.Tracker.Live(resource.KindRasterizerState))
}

func TestPresentFailureIsReturned(t *testing.T) {
	fx := newFixture(t)
	fc := fx.demo(t)
	fx.dev.Fail["Present"] = assert.AnError

	assert.ErrorIs(t, fc.Draw(), assert.AnError)
}

func TestReleasedCompositor(t *testing.T) {
	fx := newFixture(t)
	fc := fx.demo(t, WithSyncInterval(1))
	fc.Release()
	fc.Release()

	assert.ErrorIs(t, fc.Draw(), ErrReleased)
	assert.ErrorIs(t, fc.Resize(10, 10), ErrReleased)
	assert.Zero(t, fx.dev.Tracker.Live(resource.KindDepthStencilState))
}

func TestNewFrameCompositorNeedsCamera(t *testing.T) {
	fx := newFixture(t)
	_, err := NewFrameCompositor(fx.dev, fx.dev, fx.dev, Scene{})
	assert.Error(t, err)
}

// registerPlainMaterial adds a lit material that has the brick color view but no normal map.
func (fx *fixture) registerPlainMaterial(t *testing.T) {
	t.Helper()
	vs, err := shader.NewProgram(fx.dev, shader.Descriptor{
		Name: "vsPlain", Stage: gfx.StageVertex, Source: "plain", EntryPoint: "vs_main", VertexInput: true,
		Buffers: []shader.Buffer{{Slot: 0, Size: 192, Variables: []shader.Variable{
			{Name: "world", Offset: 0, Size: 64},
			{Name: "view", Offset: 64, Size: 64},
			{Name: "projection", Offset: 128, Size: 64},
		}}},
	})
	require.NoError(t, err)
	ps, err := shader.NewProgram(fx.dev, shader.Descriptor{
		Name: "psPlain", Stage: gfx.StagePixel, Source: "plain", EntryPoint: "ps_main",
		Buffers: []shader.Buffer{{Slot: 0, Size: light.Size, Variables: []shader.Variable{
			{Name: "lights", Offset: 0, Size: light.Size},
		}}},
		Textures: []shader.Resource{{Name: "Texture", Slot: 0}, {Name: "NormalMap", Slot: 1}},
		Samplers: []shader.Resource{{Name: "Sampler", Slot: 0}},
	})
	require.NoError(t, err)

	brick, err := fx.reg.GetMaterial(content.MaterialBrick)
	require.NoError(t, err)
	color := brick.ColorView()
	defer color.Release()
	sampler := fx.reg.Sampler()
	defer sampler.Release()

	plain, err := material.NewMaterial(vs, ps, sampler, material.WithName("plain"), material.WithColorView(color))
	require.NoError(t, err)
	require.NoError(t, fx.reg.RegisterMaterial(plain))
}

func TestEntityWithoutNormalMapDoesNotInheritSlot(t *testing.T) {
	fx := newFixture(t)
	fx.registerPlainMaterial(t)
	placements := []Placement{
		{Mesh: content.MeshCube, Material: content.MaterialBrick},
		{Mesh: content.MeshCone, Material: "plain"},
		{Mesh: content.MeshTorus, Material: content.MaterialBrick},
	}
	fc := fx.compositor(t, fx.scene(DemoSceneNames(), placements))
	fx.dev.Reset()

	require.NoError(t, fc.Draw())
	require.GreaterOrEqual(t, len(fx.dev.Draws), 3)
	assert.Equal(t, map[uint32]string{0: "bricks srv", 1: "bricksNM srv"}, fx.dev.Draws[0].PixelTextures)
	assert.Equal(t, map[uint32]string{0: "bricks srv"}, fx.dev.Draws[1].PixelTextures)
	assert.Equal(t, "psPlain", fx.dev.Draws[1].PixelProgram)
	assert.Equal(t, map[uint32]string{0: "bricks srv", 1: "bricksNM srv"}, fx.dev.Draws[2].PixelTextures)
}

func TestResizeKeepsProjectionWithSwapChainWhenOffscreenFails(t *testing.T) {
	fx := newFixture(t)
	fc := fx.demo(t)
	projection := fx.cam.Projection()

	fx.dev.Fail["CreateTexture"] = assert.AnError
	err := fc.Resize(640, 480)
	delete(fx.dev.Fail, "CreateTexture")

	require.ErrorIs(t, err, assert.AnError)
	w, h := fx.dev.Size()
	assert.Equal(t, []int{640, 480}, []int{w, h})
	assert.NotEqual(t, projection, fx.cam.Projection(), "projection follows the swap chain")

	want := camera.NewCamera()
	want.UpdateProjection(640, 480)
	assert.Equal(t, want.Projection(), fx.cam.Projection())
}
