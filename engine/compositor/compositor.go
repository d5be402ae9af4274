// Package compositor sequences a frame: clear, scene into an offscreen target, skybox, a
// full-screen blur into the back buffer, and present.
package compositor

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/render_target"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
)

// Pass names in execution order.
const (
	PassClear   = "clear"
	PassScene   = "scene"
	PassSkybox  = "skybox"
	PassPost    = "post-process"
	PassPresent = "present"
)

// ErrReleased is returned when a released compositor is asked to draw or resize.
var ErrReleased = errors.New("compositor: released")

// DefaultBlurAmount is the blur radius of the demo.
const DefaultBlurAmount = 9

type frameCompositor struct {
	dev   gfx.Device
	ctx   gfx.Context
	sc    gfx.SwapChain
	scene Scene

	blurAmount   int32
	clearColor   common.Color
	syncInterval int

	offscreen render_target.RenderTarget
	skyRaster *resource.View
	skyDepth  *resource.View

	passes    []Pass
	drawCalls int
	released  bool
}

// FrameCompositor draws the whole frame for a fixed scene. It is driven from the one goroutine
// that owns the device context.
type FrameCompositor interface {
	// Draw renders and presents one frame.
	//
	// Returns:
	//   - error: the swap chain's present error, or ErrReleased
	Draw() error

	// Resize refits the swap chain, offscreen target and camera projection. Zero sizes, as sent
	// while the window is minimised, are ignored.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	//
	// Returns:
	//   - error: error if the swap chain or offscreen target cannot be recreated. When only the
	//     offscreen target fails, the swap chain and projection are at the new size and the
	//     offscreen target keeps its previous size; frames still draw, with the blur sampling the
	//     smaller image.
	Resize(width, height int) error

	// Passes lists the frame's steps in execution order, clear and present included.
	//
	// Returns:
	//   - []string: the pass names
	Passes() []string

	// DrawCalls returns the number of draws the last frame submitted.
	DrawCalls() int

	// Release releases the offscreen target and the sky states. It is idempotent.
	Release()
}

var _ FrameCompositor = &frameCompositor{}

// NewFrameCompositor creates the offscreen target at the swap chain size and the sky states, then
// assembles the pass list. A scene without a sky gets no skybox pass; a scene without a
// post-process material draws straight into the back buffer.
//
// Parameters:
//   - dev: the device that creates the compositor's objects
//   - ctx: the context frames are recorded on
//   - sc: the swap chain that is cleared, drawn to and presented
//   - scene: the content to draw
//   - options: variadic FrameCompositorBuilderOption functions
//
// Returns:
//   - FrameCompositor: the new compositor
//   - error: error if any of the compositor's GPU objects cannot be created
func NewFrameCompositor(dev gfx.Device, ctx gfx.Context, sc gfx.SwapChain, scene Scene, options ...FrameCompositorBuilderOption) (FrameCompositor, error) {
	if scene.Camera == nil {
		return nil, fmt.Errorf("compositor: scene has no camera")
	}
	f := &frameCompositor{
		dev:        dev,
		ctx:        ctx,
		sc:         sc,
		scene:      scene,
		blurAmount: DefaultBlurAmount,
	}
	for _, opt := range options {
		opt(f)
	}

	if err := f.init(); err != nil {
		f.Release()
		return nil, err
	}
	log.Printf("[Compositor] %d entities, passes: %s", len(scene.Entities), strings.Join(f.Passes(), " -> "))
	return f, nil
}

func (f *frameCompositor) init() error {
	var err error
	if f.scene.PostProcess != nil {
		w, h := f.sc.Size()
		f.offscreen, err = render_target.NewRenderTarget(f.dev, w, h, gfx.FormatRGBA8Unorm, "offscreen")
		if err != nil {
			return fmt.Errorf("compositor: failed to create offscreen target: %w", err)
		}
	}

	if f.scene.Sky != nil {
		f.skyRaster, err = f.dev.CreateRasterizerState(gfx.RasterizerDescriptor{
			Label:     "sky rasterizer",
			Cull:      gfx.CullFront,
			DepthClip: true,
		})
		if err != nil {
			return fmt.Errorf("compositor: failed to create sky rasterizer state: %w", err)
		}
		f.skyDepth, err = f.dev.CreateDepthStencilState(gfx.DepthStencilDescriptor{
			Label:       "sky depth",
			DepthEnable: true,
			DepthWrite:  true,
			Compare:     gfx.CompareLessEqual,
		})
		if err != nil {
			return fmt.Errorf("compositor: failed to create sky depth state: %w", err)
		}
	}

	f.passes = []Pass{{Name: PassScene, Targets: f.sceneTargets, Execute: f.drawScene}}
	if f.scene.Sky != nil {
		f.passes = append(f.passes, Pass{
			Name:         PassSkybox,
			Targets:      f.sceneTargets,
			Rasterizer:   f.skyRaster,
			DepthStencil: f.skyDepth,
			Execute:      f.drawSky,
		})
	}
	if f.scene.PostProcess != nil {
		f.passes = append(f.passes, Pass{
			Name: PassPost,
			Targets: func() (*resource.View, *resource.View) {
				return f.sc.BackBuffer(), nil
			},
			Execute: f.drawPost,
		})
	}
	return nil
}

// sceneTargets is the offscreen target with depth, or the back buffer when there is no
// post-process pass to resolve the offscreen target.
func (f *frameCompositor) sceneTargets() (*resource.View, *resource.View) {
	if f.offscreen != nil {
		return f.offscreen.RenderView(), f.sc.DepthStencil()
	}
	return f.sc.BackBuffer(), f.sc.DepthStencil()
}

func (f *frameCompositor) Draw() error {
	if f.released {
		return ErrReleased
	}

	f.clear()

	draws := 0
	for _, p := range f.passes {
		draws += p.run(f.ctx)
	}
	f.drawCalls = draws

	f.ctx.SetRenderTargets(nil, nil)
	if err := f.sc.Present(f.syncInterval); err != nil {
		return fmt.Errorf("compositor: present failed: %w", err)
	}
	return nil
}

func (f *frameCompositor) clear() {
	if f.offscreen != nil {
		f.offscreen.Clear(f.ctx, f.clearColor)
	}
	bb := f.sc.BackBuffer()
	f.ctx.ClearRenderTarget(bb, f.clearColor)
	bb.Release()
	depth := f.sc.DepthStencil()
	f.ctx.ClearDepthStencil(depth, 1, 0)
	depth.Release()
}

// drawScene draws every entity with its material's textures and sampler borrowed for exactly the
// duration of that entity's draw. Every slot is set for every entity, so a material without a
// color view or normal map never samples the previous entity's.
func (f *frameCompositor) drawScene(ctx gfx.Context) {
	lights := f.scene.Lights.Marshal()
	var borrowed resource.Scope
	for _, e := range f.scene.Entities {
		mat := e.Material()
		ps := mat.PixelProgram()

		ps.SetData("lights", lights)
		ps.BindSampler(ctx, "Sampler", borrowed.Hold(mat.Sampler()))
		var color, normal *resource.View
		if mat.HasColorView() {
			color = borrowed.Hold(mat.ColorView())
		}
		if mat.HasNormalMap() {
			normal = borrowed.Hold(mat.NormalView())
		}
		ps.BindShaderResource(ctx, "Texture", color)
		ps.BindShaderResource(ctx, "NormalMap", normal)

		e.Draw(ctx, f.scene.Camera)
		borrowed.Close()
	}
}

func (f *frameCompositor) drawSky(ctx gfx.Context) {
	sky := f.scene.Sky
	vs := sky.Material.VertexProgram()
	ps := sky.Material.PixelProgram()

	sky.Mesh.Bind(ctx)
	ctx.SetPrimitiveTopology(gfx.TopologyTriangleList)

	vs.SetMatrix4x4("view", f.scene.Camera.View())
	vs.SetMatrix4x4("projection", f.scene.Camera.Projection())
	vs.CopyAllBufferData(ctx)
	vs.SetShader(ctx)

	var borrowed resource.Scope
	defer borrowed.Close()
	ps.BindShaderResource(ctx, "Sky", borrowed.Hold(sky.Material.ColorView()))
	ps.BindSampler(ctx, "Sampler", borrowed.Hold(sky.Material.Sampler()))
	ps.CopyAllBufferData(ctx)
	ps.SetShader(ctx)

	ctx.DrawIndexed(sky.Mesh.IndexCount(), 0, 0)
}

func (f *frameCompositor) drawPost(ctx gfx.Context) {
	post := f.scene.PostProcess
	vs := post.VertexProgram()
	ps := post.PixelProgram()

	vs.SetShader(ctx)
	ps.SetShader(ctx)

	var borrowed resource.Scope
	defer borrowed.Close()
	ps.BindShaderResource(ctx, "InitialRender", borrowed.Hold(f.offscreen.ShaderView()))
	ps.BindSampler(ctx, "Sampler", borrowed.Hold(post.Sampler()))

	w, h := f.offscreen.Size()
	ps.SetInt("blurAmount", f.blurAmount)
	ps.SetFloat("pixelWidth", 1/float32(w))
	ps.SetFloat("pixelHeight", 1/float32(h))
	vs.CopyAllBufferData(ctx)
	ps.CopyAllBufferData(ctx)

	ctx.SetVertexBuffer(nil)
	ctx.SetIndexBuffer(nil)
	ctx.Draw(3, 0)
}

func (f *frameCompositor) Resize(width, height int) error {
	if f.released {
		return ErrReleased
	}
	if width <= 0 || height <= 0 {
		return nil
	}

	// nothing may still be bound to the old surface or offscreen views
	f.ctx.SetRenderTargets(nil, nil)

	if err := f.sc.Resize(width, height); err != nil {
		return fmt.Errorf("compositor: failed to resize swap chain: %w", err)
	}
	// The back buffer is at the new size from here on; the projection follows it even if the
	// offscreen target keeps its old size.
	f.scene.Camera.UpdateProjection(width, height)
	if f.offscreen != nil {
		if err := f.offscreen.Resize(width, height); err != nil {
			return fmt.Errorf("compositor: failed to resize offscreen target: %w", err)
		}
	}
	return nil
}

func (f *frameCompositor) Passes() []string {
	names := make([]string, 0, len(f.passes)+2)
	names = append(names, PassClear)
	for _, p := range f.passes {
		names = append(names, p.Name)
	}
	return append(names, PassPresent)
}

func (f *frameCompositor) DrawCalls() int {
	return f.drawCalls
}

func (f *frameCompositor) Release() {
	if f.released {
		return
	}
	f.released = true
	if f.offscreen != nil {
		f.offscreen.Release()
	}
	f.skyRaster.Release()
	f.skyDepth.Release()
}
