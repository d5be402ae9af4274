// Package renderer is the wgpu implementation of the gfx device contract.
//
// It translates the immediate-mode gfx.Context model onto wgpu: render passes open lazily on the
// first draw for the bound targets, pending clears become load operations, rasterizer and depth
// states select cached pipeline variants, and bind groups are assembled per draw from the bound
// slots.
package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/Carmen-Shannon/oxy-postfx/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	tracker       *resource.Tracker
	pipelines     pipeline.Cache
	uniforms      *uniformPool
	nextProgramID uint64

	surfaceFormat     wgpu.TextureFormat
	presentModes      []wgpu.PresentMode
	configuredPresent wgpu.PresentMode
	width, height     int

	backBuffer   *resource.View
	depth        *resource.View
	depthObj     *viewObject
	depthTexture *wgpu.Texture

	// Bound in place of unbound slots so every bind group matches its layout.
	fallback2D      *resource.View
	fallbackCube    *resource.View
	fallbackSampler *resource.View

	state           *gfx.Bindings
	encoder         *wgpu.CommandEncoder
	pass            *wgpu.RenderPassEncoder
	frameSurface    *wgpu.Texture
	frameView       *wgpu.TextureView
	frameBindGroups []*wgpu.BindGroup
	pendingColor    map[any]pendingClear
	pendingDepth    map[any]pendingClear
	drawCalls       int
	lastDrawCalls   int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	syncInterval         int
	deviceLabel          string

	released bool
}

// pendingClear is a clear recorded by ClearRenderTarget or ClearDepthStencil that has not been
// turned into a render pass load operation yet. It holds a claim on the target.
type pendingClear struct {
	target *resource.View
	color  gfx.Color
	depth  float32
}

// Renderer is the wgpu device. It is a gfx.Device, the single gfx.Context and the gfx.SwapChain
// of the window it was created for.
//
// Creation methods may be called from any goroutine. Context and SwapChain methods belong to the
// render goroutine.
type Renderer interface {
	gfx.Device
	gfx.Context
	gfx.SwapChain

	// Tracker returns the tracker counting every live object the renderer created.
	//
	// Returns:
	//   - *resource.Tracker: the renderer's tracker
	Tracker() *resource.Tracker

	// PipelineCount returns how many pipeline variants are compiled.
	//
	// Returns:
	//   - int: the number of cached pipelines
	PipelineCount() int

	// DrawCalls returns the number of draws the last presented frame issued.
	//
	// Returns:
	//   - int: draws recorded in the last frame
	DrawCalls() int

	// Release unbinds everything, drops the swap chain and destroys the device.
	// Objects still held by callers must be released first or they leak with the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the wgpu device for a window and configures its surface.
// Device creation failure is fatal and panics with a diagnostic.
//
// Parameters:
//   - win: the window whose surface the renderer presents to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
func NewRenderer(win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:           &sync.Mutex{},
		tracker:      resource.NewTracker(),
		pipelines:    pipeline.NewCache(),
		state:        gfx.NewBindings(),
		pendingColor: make(map[any]pendingClear),
		pendingDepth: make(map[any]pendingClear),
		deviceLabel:  "Main Device",
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	runtime.LockOSThread()
	if err := r.initDevice(win.SurfaceDescriptor()); err != nil {
		panic(fmt.Sprintf("failed to create wgpu device: %v", err))
	}
	r.uniforms = newUniformPool(r.device, r.queue)

	r.configuredPresent = presentModeFor(r.syncInterval, r.presentModes)
	if err := r.configureSurface(win.Width(), win.Height()); err != nil {
		panic(fmt.Sprintf("failed to configure surface: %v", err))
	}
	if err := r.initFallbacks(); err != nil {
		panic(fmt.Sprintf("failed to create fallback resources: %v", err))
	}
	r.backBuffer = r.tracker.NewView(resource.KindRenderTargetView, "backbuffer", &viewObject{
		format:     r.surfaceFormat,
		backBuffer: true,
	}, nil)

	return r
}

func (r *renderer) Tracker() *resource.Tracker {
	return r.tracker
}

func (r *renderer) PipelineCount() int {
	return r.pipelines.Len()
}

func (r *renderer) DrawCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastDrawCalls
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true

	r.endPass()
	r.dropFrame()
	r.state.Reset()
	for key, p := range r.pendingColor {
		p.target.Release()
		delete(r.pendingColor, key)
	}
	for key, p := range r.pendingDepth {
		p.target.Release()
		delete(r.pendingDepth, key)
	}

	r.fallback2D.Release()
	r.fallbackCube.Release()
	r.fallbackSampler.Release()
	r.backBuffer.Release()
	r.depth.Release()

	r.pipelines.Release()
	r.uniforms.Release()
	if r.depthTexture != nil {
		r.depthTexture.Release()
		r.depthTexture = nil
	}
	r.queue.Release()
	r.device.Release()
	r.adapter.Release()
	r.surface.Release()
	r.instance.Release()
}
