package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrReleased is returned by swap chain operations on a released renderer.
var ErrReleased = errors.New("renderer: released")

func (r *renderer) initDevice(surfaceDescriptor *wgpu.SurfaceDescriptor) error {
	if surfaceDescriptor == nil {
		return errors.New("window has no surface descriptor")
	}
	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(surfaceDescriptor)

	a, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: r.forceFallbackAdapter,
		CompatibleSurface:    r.surface,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	r.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: r.deviceLabel,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	r.device = d
	r.queue = d.GetQueue()

	capabilities := r.surface.GetCapabilities(r.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("surface reports no formats")
	}
	r.surfaceFormat = capabilities.Formats[0]
	r.presentModes = capabilities.PresentModes
	return nil
}

// configureSurface is a wrapper for boilerplate logic required when calling Configure on a surface,
// followed by recreating the depth buffer at the new size.
func (r *renderer) configureSurface(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("renderer: invalid surface size %dx%d", width, height)
	}

	capabilities := r.surface.GetCapabilities(r.adapter)
	alphaMode := capabilities.AlphaModes[0]
	for _, m := range capabilities.AlphaModes {
		if m == wgpu.CompositeAlphaModeOpaque {
			alphaMode = m
		}
	}
	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      r.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: r.configuredPresent,
		AlphaMode:   alphaMode,
	})
	r.width, r.height = width, height

	return r.recreateDepth()
}

func (r *renderer) recreateDepth() error {
	depthTexture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(r.width),
			Height:             uint32(r.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	view, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		return fmt.Errorf("create depth view: %w", err)
	}

	if r.depthObj == nil {
		r.depthObj = &viewObject{format: wgpu.TextureFormatDepth24Plus}
		r.depth = r.tracker.NewView(resource.KindDepthStencilView, "depth", r.depthObj, destroyView)
	} else {
		r.depthObj.view.Release()
		r.depthTexture.Release()
	}
	r.depthObj.view = view
	r.depthTexture = depthTexture
	return nil
}

// initFallbacks creates the white textures and default sampler bound in place of empty slots.
func (r *renderer) initFallbacks() error {
	white := func(layers int) [][]byte {
		out := make([][]byte, layers)
		for i := range out {
			out[i] = []byte{255, 255, 255, 255}
		}
		return out
	}
	var err error
	if r.fallback2D, err = r.fallbackView(gfx.TextureDescriptor{Label: "fallback"}, white(1)); err != nil {
		return err
	}
	if r.fallbackCube, err = r.fallbackView(gfx.TextureDescriptor{Label: "fallback cube", Cube: true}, white(6)); err != nil {
		return err
	}
	r.fallbackSampler, err = r.createSampler(gfx.SamplerDescriptor{Label: "fallback sampler"})
	return err
}

func (r *renderer) fallbackView(desc gfx.TextureDescriptor, layers [][]byte) (*resource.View, error) {
	desc.Width, desc.Height = 1, 1
	desc.Format = gfx.FormatRGBA8Unorm
	desc.Bind = gfx.BindShaderResource
	tex, err := r.createTexture(desc, layers)
	if err != nil {
		return nil, err
	}
	defer tex.Release()
	return r.createShaderResourceView(tex)
}

// acquireFrame takes the surface texture of the current frame if it is not held yet.
func (r *renderer) acquireFrame() error {
	if r.frameSurface != nil {
		return nil
	}
	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("renderer: acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("renderer: create surface view: %w", err)
	}
	r.frameSurface = surfaceTexture
	r.frameView = view
	return nil
}

// submit ends the open pass, flushes pending clears and submits everything recorded so far.
func (r *renderer) submit() error {
	r.endPass()
	if err := r.flushClears(); err != nil {
		return err
	}
	if r.encoder == nil {
		return nil
	}
	commandBuffer, err := r.encoder.Finish(nil)
	r.encoder.Release()
	r.encoder = nil
	if err != nil {
		return fmt.Errorf("renderer: finish command encoder: %w", err)
	}
	r.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

// dropFrame releases the per-frame objects. The pass must already be ended.
func (r *renderer) dropFrame() {
	if r.encoder != nil {
		r.encoder.Release()
		r.encoder = nil
	}
	for _, bg := range r.frameBindGroups {
		bg.Release()
	}
	r.frameBindGroups = r.frameBindGroups[:0]
	if r.frameView != nil {
		r.frameView.Release()
		r.frameView = nil
	}
	if r.frameSurface != nil {
		r.frameSurface.Release()
		r.frameSurface = nil
	}
	r.uniforms.Reset()
	r.lastDrawCalls = r.drawCalls
	r.drawCalls = 0
}

func (r *renderer) BackBuffer() *resource.View {
	return r.backBuffer.Acquire()
}

func (r *renderer) DepthStencil() *resource.View {
	return r.depth.Acquire()
}

func (r *renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("renderer: invalid surface size %dx%d", width, height)
	}

	// Work recorded against the old surface is submitted and its texture handed back first.
	err := r.submit()
	if r.frameSurface != nil {
		r.surface.Present()
	}
	r.dropFrame()
	if err != nil {
		return err
	}
	return r.configureSurface(width, height)
}

func (r *renderer) Present(syncInterval int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}

	err := r.submit()
	if err == nil {
		err = r.acquireFrame()
	}
	if err != nil {
		r.dropFrame()
		return err
	}

	r.surface.Present()
	r.dropFrame()

	if mode := presentModeFor(syncInterval, r.presentModes); mode != r.configuredPresent {
		r.configuredPresent = mode
		return r.configureSurface(r.width, r.height)
	}
	return nil
}
