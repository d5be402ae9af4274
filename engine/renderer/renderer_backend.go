package renderer

import (
	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// presentModeFor maps a swap interval onto a wgpu present mode, falling back to Fifo (always
// supported) when the surface cannot present immediately.
func presentModeFor(syncInterval int, supported []wgpu.PresentMode) wgpu.PresentMode {
	if syncInterval > 0 {
		return wgpu.PresentModeFifo
	}
	for _, m := range supported {
		if m == wgpu.PresentModeImmediate {
			return m
		}
	}
	return wgpu.PresentModeFifo
}

func syncIntervalFor(mode PresentMode) int {
	if mode == PresentModeVSync {
		return 1
	}
	return 0
}

// textureObject is the backend object behind a KindTexture view.
type textureObject struct {
	texture *wgpu.Texture
	desc    gfx.TextureDescriptor
	format  wgpu.TextureFormat
}

// viewObject is the backend object behind render target, shader resource and depth views.
// The swap chain's views are stable handles: the back buffer resolves to the surface texture of
// the current frame and the depth view is swapped out on resize.
type viewObject struct {
	view *wgpu.TextureView
	// texture is the claim a derived view holds on its texture, nil for swap chain views.
	texture *resource.View
	format  wgpu.TextureFormat
	cube    bool

	backBuffer bool
}

// rasterObject is the backend object behind a rasterizer state. wgpu always clips depth, so
// DepthClip has no effect.
type rasterObject struct {
	cull wgpu.CullMode
}

// depthObject is the backend object behind a depth-stencil state.
type depthObject struct {
	write   bool
	compare wgpu.CompareFunction
}

// bufferObject is the backend object behind vertex and index buffers.
type bufferObject struct {
	buffer *wgpu.Buffer
	kind   gfx.BufferKind
	size   uint64
}

// programObject is the backend object behind a compiled program.
type programObject struct {
	id     uint64
	desc   gfx.ProgramDescriptor
	module *wgpu.ShaderModule
	layout *wgpu.BindGroupLayout
}

func toTextureFormat(f gfx.Format) wgpu.TextureFormat {
	switch f {
	case gfx.FormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case gfx.FormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case gfx.FormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case gfx.FormatDepth24Plus:
		return wgpu.TextureFormatDepth24Plus
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

func toTextureUsage(bind gfx.BindFlags) wgpu.TextureUsage {
	usage := wgpu.TextureUsageCopyDst
	if bind&gfx.BindShaderResource != 0 {
		usage |= wgpu.TextureUsageTextureBinding
	}
	if bind&(gfx.BindRenderTarget|gfx.BindDepthStencil) != 0 {
		usage |= wgpu.TextureUsageRenderAttachment
	}
	return usage
}

func toCullMode(c gfx.CullMode) wgpu.CullMode {
	switch c {
	case gfx.CullFront:
		return wgpu.CullModeFront
	case gfx.CullNone:
		return wgpu.CullModeNone
	default:
		return wgpu.CullModeBack
	}
}

func toCompare(c gfx.CompareFunc) wgpu.CompareFunction {
	switch c {
	case gfx.CompareLessEqual:
		return wgpu.CompareFunctionLessEqual
	case gfx.CompareAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionLess
	}
}

func toDepthObject(desc gfx.DepthStencilDescriptor) *depthObject {
	if !desc.DepthEnable {
		return &depthObject{write: false, compare: wgpu.CompareFunctionAlways}
	}
	return &depthObject{write: desc.DepthWrite, compare: toCompare(desc.Compare)}
}

func toAddressMode(a gfx.AddressMode) wgpu.AddressMode {
	switch a {
	case gfx.AddressClamp:
		return wgpu.AddressModeClampToEdge
	case gfx.AddressMirror:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func toTopology(t gfx.Topology) wgpu.PrimitiveTopology {
	switch t {
	case gfx.TopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case gfx.TopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func toColor(c gfx.Color) wgpu.Color {
	return wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}

// stageGroup is the bind group index a stage's resources live in.
func stageGroup(stage gfx.Stage) uint32 {
	if stage == gfx.StageVertex {
		return 0
	}
	return 1
}

func stageVisibility(stage gfx.Stage) wgpu.ShaderStage {
	if stage == gfx.StageVertex {
		return wgpu.ShaderStageVertex
	}
	return wgpu.ShaderStageFragment
}

// layoutEntries derives the bind group layout of a program from the slots it declares.
func layoutEntries(desc gfx.ProgramDescriptor) []wgpu.BindGroupLayoutEntry {
	visibility := stageVisibility(desc.Stage)
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(desc.ConstantBuffers)+len(desc.Textures)+len(desc.Samplers))
	for _, cb := range desc.ConstantBuffers {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    cb.Slot,
			Visibility: visibility,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: uint64(cb.Size),
			},
		})
	}
	for _, tex := range desc.Textures {
		dim := wgpu.TextureViewDimension2D
		if tex.Cube {
			dim = wgpu.TextureViewDimensionCube
		}
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    gfx.TextureBindingBase + tex.Slot,
			Visibility: visibility,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: dim,
			},
		})
	}
	for _, slot := range desc.Samplers {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    gfx.SamplerBindingBase + slot,
			Visibility: visibility,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		})
	}
	return entries
}

// vertexLayout describes common.Vertex: position, normal, uv, tangent.
func vertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: common.VertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 32, ShaderLocation: 3},
		},
	}
}

// clearKey identifies the storage a clear applies to. Views derived from the same texture share
// a key, so a pending clear is found from either the render target or the shader resource view.
func clearKey(obj *viewObject) any {
	if t, ok := obj.texture.Object().(*textureObject); ok {
		return t
	}
	return obj
}

// padConstants returns data extended with zeroes (or truncated) to exactly size bytes.
func padConstants(data []byte, size uint32) []byte {
	out := make([]byte, size)
	copy(out, data)
	return out
}

// alignBufferSize rounds a buffer size up to the 4 byte multiple queue writes require.
func alignBufferSize(n int) uint64 {
	return uint64((n + 3) &^ 3)
}
