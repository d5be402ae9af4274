package gfx

import "github.com/Carmen-Shannon/oxy-postfx/common"

// Color is an RGBA clear color.
type Color = common.Color

// Format is a texture pixel format.
type Format int

const (
	FormatUnknown Format = iota
	FormatRGBA8Unorm
	FormatRGBA8UnormSrgb
	FormatBGRA8Unorm
	FormatDepth24Plus
)

// BindFlags says how a texture may be bound.
type BindFlags uint32

const (
	BindRenderTarget BindFlags = 1 << iota
	BindShaderResource
	BindDepthStencil
)

// Stage is a programmable pipeline stage.
type Stage int

const (
	StageVertex Stage = iota
	StagePixel
)

func (s Stage) String() string {
	if s == StageVertex {
		return "vertex"
	}
	return "pixel"
}

// Topology is the primitive assembly mode. The demo only ever uses triangle lists.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// CompareFunc is a depth comparison.
type CompareFunc int

const (
	CompareLess CompareFunc = iota
	CompareLessEqual
	CompareAlways
)

// AddressMode is a sampler's out-of-range texture coordinate handling.
type AddressMode int

const (
	AddressWrap AddressMode = iota
	AddressClamp
	AddressMirror
)

// Filter is a sampler's filtering mode.
type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

// BufferKind distinguishes vertex from index buffers.
type BufferKind int

const (
	BufferVertex BufferKind = iota
	BufferIndex
)

// Binding numbers inside a stage's bind group. Group 0 holds the vertex stage and group 1 the
// pixel stage.
const (
	TextureBindingBase uint32 = 8
	SamplerBindingBase uint32 = 16
)

// TextureDescriptor describes texture storage.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format Format
	Bind   BindFlags
	// Cube creates a six layer cube texture whose shader resource view samples as a cube.
	Cube bool
}

// SamplerDescriptor describes a sampler state.
type SamplerDescriptor struct {
	Label         string
	AddressU      AddressMode
	AddressV      AddressMode
	AddressW      AddressMode
	Filter        Filter
	MaxAnisotropy uint16
	MaxLOD        float32
}

// RasterizerDescriptor describes a rasterizer state.
type RasterizerDescriptor struct {
	Label     string
	Cull      CullMode
	DepthClip bool
}

// DepthStencilDescriptor describes a depth-stencil state.
type DepthStencilDescriptor struct {
	Label       string
	DepthEnable bool
	DepthWrite  bool
	Compare     CompareFunc
}

// BufferDescriptor describes a vertex or index buffer and its initial contents.
type BufferDescriptor struct {
	Label  string
	Kind   BufferKind
	Stride uint32
	Data   []byte
}

// ConstantBufferLayout declares one constant buffer slot of a program.
type ConstantBufferLayout struct {
	Slot uint32
	Size uint32
}

// TextureSlot declares one texture slot of a program.
type TextureSlot struct {
	Slot uint32
	Cube bool
}

// ProgramDescriptor describes a program and the resource slots it reads.
type ProgramDescriptor struct {
	Label      string
	Stage      Stage
	Source     string
	EntryPoint string
	// VertexInput is true when the vertex program reads common.Vertex attributes from the bound
	// vertex buffer. Programs that synthesise their vertices (the full-screen triangle) set false.
	VertexInput     bool
	ConstantBuffers []ConstantBufferLayout
	Textures        []TextureSlot
	Samplers        []uint32
}

// DefaultRasterizer is the rasterizer state a nil state means: back-face culling, depth clip on.
func DefaultRasterizer() RasterizerDescriptor {
	return RasterizerDescriptor{Label: "default", Cull: CullBack, DepthClip: true}
}

// DefaultDepthStencil is the depth state a nil state means: test and write with Less.
func DefaultDepthStencil() DepthStencilDescriptor {
	return DepthStencilDescriptor{Label: "default", DepthEnable: true, DepthWrite: true, Compare: CompareLess}
}
