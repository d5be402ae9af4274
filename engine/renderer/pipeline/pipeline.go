package pipeline

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Key identifies one render pipeline variant. Every piece of immediate-mode state that wgpu bakes
// into a pipeline object is part of the key, so two draws share a pipeline only when a single
// wgpu.RenderPipeline can serve both.
type Key struct {
	// VertexProgram and PixelProgram are the renderer's program ids. Ids are never reused.
	VertexProgram uint64
	PixelProgram  uint64

	// VertexInput is true when the vertex program reads the bound vertex buffer.
	VertexInput bool

	Topology wgpu.PrimitiveTopology
	CullMode wgpu.CullMode

	// ColorFormat is the format of the bound render target.
	ColorFormat wgpu.TextureFormat

	// DepthFormat is wgpu.TextureFormatUndefined when no depth target is bound; the depth fields
	// below are then ignored.
	DepthFormat  wgpu.TextureFormat
	DepthWrite   bool
	DepthCompare wgpu.CompareFunction
}

// Uses reports whether the key references the program with the given id.
func (k Key) Uses(programID uint64) bool {
	return k.VertexProgram == programID || k.PixelProgram == programID
}

func (k Key) String() string {
	return fmt.Sprintf("vs%d/ps%d/topo%d/cull%d/color%d/depth%d", k.VertexProgram, k.PixelProgram, k.Topology, k.CullMode, k.ColorFormat, k.DepthFormat)
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key Key

	renderPipeline *wgpu.RenderPipeline
	layout         *wgpu.PipelineLayout
}

// Pipeline is a compiled render pipeline variant together with the layout it was created with.
type Pipeline interface {
	// Key returns the state the pipeline was compiled for.
	//
	// Returns:
	//   - Key: the pipeline's cache key
	Key() Key

	// RenderPipeline returns the underlying wgpu pipeline, nil if none was attached.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the compiled pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// Release releases the wgpu pipeline and pipeline layout. Bind group layouts belong to the
	// programs and are left alone.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline wraps compiled wgpu objects for the given key.
//
// Parameters:
//   - key: the state the pipeline was compiled for
//   - opts: a variadic list of PipelineBuilderOption functions attaching the wgpu objects
//
// Returns:
//   - Pipeline: the new Pipeline
func NewPipeline(key Key, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{key: key}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() Key {
	return p.key
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
}
