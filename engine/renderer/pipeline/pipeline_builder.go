package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithRenderPipeline attaches the compiled render pipeline.
//
// Parameters:
//   - rp: the wgpu render pipeline, owned by the Pipeline from now on
//
// Returns:
//   - PipelineBuilderOption: a function that sets the render pipeline
func WithRenderPipeline(rp *wgpu.RenderPipeline) PipelineBuilderOption {
	return func(p *pipeline) {
		p.renderPipeline = rp
	}
}

// WithPipelineLayout attaches the pipeline layout the render pipeline was created with.
//
// Parameters:
//   - layout: the wgpu pipeline layout, owned by the Pipeline from now on
//
// Returns:
//   - PipelineBuilderOption: a function that sets the pipeline layout
func WithPipelineLayout(layout *wgpu.PipelineLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.layout = layout
	}
}
