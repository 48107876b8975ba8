package pipeline

import (
	"github.com/Carmen-Shannon/webray-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithComputeShader sets the compute kernel for this pipeline.
//
// Parameters:
//   - s: the compute shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the compute shader for this pipeline
func WithComputeShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.computeShader = s
	}
}

// WithLayoutDescriptors builds the pipeline layout from the given descriptors instead of the
// shader's reflected ones, so bind groups created from the same descriptors stay compatible.
//
// Parameters:
//   - layouts: descriptors keyed by group index
//
// Returns:
//   - PipelineBuilderOption: a function that sets the layout descriptors for this pipeline
func WithLayoutDescriptors(layouts map[int]wgpu.BindGroupLayoutDescriptor) PipelineBuilderOption {
	return func(p *pipeline) {
		p.layouts = layouts
	}
}
