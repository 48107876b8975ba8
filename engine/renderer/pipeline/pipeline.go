// Package pipeline pairs a compute kernel with the bind group layouts its pipeline is created from.
package pipeline

import (
	"github.com/Carmen-Shannon/webray-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineKey string

	computeShader shader.Shader

	// layouts overrides the shader's reflected bind group layouts when set.
	layouts map[int]wgpu.BindGroupLayoutDescriptor

	computePipeline  *wgpu.ComputePipeline
	pipelineLayout   *wgpu.PipelineLayout
	bindGroupLayouts []*wgpu.BindGroupLayout
}

// Pipeline describes a compute pipeline: its kernel, the bind group layouts it is created
// with, and the GPU objects the backend creates for it.
type Pipeline interface {
	// PipelineKey returns the unique key used as the pipeline label.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader returns the compute kernel.
	//
	// Returns:
	//   - shader.Shader: the kernel, or nil if none was set
	Shader() shader.Shader

	// LayoutDescriptors returns the bind group layout descriptors the pipeline layout is built from.
	// These are the override layouts when set, otherwise the layouts reflected from the shader.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	LayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// ComputePipeline returns the created GPU pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.ComputePipeline: the pipeline or nil
	ComputePipeline() *wgpu.ComputePipeline

	// BindGroupLayout returns the created layout for a group index, or nil.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout or nil
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// SetComputePipeline stores the GPU objects created by the backend.
	//
	// Parameters:
	//   - p: the compute pipeline
	//   - layout: the pipeline layout
	//   - groups: the bind group layouts indexed by group
	SetComputePipeline(p *wgpu.ComputePipeline, layout *wgpu.PipelineLayout, groups []*wgpu.BindGroupLayout)

	// Release releases the GPU objects held by the pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline with the provided options.
//
// Parameters:
//   - pipelineKey: a unique identifier for the pipeline
//   - opts: optional configuration options
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.computeShader
}

func (p *pipeline) LayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	if p.layouts != nil {
		return p.layouts
	}
	if p.computeShader == nil {
		return nil
	}
	return p.computeShader.BindGroupLayoutDescriptors()
}

func (p *pipeline) ComputePipeline() *wgpu.ComputePipeline {
	return p.computePipeline
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline, layout *wgpu.PipelineLayout, groups []*wgpu.BindGroupLayout) {
	p.computePipeline = cp
	p.pipelineLayout = layout
	p.bindGroupLayouts = groups
}

func (p *pipeline) Release() {
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
		p.pipelineLayout = nil
	}
	for _, bgl := range p.bindGroupLayouts {
		if bgl != nil {
			bgl.Release()
		}
	}
	p.bindGroupLayouts = nil
}
