package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithGroup sets the set index the provider is bound at.
//
// Parameters:
//   - group: the bind group index
//
// Returns:
//   - BindGroupProviderOption: a function that sets the group index
func WithGroup(group int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.group = group
	}
}

// WithBufferSize requests a buffer of the given size for a binding.
//
// Parameters:
//   - binding: the binding index
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that records the requested size
func WithBufferSize(binding int, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bufferSizes[binding] = size
	}
}

// WithBufferUsage adds usage flags to a buffer binding on top of the defaults derived from its layout entry.
//
// Parameters:
//   - binding: the binding index
//   - usage: the extra usage flags
//
// Returns:
//   - BindGroupProviderOption: a function that records the extra usage
func WithBufferUsage(binding int, usage wgpu.BufferUsage) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bufferUsages[binding] |= usage
	}
}
