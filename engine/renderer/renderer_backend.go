package renderer

import (
	"github.com/Carmen-Shannon/webray-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based compute backend.
	BackendTypeWGPU RendererBackendType = iota
)

// SubmissionIndex identifies one queue submission. Polling for an index waits for that submission
// and every submission before it.
type SubmissionIndex uint64

// RendererBackend is the set of GPU operations the render protocol is built from.
// Every error it returns is a device error; the renderer routes it to the fatal error handler.
type RendererBackend interface {
	// RegisterComputePipeline creates the shader module, bind group layouts, pipeline layout and compute
	// pipeline for p and stores them on p.
	//
	// Parameters:
	//   - p: the pipeline holding the kernel shader and its layout descriptors
	//
	// Returns:
	//   - error: an error if any of the GPU objects could not be created
	RegisterComputePipeline(p pipeline.Pipeline) error

	// InitStorageTexture creates a 2D storage texture that can also be copied from, and stores it with
	// its view on the provider at the given binding. Must be called before InitBindGroup for that provider.
	//
	// Parameters:
	//   - provider: the provider that owns the texture
	//   - binding: the binding index of the texture
	//   - width: the texture width in texels
	//   - height: the texture height in texels
	//   - format: the texel format
	//
	// Returns:
	//   - error: an error if the texture or its view could not be created
	InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, width, height uint32, format wgpu.TextureFormat) error

	// InitBindGroup creates the buffers a layout descriptor needs and the bind group that binds them,
	// storing both on the provider. Buffer sizes come from the provider, falling back to MinBindingSize.
	//
	// Parameters:
	//   - provider: the provider to populate
	//   - descriptor: the layout of the bind group
	//
	// Returns:
	//   - error: an error if a buffer, the layout or the bind group could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitReadbackBuffer creates a map-read, copy-destination buffer on the provider at the given binding.
	//
	// Parameters:
	//   - provider: the provider that owns the buffer
	//   - binding: the binding index to store the buffer under
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	InitReadbackBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64) error

	// WriteBuffers enqueues every write on the device queue in order.
	//
	// Parameters:
	//   - writes: the writes to apply
	//
	// Returns:
	//   - error: an error if a write targets a buffer that does not exist
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// Dispatch encodes one compute pass that binds each provider at its group and dispatches the given
	// workgroup counts, then submits it.
	//
	// Parameters:
	//   - p: the registered compute pipeline
	//   - providers: the providers to bind, each at its own Group()
	//   - workgroups: the workgroup counts in x, y and z
	//
	// Returns:
	//   - SubmissionIndex: the index of the submission
	//   - error: an error if encoding or submission failed
	Dispatch(p pipeline.Pipeline, providers []bind_group_provider.BindGroupProvider, workgroups [3]uint32) (SubmissionIndex, error)

	// CopyTextureToBuffer encodes and submits a copy of a whole texture into a buffer.
	//
	// Parameters:
	//   - src: the provider owning the texture
	//   - srcBinding: the binding of the texture on src
	//   - dst: the provider owning the buffer
	//   - dstBinding: the binding of the buffer on dst
	//   - width: the texture width in texels
	//   - height: the texture height in texels
	//   - bytesPerRow: the row pitch in the buffer, a multiple of 256
	//
	// Returns:
	//   - SubmissionIndex: the index of the submission
	//   - error: an error if encoding or submission failed
	CopyTextureToBuffer(src bind_group_provider.BindGroupProvider, srcBinding int, dst bind_group_provider.BindGroupProvider, dstBinding int, width, height, bytesPerRow uint32) (SubmissionIndex, error)

	// Poll blocks until the submission with the given index has completed, running any pending map callbacks.
	//
	// Parameters:
	//   - index: the submission to wait for
	//
	// Returns:
	//   - error: an error if the device did not confirm completion of index
	Poll(index SubmissionIndex) error

	// MapRead requests a read mapping of a buffer. The callback runs exactly once, during a later Poll,
	// with nil on success.
	//
	// Parameters:
	//   - provider: the provider owning the buffer
	//   - binding: the binding of the buffer
	//   - size: the number of bytes to map from offset zero
	//   - callback: receives the outcome of the mapping
	//
	// Returns:
	//   - error: an error if the request itself could not be issued
	MapRead(provider bind_group_provider.BindGroupProvider, binding int, size uint64, callback func(error)) error

	// MappedRange returns the mapped bytes of a buffer whose MapRead succeeded. The slice is only valid
	// until Unmap.
	//
	// Parameters:
	//   - provider: the provider owning the buffer
	//   - binding: the binding of the buffer
	//   - size: the number of bytes to view
	//
	// Returns:
	//   - []byte: the mapped bytes
	MappedRange(provider bind_group_provider.BindGroupProvider, binding int, size uint64) []byte

	// Unmap releases the mapping of a buffer.
	//
	// Parameters:
	//   - provider: the provider owning the buffer
	//   - binding: the binding of the buffer
	Unmap(provider bind_group_provider.BindGroupProvider, binding int)

	// Release releases the device, adapter and instance.
	Release()
}
