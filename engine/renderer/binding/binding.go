// Package binding is the fixed contract between the renderer and its compute kernel:
// which resource lives at which set and binding, how large each buffer element is,
// and how a kernel is checked against it before a pipeline is created.
package binding

import (
	"github.com/Carmen-Shannon/webray-go/engine/camera"
	"github.com/Carmen-Shannon/webray-go/engine/scene"
	"github.com/Carmen-Shannon/webray-go/engine/tile"
	"github.com/cogentcore/webgpu/wgpu"
)

// Set indices. The pipeline layout is [SetSystem, SetScene, SetExecution].
const (
	SetSystem    = 0
	SetScene     = 1
	SetExecution = 2

	// SetCount is the number of sets in the pipeline layout.
	SetCount = 3
)

// Bindings within SetSystem.
const (
	BindingOutputTexture = 0
)

// Bindings within SetScene.
const (
	BindingConfig     = 0
	BindingSpheres    = 1
	BindingDiffuse    = 2
	BindingMetal      = 3
	BindingDielectric = 4
)

// Bindings within SetExecution.
const (
	BindingExecutionContext = 0
)

// OutputFormat is the texel format of the output storage texture, 4 bytes per pixel.
const OutputFormat = wgpu.TextureFormatRGBA8Unorm

// BytesPerPixel is the size of one OutputFormat texel.
const BytesPerPixel = 4

// EntryPoint is the name of the kernel's compute entry point.
const EntryPoint = "main"

// WorkgroupSize is the workgroup size every kernel must declare; one invocation shades one pixel.
var WorkgroupSize = [3]uint32{1, 1, 1}

// Element sizes in bytes of the uniform blocks and storage array elements, taken from the Go GPU types.
var (
	KernelConfigSize     = uint64((&camera.GPUKernelConfig{}).Size())
	SphereSize           = uint64((&scene.GPUSphere{}).Size())
	DiffuseSize          = uint64((&scene.GPUDiffuse{}).Size())
	MetalSize            = uint64((&scene.GPUMetal{}).Size())
	DielectricSize       = uint64((&scene.GPUDielectric{}).Size())
	ExecutionContextSize = uint64((&tile.GPUExecutionContext{}).Size())
)

// SetName returns the provider identity of a set index ("system", "scene" or "execution").
//
// Parameters:
//   - set: the set index
//
// Returns:
//   - string: the set name, or "unknown"
func SetName(set int) string {
	switch set {
	case SetSystem:
		return "system"
	case SetScene:
		return "scene"
	case SetExecution:
		return "execution"
	default:
		return "unknown"
	}
}

// Layouts returns the canonical bind group layout descriptors for every set, keyed by set index.
// A fresh map is returned on each call.
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by set index
func Layouts() map[int]wgpu.BindGroupLayoutDescriptor {
	return map[int]wgpu.BindGroupLayoutDescriptor{
		SetSystem: {
			Label: "system",
			Entries: []wgpu.BindGroupLayoutEntry{
				{
					Binding:    BindingOutputTexture,
					Visibility: wgpu.ShaderStageCompute,
					StorageTexture: wgpu.StorageTextureBindingLayout{
						Access:        wgpu.StorageTextureAccessWriteOnly,
						Format:        OutputFormat,
						ViewDimension: wgpu.TextureViewDimension2D,
					},
				},
			},
		},
		SetScene: {
			Label: "scene",
			Entries: []wgpu.BindGroupLayoutEntry{
				bufferEntry(BindingConfig, wgpu.BufferBindingTypeUniform, KernelConfigSize),
				bufferEntry(BindingSpheres, wgpu.BufferBindingTypeReadOnlyStorage, SphereSize),
				bufferEntry(BindingDiffuse, wgpu.BufferBindingTypeReadOnlyStorage, DiffuseSize),
				bufferEntry(BindingMetal, wgpu.BufferBindingTypeReadOnlyStorage, MetalSize),
				bufferEntry(BindingDielectric, wgpu.BufferBindingTypeReadOnlyStorage, DielectricSize),
			},
		},
		SetExecution: {
			Label: "execution",
			Entries: []wgpu.BindGroupLayoutEntry{
				bufferEntry(BindingExecutionContext, wgpu.BufferBindingTypeUniform, ExecutionContextSize),
			},
		},
	}
}

func bufferEntry(binding uint32, kind wgpu.BufferBindingType, minSize uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Buffer: wgpu.BufferBindingLayout{
			Type:           kind,
			MinBindingSize: minSize,
		},
	}
}
