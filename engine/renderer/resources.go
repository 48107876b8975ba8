package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/binding"
	"github.com/Carmen-Shannon/webray-go/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// readbackBinding is the binding key of the result buffer on the readback provider.
const readbackBinding = 0

// copyRowAlignment is the required row pitch alignment of a texture to buffer copy.
const copyRowAlignment = 256

// resources is every GPU object one render owns. Nothing in it outlives the render.
type resources struct {
	system    bind_group_provider.BindGroupProvider
	scene     bind_group_provider.BindGroupProvider
	execution bind_group_provider.BindGroupProvider
	readback  bind_group_provider.BindGroupProvider

	width       uint32
	height      uint32
	bytesPerRow uint32
}

// rowPitch returns the padded row size in bytes of a width texel wide copy.
func rowPitch(width uint32) uint32 {
	return uint32(common.RoundUp(uint64(width)*binding.BytesPerPixel, copyRowAlignment))
}

// readbackSize returns the byte length of the result buffer.
func (r *resources) readbackSize() uint64 {
	return uint64(r.bytesPerRow) * uint64(r.height)
}

// providers returns the three bound providers in set order.
func (r *resources) providers() []bind_group_provider.BindGroupProvider {
	return []bind_group_provider.BindGroupProvider{r.system, r.scene, r.execution}
}

// allocateResources creates the providers of all three sets plus the result buffer and uploads the
// kernel config and scene arrays. On failure every resource created so far is released.
//
// Parameters:
//   - backend: the backend that creates GPU objects
//   - layouts: the bind group layout descriptors keyed by set index
//   - config: the marshaled kernel config
//   - compiled: the compiled scene
//   - width: the image width in pixels
//   - height: the image height in pixels
//
// Returns:
//   - *resources: the allocated resources
//   - error: a *common.DeviceError naming the allocation that failed
func allocateResources(
	backend RendererBackend,
	layouts map[int]wgpu.BindGroupLayoutDescriptor,
	config []byte,
	compiled *scene.CompiledScene,
	width, height uint32,
) (*resources, error) {
	spheres := compiled.SphereBytes()
	diffuse := compiled.DiffuseBytes()
	metal := compiled.MetalBytes()
	dielectric := compiled.DielectricBytes()

	r := &resources{
		system: bind_group_provider.NewBindGroupProvider(
			binding.SetName(binding.SetSystem),
			bind_group_provider.WithGroup(binding.SetSystem),
		),
		scene: bind_group_provider.NewBindGroupProvider(
			binding.SetName(binding.SetScene),
			bind_group_provider.WithGroup(binding.SetScene),
			bind_group_provider.WithBufferSize(binding.BindingConfig, uint64(len(config))),
			bind_group_provider.WithBufferSize(binding.BindingSpheres, uint64(len(spheres))),
			bind_group_provider.WithBufferSize(binding.BindingDiffuse, uint64(len(diffuse))),
			bind_group_provider.WithBufferSize(binding.BindingMetal, uint64(len(metal))),
			bind_group_provider.WithBufferSize(binding.BindingDielectric, uint64(len(dielectric))),
		),
		execution: bind_group_provider.NewBindGroupProvider(
			binding.SetName(binding.SetExecution),
			bind_group_provider.WithGroup(binding.SetExecution),
			bind_group_provider.WithBufferSize(binding.BindingExecutionContext, binding.ExecutionContextSize),
		),
		readback: bind_group_provider.NewBindGroupProvider("readback"),

		width:       width,
		height:      height,
		bytesPerRow: rowPitch(width),
	}

	fail := func(op string, err error) (*resources, error) {
		r.release()
		return nil, &common.DeviceError{Op: op, Err: err}
	}

	if err := backend.InitStorageTexture(r.system, binding.BindingOutputTexture, width, height, binding.OutputFormat); err != nil {
		return fail("create output texture", err)
	}
	for _, p := range r.providers() {
		desc, ok := layouts[p.Group()]
		if !ok {
			return fail("create "+p.Label()+" bind group", errors.New("no layout descriptor"))
		}
		if err := backend.InitBindGroup(p, desc); err != nil {
			return fail("create "+p.Label()+" bind group", err)
		}
	}
	if err := backend.InitReadbackBuffer(r.readback, readbackBinding, r.readbackSize()); err != nil {
		return fail("create result buffer", err)
	}

	writes := []bind_group_provider.BufferWrite{
		{Provider: r.scene, Binding: binding.BindingConfig, Data: config},
		{Provider: r.scene, Binding: binding.BindingSpheres, Data: spheres},
		{Provider: r.scene, Binding: binding.BindingDiffuse, Data: diffuse},
		{Provider: r.scene, Binding: binding.BindingMetal, Data: metal},
		{Provider: r.scene, Binding: binding.BindingDielectric, Data: dielectric},
	}
	if err := backend.WriteBuffers(writes); err != nil {
		return fail("upload scene", err)
	}

	common.Logger().Debug("scene buffers uploaded",
		"spheres", len(compiled.Spheres),
		"diffuse", len(compiled.Diffuse),
		"metal", len(compiled.Metal),
		"dielectric", len(compiled.Dielectric),
		"result_bytes", r.readbackSize(),
	)

	return r, nil
}

// release frees every provider. It is safe to call more than once.
func (r *resources) release() {
	for _, p := range []bind_group_provider.BindGroupProvider{r.system, r.scene, r.execution, r.readback} {
		if p != nil {
			p.Release()
		}
	}
}
