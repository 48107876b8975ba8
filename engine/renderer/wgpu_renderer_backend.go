package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend acquires an adapter and a device with no presentation surface.
//
// Parameters:
//   - forceFallbackAdapter: request the CPU/software fallback adapter instead of a hardware GPU
//
// Returns:
//   - RendererBackend: the backend
//   - error: an error if no adapter or device could be acquired
func newWGPURendererBackend(forceFallbackAdapter bool) (RendererBackend, error) {
	w := &wgpuRendererBackendImpl{
		mu:       &sync.Mutex{},
		instance: wgpu.CreateInstance(nil),
	}

	if forceFallbackAdapter {
		common.Logger().Warn("requesting software fallback adapter")
	}
	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		PowerPreference:      wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		w.instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	// Three bind groups and four storage buffers in the compute stage fit the default limits.
	limits := wgpu.DefaultLimits()

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "WebRay Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		w.adapter.Release()
		w.instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	computeShader := p.Shader()
	if computeShader == nil {
		return errors.New("compute shader must be set to create a compute pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: computeShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: computeShader.Source(),
		},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	defer s.Release()

	descriptors := p.LayoutDescriptors()
	maxGroup := -1
	for g := range descriptors {
		if g > maxGroup {
			maxGroup = g
		}
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	release := func() {
		for _, bgl := range bindGroupLayouts {
			if bgl != nil {
				bgl.Release()
			}
		}
	}
	for g := 0; g <= maxGroup; g++ {
		desc, ok := descriptors[g]
		if !ok {
			release()
			return fmt.Errorf("bind group %d has no layout descriptor", g)
		}
		bgl, bglErr := b.device.CreateBindGroupLayout(&desc)
		if bglErr != nil {
			release()
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, bglErr)
		}
		bindGroupLayouts[g] = bgl
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		release()
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.PipelineKey() + " Compute Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s,
			EntryPoint: computeShader.EntryPoint(),
		},
	})
	if err != nil {
		layout.Release()
		release()
		return fmt.Errorf("create compute pipeline: %w", err)
	}

	p.SetComputePipeline(created, layout, bindGroupLayouts)
	common.Logger().Debug("compute pipeline created", "key", p.PipelineKey(), "groups", len(bindGroupLayouts))

	return nil
}

func (b *wgpuRendererBackendImpl) InitStorageTexture(provider bind_group_provider.BindGroupProvider, binding int, width, height uint32, format wgpu.TextureFormat) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     provider.Label() + " Storage Texture",
		Usage:     wgpu.TextureUsageStorageBinding | wgpu.TextureUsageCopySrc,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("create storage texture: %w", err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("create storage texture view: %w", err)
	}
	provider.SetTexture(binding, tex, view)

	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return fmt.Errorf("create bind group layout: %w", err)
		}
		provider.SetBindGroupLayout(layout)
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		if entry.StorageTexture.Access != wgpu.StorageTextureAccessUndefined {
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("storage texture binding %d has no texture view, call InitStorageTexture first", binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
			continue
		}

		var usage wgpu.BufferUsage
		switch entry.Buffer.Type {
		case wgpu.BufferBindingTypeUniform:
			usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
		case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
			usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
		default:
			return fmt.Errorf("binding %d is neither a buffer nor a storage texture", binding)
		}
		usage |= provider.BufferUsage(binding)

		buf := provider.Buffer(binding)
		if buf == nil {
			bufSize, ok := provider.BufferSize(binding)
			if !ok {
				bufSize = entry.Buffer.MinBindingSize
			}
			var bufErr error
			buf, bufErr = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
				Size:  bufSize,
				Usage: usage,
			})
			if bufErr != nil {
				return fmt.Errorf("create buffer for binding %d: %w", binding, bufErr)
			}
			provider.SetBuffer(binding, buf)
		}
		bindGroupEntries[i] = wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) InitReadbackBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Readback Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create readback buffer: %w", err)
	}
	provider.SetBuffer(binding, buf)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			return fmt.Errorf("%s binding %d has no buffer", w.Provider.Label(), w.Binding)
		}
		if err := b.queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return fmt.Errorf("write %s binding %d: %w", w.Provider.Label(), w.Binding, err)
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) Dispatch(
	p pipeline.Pipeline,
	providers []bind_group_provider.BindGroupProvider,
	workgroups [3]uint32,
) (SubmissionIndex, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	computePipeline := p.ComputePipeline()
	if computePipeline == nil {
		return 0, fmt.Errorf("pipeline %q is not registered", p.PipelineKey())
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return 0, fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(computePipeline)
	for _, provider := range providers {
		pass.SetBindGroup(uint32(provider.Group()), provider.BindGroup(), nil)
	}
	pass.DispatchWorkgroups(workgroups[0], workgroups[1], workgroups[2])
	if err := pass.End(); err != nil {
		return 0, fmt.Errorf("end compute pass: %w", err)
	}

	return b.submit(encoder)
}

func (b *wgpuRendererBackendImpl) CopyTextureToBuffer(
	src bind_group_provider.BindGroupProvider,
	srcBinding int,
	dst bind_group_provider.BindGroupProvider,
	dstBinding int,
	width, height, bytesPerRow uint32,
) (SubmissionIndex, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex := src.Texture(srcBinding)
	if tex == nil {
		return 0, fmt.Errorf("%s binding %d has no texture", src.Label(), srcBinding)
	}
	buf := dst.Buffer(dstBinding)
	if buf == nil {
		return 0, fmt.Errorf("%s binding %d has no buffer", dst.Label(), dstBinding)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return 0, fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	err = encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: height,
			},
			Buffer: buf,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		return 0, fmt.Errorf("copy texture to buffer: %w", err)
	}

	return b.submit(encoder)
}

// submit finishes the encoder and submits the command buffer. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) submit(encoder *wgpu.CommandEncoder) (SubmissionIndex, error) {
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return 0, fmt.Errorf("finish command encoder: %w", err)
	}
	defer commandBuffer.Release()

	index := b.queue.Submit(commandBuffer)
	return SubmissionIndex(index), nil
}

// Poll blocks until index completes. Every caller waits on the most recent submission, so the
// queue is empty once the wait really finishes; a non-empty queue means the driver gave up waiting.
// Poll does not take b.mu so a stalled device cannot block Release.
func (b *wgpuRendererBackendImpl) Poll(index SubmissionIndex) error {
	queueEmpty := b.device.Poll(true, &wgpu.WrappedSubmissionIndex{
		Queue:           b.queue,
		SubmissionIndex: wgpu.SubmissionIndex(index),
	})
	if !queueEmpty {
		return fmt.Errorf("%w: submission %d still pending after device wait", common.ErrPollTimeout, index)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) MapRead(provider bind_group_provider.BindGroupProvider, binding int, size uint64, callback func(error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := provider.Buffer(binding)
	if buf == nil {
		return fmt.Errorf("%s binding %d has no buffer", provider.Label(), binding)
	}
	return buf.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			callback(fmt.Errorf("%w: status %v", common.ErrMapFailed, status))
			return
		}
		callback(nil)
	})
}

func (b *wgpuRendererBackendImpl) MappedRange(provider bind_group_provider.BindGroupProvider, binding int, size uint64) []byte {
	buf := provider.Buffer(binding)
	if buf == nil {
		return nil
	}
	return buf.GetMappedRange(0, uint(size))
}

func (b *wgpuRendererBackendImpl) Unmap(provider bind_group_provider.BindGroupProvider, binding int) {
	if buf := provider.Buffer(binding); buf != nil {
		buf.Unmap()
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
