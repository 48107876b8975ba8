package renderer

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/camera"
	"github.com/Carmen-Shannon/webray-go/engine/profiler"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/binding"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/webray-go/engine/scene"
	"github.com/Carmen-Shannon/webray-go/engine/settings"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records every call and simulates submissions. Poll runs on the protocol's worker
// goroutine, so all state is guarded by mu.
type fakeBackend struct {
	mu sync.Mutex

	next       SubmissionIndex
	polled     []SubmissionIndex
	dispatches [][3]uint32
	contexts   [][]byte
	sizes      map[string]uint64
	uploads    map[string][]byte
	registered int

	texture     [2]uint32
	readback    uint64
	copyIndex   SubmissionIndex
	copyPitch   uint32
	mapped      []byte
	mapCalls    int
	unmapCalls  int
	mapCallback func(error)

	// mapErr is delivered to the map callback when set.
	mapErr error
	// pollBlock makes Poll block until it is closed.
	pollBlock chan struct{}
	// textureErr fails InitStorageTexture.
	textureErr error
	// pollErr is returned by every Poll.
	pollErr error
	// writeErr fails WriteBuffers.
	writeErr error
}

var _ RendererBackend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		sizes:   make(map[string]uint64),
		uploads: make(map[string][]byte),
	}
}

func key(p bind_group_provider.BindGroupProvider, b int) string {
	return fmt.Sprintf("%s/%d", p.Label(), b)
}

func (f *fakeBackend) RegisterComputePipeline(p pipeline.Pipeline) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered++
	return nil
}

func (f *fakeBackend) InitStorageTexture(provider bind_group_provider.BindGroupProvider, b int, width, height uint32, format wgpu.TextureFormat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.textureErr != nil {
		return f.textureErr
	}
	f.texture = [2]uint32{width, height}
	return nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range descriptor.Entries {
		if e.Buffer.Type == wgpu.BufferBindingTypeUndefined {
			continue
		}
		size, ok := provider.BufferSize(int(e.Binding))
		if !ok {
			size = e.Buffer.MinBindingSize
		}
		f.sizes[key(provider, int(e.Binding))] = size
	}
	return nil
}

func (f *fakeBackend) InitReadbackBuffer(provider bind_group_provider.BindGroupProvider, b int, size uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readback = size
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	for _, w := range writes {
		k := key(w.Provider, w.Binding)
		if _, ok := f.sizes[k]; !ok {
			return fmt.Errorf("%s has no buffer", k)
		}
		f.uploads[k] = append([]byte(nil), w.Data...)
		if w.Provider.Group() == binding.SetExecution {
			f.contexts = append(f.contexts, append([]byte(nil), w.Data...))
		}
	}
	return nil
}

func (f *fakeBackend) Dispatch(p pipeline.Pipeline, providers []bind_group_provider.BindGroupProvider, workgroups [3]uint32) (SubmissionIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.dispatches = append(f.dispatches, workgroups)
	return f.next, nil
}

func (f *fakeBackend) CopyTextureToBuffer(src bind_group_provider.BindGroupProvider, srcBinding int, dst bind_group_provider.BindGroupProvider, dstBinding int, width, height, bytesPerRow uint32) (SubmissionIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.copyIndex = f.next
	f.copyPitch = bytesPerRow

	// Pixel (x, y) is {x, y, 7, 255}; row padding is 0xEE.
	f.mapped = make([]byte, uint64(bytesPerRow)*uint64(height))
	for i := range f.mapped {
		f.mapped[i] = 0xEE
	}
	for y := range height {
		for x := range width {
			o := y*bytesPerRow + x*4
			f.mapped[o] = byte(x)
			f.mapped[o+1] = byte(y)
			f.mapped[o+2] = 7
			f.mapped[o+3] = 255
		}
	}
	return f.next, nil
}

func (f *fakeBackend) Poll(index SubmissionIndex) error {
	if f.pollBlock != nil {
		<-f.pollBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polled = append(f.polled, index)
	if f.pollErr != nil {
		return f.pollErr
	}
	if f.mapCallback != nil && index >= f.copyIndex {
		cb := f.mapCallback
		f.mapCallback = nil
		cb(f.mapErr)
	}
	return nil
}

func (f *fakeBackend) MapRead(provider bind_group_provider.BindGroupProvider, b int, size uint64, callback func(error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mapCalls++
	f.mapCallback = callback
	return nil
}

func (f *fakeBackend) MappedRange(provider bind_group_provider.BindGroupProvider, b int, size uint64) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mapped[:size]
}

func (f *fakeBackend) Unmap(provider bind_group_provider.BindGroupProvider, b int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unmapCalls++
}

func (f *fakeBackend) Release() {}

func testScene() scene.Scene {
	return scene.NewScene("test",
		scene.WithMaterials(
			scene.Diffuse{Albedo: common.Vec3{0.5, 0.5, 0.5}},
			scene.Metal{Albedo: common.Vec3{0.7, 0.6, 0.5}, Roughness: 0},
		),
		scene.WithShapes(
			scene.Sphere{Center: common.Vec3{0, -1000, 0}, Radius: 1000, Material: 0},
			scene.Sphere{Center: common.Vec3{0, 1, 0}, Radius: 1, Material: 1},
		),
	)
}

func testSettings(width, height uint32, mode settings.TileMode) settings.RenderSettings {
	return settings.NewRenderSettings(
		settings.WithResolution(width, height),
		settings.WithSamples(1),
		settings.WithBounces(2),
		settings.WithTile(mode),
	)
}

func newTestRenderer(t *testing.T, b RendererBackend, opts ...RendererBuilderOption) Renderer {
	t.Helper()
	r, err := NewRenderer(BackendTypeWGPU, append([]RendererBuilderOption{WithBackend(b), WithLogger(common.NopLogger())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r
}

func TestRenderFullTile64(t *testing.T) {
	b := newFakeBackend()
	r := newTestRenderer(t, b)

	out, err := r.Render(testSettings(64, 64, settings.FullTile()), camera.NewSettings(), testScene())
	require.NoError(t, err)
	assert.Len(t, out, 16384)

	assert.Equal(t, [][3]uint32{{64, 64, 1}}, b.dispatches)
	assert.Equal(t, [][]byte{{0, 0, 0, 0, 0, 0, 0, 0}}, b.contexts)
	assert.Equal(t, [2]uint32{64, 64}, b.texture)
	assert.Equal(t, uint64(16384), b.readback)
	assert.Equal(t, uint32(256), b.copyPitch)
	assert.Equal(t, []SubmissionIndex{1, 2}, b.polled)
	assert.Equal(t, 1, b.mapCalls)
	assert.Equal(t, 1, b.unmapCalls)
	assert.Equal(t, 1, b.registered)

	assert.Equal(t, binding.KernelConfigSize, b.sizes["scene/0"])
	assert.Equal(t, 2*binding.SphereSize, b.sizes["scene/1"])
	assert.Equal(t, binding.DiffuseSize, b.sizes["scene/2"])
	assert.Equal(t, binding.MetalSize, b.sizes["scene/3"])
	// No dielectric materials: one zeroed element keeps the binding valid.
	assert.Equal(t, binding.DielectricSize, b.sizes["scene/4"])
	assert.Equal(t, binding.ExecutionContextSize, b.sizes["execution/0"])
	assert.Len(t, b.uploads["scene/0"], int(binding.KernelConfigSize))

	// Last pixel of the image.
	assert.Equal(t, []byte{63, 63, 7, 255}, out[len(out)-4:])
}

func TestRenderTiledDepadsRows(t *testing.T) {
	b := newFakeBackend()
	r := newTestRenderer(t, b)

	out, err := r.Render(testSettings(300, 200, settings.SquareTile(128)), camera.NewSettings(), testScene())
	require.NoError(t, err)
	require.Len(t, out, 300*200*4)

	assert.Equal(t, [][3]uint32{
		{128, 128, 1}, {128, 72, 1},
		{128, 128, 1}, {128, 72, 1},
		{44, 128, 1}, {44, 72, 1},
	}, b.dispatches)
	require.Len(t, b.contexts, 6)
	assert.Equal(t, []byte{128, 0, 0, 0, 128, 0, 0, 0}, b.contexts[3])
	assert.Equal(t, []SubmissionIndex{1, 2, 3, 4, 5, 6, 7}, b.polled)

	assert.Equal(t, uint32(1280), b.copyPitch)
	assert.Equal(t, uint64(1280*200), b.readback)

	px := func(x, y int) []byte {
		o := (y*300 + x) * 4
		return out[o : o+4]
	}
	assert.Equal(t, []byte{0, 0, 7, 255}, px(0, 0))
	assert.Equal(t, []byte{43, 0, 7, 255}, px(299, 0))
	assert.Equal(t, []byte{0, 1, 7, 255}, px(0, 1))
	assert.Equal(t, []byte{43, 199, 7, 255}, px(299, 199))
}

func TestRenderMapFailure(t *testing.T) {
	b := newFakeBackend()
	b.mapErr = errors.New("device lost")
	fatal := 0
	r := newTestRenderer(t, b, WithFatalErrorHandler(func(*common.DeviceError) { fatal++ }))

	var out []byte
	var err error
	assert.NotPanics(t, func() {
		out, err = r.Render(testSettings(64, 64, settings.FullTile()), camera.NewSettings(), testScene())
	})
	assert.Nil(t, out)

	var readbackErr *common.ReadbackError
	require.ErrorAs(t, err, &readbackErr)
	assert.ErrorIs(t, err, common.ErrMapFailed)
	assert.Equal(t, 1, b.mapCalls)
	assert.Equal(t, 0, b.unmapCalls)
	assert.Zero(t, fatal)
}

func TestRenderPollTimeout(t *testing.T) {
	b := newFakeBackend()
	b.pollBlock = make(chan struct{})
	t.Cleanup(func() { close(b.pollBlock) })

	var handled *common.DeviceError
	r := newTestRenderer(t, b,
		WithPollTimeout(20*time.Millisecond),
		WithFatalErrorHandler(func(err *common.DeviceError) { handled = err }),
	)

	out, err := r.Render(testSettings(64, 64, settings.FullTile()), camera.NewSettings(), testScene())
	assert.Nil(t, out)
	require.ErrorIs(t, err, common.ErrPollTimeout)
	require.NotNil(t, handled)
	assert.Equal(t, "poll", handled.Op)

	var deviceErr *common.DeviceError
	assert.ErrorAs(t, err, &deviceErr)
	assert.Zero(t, b.mapCalls)
}

func TestRenderDeviceWaitExpired(t *testing.T) {
	b := newFakeBackend()
	b.pollErr = fmt.Errorf("%w: submission 1 still pending after device wait", common.ErrPollTimeout)

	var handled *common.DeviceError
	r := newTestRenderer(t, b, WithFatalErrorHandler(func(err *common.DeviceError) { handled = err }))

	out, err := r.Render(testSettings(300, 200, settings.SquareTile(128)), camera.NewSettings(), testScene())
	assert.Nil(t, out)
	require.ErrorIs(t, err, common.ErrPollTimeout)
	require.NotNil(t, handled)
	assert.Equal(t, "poll", handled.Op)

	// The first unconfirmed tile stops the render before any further dispatch or readback.
	assert.Len(t, b.dispatches, 1)
	assert.Equal(t, []SubmissionIndex{1}, b.polled)
	assert.Zero(t, b.mapCalls)
	assert.Zero(t, b.unmapCalls)
}

func TestRenderUploadFailureIsFatal(t *testing.T) {
	b := newFakeBackend()
	b.writeErr = errors.New("buffer write out of bounds")

	var handled *common.DeviceError
	r := newTestRenderer(t, b, WithFatalErrorHandler(func(err *common.DeviceError) { handled = err }))

	_, err := r.Render(testSettings(64, 64, settings.FullTile()), camera.NewSettings(), testScene())
	require.Error(t, err)
	require.NotNil(t, handled)
	assert.Equal(t, "upload scene", handled.Op)
	assert.ErrorIs(t, err, b.writeErr)
	assert.Empty(t, b.dispatches)
}

func TestDefaultFatalHandlerPanics(t *testing.T) {
	b := newFakeBackend()
	b.textureErr = errors.New("out of memory")
	r := newTestRenderer(t, b)

	assert.Panics(t, func() {
		_, _ = r.Render(testSettings(64, 64, settings.FullTile()), camera.NewSettings(), testScene())
	})
}

func TestRenderConfigErrors(t *testing.T) {
	b := newFakeBackend()
	r := newTestRenderer(t, b, WithFatalErrorHandler(func(*common.DeviceError) { t.Fatal("unexpected device error") }))

	_, err := r.Render(testSettings(0, 64, settings.FullTile()), camera.NewSettings(), testScene())
	assert.ErrorIs(t, err, common.ErrInvalidSettings)

	degenerate := camera.NewSettings(camera.WithLookFrom(1, 1, 1), camera.WithLookAt(1, 1, 1))
	_, err = r.Render(testSettings(64, 64, settings.FullTile()), degenerate, testScene())
	assert.ErrorIs(t, err, common.ErrDegenerateCamera)

	bad := scene.NewScene("bad", scene.WithShapes(scene.Sphere{Radius: 1, Material: 3}))
	_, err = r.Render(testSettings(64, 64, settings.FullTile()), camera.NewSettings(), bad)
	assert.ErrorIs(t, err, common.ErrUnresolvedMaterial)

	assert.Empty(t, b.dispatches)
	assert.Zero(t, b.registered)
}

func TestRenderRecordsPhases(t *testing.T) {
	b := newFakeBackend()
	p := profiler.NewProfiler()
	r := newTestRenderer(t, b, WithProfiler(p))

	_, err := r.Render(testSettings(32, 32, settings.FullTile()), camera.NewSettings(), testScene())
	require.NoError(t, err)

	phases := make([]profiler.Phase, 0)
	for _, m := range p.Metrics() {
		phases = append(phases, m.Phase)
	}
	assert.Equal(t, []profiler.Phase{
		profiler.PhaseDeviceAcquisition,
		profiler.PhaseSceneUpload,
		profiler.PhaseKernelInitialization,
		profiler.PhaseRendering,
	}, phases)
}

func TestNewRendererRejectsKernel(t *testing.T) {
	k, err := shader.NewShaderFromSource("wide", `
@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
}
`)
	require.NoError(t, err)

	_, err = NewRenderer(BackendTypeWGPU, WithBackend(newFakeBackend()), WithKernelShader(k))
	assert.ErrorIs(t, err, common.ErrContractMismatch)
}

func TestRowPitch(t *testing.T) {
	assert.Equal(t, uint32(256), rowPitch(64))
	assert.Equal(t, uint32(256), rowPitch(1))
	assert.Equal(t, uint32(7680), rowPitch(1920))
	assert.Equal(t, uint32(1280), rowPitch(300))
}

func TestDepad(t *testing.T) {
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 0xEE, 0xEE,
		9, 10, 11, 12, 13, 14, 15, 16, 0xEE, 0xEE,
	}
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, depad(src, 2, 2, 10))

	tight := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	out := depad(tight, 1, 2, 4)
	assert.Equal(t, tight, out)
	out[0] = 99
	assert.Equal(t, byte(1), tight[0])
}
