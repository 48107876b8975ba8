package renderer

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/camera"
	"github.com/Carmen-Shannon/webray-go/engine/profiler"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/binding"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/webray-go/engine/scene"
	"github.com/Carmen-Shannon/webray-go/engine/settings"
	"github.com/Carmen-Shannon/webray-go/engine/tile"
)

// DefaultPollTimeout is how long a single device wait may take before the render is aborted.
const DefaultPollTimeout = 2 * time.Minute

// FatalErrorHandler receives every device error. The default handler logs the error and panics.
// A handler that returns lets Render return the error to its caller.
type FatalErrorHandler func(err *common.DeviceError)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	ownsBackend bool

	kernel   shader.Shader
	pipeline pipeline.Pipeline

	fatal       FatalErrorHandler
	logger      *slog.Logger
	pollTimeout time.Duration
	profiler    *profiler.Profiler

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
}

// Renderer turns a scene, a camera and render settings into an RGBA8 image on the GPU.
//
// The device is acquired and the kernel pipeline created on the first render and reused afterwards.
// Every other GPU resource is created for one render and released before it returns. Renders are
// serialized; a Renderer may be shared between goroutines.
type Renderer interface {
	// Render compiles the scene and renders it.
	//
	// Parameters:
	//   - rs: the render settings
	//   - cs: the camera settings
	//   - sc: the scene to render
	//
	// Returns:
	//   - []byte: width*height*4 RGBA8 bytes, row-major, tightly packed
	//   - error: a *common.ConfigError for invalid input, a *common.ReadbackError if the image could not be
	//     read back, or a *common.DeviceError if the fatal error handler returned
	Render(rs settings.RenderSettings, cs camera.Settings, sc scene.Scene) ([]byte, error)

	// RenderCompiled renders an already compiled scene.
	//
	// Parameters:
	//   - rs: the render settings
	//   - cs: the camera settings
	//   - compiled: the compiled scene
	//
	// Returns:
	//   - []byte: width*height*4 RGBA8 bytes, row-major, tightly packed
	//   - error: see Render
	RenderCompiled(rs settings.RenderSettings, cs camera.Settings, compiled *scene.CompiledScene) ([]byte, error)

	// Kernel returns the compute kernel this renderer dispatches.
	//
	// Returns:
	//   - shader.Shader: the validated kernel shader
	Kernel() shader.Shader

	// Release releases the pipeline and, unless it was supplied with WithBackend, the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer. The kernel is checked against the binding contract here; no GPU work
// happens until the first render.
//
// Parameters:
//   - backendType: the type of GPU backend to use (e.g., WGPU)
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: a *common.ConfigError if the kernel does not satisfy the binding contract
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		pollTimeout: DefaultPollTimeout,
	}
	r.fatal = r.logAndPanic

	for _, opt := range options {
		opt(r)
	}

	if r.kernel == nil {
		r.kernel = binding.NewKernelShader()
	}
	if err := binding.Validate(r.kernel); err != nil {
		return nil, err
	}

	r.pipeline = pipeline.NewPipeline(
		r.kernel.Key(),
		pipeline.WithComputeShader(r.kernel),
		pipeline.WithLayoutDescriptors(binding.Layouts()),
	)

	return r, nil
}

func (r *renderer) Kernel() shader.Shader {
	return r.kernel
}

func (r *renderer) Render(rs settings.RenderSettings, cs camera.Settings, sc scene.Scene) ([]byte, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	compiled, err := scene.Compile(sc)
	if err != nil {
		return nil, err
	}
	return r.RenderCompiled(rs, cs, compiled)
}

func (r *renderer) RenderCompiled(rs settings.RenderSettings, cs camera.Settings, compiled *scene.CompiledScene) ([]byte, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	derived, err := camera.Solve(rs, cs)
	if err != nil {
		return nil, err
	}
	config := camera.NewGPUKernelConfig(rs, derived)

	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.log()
	r.profiler.Start()
	log.Info("render start",
		"width", rs.Width,
		"height", rs.Height,
		"samples", rs.Samples,
		"bounces", rs.Bounces,
		"tile", rs.Tile.String(),
	)

	if err := r.ensureBackend(); err != nil {
		return nil, r.handleFatal(err)
	}
	r.profiler.Capture(profiler.PhaseDeviceAcquisition)
	log.Info("device acquired")

	res, err := allocateResources(r.backend, r.pipeline.LayoutDescriptors(), config.Marshal(), compiled, rs.Width, rs.Height)
	if err != nil {
		return nil, r.handleFatal(err)
	}
	defer res.release()
	r.profiler.Capture(profiler.PhaseSceneUpload)
	log.Info("scene buffers uploaded")

	if err := r.ensurePipeline(); err != nil {
		return nil, r.handleFatal(err)
	}
	r.profiler.Capture(profiler.PhaseKernelInitialization)
	log.Info("kernel initialized")

	proto := newProtocol(r.backend, r.pipeline, res, r.pollTimeout, log)
	defer proto.stop()

	tilesX, tilesY := tile.Count(rs.Width, rs.Height, rs.Tile)
	log.Info("tile count", "x", tilesX, "y", tilesY)
	for t := range tile.All(rs.Width, rs.Height, rs.Tile) {
		log.Debug("rendering tile", "x", t.X, "y", t.Y, "width", t.Width, "height", t.Height)
		if err := proto.runTile(t); err != nil {
			return nil, r.handleFatal(err)
		}
	}

	out, err := proto.readback()
	if err != nil {
		var readbackErr *common.ReadbackError
		if errors.As(err, &readbackErr) {
			log.Error("readback failed", "err", err)
			return nil, err
		}
		return nil, r.handleFatal(err)
	}
	r.profiler.Capture(profiler.PhaseRendering)
	log.Info("render finished")

	return out, nil
}

// ensureBackend acquires the wgpu device on first use.
func (r *renderer) ensureBackend() error {
	if r.backend != nil {
		return nil
	}
	switch r.backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		b, err := newWGPURendererBackend(r.forceFallbackAdapter)
		if err != nil {
			return &common.DeviceError{Op: "acquire device", Err: err}
		}
		r.backend = b
		r.ownsBackend = true
	}
	return nil
}

// ensurePipeline creates the compute pipeline on first use.
func (r *renderer) ensurePipeline() error {
	if r.pipeline.ComputePipeline() != nil {
		return nil
	}
	if err := r.backend.RegisterComputePipeline(r.pipeline); err != nil {
		return &common.DeviceError{Op: "create compute pipeline", Err: err}
	}
	return nil
}

// handleFatal passes a device error to the fatal handler and returns it for the handlers that return.
func (r *renderer) handleFatal(err error) error {
	var deviceErr *common.DeviceError
	if !errors.As(err, &deviceErr) {
		deviceErr = &common.DeviceError{Op: "render", Err: err}
	}
	r.fatal(deviceErr)
	return deviceErr
}

func (r *renderer) logAndPanic(err *common.DeviceError) {
	r.log().Error("fatal device error", "op", err.Op, "err", err.Err)
	panic(err)
}

func (r *renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return common.Logger()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.backend != nil && r.ownsBackend {
		r.backend.Release()
		r.backend = nil
	}
}
