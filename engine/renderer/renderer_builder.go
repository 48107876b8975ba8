package renderer

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/webray-go/engine/profiler"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/shader"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend supplies an already acquired backend. The renderer does not release it.
//
// Parameters:
//   - b: the backend to render with
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
		r.ownsBackend = false
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithKernelShader replaces the embedded kernel. The shader is validated against the binding
// contract by NewRenderer.
//
// Parameters:
//   - s: the kernel shader
//
// Returns:
//   - RendererBuilderOption: a function that applies the kernel option to a renderer
func WithKernelShader(s shader.Shader) RendererBuilderOption {
	return func(r *renderer) {
		r.kernel = s
	}
}

// WithFatalErrorHandler installs the handler that receives device errors. Passing nil keeps the default.
//
// Parameters:
//   - h: the handler
//
// Returns:
//   - RendererBuilderOption: a function that applies the handler option to a renderer
func WithFatalErrorHandler(h FatalErrorHandler) RendererBuilderOption {
	return func(r *renderer) {
		if h != nil {
			r.fatal = h
		}
	}
}

// WithLogger sets the logger used for render lifecycle messages. By default the module logger is used.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(l *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = l
	}
}

// WithPollTimeout sets how long one device wait may take. A non-positive value waits indefinitely.
//
// Parameters:
//   - d: the timeout
//
// Returns:
//   - RendererBuilderOption: a function that applies the timeout option to a renderer
func WithPollTimeout(d time.Duration) RendererBuilderOption {
	return func(r *renderer) {
		r.pollTimeout = d
	}
}

// WithProfiler records render phase durations into p. The renderer restarts p at the beginning of
// every render.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - RendererBuilderOption: a function that applies the profiler option to a renderer
func WithProfiler(p *profiler.Profiler) RendererBuilderOption {
	return func(r *renderer) {
		r.profiler = p
	}
}
