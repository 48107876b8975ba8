package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/output"
	"github.com/Carmen-Shannon/webray-go/engine/profiler"
	"github.com/Carmen-Shannon/webray-go/engine/renderer"
	"github.com/Carmen-Shannon/webray-go/engine/scene"
	"github.com/Carmen-Shannon/webray-go/engine/settings"
)

// engine implements the Engine interface.
// It owns one renderer and runs render jobs through it one at a time.
type engine struct {
	mu *sync.Mutex

	renderer        renderer.Renderer
	ownsRenderer    bool
	rendererOptions []renderer.RendererBuilderOption

	profiler         *profiler.Profiler
	profilingEnabled bool

	logger *slog.Logger
}

// Engine is the entry point for render jobs: it loads a scene description, renders it and writes the image.
type Engine interface {
	// Renderer returns the renderer jobs are run on.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Profiler returns the profiler that records the phases of the last job.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// RenderDescription builds and renders a scene description.
	//
	// Parameters:
	//   - name: the scene name used in log messages
	//   - desc: the description to render
	//
	// Returns:
	//   - []byte: width*height*4 RGBA8 bytes
	//   - settings.RenderSettings: the render settings taken from the description
	//   - error: a configuration, readback or device error
	RenderDescription(name string, desc *scene.Description) ([]byte, settings.RenderSettings, error)

	// RenderFile loads a scene description file, renders it and writes the image to outPath.
	// The formats of both files follow their extensions.
	//
	// Parameters:
	//   - inPath: the scene description file (.json, .yaml, .yml or .toml)
	//   - outPath: the image file (.png, .bmp, .tif or .tiff)
	//
	// Returns:
	//   - error: a load, render or write error
	RenderFile(inPath, outPath string) error

	// Release releases the renderer if the engine created it.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: variadic list of EngineBuilderOption functions to configure the Engine
//
// Returns:
//   - Engine: the configured engine
//   - error: an error if the renderer could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:       &sync.Mutex{},
		profiler: profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		opts := append([]renderer.RendererBuilderOption{
			renderer.WithProfiler(e.profiler),
			renderer.WithLogger(e.log()),
		}, e.rendererOptions...)
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, opts...)
		if err != nil {
			return nil, fmt.Errorf("create renderer: %w", err)
		}
		e.renderer = r
		e.ownsRenderer = true
	}

	return e, nil
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) RenderDescription(name string, desc *scene.Description) ([]byte, settings.RenderSettings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.render(name, desc)
}

func (e *engine) render(name string, desc *scene.Description) ([]byte, settings.RenderSettings, error) {
	sc, rs, cs, err := desc.Build(name)
	if err != nil {
		return nil, settings.RenderSettings{}, err
	}
	e.log().Info("scene loaded", "scene", name, "shapes", len(sc.Shapes()), "materials", len(sc.Materials()))

	pixels, err := e.renderer.Render(rs, cs, sc)
	if err != nil {
		return nil, settings.RenderSettings{}, err
	}
	return pixels, rs, nil
}

func (e *engine) RenderFile(inPath, outPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Fail on an unsupported output extension before spending a render on it.
	if _, err := output.FormatFromPath(outPath); err != nil {
		return err
	}
	desc, err := scene.Load(inPath)
	if err != nil {
		return err
	}

	name := common.Coalesce(strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath)), "scene")
	pixels, rs, err := e.render(name, desc)
	if err != nil {
		return err
	}

	if err := output.Write(outPath, pixels, rs.Width, rs.Height); err != nil {
		return err
	}
	e.profiler.Capture(profiler.PhaseOutputWrite)
	e.profiler.Finish()
	e.log().Info("output saved", "path", outPath)

	if e.profilingEnabled {
		e.profiler.Log(e.log())
	}
	return nil
}

func (e *engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return common.Logger()
}

func (e *engine) Release() {
	if e.ownsRenderer && e.renderer != nil {
		e.renderer.Release()
	}
}
