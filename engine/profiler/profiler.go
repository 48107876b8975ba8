// Package profiler records how long each phase of a render takes and reports it through slog.
package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Phase names one measured step of a render.
type Phase string

const (
	PhaseDeviceAcquisition    Phase = "device acquisition"
	PhaseSceneUpload          Phase = "scene upload"
	PhaseKernelInitialization Phase = "kernel initialization"
	PhaseRendering            Phase = "rendering"
	PhaseOutputWrite          Phase = "output write"
)

// phaseOrder is the order phases are reported in.
var phaseOrder = []Phase{
	PhaseDeviceAcquisition,
	PhaseSceneUpload,
	PhaseKernelInitialization,
	PhaseRendering,
	PhaseOutputWrite,
}

// Metric is the measured duration of one phase.
type Metric struct {
	Phase    Phase
	Duration time.Duration
}

// Profiler splits a render into consecutive phases. Each Capture records the time elapsed
// since the previous Capture (or Start) against the named phase.
// A nil *Profiler is valid and records nothing.
type Profiler struct {
	mu         *sync.Mutex
	now        func() time.Time
	start      time.Time
	checkpoint time.Time
	phases     map[Phase]time.Duration
	total      time.Duration
	memStats   runtime.MemStats
}

// NewProfiler creates a new Profiler started at the current time.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	p := &Profiler{
		mu:     &sync.Mutex{},
		now:    time.Now,
		phases: make(map[Phase]time.Duration),
	}
	p.Start()
	return p
}

// Start resets every measurement and starts the clock.
func (p *Profiler) Start() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start = p.now()
	p.checkpoint = p.start
	p.total = 0
	clear(p.phases)
}

// Capture ends the given phase now.
//
// Parameters:
//   - phase: the phase that just finished
func (p *Profiler) Capture(phase Phase) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	p.phases[phase] += now.Sub(p.checkpoint)
	p.checkpoint = now
}

// Finish records the total time since Start.
//
// Returns:
//   - time.Duration: the total elapsed time
func (p *Profiler) Finish() time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = p.now().Sub(p.start)
	return p.total
}

// Duration returns the time recorded against a phase.
//
// Parameters:
//   - phase: the phase to look up
//
// Returns:
//   - time.Duration: the recorded duration, zero if the phase was never captured
func (p *Profiler) Duration(phase Phase) time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phases[phase]
}

// Total returns the duration recorded by Finish.
//
// Returns:
//   - time.Duration: the total, zero before Finish
func (p *Profiler) Total() time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Metrics returns every captured phase in report order.
//
// Returns:
//   - []Metric: the captured phases
func (p *Profiler) Metrics() []Metric {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Metric, 0, len(p.phases))
	for _, phase := range phaseOrder {
		if d, ok := p.phases[phase]; ok {
			out = append(out, Metric{Phase: phase, Duration: d})
		}
	}
	return out
}

// Log writes the metrics table and a heap summary at info level.
//
// Parameters:
//   - logger: the destination logger
func (p *Profiler) Log(logger *slog.Logger) {
	if p == nil || logger == nil {
		return
	}
	for _, m := range p.Metrics() {
		logger.Info("render metric", "phase", string(m.Phase), "secs", m.Duration.Seconds())
	}

	p.mu.Lock()
	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	gcCount := p.memStats.NumGC
	total := p.total
	p.mu.Unlock()

	logger.Info("render metric", "phase", "total", "secs", total.Seconds(), "heap_mb", heapMB, "sys_mb", sysMB, "gc", gcCount)
}
