package profiler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestCaptureRecordsConsecutivePhases(t *testing.T) {
	p := NewProfiler()
	p.now = fakeClock(time.Second)
	p.Start()

	p.Capture(PhaseDeviceAcquisition)
	p.Capture(PhaseSceneUpload)
	p.Capture(PhaseRendering)

	assert.Equal(t, time.Second, p.Duration(PhaseDeviceAcquisition))
	assert.Equal(t, time.Second, p.Duration(PhaseSceneUpload))
	assert.Equal(t, time.Second, p.Duration(PhaseRendering))
	assert.Zero(t, p.Duration(PhaseOutputWrite))

	assert.Equal(t, 4*time.Second, p.Finish())
	assert.Equal(t, 4*time.Second, p.Total())

	metrics := p.Metrics()
	assert.Equal(t, []Metric{
		{PhaseDeviceAcquisition, time.Second},
		{PhaseSceneUpload, time.Second},
		{PhaseRendering, time.Second},
	}, metrics)
}

func TestStartResets(t *testing.T) {
	p := NewProfiler()
	p.now = fakeClock(time.Millisecond)
	p.Capture(PhaseRendering)
	p.Start()
	assert.Empty(t, p.Metrics())
}

func TestNilProfiler(t *testing.T) {
	var p *Profiler
	assert.NotPanics(t, func() {
		p.Start()
		p.Capture(PhaseRendering)
		p.Finish()
		p.Log(slog.Default())
	})
	assert.Nil(t, p.Metrics())
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := NewProfiler()
	p.now = fakeClock(time.Second)
	p.Start()
	p.Capture(PhaseKernelInitialization)
	p.Finish()
	p.Log(logger)

	out := buf.String()
	assert.Contains(t, out, `phase="kernel initialization"`)
	assert.Contains(t, out, "phase=total")
	assert.Equal(t, 2, strings.Count(out, "render metric"))
}
