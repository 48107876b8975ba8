package engine

import (
	"bytes"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/camera"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/webray-go/engine/scene"
	"github.com/Carmen-Shannon/webray-go/engine/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRenderer returns an opaque grey image of the requested size.
type stubRenderer struct {
	calls    int
	released bool
	last     settings.RenderSettings
}

func (s *stubRenderer) Render(rs settings.RenderSettings, cs camera.Settings, sc scene.Scene) ([]byte, error) {
	compiled, err := scene.Compile(sc)
	if err != nil {
		return nil, err
	}
	return s.RenderCompiled(rs, cs, compiled)
}

func (s *stubRenderer) RenderCompiled(rs settings.RenderSettings, cs camera.Settings, compiled *scene.CompiledScene) ([]byte, error) {
	s.calls++
	s.last = rs
	return bytes.Repeat([]byte{128, 128, 128, 255}, int(rs.Width*rs.Height)), nil
}

func (s *stubRenderer) Kernel() shader.Shader { return nil }

func (s *stubRenderer) Release() { s.released = true }

func smallDescription() *scene.Description {
	sc := scene.NewScene("small",
		scene.WithMaterials(scene.Diffuse{Albedo: common.Vec3{0.5, 0.5, 0.5}}),
		scene.WithShapes(scene.Sphere{Center: common.Vec3{0, 0, -1}, Radius: 0.5, Material: 0}),
	)
	rs := settings.NewRenderSettings(
		settings.WithResolution(8, 6),
		settings.WithSamples(1),
		settings.WithTile(settings.SquareTile(4)),
	)
	d, err := scene.Describe(sc, rs, camera.NewSettings())
	if err != nil {
		panic(err)
	}
	return d
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "small.yaml")
	out := filepath.Join(dir, "small.png")
	require.NoError(t, scene.Save(in, smallDescription()))

	var logs bytes.Buffer
	stub := &stubRenderer{}
	e, err := NewEngine(
		WithRenderer(stub),
		WithProfiling(true),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	require.NoError(t, err)

	require.NoError(t, e.RenderFile(in, out))
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, uint32(8), stub.last.Width)
	assert.Equal(t, settings.SquareTile(4), stub.last.Tile)

	file, err := os.Open(out)
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	assert.Contains(t, logs.String(), "output saved")
	assert.Contains(t, logs.String(), `phase="output write"`)

	e.Release()
	assert.False(t, stub.released)
}

func TestRenderFileRejectsOutputFormatFirst(t *testing.T) {
	stub := &stubRenderer{}
	e, err := NewEngine(WithRenderer(stub))
	require.NoError(t, err)

	err = e.RenderFile("missing.yaml", filepath.Join(t.TempDir(), "out.jpg"))
	assert.Error(t, err)
	assert.Zero(t, stub.calls)
}

func TestRenderDescriptionConfigError(t *testing.T) {
	desc := smallDescription()
	desc.Objects[0].MaterialID = 42

	stub := &stubRenderer{}
	e, err := NewEngine(WithRenderer(stub))
	require.NoError(t, err)

	_, _, err = e.RenderDescription("broken", desc)
	var cfg *common.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.ErrorIs(t, err, common.ErrUnresolvedMaterial)
	assert.Zero(t, stub.calls)
}

func TestRenderDescription(t *testing.T) {
	stub := &stubRenderer{}
	e, err := NewEngine(WithRenderer(stub))
	require.NoError(t, err)

	pixels, rs, err := e.RenderDescription("small", smallDescription())
	require.NoError(t, err)
	assert.Len(t, pixels, 8*6*4)
	assert.Equal(t, uint32(6), rs.Height)
	assert.Same(t, stub, e.Renderer())
	assert.NotNil(t, e.Profiler())
}
