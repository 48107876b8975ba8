package common

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "a", Coalesce("", "a"))
	assert.Equal(t, 0, Coalesce[int]())
}

func TestVec3Ops(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	assert.Equal(t, Vec3{5, 7, 9}, a.Add(b))
	assert.Equal(t, Vec3{-3, -3, -3}, a.Sub(b))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.Equal(t, Vec3{0.5, 1, 1.5}, a.Div(2))
	assert.Equal(t, float32(32), a.Dot(b))
	assert.Equal(t, Vec3{-3, 6, -3}, a.Cross(b))
	assert.Equal(t, Vec3{0, 0, 1}, Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0}))
	assert.InDelta(t, 5.0, float64(Vec3{3, 4, 0}.Length()), 1e-6)
	assert.InDelta(t, 1.0, float64(Vec3{3, 4, 12}.Normalize().Length()), 1e-6)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.True(t, Vec3{1e-9, -1e-9, 0}.NearZero(1e-6))
	assert.False(t, Vec3{1e-3, 0, 0}.NearZero(1e-6))
}

func TestRoundUp(t *testing.T) {
	tests := []struct{ n, align, want uint64 }{
		{0, 256, 0},
		{1, 256, 256},
		{256, 256, 256},
		{7680, 256, 7680},
		{400, 256, 512},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundUp(tt.n, tt.align), "RoundUp(%d, %d)", tt.n, tt.align)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff0080")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(c[0]), 1e-6)
	assert.InDelta(t, 0.0, float64(c[1]), 1e-6)
	assert.InDelta(t, 128.0/255.0, float64(c[2]), 1e-6)

	short, err := ParseHexColor("f80")
	require.NoError(t, err)
	long, err := ParseHexColor("#ff8800")
	require.NoError(t, err)
	assert.Equal(t, long, short)

	for _, bad := range []string{"", "#12", "#12345", "#gg0000"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, "ParseHexColor(%q)", bad)
	}
}

func TestHexColorRoundTrip(t *testing.T) {
	c, err := ParseHexColor("#336699")
	require.NoError(t, err)
	assert.Equal(t, "#336699", HexColor(c))
	assert.Equal(t, "#ff0000", HexColor(Vec3{2, -1, 0}))
}

func TestErrorsUnwrap(t *testing.T) {
	cfg := NewConfigError(ErrUnresolvedMaterial, "shapes[2].material", "material %d not registered", 7)
	assert.True(t, errors.Is(cfg, ErrUnresolvedMaterial))
	assert.Equal(t, "config: shapes[2].material: material 7 not registered", cfg.Error())

	wrapped := fmt.Errorf("compile: %w", cfg)
	var target *ConfigError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "shapes[2].material", target.Field)

	rb := &ReadbackError{Err: ErrMapFailed}
	assert.True(t, errors.Is(rb, ErrMapFailed))

	dev := &DeviceError{Op: "poll", Err: ErrPollTimeout}
	assert.True(t, errors.Is(dev, ErrPollTimeout))
	assert.Equal(t, "device: poll: device poll timed out", dev.Error())
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	if Logger() == nil {
		t.Fatal("Logger() = nil, want non-nil default")
	}

	custom := slog.Default()
	SetLogger(custom)
	if Logger() != custom {
		t.Errorf("Logger() = %p, want %p", Logger(), custom)
	}

	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore a disabled logger")
	}
}
