package settings

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/stretchr/testify/assert"
)

func TestNewRenderSettingsDefaults(t *testing.T) {
	rs := NewRenderSettings()
	assert.Equal(t, uint32(1920), rs.Width)
	assert.Equal(t, uint32(1080), rs.Height)
	assert.Equal(t, uint32(64), rs.Samples)
	assert.Equal(t, uint32(12), rs.Bounces)
	assert.Equal(t, SquareTile(256), rs.Tile)
	assert.NoError(t, rs.Validate())
}

func TestNewRenderSettingsOptions(t *testing.T) {
	rs := NewRenderSettings(WithResolution(64, 32), WithSamples(4), WithBounces(0), WithTile(FullTile()))
	assert.Equal(t, RenderSettings{Width: 64, Height: 32, Samples: 4, Bounces: 0, Tile: FullTile()}, rs)
	assert.Equal(t, uint64(2048), rs.PixelCount())
	assert.InDelta(t, 2.0, float64(rs.AspectRatio()), 1e-6)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		rs    RenderSettings
		field string
	}{
		{"zero width", NewRenderSettings(WithResolution(0, 10)), "render_settings.width"},
		{"zero height", NewRenderSettings(WithResolution(10, 0)), "render_settings.height"},
		{"zero samples", NewRenderSettings(WithSamples(0)), "render_settings.samples"},
		{"zero tile", NewRenderSettings(WithTile(SquareTile(0))), "render_settings.tile_size"},
		{"unknown kind", NewRenderSettings(WithTile(TileMode{Kind: 9, Size: 4})), "render_settings.tile_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rs.Validate()
			var cfg *common.ConfigError
			if assert.True(t, errors.As(err, &cfg)) {
				assert.Equal(t, tt.field, cfg.Field)
				assert.ErrorIs(t, err, common.ErrInvalidSettings)
			}
		})
	}

	assert.NoError(t, NewRenderSettings(WithTile(FullTile())).Validate())
	assert.NoError(t, NewRenderSettings(WithBounces(0)).Validate())
}

func TestTileModeString(t *testing.T) {
	assert.Equal(t, "full", FullTile().String())
	assert.Equal(t, "square(256)", SquareTile(256).String())
	assert.Equal(t, "TileKind(7)", TileKind(7).String())
}
