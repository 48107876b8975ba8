package settings

const (
	// DefaultWidth is the width of the demo cover render.
	DefaultWidth = 1920
	// DefaultHeight is the height of the demo cover render.
	DefaultHeight = 1080
	// DefaultSamples is the per-pixel sample count of the demo cover render.
	DefaultSamples = 64
	// DefaultBounces is the path depth of the demo cover render.
	DefaultBounces = 12
	// DefaultTileSize is the square tile edge of the demo cover render.
	DefaultTileSize = 256
)

type RenderSettingsBuilderOption func(*RenderSettings)

// WithResolution sets the output image size.
//
// Parameters:
//   - width: image width in pixels
//   - height: image height in pixels
//
// Returns:
//   - RenderSettingsBuilderOption: a function that sets the resolution
func WithResolution(width, height uint32) RenderSettingsBuilderOption {
	return func(rs *RenderSettings) {
		rs.Width = width
		rs.Height = height
	}
}

// WithSamples sets the number of samples per pixel.
//
// Parameters:
//   - samples: rays traced per pixel
//
// Returns:
//   - RenderSettingsBuilderOption: a function that sets the sample count
func WithSamples(samples uint32) RenderSettingsBuilderOption {
	return func(rs *RenderSettings) {
		rs.Samples = samples
	}
}

// WithBounces sets the maximum path depth.
//
// Parameters:
//   - bounces: maximum number of scattering events per path
//
// Returns:
//   - RenderSettingsBuilderOption: a function that sets the bounce depth
func WithBounces(bounces uint32) RenderSettingsBuilderOption {
	return func(rs *RenderSettings) {
		rs.Bounces = bounces
	}
}

// WithTile sets the tiling mode.
//
// Parameters:
//   - mode: FullTile() or SquareTile(n)
//
// Returns:
//   - RenderSettingsBuilderOption: a function that sets the tile mode
func WithTile(mode TileMode) RenderSettingsBuilderOption {
	return func(rs *RenderSettings) {
		rs.Tile = mode
	}
}

// NewRenderSettings creates RenderSettings starting from the cover render defaults
// (1920x1080, 64 samples, 12 bounces, 256 pixel square tiles) and applies the options in order.
//
// Parameters:
//   - options: variadic list of RenderSettingsBuilderOption functions
//
// Returns:
//   - RenderSettings: the configured settings, not yet validated
func NewRenderSettings(options ...RenderSettingsBuilderOption) RenderSettings {
	rs := RenderSettings{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Samples: DefaultSamples,
		Bounces: DefaultBounces,
		Tile:    SquareTile(DefaultTileSize),
	}
	for _, option := range options {
		option(&rs)
	}
	return rs
}
