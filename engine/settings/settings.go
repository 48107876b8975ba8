// Package settings holds the per-render image configuration: resolution, sampling and tiling.
package settings

import (
	"fmt"

	"github.com/Carmen-Shannon/webray-go/common"
)

// TileKind selects how the image is partitioned into dispatches.
type TileKind uint8

const (
	// TileKindFull renders the whole image in a single dispatch.
	TileKindFull TileKind = iota
	// TileKindSquare renders the image as a grid of square tiles, edge tiles are clipped.
	TileKindSquare
)

func (k TileKind) String() string {
	switch k {
	case TileKindFull:
		return "full"
	case TileKindSquare:
		return "square"
	default:
		return fmt.Sprintf("TileKind(%d)", uint8(k))
	}
}

// TileMode is either Full or Square(Size). Size is ignored for Full.
type TileMode struct {
	Kind TileKind
	Size uint32
}

// FullTile returns the single tile covering the whole image.
func FullTile() TileMode {
	return TileMode{Kind: TileKindFull}
}

// SquareTile returns a tiling of size x size tiles.
//
// Parameters:
//   - size: the edge length of each tile in pixels, must be greater than zero
//
// Returns:
//   - TileMode: the square tile mode
func SquareTile(size uint32) TileMode {
	return TileMode{Kind: TileKindSquare, Size: size}
}

func (m TileMode) String() string {
	if m.Kind == TileKindSquare {
		return fmt.Sprintf("square(%d)", m.Size)
	}
	return m.Kind.String()
}

// RenderSettings describes the output image of a single render.
// It is passed by value and never mutated once a render has started.
type RenderSettings struct {
	// Width of the output image in pixels.
	Width uint32
	// Height of the output image in pixels.
	Height uint32
	// Samples is the number of rays traced per pixel.
	Samples uint32
	// Bounces is the maximum path depth. Zero means primary rays contribute no light.
	Bounces uint32
	// Tile selects the dispatch partitioning.
	Tile TileMode
}

// Validate checks the settings for values that cannot produce an image.
//
// Returns:
//   - error: a *common.ConfigError wrapping common.ErrInvalidSettings, or nil
func (rs RenderSettings) Validate() error {
	switch {
	case rs.Width == 0:
		return common.NewConfigError(common.ErrInvalidSettings, "render_settings.width", "must be greater than zero")
	case rs.Height == 0:
		return common.NewConfigError(common.ErrInvalidSettings, "render_settings.height", "must be greater than zero")
	case rs.Samples == 0:
		return common.NewConfigError(common.ErrInvalidSettings, "render_settings.samples", "must be greater than zero")
	case rs.Tile.Kind == TileKindSquare && rs.Tile.Size == 0:
		return common.NewConfigError(common.ErrInvalidSettings, "render_settings.tile_size", "square tiles must have a size greater than zero")
	case rs.Tile.Kind != TileKindFull && rs.Tile.Kind != TileKindSquare:
		return common.NewConfigError(common.ErrInvalidSettings, "render_settings.tile_size", "unknown tile kind %v", rs.Tile.Kind)
	}
	return nil
}

// PixelCount returns Width * Height.
func (rs RenderSettings) PixelCount() uint64 {
	return uint64(rs.Width) * uint64(rs.Height)
}

// AspectRatio returns Width / Height as a float32.
func (rs RenderSettings) AspectRatio() float32 {
	return float32(rs.Width) / float32(rs.Height)
}
