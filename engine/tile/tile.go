// Package tile partitions an image into the rectangles dispatched one at a time by the renderer.
package tile

import (
	"iter"

	"github.com/Carmen-Shannon/webray-go/engine/settings"
)

// Tile is a rectangular region of the output image in pixels.
// Tiles produced for one image are disjoint and cover it exactly, edge tiles are clipped.
type Tile struct {
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}

// Pixels returns Width * Height.
func (t Tile) Pixels() uint64 {
	return uint64(t.Width) * uint64(t.Height)
}

// Count returns the number of tile columns and rows for an image.
// Full mode yields (1, 1). Square mode yields (ceil(width/size), ceil(height/size)).
// A square size of zero is treated as Full.
//
// Parameters:
//   - width: image width in pixels
//   - height: image height in pixels
//   - mode: the tile mode
//
// Returns:
//   - x: the number of tile columns
//   - y: the number of tile rows
func Count(width, height uint32, mode settings.TileMode) (x, y uint32) {
	if width == 0 || height == 0 {
		return 0, 0
	}
	if mode.Kind != settings.TileKindSquare || mode.Size == 0 {
		return 1, 1
	}
	return ceilDiv(width, mode.Size), ceilDiv(height, mode.Size)
}

// All iterates the tiles of an image column by column: x is the outer loop and y the inner loop.
//
// Parameters:
//   - width: image width in pixels
//   - height: image height in pixels
//   - mode: the tile mode
//
// Returns:
//   - iter.Seq[Tile]: the tile sequence
func All(width, height uint32, mode settings.TileMode) iter.Seq[Tile] {
	return func(yield func(Tile) bool) {
		cx, cy := Count(width, height, mode)
		if cx == 1 && cy == 1 {
			yield(Tile{Width: width, Height: height})
			return
		}
		size := mode.Size
		for x := range cx {
			for y := range cy {
				t := Tile{
					X:      x * size,
					Y:      y * size,
					Width:  min((x+1)*size, width) - x*size,
					Height: min((y+1)*size, height) - y*size,
				}
				if !yield(t) {
					return
				}
			}
		}
	}
}

// Tiles returns every tile of an image in the order produced by All.
//
// Parameters:
//   - width: image width in pixels
//   - height: image height in pixels
//   - mode: the tile mode
//
// Returns:
//   - []Tile: the tiles
func Tiles(width, height uint32, mode settings.TileMode) []Tile {
	cx, cy := Count(width, height, mode)
	out := make([]Tile, 0, int(cx)*int(cy))
	for t := range All(width, height, mode) {
		out = append(out, t)
	}
	return out
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}
