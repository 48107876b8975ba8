package tile

import (
	_ "embed"
	"encoding/binary"
	"unsafe"
)

// GPUExecutionContextSource is the canonical WGSL definition of the ExecutionContext struct.
// Matches GPUExecutionContext layout exactly (8 bytes).
//
//go:embed assets/execution_context.wgsl
var GPUExecutionContextSource string

// GPUExecutionContext is the per-tile uniform bound at set 2 binding 0.
// The kernel adds TilePosition to its invocation id to find the pixel it shades.
// Size: 8 bytes.
type GPUExecutionContext struct {
	TilePosition [2]uint32 // offset 0: tile origin in pixels (vec2<u32>)
}

// NewGPUExecutionContext returns the execution context for a tile.
//
// Parameters:
//   - t: the tile about to be dispatched
//
// Returns:
//   - GPUExecutionContext: the context holding the tile origin
func NewGPUExecutionContext(t Tile) GPUExecutionContext {
	return GPUExecutionContext{TilePosition: [2]uint32{t.X, t.Y}}
}

// Size returns the size of the GPUExecutionContext struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (8)
func (g *GPUExecutionContext) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUExecutionContext struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUExecutionContext) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.TilePosition[0])
	binary.LittleEndian.PutUint32(buf[4:], g.TilePosition[1])
	return buf
}
