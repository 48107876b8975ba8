package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/webray-go/engine/settings"
)

// GPUImageSource is the canonical WGSL definition of the Image struct.
// Matches GPUImage layout exactly (16 bytes).
//
//go:embed assets/image.wgsl
var GPUImageSource string

// GPUCameraSource is the canonical WGSL definition of the Camera struct.
// Matches GPUCamera layout exactly (48 bytes).
//
//go:embed assets/camera.wgsl
var GPUCameraSource string

// GPUViewportSource is the canonical WGSL definition of the Viewport struct.
// Matches GPUViewport layout exactly (96 bytes).
//
//go:embed assets/viewport.wgsl
var GPUViewportSource string

// GPUKernelConfigSource is the canonical WGSL definition of the KernelConfig struct.
// It references Image, Camera and Viewport, which must be included before it.
//
//go:embed assets/kernel_config.wgsl
var GPUKernelConfigSource string

// GPUImage is the GPU-aligned image block of the kernel config.
// Size: 16 bytes.
type GPUImage struct {
	Width   uint32 // offset  0
	Height  uint32 // offset  4
	Samples uint32 // offset  8
	Bounces uint32 // offset 12
}

// Size returns the size of the GPUImage struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUImage) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUImage struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUImage) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.put(buf)
	return buf
}

func (g *GPUImage) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], g.Width)
	binary.LittleEndian.PutUint32(buf[4:], g.Height)
	binary.LittleEndian.PutUint32(buf[8:], g.Samples)
	binary.LittleEndian.PutUint32(buf[12:], g.Bounces)
}

// GPUCamera is the GPU-aligned camera block of the kernel config.
// Size: 48 bytes (vec3 members are 16 byte aligned).
type GPUCamera struct {
	Center       [3]float32 // offset  0
	DefocusAngle float32    // offset 12
	DefocusDiskU [3]float32 // offset 16
	_pad0        float32    // offset 28
	DefocusDiskV [3]float32 // offset 32
	_pad1        float32    // offset 44
}

// Size returns the size of the GPUCamera struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUCamera) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCamera struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCamera) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.put(buf)
	return buf
}

func (g *GPUCamera) put(buf []byte) {
	putVec3(buf[0:], g.Center)
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.DefocusAngle))
	putVec3(buf[16:], g.DefocusDiskU)
	putVec3(buf[32:], g.DefocusDiskV)
}

// GPUViewport is the GPU-aligned viewport block of the kernel config.
// Size: 96 bytes.
type GPUViewport struct {
	Width     float32    // offset  0
	Height    float32    // offset  4
	_pad0     [2]float32 // offset  8
	U         [3]float32 // offset 16
	_pad1     float32
	V         [3]float32 // offset 32
	_pad2     float32
	DeltaU    [3]float32 // offset 48
	_pad3     float32
	DeltaV    [3]float32 // offset 64
	_pad4     float32
	UpperLeft [3]float32 // offset 80
	_pad5     float32
}

// Size returns the size of the GPUViewport struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUViewport) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUViewport struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUViewport) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.put(buf)
	return buf
}

func (g *GPUViewport) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Width))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Height))
	putVec3(buf[16:], g.U)
	putVec3(buf[32:], g.V)
	putVec3(buf[48:], g.DeltaU)
	putVec3(buf[64:], g.DeltaV)
	putVec3(buf[80:], g.UpperLeft)
}

// GPUKernelConfig is the uniform bound at set 1 binding 0, holding everything the kernel needs
// to generate primary rays. Matches the WGSL KernelConfig struct (see GPUKernelConfigSource).
// Size: 176 bytes.
type GPUKernelConfig struct {
	Image     GPUImage    // offset   0
	Camera    GPUCamera   // offset  16
	Viewport  GPUViewport // offset  64
	PixelZero [3]float32  // offset 160
	_pad      float32     // offset 172
}

// NewGPUKernelConfig packs the render settings and a derived camera into the config uniform layout.
//
// Parameters:
//   - rs: the render settings
//   - d: the derived camera frame returned by Solve
//
// Returns:
//   - GPUKernelConfig: the packed config
func NewGPUKernelConfig(rs settings.RenderSettings, d Derived) GPUKernelConfig {
	return GPUKernelConfig{
		Image: GPUImage{
			Width:   rs.Width,
			Height:  rs.Height,
			Samples: rs.Samples,
			Bounces: rs.Bounces,
		},
		Camera: GPUCamera{
			Center:       d.Center,
			DefocusAngle: d.DefocusAngle,
			DefocusDiskU: d.DefocusDiskU,
			DefocusDiskV: d.DefocusDiskV,
		},
		Viewport: GPUViewport{
			Width:     d.ViewportWidth,
			Height:    d.ViewportHeight,
			U:         d.ViewportU,
			V:         d.ViewportV,
			DeltaU:    d.PixelDeltaU,
			DeltaV:    d.PixelDeltaV,
			UpperLeft: d.UpperLeft,
		},
		PixelZero: d.PixelZero,
	}
}

// Size returns the size of the GPUKernelConfig struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (176)
func (g *GPUKernelConfig) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUKernelConfig struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUKernelConfig) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.Image.put(buf[0:])
	g.Camera.put(buf[16:])
	g.Viewport.put(buf[64:])
	putVec3(buf[160:], g.PixelZero)
	return buf
}

func putVec3(buf []byte, v [3]float32) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v[i]))
	}
}
