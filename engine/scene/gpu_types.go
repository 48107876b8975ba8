package scene

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUSphereSource is the canonical WGSL definition of the Sphere struct.
// Matches GPUSphere layout exactly (32 bytes).
//
//go:embed assets/sphere.wgsl
var GPUSphereSource string

// GPUDiffuseSource is the canonical WGSL definition of the Diffuse struct.
//
//go:embed assets/diffuse.wgsl
var GPUDiffuseSource string

// GPUMetalSource is the canonical WGSL definition of the Metal struct.
//
//go:embed assets/metal.wgsl
var GPUMetalSource string

// GPUDielectricSource is the canonical WGSL definition of the Dielectric struct.
//
//go:embed assets/dielectric.wgsl
var GPUDielectricSource string

// GPUSphere is one element of the sphere storage array.
// Material holds (tag, index, 0, 0) where tag is a MaterialKind and index points into that variant's array.
// A zero tag marks the padding element of an empty array and is skipped by the kernel.
// Size: 32 bytes.
type GPUSphere struct {
	Center   [3]float32 // offset  0
	Radius   float32    // offset 12
	Material [4]uint32  // offset 16
}

// Size returns the size of the GPUSphere struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUSphere) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSphere struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSphere) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Center[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Radius))
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], g.Material[i])
	}
	return buf
}

// Ref returns the (tag, index) material reference carried by the sphere.
//
// Returns:
//   - MaterialKind: the variant tag
//   - uint32: the index into the variant's array
func (g *GPUSphere) Ref() (MaterialKind, uint32) {
	return MaterialKind(g.Material[0]), g.Material[1]
}

// GPUDiffuse is one element of the diffuse material storage array.
// Size: 16 bytes (vec3 stride).
type GPUDiffuse struct {
	Albedo [3]float32 // offset  0
	_pad   float32    // offset 12
}

// Size returns the size of the GPUDiffuse struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUDiffuse) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUDiffuse struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUDiffuse) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Albedo[i]))
	}
	return buf
}

// GPUMetal is one element of the metal material storage array.
// Size: 16 bytes.
type GPUMetal struct {
	Albedo    [3]float32 // offset  0
	Roughness float32    // offset 12
}

// Size returns the size of the GPUMetal struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUMetal) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMetal struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUMetal) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Albedo[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Roughness))
	return buf
}

// GPUDielectric is one element of the dielectric material storage array.
// Size: 4 bytes.
type GPUDielectric struct {
	IOR float32 // offset 0
}

// Size returns the size of the GPUDielectric struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (4)
func (g *GPUDielectric) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUDielectric struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUDielectric) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.IOR))
	return buf
}

// gpuElement is satisfied by pointers to the GPU array element types.
type gpuElement[T any] interface {
	*T
	Size() int
	Marshal() []byte
}

// marshalArray serializes a storage array. An empty array yields a single zeroed element
// because a zero sized buffer cannot be bound.
func marshalArray[T any, P gpuElement[T]](items []T) []byte {
	if len(items) == 0 {
		var zero T
		return make([]byte, P(&zero).Size())
	}
	var zero T
	buf := make([]byte, 0, len(items)*P(&zero).Size())
	for i := range items {
		buf = append(buf, P(&items[i]).Marshal()...)
	}
	return buf
}
