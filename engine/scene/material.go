package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/webray-go/common"
)

// MaterialKind is the variant tag stored in every compiled sphere record.
// The numeric values are part of the kernel contract.
type MaterialKind uint32

const (
	// MaterialKindDiffuse tags a Lambertian material stored in the diffuse array.
	MaterialKindDiffuse MaterialKind = iota + 1
	// MaterialKindMetal tags a reflective material stored in the metal array.
	MaterialKindMetal
	// MaterialKindDielectric tags a refractive material stored in the dielectric array.
	MaterialKindDielectric
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialKindDiffuse:
		return "diffuse"
	case MaterialKindMetal:
		return "metal"
	case MaterialKindDielectric:
		return "dielectric"
	default:
		return fmt.Sprintf("MaterialKind(%d)", uint32(k))
	}
}

// Material is the closed set of surface materials: Diffuse, Metal and Dielectric.
type Material interface {
	// Kind returns the variant tag of the material.
	//
	// Returns:
	//   - MaterialKind: the variant tag
	Kind() MaterialKind

	// validate reports an authoring error for out of range parameters.
	validate(field string) error
}

// Diffuse is a Lambertian surface that scatters light in random directions around the normal.
type Diffuse struct {
	// Albedo is the linear RGB reflectance.
	Albedo common.Vec3
}

// Metal is a specular reflector. Roughness fuzzes the reflected direction, 0 is a perfect mirror.
type Metal struct {
	// Albedo is the linear RGB reflectance.
	Albedo common.Vec3
	// Roughness is in [0, 1].
	Roughness float32
}

// Dielectric is a clear refractive material such as glass or water.
type Dielectric struct {
	// IOR is the index of refraction relative to the surrounding medium.
	IOR float32
}

var (
	_ Material = Diffuse{}
	_ Material = Metal{}
	_ Material = Dielectric{}
)

func (Diffuse) Kind() MaterialKind    { return MaterialKindDiffuse }
func (Metal) Kind() MaterialKind      { return MaterialKindMetal }
func (Dielectric) Kind() MaterialKind { return MaterialKindDielectric }

func (Diffuse) validate(string) error { return nil }

func (m Metal) validate(field string) error {
	if !(m.Roughness >= 0 && m.Roughness <= 1) {
		return common.NewConfigError(common.ErrInvalidMaterial, field, "metal roughness %g is outside [0, 1]", m.Roughness)
	}
	return nil
}

func (m Dielectric) validate(field string) error {
	if !(m.IOR > 0) {
		return common.NewConfigError(common.ErrInvalidMaterial, field, "dielectric index of refraction %g must be greater than zero", m.IOR)
	}
	return nil
}
