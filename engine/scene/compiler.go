package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/webray-go/common"
)

// CompiledScene is the GPU layout of a Scene: one dense array per material variant and one sphere array
// whose records reference materials by (tag, index). It is immutable once returned by Compile.
type CompiledScene struct {
	Spheres    []GPUSphere
	Diffuse    []GPUDiffuse
	Metal      []GPUMetal
	Dielectric []GPUDielectric
}

// materialRef is the resolved position of a material inside its variant array.
type materialRef struct {
	kind  MaterialKind
	index uint32
}

// Compile flattens a Scene into its GPU layout.
//
// Materials are visited in registration order and appended to the array of their variant, so the
// n-th diffuse material registered is always diffuse index n. Shapes are then visited in order and
// their material reference is resolved to a (tag, index) pair. Compiling an unchanged scene twice
// yields identical output.
//
// Parameters:
//   - s: the scene to compile
//
// Returns:
//   - *CompiledScene: the flattened scene
//   - error: a *common.ConfigError for an unresolved material reference or an out of range material parameter
func Compile(s Scene) (*CompiledScene, error) {
	materials, shapes := s.contents()

	c := &CompiledScene{Spheres: make([]GPUSphere, 0, len(shapes))}
	refs := make([]materialRef, len(materials))

	for i, m := range materials {
		field := fmt.Sprintf("materials[%d]", i)
		m, err := materialValue(m, field)
		if err != nil {
			return nil, err
		}
		if err := m.validate(field); err != nil {
			return nil, err
		}
		switch mat := m.(type) {
		case Diffuse:
			refs[i] = materialRef{MaterialKindDiffuse, uint32(len(c.Diffuse))}
			c.Diffuse = append(c.Diffuse, GPUDiffuse{Albedo: mat.Albedo})
		case Metal:
			refs[i] = materialRef{MaterialKindMetal, uint32(len(c.Metal))}
			c.Metal = append(c.Metal, GPUMetal{Albedo: mat.Albedo, Roughness: mat.Roughness})
		case Dielectric:
			refs[i] = materialRef{MaterialKindDielectric, uint32(len(c.Dielectric))}
			c.Dielectric = append(c.Dielectric, GPUDielectric{IOR: mat.IOR})
		}
	}

	for i, sh := range shapes {
		sh, err := shapeValue(sh, fmt.Sprintf("shapes[%d]", i))
		if err != nil {
			return nil, err
		}
		id := sh.MaterialRef()
		if int(id) >= len(refs) {
			return nil, common.NewConfigError(common.ErrUnresolvedMaterial, fmt.Sprintf("shapes[%d].material", i),
				"material %d is not registered (%d materials)", id, len(refs))
		}
		ref := refs[id]
		switch shape := sh.(type) {
		case Sphere:
			c.Spheres = append(c.Spheres, GPUSphere{
				Center:   shape.Center,
				Radius:   shape.Radius,
				Material: [4]uint32{uint32(ref.kind), ref.index, 0, 0},
			})
		}
	}

	return c, nil
}

// materialValue returns m as one of the value variants Diffuse, Metal or Dielectric.
// A non-nil pointer to a variant is dereferenced.
//
// Parameters:
//   - m: the registered material
//   - field: the field name reported on error
//
// Returns:
//   - Material: the value variant
//   - error: a *common.ConfigError wrapping common.ErrInvalidMaterial for nil or unknown materials
func materialValue(m Material, field string) (Material, error) {
	switch v := m.(type) {
	case Diffuse, Metal, Dielectric:
		return v, nil
	case *Diffuse:
		if v != nil {
			return *v, nil
		}
	case *Metal:
		if v != nil {
			return *v, nil
		}
	case *Dielectric:
		if v != nil {
			return *v, nil
		}
	case nil:
	default:
		return nil, common.NewConfigError(common.ErrInvalidMaterial, field, "unsupported material type %T", m)
	}
	return nil, common.NewConfigError(common.ErrInvalidMaterial, field, "material is nil")
}

// shapeValue returns sh as a value Sphere. A non-nil *Sphere is dereferenced.
//
// Parameters:
//   - sh: the registered shape
//   - field: the field name reported on error
//
// Returns:
//   - Shape: the value shape
//   - error: a *common.ConfigError wrapping common.ErrInvalidShape for nil or unknown shapes
func shapeValue(sh Shape, field string) (Shape, error) {
	switch v := sh.(type) {
	case Sphere:
		return v, nil
	case *Sphere:
		if v != nil {
			return *v, nil
		}
	case nil:
	default:
		return nil, common.NewConfigError(common.ErrInvalidShape, field, "unsupported shape type %T", sh)
	}
	return nil, common.NewConfigError(common.ErrInvalidShape, field, "shape is nil")
}

// SphereBytes returns the marshaled sphere storage array, never empty.
func (c *CompiledScene) SphereBytes() []byte { return marshalArray(c.Spheres) }

// DiffuseBytes returns the marshaled diffuse storage array, never empty.
func (c *CompiledScene) DiffuseBytes() []byte { return marshalArray(c.Diffuse) }

// MetalBytes returns the marshaled metal storage array, never empty.
func (c *CompiledScene) MetalBytes() []byte { return marshalArray(c.Metal) }

// DielectricBytes returns the marshaled dielectric storage array, never empty.
func (c *CompiledScene) DielectricBytes() []byte { return marshalArray(c.Dielectric) }

// Resolve follows a compiled sphere's material reference.
//
// Parameters:
//   - i: the sphere index
//
// Returns:
//   - any: the GPUDiffuse, GPUMetal or GPUDielectric record, or nil if the reference is out of bounds
func (c *CompiledScene) Resolve(i int) any {
	if i < 0 || i >= len(c.Spheres) {
		return nil
	}
	kind, idx := c.Spheres[i].Ref()
	switch kind {
	case MaterialKindDiffuse:
		if int(idx) < len(c.Diffuse) {
			return c.Diffuse[idx]
		}
	case MaterialKindMetal:
		if int(idx) < len(c.Metal) {
			return c.Metal[idx]
		}
	case MaterialKindDielectric:
		if int(idx) < len(c.Dielectric) {
			return c.Dielectric[idx]
		}
	}
	return nil
}
