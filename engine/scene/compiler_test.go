package scene

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedScene() Scene {
	s := NewScene("mixed")
	m0 := s.RegisterMaterial(Metal{Albedo: common.Vec3{0.8, 0.8, 0.8}, Roughness: 0.1})
	m1 := s.RegisterMaterial(Diffuse{Albedo: common.Vec3{0.1, 0.2, 0.5}})
	m2 := s.RegisterMaterial(Dielectric{IOR: 1.5})
	m3 := s.RegisterMaterial(Diffuse{Albedo: common.Vec3{0.8, 0.8, 0}})
	m4 := s.RegisterMaterial(Metal{Albedo: common.Vec3{0.8, 0.6, 0.2}, Roughness: 1})

	s.RegisterShape(Sphere{Center: common.Vec3{0, -100.5, -1}, Radius: 100, Material: m3})
	s.RegisterShape(Sphere{Center: common.Vec3{0, 0, -1}, Radius: 0.5, Material: m1})
	s.RegisterShape(Sphere{Center: common.Vec3{-1, 0, -1}, Radius: 0.5, Material: m2})
	s.RegisterShape(Sphere{Center: common.Vec3{-1, 0, -1}, Radius: -0.4, Material: m2})
	s.RegisterShape(Sphere{Center: common.Vec3{1, 0, -1}, Radius: 0.5, Material: m4})
	s.RegisterShape(Sphere{Center: common.Vec3{2, 0, -1}, Radius: 0.5, Material: m0})
	return s
}

func TestCompileCountsAndReferences(t *testing.T) {
	c, err := Compile(mixedScene())
	require.NoError(t, err)

	assert.Len(t, c.Diffuse, 2)
	assert.Len(t, c.Metal, 2)
	assert.Len(t, c.Dielectric, 1)
	assert.Len(t, c.Spheres, 6)

	for i := range c.Spheres {
		assert.NotNil(t, c.Resolve(i), "sphere %d reference out of bounds", i)
	}

	// Variant indices follow registration order within each variant.
	assert.Equal(t, [4]uint32{uint32(MaterialKindDiffuse), 1, 0, 0}, c.Spheres[0].Material)
	assert.Equal(t, [4]uint32{uint32(MaterialKindDiffuse), 0, 0, 0}, c.Spheres[1].Material)
	assert.Equal(t, [4]uint32{uint32(MaterialKindDielectric), 0, 0, 0}, c.Spheres[2].Material)
	assert.Equal(t, [4]uint32{uint32(MaterialKindMetal), 1, 0, 0}, c.Spheres[4].Material)
	assert.Equal(t, [4]uint32{uint32(MaterialKindMetal), 0, 0, 0}, c.Spheres[5].Material)

	assert.Equal(t, GPUMetal{Albedo: [3]float32{0.8, 0.6, 0.2}, Roughness: 1}, c.Resolve(4))
	assert.Equal(t, GPUDielectric{IOR: 1.5}, c.Resolve(2))
	assert.Nil(t, c.Resolve(6))
}

func TestCompileRandomScenesStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 20 {
		s := NewScene("random")
		n := 1 + rng.IntN(30)
		counts := map[MaterialKind]int{}
		for range n {
			var m Material
			switch rng.IntN(3) {
			case 0:
				m = Diffuse{Albedo: common.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}}
			case 1:
				m = Metal{Albedo: common.Vec3{1, 1, 1}, Roughness: rng.Float32()}
			default:
				m = Dielectric{IOR: 1 + rng.Float32()}
			}
			counts[m.Kind()]++
			s.RegisterMaterial(m)
		}
		shapes := rng.IntN(50)
		for range shapes {
			s.RegisterShape(Sphere{Radius: 1, Material: MaterialID(rng.IntN(n))})
		}

		c, err := Compile(s)
		require.NoError(t, err, "trial %d", trial)
		assert.Len(t, c.Diffuse, counts[MaterialKindDiffuse])
		assert.Len(t, c.Metal, counts[MaterialKindMetal])
		assert.Len(t, c.Dielectric, counts[MaterialKindDielectric])
		assert.Len(t, c.Spheres, shapes)
		for i := range c.Spheres {
			require.NotNil(t, c.Resolve(i), "trial %d sphere %d", trial, i)
		}
	}
}

func TestCompileDeterministic(t *testing.T) {
	s := CoverScene(rand.New(rand.NewPCG(1, 2)))
	a, err := Compile(s)
	require.NoError(t, err)
	b, err := Compile(s)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, a.SphereBytes(), b.SphereBytes())
}

func TestCompileUnresolvedMaterial(t *testing.T) {
	s := NewScene("broken", WithMaterials(Diffuse{}), WithShapes(
		Sphere{Radius: 1, Material: 0},
		Sphere{Radius: 1, Material: 3},
	))

	c, err := Compile(s)
	assert.Nil(t, c)
	var cfg *common.ConfigError
	require.True(t, errors.As(err, &cfg))
	assert.Equal(t, "shapes[1].material", cfg.Field)
	assert.ErrorIs(t, err, common.ErrUnresolvedMaterial)
}

func TestCompileInvalidMaterial(t *testing.T) {
	tests := []Material{
		Metal{Roughness: 1.5},
		Metal{Roughness: -0.1},
		Dielectric{IOR: 0},
	}
	for _, m := range tests {
		_, err := Compile(NewScene("bad", WithMaterials(m)))
		assert.ErrorIs(t, err, common.ErrInvalidMaterial, "material %#v", m)
	}
}

func TestCompilePointerVariants(t *testing.T) {
	byValue := NewScene("values",
		WithMaterials(Diffuse{Albedo: common.Vec3{0.1, 0.2, 0.3}}, Metal{Albedo: common.Vec3{0.8, 0.8, 0.8}, Roughness: 0.5}, Dielectric{IOR: 1.5}),
		WithShapes(Sphere{Center: common.Vec3{0, 1, 0}, Radius: 1, Material: 1}, Sphere{Center: common.Vec3{2, 1, 0}, Radius: -0.9, Material: 2}),
	)
	byPointer := NewScene("pointers",
		WithMaterials(&Diffuse{Albedo: common.Vec3{0.1, 0.2, 0.3}}, &Metal{Albedo: common.Vec3{0.8, 0.8, 0.8}, Roughness: 0.5}, &Dielectric{IOR: 1.5}),
		WithShapes(&Sphere{Center: common.Vec3{0, 1, 0}, Radius: 1, Material: 1}, Sphere{Center: common.Vec3{2, 1, 0}, Radius: -0.9, Material: 2}),
	)

	want, err := Compile(byValue)
	require.NoError(t, err)
	got, err := Compile(byPointer)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.Len(t, got.Spheres, 2)
	assert.Equal(t, GPUMetal{Albedo: common.Vec3{0.8, 0.8, 0.8}, Roughness: 0.5}, got.Resolve(0))
	assert.Equal(t, GPUDielectric{IOR: 1.5}, got.Resolve(1))
}

func TestCompileRejectsNilEntries(t *testing.T) {
	var nilMetal *Metal
	var nilSphere *Sphere

	tests := []struct {
		name  string
		scene func() Scene
		want  error
		field string
	}{
		{"nil material", func() Scene {
			s := NewScene("s")
			s.RegisterMaterial(nil)
			return s
		}, common.ErrInvalidMaterial, "materials[0]"},
		{"nil material pointer", func() Scene {
			return NewScene("s", WithMaterials(Diffuse{}, nilMetal))
		}, common.ErrInvalidMaterial, "materials[1]"},
		{"invalid material pointer", func() Scene {
			return NewScene("s", WithMaterials(&Metal{Roughness: 2}))
		}, common.ErrInvalidMaterial, "materials[0]"},
		{"nil shape", func() Scene {
			s := NewScene("s", WithMaterials(Diffuse{}))
			s.RegisterShape(nil)
			return s
		}, common.ErrInvalidShape, "shapes[0]"},
		{"nil shape pointer", func() Scene {
			return NewScene("s", WithMaterials(Diffuse{}), WithShapes(Sphere{Radius: 1}, nilSphere))
		}, common.ErrInvalidShape, "shapes[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c *CompiledScene
			var err error
			require.NotPanics(t, func() { c, err = Compile(tt.scene()) })
			assert.Nil(t, c)
			require.ErrorIs(t, err, tt.want)

			var cfgErr *common.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestCompileConsistentWhileRegistering(t *testing.T) {
	s := NewScene("growing")
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 2000 {
			id := s.RegisterMaterial(Diffuse{Albedo: common.Vec3{float32(i) / 2000, 0, 0}})
			s.RegisterShape(Sphere{Radius: 1, Material: id})
		}
	}()

	for {
		select {
		case <-done:
			c, err := Compile(s)
			require.NoError(t, err)
			assert.Len(t, c.Spheres, 2000)
			return
		default:
			c, err := Compile(s)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(c.Spheres), len(c.Diffuse))
		}
	}
}

func TestCompileHollowDielectric(t *testing.T) {
	s := NewScene("shell")
	glass := s.RegisterMaterial(Dielectric{IOR: 1.5})
	s.RegisterShape(Sphere{Center: common.Vec3{0, 1, 0}, Radius: 1, Material: glass})
	s.RegisterShape(Sphere{Center: common.Vec3{0, 1, 0}, Radius: -0.9, Material: glass})

	c, err := Compile(s)
	require.NoError(t, err)
	require.Len(t, c.Spheres, 2)
	assert.Equal(t, float32(-0.9), c.Spheres[1].Radius)
}

func TestEmptyArraysStillBindable(t *testing.T) {
	c, err := Compile(NewScene("empty"))
	require.NoError(t, err)

	assert.Len(t, c.SphereBytes(), 32)
	assert.Len(t, c.DiffuseBytes(), 16)
	assert.Len(t, c.MetalBytes(), 16)
	assert.Len(t, c.DielectricBytes(), 4)
	assert.Equal(t, make([]byte, 32), c.SphereBytes())
}

func TestGPUTypeLayouts(t *testing.T) {
	assert.Equal(t, 32, (&GPUSphere{}).Size())
	assert.Equal(t, 16, (&GPUDiffuse{}).Size())
	assert.Equal(t, 16, (&GPUMetal{}).Size())
	assert.Equal(t, 4, (&GPUDielectric{}).Size())

	sp := GPUSphere{Center: [3]float32{1, 2, 3}, Radius: -0.5, Material: [4]uint32{2, 7, 0, 0}}
	buf := sp.Marshal()
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
	assert.Equal(t, float32(-0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[16:]))
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(buf[20:]))

	c, err := Compile(mixedScene())
	require.NoError(t, err)
	assert.Len(t, c.SphereBytes(), 6*32)
	metal := c.MetalBytes()
	assert.Len(t, metal, 32)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(metal[28:])))
}
