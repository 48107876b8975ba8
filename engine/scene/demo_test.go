package scene

import (
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverScene(t *testing.T) {
	s := CoverScene(rand.New(rand.NewPCG(42, 42)))
	shapes := s.Shapes()
	materials := s.Materials()

	// Ground, at most 22x22 small spheres, and three feature spheres, one material each.
	require.GreaterOrEqual(t, len(shapes), 4)
	assert.LessOrEqual(t, len(shapes), 1+22*22+3)
	assert.Len(t, materials, len(shapes))

	assert.Equal(t, Sphere{Center: common.Vec3{0, -1000, 0}, Radius: 1000, Material: 0}, shapes[0])
	last := shapes[len(shapes)-1].(Sphere)
	assert.Equal(t, common.Vec3{4, 1, 0}, last.Center)
	assert.Equal(t, Metal{Albedo: common.Vec3{0.7, 0.6, 0.5}}, materials[last.Material])

	for _, sh := range shapes[1 : len(shapes)-3] {
		sp := sh.(Sphere)
		assert.Equal(t, float32(0.2), sp.Radius)
		assert.Greater(t, sp.Center.Sub(common.Vec3{4, 0.2, 0}).Length(), float32(0.9))
	}

	_, err := Compile(s)
	assert.NoError(t, err)
}

func TestCoverSceneSeeded(t *testing.T) {
	a := CoverScene(rand.New(rand.NewPCG(5, 6)))
	b := CoverScene(rand.New(rand.NewPCG(5, 6)))
	assert.Equal(t, a.Shapes(), b.Shapes())
	assert.Equal(t, a.Materials(), b.Materials())
}

func TestCoverSettings(t *testing.T) {
	rs, cs := CoverSettings()
	assert.Equal(t, uint32(1920), rs.Width)
	assert.Equal(t, uint32(1080), rs.Height)
	assert.Equal(t, common.Vec3{13, 2, 3}, cs.LookFrom)
	assert.Equal(t, float32(20), cs.VerticalFov)
}
