package scene

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/camera"
	"github.com/Carmen-Shannon/webray-go/engine/settings"
)

// CoverSettings returns the render and camera settings of the cover image:
// 1920x1080, 64 samples, 12 bounces, 256 pixel tiles, viewed from (13, 2, 3) with a 20 degree fov.
//
// Returns:
//   - settings.RenderSettings: the cover render settings
//   - camera.Settings: the cover camera
func CoverSettings() (settings.RenderSettings, camera.Settings) {
	return settings.NewRenderSettings(), camera.NewSettings()
}

// CoverScene builds the cover scene: a large ground sphere, a jittered 22x22 grid of small
// spheres with random materials, and three large feature spheres (glass, matte and polished metal).
// The layout is fully determined by rng.
//
// Parameters:
//   - rng: the random source used to place and color the small spheres
//
// Returns:
//   - Scene: the populated scene
func CoverScene(rng *rand.Rand) Scene {
	s := NewScene("cover")

	ground := s.RegisterMaterial(Diffuse{Albedo: common.Vec3{0.5, 0.5, 0.5}})
	s.RegisterShape(Sphere{Center: common.Vec3{0, -1000, 0}, Radius: 1000, Material: ground})

	clearance := common.Vec3{4, 0.2, 0}
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			choose := rng.Float64()
			center := common.Vec3{
				float32(a) + 0.9*rng.Float32(),
				0.2,
				float32(b) + 0.9*rng.Float32(),
			}
			if center.Sub(clearance).Length() <= 0.9 {
				continue
			}

			var m Material
			switch {
			case choose < 0.8:
				m = Diffuse{Albedo: randomColor(rng).Mul(randomColor(rng))}
			case choose < 0.95:
				m = Metal{Albedo: randomColorRange(rng, 0.5, 1), Roughness: 0.5 * rng.Float32()}
			default:
				m = Dielectric{IOR: 1.5}
			}
			s.RegisterShape(Sphere{Center: center, Radius: 0.2, Material: s.RegisterMaterial(m)})
		}
	}

	glass := s.RegisterMaterial(Dielectric{IOR: 1.5})
	s.RegisterShape(Sphere{Center: common.Vec3{0, 1, 0}, Radius: 1, Material: glass})

	matte := s.RegisterMaterial(Diffuse{Albedo: common.Vec3{0.4, 0.2, 0.1}})
	s.RegisterShape(Sphere{Center: common.Vec3{-4, 1, 0}, Radius: 1, Material: matte})

	polished := s.RegisterMaterial(Metal{Albedo: common.Vec3{0.7, 0.6, 0.5}, Roughness: 0})
	s.RegisterShape(Sphere{Center: common.Vec3{4, 1, 0}, Radius: 1, Material: polished})

	return s
}

func randomColor(rng *rand.Rand) common.Vec3 {
	return common.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}
}

func randomColorRange(rng *rand.Rand, lo, hi float32) common.Vec3 {
	return common.Vec3{
		lo + (hi-lo)*rng.Float32(),
		lo + (hi-lo)*rng.Float32(),
		lo + (hi-lo)*rng.Float32(),
	}
}
