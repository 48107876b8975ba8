package scene

import "github.com/Carmen-Shannon/webray-go/common"

// MaterialID identifies a registered material by its registration position, starting at zero.
type MaterialID uint32

// Shape is the closed set of renderable primitives. Only spheres are supported.
type Shape interface {
	// MaterialRef returns the material the shape is rendered with.
	//
	// Returns:
	//   - MaterialID: the referenced material
	MaterialRef() MaterialID

	shape()
}

// Sphere is a sphere primitive. A negative Radius flips the surface normal inward,
// which is used inside a dielectric sphere to model a hollow glass shell.
type Sphere struct {
	Center   common.Vec3
	Radius   float32
	Material MaterialID
}

var _ Shape = Sphere{}

func (s Sphere) MaterialRef() MaterialID { return s.Material }

func (Sphere) shape() {}
