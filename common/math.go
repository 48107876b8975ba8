package common

import (
	"github.com/chewxy/math32"
)

// Add returns the component-wise sum v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns the component-wise difference v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns v multiplied by the scalar s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Div returns v divided by the scalar s. Dividing by zero yields infinities, the caller is responsible for guarding s.
func (v Vec3) Div(s float32) Vec3 {
	return Vec3{v[0] / s, v[1] / s, v[2] / s}
}

// Mul returns the component-wise product of v and o.
func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Cross returns the right-handed cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// LengthSquared returns the squared euclidean length of v.
func (v Vec3) LengthSquared() float32 {
	return v.Dot(v)
}

// Length returns the euclidean length of v.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.LengthSquared())
}

// Normalize returns v scaled to unit length.
// A zero vector is returned unchanged, callers that require a direction must check NearZero first.
//
// Returns:
//   - Vec3: the unit length vector, or the zero vector
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Div(l)
}

// NearZero reports whether every component of v has a magnitude below eps.
//
// Parameters:
//   - eps: the per-component tolerance
//
// Returns:
//   - bool: true if v is within eps of the zero vector
func (v Vec3) NearZero(eps float32) bool {
	return math32.Abs(v[0]) < eps && math32.Abs(v[1]) < eps && math32.Abs(v[2]) < eps
}

// Radians converts an angle in degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// RoundUp rounds n up to the next multiple of align.
//
// Parameters:
//   - n: the value to round
//   - align: the alignment, must be greater than zero
//
// Returns:
//   - uint64: the smallest multiple of align that is greater than or equal to n
func RoundUp(n, align uint64) uint64 {
	return (n + align - 1) / align * align
}
