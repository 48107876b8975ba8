// Package camera derives the ray generation frame of a thin-lens pinhole camera from user settings.
// Solving is a pure function of the render resolution and the camera settings, it performs no I/O.
package camera

import (
	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/settings"
	"github.com/chewxy/math32"
)

// degenerateEpsilon is the magnitude below which a direction or cross product is treated as zero.
const degenerateEpsilon = 1e-6

// Settings is the user facing camera description.
type Settings struct {
	// LookFrom is the eye position in world space.
	LookFrom common.Vec3
	// LookAt is the point the camera is aimed at. Must differ from LookFrom.
	LookAt common.Vec3
	// Up is the world up direction used to orient the camera. Must not be parallel to the view direction.
	Up common.Vec3
	// VerticalFov is the vertical field of view in degrees, in the open range (0, 180).
	VerticalFov float32
	// DefocusAngle is the cone angle in degrees of rays through each pixel. Zero disables depth of field.
	DefocusAngle float32
	// DefocusDistance is the distance from LookFrom to the plane of perfect focus. Must be greater than zero.
	DefocusDistance float32
}

// Derived is the camera frame consumed by the kernel.
// U, V and W form a right-handed orthonormal basis where W points away from the view direction.
type Derived struct {
	Center common.Vec3

	U common.Vec3
	V common.Vec3
	W common.Vec3

	ViewportWidth  float32
	ViewportHeight float32
	ViewportU      common.Vec3
	ViewportV      common.Vec3
	PixelDeltaU    common.Vec3
	PixelDeltaV    common.Vec3
	UpperLeft      common.Vec3
	PixelZero      common.Vec3

	DefocusAngle  float32
	DefocusRadius float32
	DefocusDiskU  common.Vec3
	DefocusDiskV  common.Vec3
}

// Solve computes the derived camera frame for an image of rs.Width by rs.Height pixels.
//
// Inputs that would produce NaNs or a collapsed basis are rejected with a *common.ConfigError:
// a zero resolution, a field of view outside (0, 180), a non-positive focus distance,
// LookFrom equal to LookAt, and an Up vector parallel to the view direction.
//
// Parameters:
//   - rs: the render settings providing the output resolution
//   - cs: the camera settings
//
// Returns:
//   - Derived: the derived camera frame
//   - error: a *common.ConfigError describing the first invalid input, or nil
func Solve(rs settings.RenderSettings, cs Settings) (Derived, error) {
	if err := validate(rs, cs); err != nil {
		return Derived{}, err
	}

	width := float32(rs.Width)
	height := float32(rs.Height)

	h := math32.Tan(common.Radians(cs.VerticalFov) / 2)
	viewportHeight := 2 * h * cs.DefocusDistance
	viewportWidth := viewportHeight * (width / height)

	w := cs.LookFrom.Sub(cs.LookAt).Normalize()
	u := cs.Up.Cross(w).Normalize()
	v := w.Cross(u)

	viewportU := u.Scale(viewportWidth)
	viewportV := v.Scale(-viewportHeight)
	deltaU := viewportU.Div(width)
	deltaV := viewportV.Div(height)

	upperLeft := cs.LookFrom.
		Sub(w.Scale(cs.DefocusDistance)).
		Sub(viewportU.Scale(0.5)).
		Sub(viewportV.Scale(0.5))
	pixelZero := upperLeft.Add(deltaU.Add(deltaV).Scale(0.5))

	defocusRadius := cs.DefocusDistance * math32.Tan(common.Radians(cs.DefocusAngle/2))

	return Derived{
		Center:         cs.LookFrom,
		U:              u,
		V:              v,
		W:              w,
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
		ViewportU:      viewportU,
		ViewportV:      viewportV,
		PixelDeltaU:    deltaU,
		PixelDeltaV:    deltaV,
		UpperLeft:      upperLeft,
		PixelZero:      pixelZero,
		DefocusAngle:   cs.DefocusAngle,
		DefocusRadius:  defocusRadius,
		DefocusDiskU:   u.Scale(defocusRadius),
		DefocusDiskV:   v.Scale(defocusRadius),
	}, nil
}

func validate(rs settings.RenderSettings, cs Settings) error {
	if rs.Width == 0 || rs.Height == 0 {
		return common.NewConfigError(common.ErrInvalidSettings, "render_settings", "resolution %dx%d has no pixels", rs.Width, rs.Height)
	}
	if !(cs.VerticalFov > 0 && cs.VerticalFov < 180) {
		return common.NewConfigError(common.ErrDegenerateCamera, "camera.v_fov", "%g is outside (0, 180)", cs.VerticalFov)
	}
	if !(cs.DefocusDistance > 0) {
		return common.NewConfigError(common.ErrDegenerateCamera, "camera.dof_distance", "%g must be greater than zero", cs.DefocusDistance)
	}
	view := cs.LookFrom.Sub(cs.LookAt)
	if view.NearZero(degenerateEpsilon) {
		return common.NewConfigError(common.ErrDegenerateCamera, "camera.look_at", "look_at %v equals look_from", cs.LookAt)
	}
	if cs.Up.Cross(view.Normalize()).NearZero(degenerateEpsilon) {
		return common.NewConfigError(common.ErrDegenerateCamera, "camera.v_up", "up %v is parallel to the view direction", cs.Up)
	}
	return nil
}
