package camera

import "github.com/Carmen-Shannon/webray-go/common"

type SettingsBuilderOption func(*Settings)

// WithLookFrom sets the eye position.
//
// Parameters:
//   - x, y, z: eye position components
//
// Returns:
//   - SettingsBuilderOption: a function that sets the eye position
func WithLookFrom(x, y, z float32) SettingsBuilderOption {
	return func(s *Settings) {
		s.LookFrom = common.Vec3{x, y, z}
	}
}

// WithLookAt sets the point the camera is aimed at.
//
// Parameters:
//   - x, y, z: target position components
//
// Returns:
//   - SettingsBuilderOption: a function that sets the target
func WithLookAt(x, y, z float32) SettingsBuilderOption {
	return func(s *Settings) {
		s.LookAt = common.Vec3{x, y, z}
	}
}

// WithUp sets the camera's world up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - SettingsBuilderOption: a function that sets the up vector
func WithUp(x, y, z float32) SettingsBuilderOption {
	return func(s *Settings) {
		s.Up = common.Vec3{x, y, z}
	}
}

// WithVerticalFov sets the vertical field of view in degrees.
//
// Parameters:
//   - fov: field of view in degrees
//
// Returns:
//   - SettingsBuilderOption: a function that sets the field of view
func WithVerticalFov(fov float32) SettingsBuilderOption {
	return func(s *Settings) {
		s.VerticalFov = fov
	}
}

// WithDefocus sets the depth of field parameters.
//
// Parameters:
//   - angle: cone angle in degrees, zero disables depth of field
//   - distance: distance to the plane of perfect focus
//
// Returns:
//   - SettingsBuilderOption: a function that sets the defocus parameters
func WithDefocus(angle, distance float32) SettingsBuilderOption {
	return func(s *Settings) {
		s.DefocusAngle = angle
		s.DefocusDistance = distance
	}
}

// NewSettings creates camera Settings starting from the cover render camera
// (from (13, 2, 3) looking at the origin, 20 degree fov, 0.6 degree defocus focused at 10)
// and applies the options in order.
//
// Parameters:
//   - options: variadic list of SettingsBuilderOption functions
//
// Returns:
//   - Settings: the configured camera settings
func NewSettings(options ...SettingsBuilderOption) Settings {
	s := Settings{
		LookFrom:        common.Vec3{13, 2, 3},
		LookAt:          common.Vec3{0, 0, 0},
		Up:              common.Vec3{0, 1, 0},
		VerticalFov:     20,
		DefocusAngle:    0.6,
		DefocusDistance: 10,
	}
	for _, option := range options {
		option(&s)
	}
	return s
}
