// package common contains common types that are used throughout the renderer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"strconv"
	"strings"
)

// Vec3 is a three component float32 vector used for positions, directions and linear RGB colors.
// Its memory layout matches the first twelve bytes of a WGSL vec3<f32>.
type Vec3 [3]float32

// X returns the first component of the vector.
func (v Vec3) X() float32 { return v[0] }

// Y returns the second component of the vector.
func (v Vec3) Y() float32 { return v[1] }

// Z returns the third component of the vector.
func (v Vec3) Z() float32 { return v[2] }

// ParseHexColor parses a "#rrggbb" or "#rgb" hex string into a linear [0, 1] RGB Vec3.
// The leading '#' is optional. Short forms expand each digit, so "#f80" is equal to "#ff8800".
//
// Parameters:
//   - s: the hex color string
//
// Returns:
//   - Vec3: the parsed color with each channel divided by 255
//   - error: an error if the string is not a valid 3 or 6 digit hex color
func ParseHexColor(s string) (Vec3, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return Vec3{}, fmt.Errorf("invalid hex color %q: expected 3 or 6 digits", s)
	}

	var out Vec3
	for i := range 3 {
		c, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Vec3{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		out[i] = float32(c) / 255
	}
	return out, nil
}

// HexColor formats a linear [0, 1] RGB Vec3 as a "#rrggbb" string, clamping each channel.
//
// Parameters:
//   - c: the color to format
//
// Returns:
//   - string: the six digit hex representation
func HexColor(c Vec3) string {
	var b strings.Builder
	b.WriteByte('#')
	for _, ch := range c {
		v := min(max(ch, 0), 1)
		fmt.Fprintf(&b, "%02x", uint8(v*255+0.5))
	}
	return b.String()
}
