package types //nolint:revive // types is a valid package name

import "github.com/glasswing-io/sightline/geom"

// CameraTransform is a fully-determined camera frame rebuilt from a
// parsed viewpoint. Unlike ParsedViewpoint, nothing here is optional:
// every field has been defaulted, normalized, or clamped.
type CameraTransform struct {
	// Eye is the camera position.
	Eye geom.Vec3 `json:"eye" yaml:"eye"`
	// Target is the look-at point, eye + view direction.
	Target geom.Vec3 `json:"target" yaml:"target"`
	// Up is the orthonormalized up vector.
	Up geom.Vec3 `json:"up" yaml:"up"`
	// FieldOfViewRadians is the normalized field of view, always inside
	// the open interval (0, pi).
	FieldOfViewRadians float64 `json:"field_of_view_radians" yaml:"field_of_view_radians"`
	// Distance is the eye-to-target distance, always positive.
	Distance float64 `json:"distance" yaml:"distance"`
}
