// Package camera rebuilds a drawable camera frame from parsed
// viewpoint intent. Reconstruction is total except for one case: a
// viewpoint without both an eye position and a view direction cannot
// describe a camera at all. Everything else (missing up vector,
// missing or implausible field of view, degenerate direction) is
// absorbed by defaults so downstream consumers never see a partial
// transform.
package camera

import (
	"errors"
	"math"

	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/types"
)

// ErrIncompleteCamera is returned when the viewpoint lacks an eye
// position or a view direction. It is the only way Reconstruct fails.
var ErrIncompleteCamera = errors.New("camera: viewpoint lacks eye position or view direction")

// ErrApplyDisabled marks pushing a reconstructed transform into the
// host view as an off-by-default capability. The basis conventions of
// viewpoint documents have not been validated against live host view
// conventions, and a wrong guess would disorient the user worse than
// not moving the camera.
var ErrApplyDisabled = errors.New("camera: applying a reconstructed transform to the host view is disabled")

// fovEpsilon bounds the normalized field of view away from the
// degenerate ends of (0, pi).
const fovEpsilon = 1e-4

// DefaultFieldOfView is assumed when a viewpoint carries none.
const DefaultFieldOfView = math.Pi / 3

// Reconstruct turns parsed viewpoint intent into a complete camera
// transform:
//
//   - target = eye + view direction
//   - up defaults to world up and is orthonormalized against the view
//     direction, substituting fallback axes on degenerate pairs
//   - field of view beyond one full radian circle is taken as degrees,
//     then clamped inside (0, pi)
//   - distance = |eye - target|, falling back to |view direction| and
//     then 1.0 when degenerate
func Reconstruct(p types.ParsedViewpoint) (types.CameraTransform, error) {
	if !p.HasCameraPose() {
		return types.CameraTransform{}, ErrIncompleteCamera
	}

	eye := *p.Eye
	dir := *p.ViewDirection
	target := eye.Add(dir)

	up := geom.WorldUp
	if p.Up != nil {
		up = *p.Up
	}

	fov := DefaultFieldOfView
	if p.FieldOfView != nil {
		fov = normalizeFOV(*p.FieldOfView)
	}

	distance := eye.Sub(target).Length()
	if distance < geom.Epsilon {
		distance = dir.Length()
	}
	if distance < geom.Epsilon {
		distance = 1.0
	}

	return types.CameraTransform{
		Eye:                eye,
		Target:             target,
		Up:                 stableUp(up, dir),
		FieldOfViewRadians: fov,
		Distance:           distance,
	}, nil
}

// Apply would push a reconstructed transform into the host's current
// view. It refuses until the basis mapping is validated against a real
// host; callers surface the refusal as information, not failure.
func Apply(types.CameraTransform) error {
	return ErrApplyDisabled
}

// stableUp orthonormalizes up against the view direction, walking down
// the fallback axes when a pair degenerates. With a zero direction
// there is no basis to build; world up is as good as anything.
func stableUp(up, dir geom.Vec3) geom.Vec3 {
	if u, ok := geom.Orthonormalize(up, dir); ok {
		return u
	}
	if u, ok := geom.Orthonormalize(geom.WorldUp, dir); ok {
		return u
	}
	if u, ok := geom.Orthonormalize(geom.FallbackUp, dir); ok {
		return u
	}
	return geom.WorldUp
}

// normalizeFOV maps a raw field-of-view scalar into (0, pi). A value
// greater than one full radian circle can only have been authored in
// degrees, so it is converted before clamping.
func normalizeFOV(raw float64) float64 {
	if math.IsNaN(raw) {
		return DefaultFieldOfView
	}
	if raw > 2*math.Pi {
		raw = raw * math.Pi / 180
	}
	return math.Max(fovEpsilon, math.Min(raw, math.Pi-fovEpsilon))
}
