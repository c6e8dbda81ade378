// Package geom provides the vector and bounding-box math used when
// rebuilding camera frames from viewpoint documents: 3-component
// vectors, axis-aligned boxes, and the basis helpers for validating
// an up/forward pair.
package geom

import "math"

// Epsilon is the tolerance below which lengths are treated as zero.
const Epsilon = 1e-9

// WorldUp is the canonical up axis assumed when a viewpoint omits one.
var WorldUp = Vec3{X: 0, Y: 1, Z: 0}

// FallbackUp is the substitute axis used when a camera's up vector is
// parallel to its view direction and WorldUp is too.
var FallbackUp = Vec3{X: 0, Y: 0, Z: 1}

// WorldForward is the reference forward axis for bearing calculations.
var WorldForward = Vec3{X: 0, Y: 0, Z: -1}

// Vec3 is a 3-component vector in host model space.
type Vec3 struct {
	X float64 `json:"x" yaml:"x" msgpack:"x"`
	Y float64 `json:"y" yaml:"y" msgpack:"y"`
	Z float64 `json:"z" yaml:"z" msgpack:"z"`
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product of v and w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// IsZero reports whether v has no usable direction. NaN components
// count as zero so malformed input never propagates a direction.
func (v Vec3) IsZero() bool {
	if v.hasNaN() {
		return true
	}
	return v.Length() < Epsilon
}

// Normalize returns v scaled to unit length. The zero vector (and any
// vector with NaN components) normalizes to the zero vector rather
// than dividing by zero.
func (v Vec3) Normalize() Vec3 {
	if v.IsZero() {
		return Vec3{}
	}
	return v.Scale(1 / v.Length())
}

// AlmostEqual reports whether v and w agree within tol per component.
func (v Vec3) AlmostEqual(w Vec3, tol float64) bool {
	return math.Abs(v.X-w.X) <= tol &&
		math.Abs(v.Y-w.Y) <= tol &&
		math.Abs(v.Z-w.Z) <= tol
}

func (v Vec3) hasNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// SignedAngle returns the angle from a to b about axis, in radians,
// positive when the rotation follows the right-hand rule around the
// axis. A zero axis yields 0.
func SignedAngle(a, b, axis Vec3) float64 {
	n := axis.Normalize()
	if n.IsZero() {
		return 0
	}
	return math.Atan2(a.Cross(b).Dot(n), a.Dot(b))
}

// Orthonormalize removes the forward component from up and normalizes
// the remainder. It reports false when the pair is degenerate (either
// vector unusable, or up parallel to forward) so the caller can
// substitute a fallback axis.
func Orthonormalize(up, forward Vec3) (Vec3, bool) {
	f := forward.Normalize()
	if f.IsZero() || up.IsZero() {
		return Vec3{}, false
	}
	u := up.Sub(f.Scale(up.Dot(f)))
	if u.Length() < Epsilon {
		return Vec3{}, false
	}
	return u.Normalize(), true
}

// Box is an axis-aligned bounding box in host model space.
type Box struct {
	Min Vec3 `json:"min" yaml:"min" msgpack:"min"`
	Max Vec3 `json:"max" yaml:"max" msgpack:"max"`
}

// Center returns the midpoint of the box.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// MaxDim returns the largest edge length of the box.
func (b Box) MaxDim() float64 {
	d := b.Max.Sub(b.Min)
	return math.Max(d.X, math.Max(d.Y, d.Z))
}

// IsDegenerate reports whether the box carries no usable extent: NaN
// components, an inverted axis, or a zero diagonal.
func (b Box) IsDegenerate() bool {
	if b.Min.hasNaN() || b.Max.hasNaN() {
		return true
	}
	if b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z {
		return true
	}
	return b.Max.Sub(b.Min).Length() < Epsilon
}
