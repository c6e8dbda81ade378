// Package types defines the core records of the viewpoint engine: what
// a viewpoint document parsed into, what a camera was rebuilt as, and
// what a locate-and-frame action produced. All records are plain data
// with no host references, created by one layer and consumed by others.
//
//nolint:revive // types is a common Go package naming convention
package types

import "github.com/glasswing-io/sightline/geom"

// CameraKind discriminates the camera element found in a viewpoint
// document.
type CameraKind string

const (
	// CameraNone means the document carried no recognizable camera.
	CameraNone CameraKind = "none"
	// CameraPerspective is a perspective camera element.
	CameraPerspective CameraKind = "perspective"
	// CameraOrthographic is an orthographic camera element.
	CameraOrthographic CameraKind = "orthographic"
)

// ParsedViewpoint is the camera intent pulled out of one viewpoint
// document. Every field beyond the kind is optional: dialect drift and
// partial documents leave fields nil rather than failing the parse.
type ParsedViewpoint struct {
	// Camera is the kind of camera element the document carried.
	Camera CameraKind `json:"camera" yaml:"camera"`
	// Eye is the camera position, when present.
	Eye *geom.Vec3 `json:"eye,omitempty" yaml:"eye,omitempty"`
	// ViewDirection points from the eye toward the target, when present.
	ViewDirection *geom.Vec3 `json:"view_direction,omitempty" yaml:"view_direction,omitempty"`
	// Up is the camera up vector, when present. Reconstruction supplies
	// the world up axis when absent.
	Up *geom.Vec3 `json:"up,omitempty" yaml:"up,omitempty"`
	// FieldOfView is the raw field-of-view scalar as authored. Unit
	// normalization happens during reconstruction, not parsing.
	FieldOfView *float64 `json:"field_of_view,omitempty" yaml:"field_of_view,omitempty"`
	// EntityRef is the selected component identifier, when present.
	EntityRef *string `json:"entity_ref,omitempty" yaml:"entity_ref,omitempty"`
}

// HasCameraPose reports whether both eye and view direction are
// present, the minimum a camera can be rebuilt from.
func (p ParsedViewpoint) HasCameraPose() bool {
	return p.Eye != nil && p.ViewDirection != nil
}
