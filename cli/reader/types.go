// Package reader provides the read-side data access layer for the
// sightline CLI.
//
// This package isolates read-only commands from engine internals. CLI
// and TUI code consume the flat view records defined here instead of
// touching archive or session types directly.
package reader

import (
	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/types"
)

// IssueSummary is one row of the issue listing.
type IssueSummary struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Status      string  `json:"status,omitempty" yaml:"status,omitempty"`
	Camera      string  `json:"camera" yaml:"camera"`
	EntityRef   *string `json:"entity_ref,omitempty" yaml:"entity_ref,omitempty"`
	HasSnapshot bool    `json:"has_snapshot" yaml:"has_snapshot"`
}

// ViewpointDetail is the parsed viewpoint of one issue, plus compass
// angles derived from the view direction for human readers.
type ViewpointDetail struct {
	Camera        string     `json:"camera" yaml:"camera"`
	Eye           *geom.Vec3 `json:"eye,omitempty" yaml:"eye,omitempty"`
	ViewDirection *geom.Vec3 `json:"view_direction,omitempty" yaml:"view_direction,omitempty"`
	Up            *geom.Vec3 `json:"up,omitempty" yaml:"up,omitempty"`
	FieldOfView   *float64   `json:"field_of_view,omitempty" yaml:"field_of_view,omitempty"`
	EntityRef     *string    `json:"entity_ref,omitempty" yaml:"entity_ref,omitempty"`
	BearingDeg    *float64   `json:"bearing_deg,omitempty" yaml:"bearing_deg,omitempty"`
	ElevationDeg  *float64   `json:"elevation_deg,omitempty" yaml:"elevation_deg,omitempty"`
}

// SnapshotDetail describes an issue's snapshot image without carrying
// the bytes. Width and height stay zero when the image header cannot
// be decoded.
type SnapshotDetail struct {
	Name   string `json:"name" yaml:"name"`
	Bytes  int    `json:"bytes" yaml:"bytes"`
	Format string `json:"format" yaml:"format"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
}

// IssueDetail is the deep view of a single issue.
type IssueDetail struct {
	ID          string                 `json:"id" yaml:"id"`
	Title       string                 `json:"title" yaml:"title"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Status      string                 `json:"status,omitempty" yaml:"status,omitempty"`
	Author      string                 `json:"author,omitempty" yaml:"author,omitempty"`
	CreatedAt   string                 `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Text        string                 `json:"text" yaml:"text"`
	Viewpoint   *ViewpointDetail       `json:"viewpoint,omitempty" yaml:"viewpoint,omitempty"`
	Camera      *types.CameraTransform `json:"camera,omitempty" yaml:"camera,omitempty"`
	Snapshot    *SnapshotDetail        `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

// ArchiveStats aggregates counts across a loaded archive.
type ArchiveStats struct {
	Archive       string `json:"archive" yaml:"archive"`
	Issues        int    `json:"issues" yaml:"issues"`
	Skipped       int    `json:"skipped" yaml:"skipped"`
	WithViewpoint int    `json:"with_viewpoint" yaml:"with_viewpoint"`
	WithCamera    int    `json:"with_camera" yaml:"with_camera"`
	WithEntityRef int    `json:"with_entity_ref" yaml:"with_entity_ref"`
	WithSnapshot  int    `json:"with_snapshot" yaml:"with_snapshot"`
}

// HandleReport is the result of previewing an entity reference parse
// without contacting a host.
type HandleReport struct {
	Ref     string `json:"ref" yaml:"ref"`
	Valid   bool   `json:"valid" yaml:"valid"`
	Handle  uint64 `json:"handle,omitempty" yaml:"handle,omitempty"`
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ViewpointReport is the result of parsing a standalone viewpoint
// document.
type ViewpointReport struct {
	File      string                 `json:"file" yaml:"file"`
	Viewpoint ViewpointDetail        `json:"viewpoint" yaml:"viewpoint"`
	Camera    *types.CameraTransform `json:"camera,omitempty" yaml:"camera,omitempty"`
	CameraErr string                 `json:"camera_error,omitempty" yaml:"camera_error,omitempty"`
}
