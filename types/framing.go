package types //nolint:revive // types is a valid package name

import "github.com/glasswing-io/sightline/geom"

// FramingOutcome classifies how a locate-and-frame sequence ended.
type FramingOutcome string

const (
	// FramingApplied means the view was recentered on the entity.
	FramingApplied FramingOutcome = "applied"
	// FramingInvalidHandle means the reference parsed as neither
	// hexadecimal nor decimal; no host call was made.
	FramingInvalidHandle FramingOutcome = "invalid_handle"
	// FramingEntityNotFound means the host could not resolve the handle.
	FramingEntityNotFound FramingOutcome = "entity_not_found"
	// FramingExtentsUnavailable means the entity resolved but no usable
	// bounding box came back after a retry; the view was left untouched.
	FramingExtentsUnavailable FramingOutcome = "extents_unavailable"
)

// FramingResult records what one locate-and-frame pass did. The same
// input against the same host state produces the same result; applying
// it twice leaves the view where one application put it.
type FramingResult struct {
	// Outcome is the classification of the pass.
	Outcome FramingOutcome `json:"outcome" yaml:"outcome"`
	// Ref is the entity reference as authored in the viewpoint.
	Ref string `json:"ref" yaml:"ref"`
	// Handle is the numeric handle the reference parsed to. Zero when
	// the outcome is invalid_handle.
	Handle uint64 `json:"handle" yaml:"handle"`
	// Center is the applied view center. Zero unless the outcome is
	// applied.
	Center geom.Vec3 `json:"center" yaml:"center"`
	// Height is the applied view height. Zero unless the outcome is
	// applied.
	Height float64 `json:"height" yaml:"height"`
	// Selected reports whether the entity ended up selected.
	Selected bool `json:"selected" yaml:"selected"`
	// ExtentsRetried reports whether the bounding-box query needed its
	// one retry.
	ExtentsRetried bool `json:"extents_retried" yaml:"extents_retried"`
	// SelectionRetried reports whether selection fell back to the
	// filtered handle query.
	SelectionRetried bool `json:"selection_retried" yaml:"selection_retried"`
}
