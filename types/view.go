package types //nolint:revive // types is a valid package name

import "github.com/glasswing-io/sightline/geom"

// ViewState is the host's current view as the engine sees it. Framing
// replaces Target and Height only; Direction and Up belong to the host
// and ride along unchanged.
type ViewState struct {
	// Target is the point the view is centered on.
	Target geom.Vec3 `msgpack:"target" json:"target" yaml:"target"`
	// Height is the vertical extent of the view at the target.
	Height float64 `msgpack:"height" json:"height" yaml:"height"`
	// Direction is the host view's forward axis.
	Direction geom.Vec3 `msgpack:"direction" json:"direction" yaml:"direction"`
	// Up is the host view's up axis.
	Up geom.Vec3 `msgpack:"up" json:"up" yaml:"up"`
}
