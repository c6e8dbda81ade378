package reader

import (
	"bytes"
	"image"
	"math"

	// Snapshot formats issue folders actually carry.
	_ "image/jpeg"
	_ "image/png"

	"github.com/glasswing-io/sightline/bcf"
	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/types"
)

const degPerRad = 180 / math.Pi

// Describe flattens a parsed viewpoint into its view record, deriving
// bearing and elevation from the view direction when one is present.
func Describe(pv types.ParsedViewpoint) ViewpointDetail {
	vd := ViewpointDetail{
		Camera:        string(pv.Camera),
		Eye:           pv.Eye,
		ViewDirection: pv.ViewDirection,
		Up:            pv.Up,
		FieldOfView:   pv.FieldOfView,
		EntityRef:     pv.EntityRef,
	}
	if pv.ViewDirection != nil {
		vd.BearingDeg, vd.ElevationDeg = bearingElevation(*pv.ViewDirection)
	}
	return vd
}

// bearingElevation splits a view direction into a compass bearing and
// a pitch, both in degrees. Bearing is clockwise from the world
// forward axis when seen from above. A straight-up or straight-down
// direction has no usable bearing; a zero direction has neither angle.
func bearingElevation(d geom.Vec3) (bearing, elevation *float64) {
	if d.IsZero() {
		return nil, nil
	}
	horizontal := geom.Vec3{X: d.X, Z: d.Z}
	pitch := math.Atan2(d.Y, horizontal.Length()) * degPerRad
	elevation = &pitch
	if horizontal.IsZero() {
		return nil, elevation
	}
	yaw := -geom.SignedAngle(geom.WorldForward, horizontal, geom.WorldUp) * degPerRad
	bearing = &yaw
	return bearing, elevation
}

// probeSnapshot describes an issue's snapshot without copying the
// bytes out.
func probeSnapshot(issue *bcf.Issue) *SnapshotDetail {
	if len(issue.Snapshot) == 0 {
		return nil
	}
	sd := &SnapshotDetail{
		Name:  issue.SnapshotName,
		Bytes: len(issue.Snapshot),
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(issue.Snapshot))
	if err != nil {
		sd.Format = "unknown"
		return sd
	}
	sd.Format = format
	sd.Width = cfg.Width
	sd.Height = cfg.Height
	return sd
}
