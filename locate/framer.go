package locate

import (
	"context"
	"errors"
	"math"

	"github.com/glasswing-io/sightline/host"
	"github.com/glasswing-io/sightline/types"
)

const (
	// heightMargin pads the view height past the entity's largest
	// dimension so the entity does not touch the viewport edges.
	heightMargin = 1.15
	// minHeight keeps the applied view height positive even for
	// point-like extents.
	minHeight = 1e-6
)

// Framer drives one host session. It holds no per-call state; a single
// Framer serves every action of a session.
type Framer struct {
	host host.Host
}

// NewFramer creates a framer over an open host session.
func NewFramer(h host.Host) *Framer {
	return &Framer{host: h}
}

// GoTo resolves ref and recenters the host view on the entity:
//
//  1. parse the reference (no host call on failure)
//  2. under one document lock: resolve the handle, measure the entity
//     (one retry on a transient extents failure), replace the view's
//     target and height while preserving its orientation, and select
//     the entity (falling back to a filtered handle query once)
//
// Extents and selection failures are soft: the result records them and
// the error stays nil. Parse failures, unresolvable handles, and host
// breakdowns return the result alongside a classified error.
func (f *Framer) GoTo(ctx context.Context, ref string) (types.FramingResult, error) {
	res := types.FramingResult{Ref: ref}

	h, err := ParseHandle(ref)
	if err != nil {
		res.Outcome = types.FramingInvalidHandle
		return res, err
	}
	res.Handle = uint64(h)

	err = f.host.WithDocumentLock(ctx, func(tx host.Tx) error {
		entity, err := tx.ResolveHandle(h)
		if err != nil {
			return host.NewHostError(host.Classify(err), "resolve", h, err)
		}

		box, boxErr := tx.BoundingBox(entity)
		if boxErr != nil || box.IsDegenerate() {
			res.ExtentsRetried = true
			box, boxErr = tx.BoundingBox(entity)
		}

		if boxErr == nil && !box.IsDegenerate() {
			res.Center = box.Center()
			res.Height = math.Max(minHeight, box.MaxDim()*heightMargin)

			view, err := tx.CurrentView()
			if err != nil {
				return host.NewHostError(host.Classify(err), "current_view", h, err)
			}
			view.Target = res.Center
			view.Height = res.Height
			if err := tx.SetView(view); err != nil {
				return host.NewHostError(host.Classify(err), "set_view", h, err)
			}
			res.Outcome = types.FramingApplied
		} else {
			// Extents stayed unavailable after the retry: the view is
			// left untouched, the action goes on.
			res.Outcome = types.FramingExtentsUnavailable
		}

		f.selectEntity(tx, h, entity, &res)
		return nil
	})
	if err != nil {
		if errors.Is(err, host.ErrEntityNotFound) {
			res.Outcome = types.FramingEntityNotFound
		}
		return res, err
	}
	return res, nil
}

// selectEntity selects the entity, retrying once through the filtered
// handle query. Both attempts failing leaves the host selection as it
// was; the result just records that nothing got selected.
func (f *Framer) selectEntity(tx host.Tx, h host.Handle, entity host.Entity, res *types.FramingResult) {
	if err := tx.SetSelection([]host.Entity{entity}); err == nil {
		res.Selected = true
		return
	}
	res.SelectionRetried = true

	fresh, err := tx.QueryHandle(h)
	if err != nil {
		return
	}
	if err := tx.SetSelection([]host.Entity{fresh}); err == nil {
		res.Selected = true
	}
}
