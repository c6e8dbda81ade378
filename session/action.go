package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glasswing-io/sightline/bcf"
	"github.com/glasswing-io/sightline/camera"
	"github.com/glasswing-io/sightline/host"
	"github.com/glasswing-io/sightline/locate"
	"github.com/glasswing-io/sightline/log"
	"github.com/glasswing-io/sightline/types"
	"github.com/glasswing-io/sightline/viewpoint"
)

// GoTo runs the go-to-view action for one issue end to end.
//
// Action flow:
//  1. Parse the issue's viewpoint document
//  2. Reconstruct the camera transform (computed and reported, never
//     applied to the host)
//  3. Locate and frame the referenced entity in the host
//
// Failures of the locate stage are encoded in the result's outcome;
// the returned error is reserved for session-level problems (closed
// session, unknown issue).
func (s *Session) GoTo(ctx context.Context, issueID string) (*types.ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	issue, ok := s.archive.Issue(issueID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoIssue, issueID)
	}

	start := time.Now()
	meta := types.ActionMeta{
		ActionID:  uuid.NewString(),
		SessionID: s.meta.SessionID,
		IssueID:   issueID,
	}
	logger := s.logger.WithAction(&meta)
	s.met.IncActionStarted()
	logger.Info("action started", map[string]any{"issue": issueID})

	res := &types.ActionResult{Meta: meta}

	pv := s.parseViewpoint(issue, logger)
	s.reconstructCamera(pv, res, logger)

	if pv.EntityRef == nil {
		res.Outcome = types.ActionOutcome{
			Status:  types.ActionNoTarget,
			Message: "viewpoint carries no entity reference",
		}
		return s.finish(res, start, logger), nil
	}

	if err := s.host.Ready(ctx); err != nil {
		logger.Error("host not ready", map[string]any{"error": err.Error()})
		res.Outcome = types.ActionOutcome{
			Status:  types.ActionHostUnavailable,
			Message: err.Error(),
		}
		return s.finish(res, start, logger), nil
	}

	fres, err := s.framer.GoTo(ctx, *pv.EntityRef)
	res.Framing = &fres
	if fres.ExtentsRetried {
		s.met.IncExtentsRetry()
	}
	if fres.SelectionRetried {
		s.met.IncSelectionRetry()
	}
	if fres.Outcome != "" {
		s.met.IncFraming(string(fres.Outcome))
	}
	if err != nil {
		logger.Warn("framing failed", map[string]any{
			"ref":   fres.Ref,
			"error": err.Error(),
		})
	}
	res.Outcome = classifyFraming(fres, err)

	return s.finish(res, start, logger), nil
}

// parseViewpoint derives camera and selection intent from the issue's
// viewpoint document. An issue without one parses as an empty intent.
func (s *Session) parseViewpoint(issue *bcf.Issue, logger *log.Logger) types.ParsedViewpoint {
	if !issue.HasViewpoint() {
		s.met.IncParseDegraded()
		logger.Info("issue has no viewpoint document", map[string]any{"issue": issue.ID})
		return viewpoint.Parse(nil)
	}
	s.met.IncViewpointParsed()
	pv := viewpoint.Parse(issue.Viewpoint)
	logger.Debug("viewpoint parsed", map[string]any{
		"camera":  string(pv.Camera),
		"has_ref": pv.EntityRef != nil,
	})
	return pv
}

// reconstructCamera rebuilds the camera transform and records it on
// the result. An incomplete pose degrades to a note, it never fails
// the action.
func (s *Session) reconstructCamera(pv types.ParsedViewpoint, res *types.ActionResult, logger *log.Logger) {
	ct, err := camera.Reconstruct(pv)
	if err != nil {
		s.met.IncCameraIncomplete()
		res.Notes = append(res.Notes, err.Error())
		logger.Info("camera not reconstructable", map[string]any{"reason": err.Error()})
		return
	}
	s.met.IncCameraReconstructed()
	res.Camera = &ct
	if err := camera.Apply(ct); err != nil {
		res.Notes = append(res.Notes, err.Error())
	}
	logger.Debug("camera reconstructed", map[string]any{
		"fov_radians": ct.FieldOfViewRadians,
		"distance":    ct.Distance,
	})
}

// finish stamps the duration, settles the outcome counters, and logs
// the ending. Informational and soft endings count as completed.
func (s *Session) finish(res *types.ActionResult, start time.Time, logger *log.Logger) *types.ActionResult {
	res.DurationMS = time.Since(start).Milliseconds()
	switch res.Outcome.Status {
	case types.ActionNotFound, types.ActionHostUnavailable:
		s.met.IncActionFailed()
	default:
		s.met.IncActionCompleted()
	}
	logger.Info("action finished", map[string]any{
		"status":      string(res.Outcome.Status),
		"message":     res.Outcome.Message,
		"duration_ms": res.DurationMS,
	})
	return res
}

// classifyFraming maps a framing record and its error onto the action
// outcome contract: malformed and unresolvable references are
// not_found, host breakdowns are host_unavailable, unavailable extents
// are a soft failure, everything else framed successfully.
func classifyFraming(fres types.FramingResult, err error) types.ActionOutcome {
	if err != nil {
		switch {
		case errors.Is(err, locate.ErrInvalidHandleFormat):
			return types.ActionOutcome{
				Status:  types.ActionNotFound,
				Message: fmt.Sprintf("entity reference %q is not a usable handle", fres.Ref),
			}
		case errors.Is(err, host.ErrEntityNotFound):
			return types.ActionOutcome{
				Status:  types.ActionNotFound,
				Message: fmt.Sprintf("no entity %s in the host document", locate.FormatHandle(host.Handle(fres.Handle))),
			}
		default:
			return types.ActionOutcome{
				Status:  types.ActionHostUnavailable,
				Message: err.Error(),
			}
		}
	}
	if fres.Outcome == types.FramingExtentsUnavailable {
		return types.ActionOutcome{
			Status:  types.ActionSoftFailure,
			Message: "entity extents unavailable; view left unchanged",
		}
	}
	return types.ActionOutcome{
		Status:  types.ActionSuccess,
		Message: fmt.Sprintf("framed entity %s", locate.FormatHandle(host.Handle(fres.Handle))),
	}
}
