package reader

import (
	"github.com/glasswing-io/sightline/bcf"
	"github.com/glasswing-io/sightline/camera"
	"github.com/glasswing-io/sightline/viewpoint"
)

// Archive reads view records straight from a loaded archive. Parsing
// and reconstruction run per call; nothing is cached between calls.
type Archive struct {
	src *bcf.Archive
}

// FromArchive wraps a loaded archive in the Reader interface.
func FromArchive(src *bcf.Archive) *Archive {
	return &Archive{src: src}
}

var _ Reader = (*Archive)(nil)

// Summaries returns one row per loaded issue, in archive order.
func (a *Archive) Summaries() []IssueSummary {
	out := make([]IssueSummary, 0, len(a.src.Issues))
	for i := range a.src.Issues {
		issue := &a.src.Issues[i]
		pv := viewpoint.Parse(issue.Viewpoint)
		out = append(out, IssueSummary{
			ID:          issue.ID,
			Title:       issue.Title,
			Status:      issue.Status,
			Camera:      string(pv.Camera),
			EntityRef:   pv.EntityRef,
			HasSnapshot: len(issue.Snapshot) > 0,
		})
	}
	return out
}

// Detail returns the deep view of one issue, or nil when the archive
// holds no issue with that ID.
func (a *Archive) Detail(issueID string) *IssueDetail {
	issue, ok := a.src.Issue(issueID)
	if !ok {
		return nil
	}

	d := &IssueDetail{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Status:      issue.Status,
		Author:      issue.Author,
		CreatedAt:   issue.CreatedAt,
		Text:        issue.DisplayText(),
		Snapshot:    probeSnapshot(issue),
	}

	if issue.HasViewpoint() {
		pv := viewpoint.Parse(issue.Viewpoint)
		vd := Describe(pv)
		d.Viewpoint = &vd
		if ct, err := camera.Reconstruct(pv); err == nil {
			d.Camera = &ct
		}
	}

	return d
}

// Stats aggregates counts across the archive.
func (a *Archive) Stats() *ArchiveStats {
	st := &ArchiveStats{
		Archive: a.src.Name,
		Issues:  len(a.src.Issues),
		Skipped: len(a.src.Failures),
	}
	for i := range a.src.Issues {
		issue := &a.src.Issues[i]
		if issue.HasViewpoint() {
			st.WithViewpoint++
		}
		pv := viewpoint.Parse(issue.Viewpoint)
		if pv.HasCameraPose() {
			st.WithCamera++
		}
		if pv.EntityRef != nil {
			st.WithEntityRef++
		}
		if len(issue.Snapshot) > 0 {
			st.WithSnapshot++
		}
	}
	return st
}
