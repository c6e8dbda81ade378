package reader

// StubReader returns shape-correct canned records for development and
// for tests that do not need a real archive.
type StubReader struct{}

// NewStubReader creates a new stub reader.
func NewStubReader() *StubReader {
	return &StubReader{}
}

var _ Reader = (*StubReader)(nil)

// Summaries returns one canned issue row.
func (r *StubReader) Summaries() []IssueSummary {
	ref := "AB12"
	return []IssueSummary{
		{
			ID:          "stub-issue-001",
			Title:       "Stub issue",
			Status:      "Open",
			Camera:      "perspective",
			EntityRef:   &ref,
			HasSnapshot: false,
		},
	}
}

// Detail returns a canned detail, echoing the requested ID.
func (r *StubReader) Detail(issueID string) *IssueDetail {
	ref := "AB12"
	bearing := 0.0
	elevation := 0.0
	return &IssueDetail{
		ID:    issueID,
		Title: "Stub issue",
		Text:  "Stub issue",
		Viewpoint: &ViewpointDetail{
			Camera:       "perspective",
			EntityRef:    &ref,
			BearingDeg:   &bearing,
			ElevationDeg: &elevation,
		},
	}
}

// Stats returns canned archive counts.
func (r *StubReader) Stats() *ArchiveStats {
	return &ArchiveStats{
		Archive:       "stub.bcf",
		Issues:        1,
		WithViewpoint: 1,
		WithEntityRef: 1,
	}
}
