// Package display defines the outbound presentation boundary.
//
// Sinks receive issue text, snapshot images, and user-facing notices
// from the session. Calls are fire-and-forget: the session logs sink
// errors and moves on, nothing feeds back into the engine.
package display

// Sink receives presentation output for one session.
type Sink interface {
	// ShowText presents the markup text of an issue.
	ShowText(issueID, text string) error

	// ShowImage presents the snapshot image of an issue.
	ShowImage(issueID string, data []byte) error

	// ReportInfo surfaces an informational notice to the user.
	ReportInfo(message string)

	// ReportError surfaces a failure notice to the user.
	ReportError(message string)

	// Close releases sink resources.
	Close() error
}
