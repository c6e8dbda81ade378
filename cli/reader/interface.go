package reader

// Reader abstracts read-only archive access for CLI commands.
//
// Implementations read a loaded archive directly or return canned
// records for tests. All methods are read-only; a missing issue yields
// a nil Detail rather than an error.
type Reader interface {
	// Summaries returns one row per loaded issue, in archive order.
	Summaries() []IssueSummary

	// Detail returns the deep view of one issue, or nil when no issue
	// with that ID exists.
	Detail(issueID string) *IssueDetail

	// Stats aggregates counts across the archive.
	Stats() *ArchiveStats
}

// defaultReader is the package-level reader instance.
// Initialized to StubReader until a command wires an archive.
var defaultReader Reader = NewStubReader()

// SetReader sets the package-level reader instance.
// Commands call this after opening an archive so the TUI can browse
// through the same records.
func SetReader(r Reader) {
	defaultReader = r
}

// GetReader returns the current package-level reader instance.
func GetReader() Reader {
	return defaultReader
}
