package display

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Console renders issue content to a terminal.
//
// Issue text and image notices are written to out, info and error
// notices to errOut. When snapshotDir is non-empty, image bytes are
// saved there under the issue ID with an extension sniffed from the
// bytes.
type Console struct {
	out         io.Writer
	errOut      io.Writer
	snapshotDir string
}

// NewConsole creates a console sink writing to the given streams.
// An empty snapshotDir disables image saving; images are then only
// announced by size.
func NewConsole(out, errOut io.Writer, snapshotDir string) *Console {
	return &Console{out: out, errOut: errOut, snapshotDir: snapshotDir}
}

// ShowText prints the issue text under an issue header.
func (c *Console) ShowText(issueID, text string) error {
	_, err := fmt.Fprintf(c.out, "--- %s ---\n%s\n", issueID, text)
	return err
}

// ShowImage saves the snapshot under the snapshot directory and
// announces where it went.
func (c *Console) ShowImage(issueID string, data []byte) error {
	if c.snapshotDir == "" {
		_, err := fmt.Fprintf(c.out, "[%s] snapshot: %d bytes (no snapshot directory configured)\n", issueID, len(data))
		return err
	}
	if err := os.MkdirAll(c.snapshotDir, 0o755); err != nil {
		return fmt.Errorf("display: create snapshot dir: %w", err)
	}
	path := filepath.Join(c.snapshotDir, fileStem(issueID)+imageExt(data))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("display: write snapshot: %w", err)
	}
	_, err := fmt.Fprintf(c.out, "[%s] snapshot saved to %s\n", issueID, path)
	return err
}

// ReportInfo prints an informational notice to the error stream so it
// does not interleave with rendered output.
func (c *Console) ReportInfo(message string) {
	fmt.Fprintln(c.errOut, message)
}

// ReportError prints a failure notice to the error stream.
func (c *Console) ReportError(message string) {
	fmt.Fprintln(c.errOut, "error: "+message)
}

// Close is a no-op; the console owns neither of its streams.
func (c *Console) Close() error { return nil }

// fileStem reduces an issue ID to a name safe to join under the
// snapshot directory. Issue IDs come from archive folder names and may
// carry characters the filesystem rejects.
func fileStem(issueID string) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, issueID)
	if strings.Trim(stem, "._") == "" {
		return "snapshot"
	}
	return stem
}

// imageExt sniffs the snapshot format from its leading bytes.
func imageExt(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}

// Verify Console implements the sink interface.
var _ Sink = (*Console)(nil)
