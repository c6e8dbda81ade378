// Package bcf reads BCF issue archives.
//
// A BCF archive is a zip whose top-level folders each hold one issue:
// a markup document (*.bcf), usually a viewpoint document (*.bcfv),
// and often a snapshot image. Loading is tolerant per issue: a folder
// that cannot be read becomes a recorded failure instead of sinking
// the whole archive, and malformed XML salvages whatever parsed.
package bcf

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/glasswing-io/sightline/iox"
	"github.com/glasswing-io/sightline/xmltree"
)

// ErrArchiveRead indicates the archive itself could not be opened or
// read. Per-issue problems never carry this; they land in Failures.
var ErrArchiveRead = errors.New("bcf: archive unreadable")

const (
	// maxDocumentSize bounds one markup or viewpoint document.
	maxDocumentSize = 4 * 1024 * 1024
	// maxSnapshotSize bounds one snapshot image.
	maxSnapshotSize = 16 * 1024 * 1024
)

// Issue is one loaded issue folder.
type Issue struct {
	// ID is the issue's folder name, usually a GUID.
	ID string `json:"id" yaml:"id"`
	// Title is the markup topic title, reduced to plain text.
	Title string `json:"title" yaml:"title"`
	// Description is the markup topic description, reduced to plain text.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Status is the markup topic status attribute, if any.
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	// Author is the markup creation author, if any.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
	// CreatedAt is the markup creation date as authored.
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	// Comments holds each markup comment's text, reduced to plain text.
	Comments []string `json:"comments,omitempty" yaml:"comments,omitempty"`
	// Viewpoint is the parsed viewpoint document, nil when the folder
	// has none.
	Viewpoint *xmltree.Node `json:"-" yaml:"-"`
	// SnapshotName is the base name of the snapshot image, if any.
	SnapshotName string `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	// Snapshot is the raw snapshot image bytes.
	Snapshot []byte `json:"-" yaml:"-"`
}

// HasViewpoint reports whether the issue folder carried a viewpoint
// document.
func (i *Issue) HasViewpoint() bool {
	return i != nil && i.Viewpoint != nil
}

// DisplayText renders the markup fields as one text block: title,
// description, comments, then a trailer for whichever metadata the
// markup carried.
func (i *Issue) DisplayText() string {
	var lines []string
	if i.Title != "" {
		lines = append(lines, i.Title)
	}
	if i.Description != "" {
		lines = append(lines, i.Description)
	}
	lines = append(lines, i.Comments...)
	var tags []string
	if i.Status != "" {
		tags = append(tags, "status: "+i.Status)
	}
	if i.Author != "" {
		tags = append(tags, "author: "+i.Author)
	}
	if i.CreatedAt != "" {
		tags = append(tags, "created: "+i.CreatedAt)
	}
	if len(tags) > 0 {
		lines = append(lines, strings.Join(tags, ", "))
	}
	if len(lines) == 0 {
		return "(no markup text)"
	}
	return strings.Join(lines, "\n")
}

// LoadFailure records one issue folder that could not be loaded.
type LoadFailure struct {
	// ID is the folder name.
	ID string `json:"id" yaml:"id"`
	// Err is what went wrong.
	Err error `json:"-" yaml:"-"`
}

// Archive is a loaded BCF archive.
type Archive struct {
	// Name is the path or label the archive was opened from.
	Name string
	// Issues holds the loaded issues, sorted by ID.
	Issues []Issue
	// Failures holds the folders that could not be loaded, sorted by ID.
	Failures []LoadFailure
}

// Issue returns the issue with the given ID.
func (a *Archive) Issue(id string) (*Issue, bool) {
	for i := range a.Issues {
		if a.Issues[i].ID == id {
			return &a.Issues[i], true
		}
	}
	return nil, false
}

// Open loads a BCF archive from disk.
func Open(name string) (*Archive, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrArchiveRead, name, err)
	}
	defer iox.DiscardClose(zr)
	return fromZip(&zr.Reader, name)
}

// FromReader loads a BCF archive from an in-memory or seekable source.
func FromReader(r io.ReaderAt, size int64, name string) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArchiveRead, name, err)
	}
	return fromZip(zr, name)
}

// folderEntry collects one top-level folder's candidate files.
type folderEntry struct {
	markups    []*zip.File
	viewpoints []*zip.File
	snapshots  []*zip.File
}

func (fe *folderEntry) isIssue() bool {
	return len(fe.markups) > 0 || len(fe.viewpoints) > 0
}

func fromZip(zr *zip.Reader, name string) (*Archive, error) {
	folders := make(map[string]*folderEntry)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		top, rest, ok := strings.Cut(f.Name, "/")
		if !ok || top == "" || rest == "" {
			// Top-level files (bcf.version, project metadata) are not
			// issue content.
			continue
		}
		fe := folders[top]
		if fe == nil {
			fe = &folderEntry{}
			folders[top] = fe
		}
		switch strings.ToLower(path.Ext(f.Name)) {
		case ".bcf":
			fe.markups = append(fe.markups, f)
		case ".bcfv":
			fe.viewpoints = append(fe.viewpoints, f)
		case ".png", ".jpg", ".jpeg":
			fe.snapshots = append(fe.snapshots, f)
		}
	}

	ids := make([]string, 0, len(folders))
	for id, fe := range folders {
		if fe.isIssue() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	a := &Archive{Name: name}
	for _, id := range ids {
		issue, err := buildIssue(id, folders[id])
		if err != nil {
			a.Failures = append(a.Failures, LoadFailure{ID: id, Err: err})
			continue
		}
		a.Issues = append(a.Issues, issue)
	}
	return a, nil
}

func buildIssue(id string, fe *folderEntry) (Issue, error) {
	issue := Issue{ID: id}

	if mf := pick(fe.markups, "markup.bcf"); mf != nil {
		data, err := readEntry(mf, maxDocumentSize)
		if err != nil {
			return Issue{}, err
		}
		// The tree parser salvages partial documents, so a malformed
		// markup degrades instead of failing the issue.
		doc, _ := xmltree.ParseBytes(data)
		fillFromMarkup(&issue, doc)
		if !issue.hasMarkupFields() {
			// Unrecognized markup dialect; keep whatever text the
			// raw bytes carry.
			issue.Description = StripMarkup(string(data))
		}
	}

	if vf := pick(fe.viewpoints, "viewpoint.bcfv"); vf != nil {
		data, err := readEntry(vf, maxDocumentSize)
		if err != nil {
			return Issue{}, err
		}
		doc, _ := xmltree.ParseBytes(data)
		issue.Viewpoint = doc
	}

	if sf := pick(fe.snapshots, "snapshot.png"); sf != nil {
		// A snapshot that cannot be read is cosmetic; drop it quietly.
		if data, err := readEntry(sf, maxSnapshotSize); err == nil {
			issue.Snapshot = data
			issue.SnapshotName = path.Base(sf.Name)
		}
	}

	return issue, nil
}

// pick chooses the conventionally named file when present, otherwise
// the lexicographically first candidate, so repeat loads see the same
// issue content.
func pick(files []*zip.File, preferred string) *zip.File {
	var best *zip.File
	for _, f := range files {
		base := path.Base(f.Name)
		if strings.EqualFold(base, preferred) {
			return f
		}
		if best == nil || base < path.Base(best.Name) {
			best = f
		}
	}
	return best
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%s: %d bytes exceeds limit %d", f.Name, f.UncompressedSize64, limit)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	defer iox.DiscardClose(rc)

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		// The zip header underreported; trust the bytes.
		return nil, fmt.Errorf("%s: exceeds limit %d", f.Name, limit)
	}
	return data, nil
}

func fillFromMarkup(issue *Issue, doc *xmltree.Node) {
	if topic := doc.First("Topic"); topic != nil {
		issue.Title = StripMarkup(topic.First("Title").DirectText())
		issue.Description = StripMarkup(topic.First("Description").DirectText())
		status, _ := topic.Attr("TopicStatus")
		issue.Status = strings.TrimSpace(status)
		issue.Author = strings.TrimSpace(topic.First("CreationAuthor").DirectText())
		issue.CreatedAt = strings.TrimSpace(topic.First("CreationDate").DirectText())
	}

	// Comment elements sit under the markup root in BCF 2.x, in a
	// Comments container in 3.0; the text is a nested Comment element.
	elems := doc.ChildrenNamed("Comment")
	if cc := doc.First("Comments"); cc != nil {
		elems = append(elems, cc.ChildrenNamed("Comment")...)
	}
	for _, c := range elems {
		text := c.First("Comment").DirectText()
		if strings.TrimSpace(text) == "" {
			text = c.DirectText()
		}
		if t := StripMarkup(text); t != "" {
			issue.Comments = append(issue.Comments, t)
		}
	}
}

// hasMarkupFields reports whether the structured pass extracted anything.
func (i *Issue) hasMarkupFields() bool {
	return i.Title != "" || i.Description != "" || i.Status != "" ||
		i.Author != "" || i.CreatedAt != "" || len(i.Comments) > 0
}

// StripMarkup reduces rich text to plain display text. Titles and
// descriptions occasionally arrive with embedded HTML; tags are
// dropped, entities resolved, and whitespace collapsed.
func StripMarkup(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "<"):
		var b strings.Builder
		tok := html.NewTokenizer(strings.NewReader(s))
		for {
			tt := tok.Next()
			if tt == html.ErrorToken {
				break
			}
			if tt == html.TextToken {
				b.Write(tok.Text())
			}
		}
		if out := collapseSpace(b.String()); out != "" {
			return out
		}
		// Tag soup with no text nodes; keep the raw string.
		return collapseSpace(s)
	case strings.Contains(s, "&"):
		return collapseSpace(html.UnescapeString(s))
	default:
		return collapseSpace(s)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
