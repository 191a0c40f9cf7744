package catalog

import (
	"strings"

	"github.com/mtcat/mtcat/core/errors"
	"github.com/mtcat/mtcat/core/langtag"
	"github.com/mtcat/mtcat/internal/extensions"
)

// archiveExts is the closed set of outer container formats treated as
// archives. Exact and case-sensitive; anything else is a plain file.
var archiveExts = map[string]bool{
	"zip":    true,
	"tar":    true,
	"tar.gz": true,
	"tgz":    true,
}

// xcesAlignExt is the one non-archive inner format allowed to carry member
// paths: its alignment file co-references the listed files even though the
// outer container is not an archive. Treat this as a closed exception list,
// not a pattern to generalize.
const xcesAlignExt = "opus_xces"

// tmxExt marks entries whose alignment encodes direction independently of
// column order; they are never considered swapped.
const tmxExt = "tmx"

// EntrySpec carries the optional fields of NewEntry. The zero value is a
// valid spec: extension and filename are derived, and no archive members
// are declared.
type EntrySpec struct {
	Filename string              // target filename; defaults to <name>.<ext>
	Ext      string              // outer extension; inferred when empty
	InPaths  []string            // member paths inside an archive
	InExt    string              // extension of the inner files
	Cite     string              // bibliographic citation
	Cols     *[2]int             // column indices for column-oriented formats
	Detect   extensions.Detector // extension detection; defaults to extensions.Detect
}

// Entry describes one retrievable unit of a dataset: the download URL, the
// on-disk filename, the container format, and the archive-member layout.
// Entries are logically immutable once constructed.
type Entry struct {
	did       DatasetID
	url       string
	filename  string
	ext       string
	inPaths   []string
	inExt     string
	cite      string
	cols      *[2]int
	isArchive bool
}

// NewEntry resolves the entry's extension, filename, and archive flag, then
// runs the cross-field consistency checks, in that order. It fails with an
// error wrapping errors.ErrArchiveSpec when an archive entry is missing
// member paths or the inner extension, and errors.ErrInvalidEntryShape when
// a plain-file entry carries member paths outside the opus_xces exemption.
func NewEntry(did DatasetID, url string, spec EntrySpec) (*Entry, error) {
	if did.IsZero() {
		return nil, errors.NewIdentifier("did", "", "entry requires a valid dataset identifier")
	}

	detect := spec.Detect
	if detect == nil {
		detect = extensions.Detect
	}

	ext := spec.Ext
	if ext == "" {
		name := spec.Filename
		if name == "" {
			name = url
		}
		ext = detect(name)
	}
	if ext == "" {
		return nil, errors.NewEntryShape(did.String(), "", "cannot determine extension from "+url)
	}
	if strings.HasPrefix(ext, ".") {
		return nil, errors.NewEntryShape(did.String(), ext, "extension should not start with a dot")
	}

	filename := spec.Filename
	if filename == "" {
		filename = did.Name() + "." + ext
	}

	e := &Entry{
		did:       did,
		url:       url,
		filename:  filename,
		ext:       ext,
		inPaths:   append([]string(nil), spec.InPaths...),
		inExt:     spec.InExt,
		cite:      spec.Cite,
		isArchive: archiveExts[ext],
	}
	if spec.Cols != nil {
		cols := *spec.Cols
		e.cols = &cols
	}

	if e.isArchive {
		if len(e.inPaths) == 0 {
			return nil, errors.NewArchiveSpec(did.String(), "in_paths")
		}
		if e.inExt == "" {
			return nil, errors.NewArchiveSpec(did.String(), "in_ext")
		}
	} else if e.inExt != xcesAlignExt && len(e.inPaths) > 0 {
		return nil, errors.NewEntryShape(did.String(), ext, "in_paths is not applicable for non-archive formats")
	}

	return e, nil
}

// DID returns the owning dataset identifier.
func (e *Entry) DID() DatasetID { return e.did }

// URL returns the download URL.
func (e *Entry) URL() string { return e.url }

// Filename returns the resolved on-disk filename.
func (e *Entry) Filename() string { return e.filename }

// Ext returns the outer extension, never dot-prefixed.
func (e *Entry) Ext() string { return e.ext }

// InPaths returns a copy of the archive member paths, empty for plain files.
func (e *Entry) InPaths() []string {
	return append([]string(nil), e.inPaths...)
}

// InExt returns the extension of the inner files, "" for plain files.
func (e *Entry) InExt() string { return e.inExt }

// Cite returns the bibliographic citation, if any.
func (e *Entry) Cite() string { return e.cite }

// Cols returns the column selection for column-oriented formats, or nil.
func (e *Entry) Cols() *[2]int {
	if e.cols == nil {
		return nil
	}
	cols := *e.cols
	return &cols
}

// IsArchive reports whether the outer extension is an archive format.
func (e *Entry) IsArchive() bool { return e.isArchive }

// LangStr returns the language segment of the owning identifier.
func (e *Entry) LangStr() string { return e.did.LangStr() }

// IsSwap reports whether the entry's own language order is the reverse of
// the requested direction, i.e. whether a bitext's two columns must be
// swapped to serve that direction. TMX entries are never swapped: their
// alignment encodes direction independently of column order.
func (e *Entry) IsSwap(langs langtag.Pair) bool {
	if e.inExt == tmxExt {
		return false
	}
	if len(e.did.langs) != 2 {
		return false
	}
	return langs[1].Equal(e.did.langs[0]) && langs[0].Equal(e.did.langs[1])
}

// IsNoisy reports whether a sentence pair is unusable: either segment
// absent, or empty after trimming whitespace. A reusable filter for
// downstream corpus cleaning.
func (e *Entry) IsNoisy(seg1, seg2 *string) bool {
	return seg1 == nil || seg2 == nil ||
		strings.TrimSpace(*seg1) == "" || strings.TrimSpace(*seg2) == ""
}

// Format renders a human-readable line of identifier, URL, and comma-joined
// member paths. Display only, never parsed back. An empty delim means a
// single space.
func (e *Entry) Format(delim string) string {
	if delim == "" {
		delim = " "
	}
	return e.did.String() + delim + e.url + delim + strings.Join(e.inPaths, ",")
}

// String returns Format with the default delimiter.
func (e *Entry) String() string { return e.Format(" ") }
