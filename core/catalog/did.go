package catalog

import (
	"strings"

	"github.com/mtcat/mtcat/core/errors"
	"github.com/mtcat/mtcat/core/langtag"
)

// Delim is the segment delimiter in canonical dataset identifier strings.
// ":" would read better, but Windows does not allow ":" in paths.
const Delim = "-"

// reservedChars are structural delimiters and shell metacharacters forbidden
// inside identifier fields (space included).
const reservedChars = `-/*|[](){}<>?&:;,!^$"' `

// parseHint is appended to malformed-identifier errors so users can recover
// a valid ID from the catalog listing.
const parseHint = `If you are unsure, run "mtcat list | cut -f1 | grep -i <name>" and copy its id.`

// DatasetID identifies one dataset: group, name, version, and language tuple.
// One language element means monolingual, two bitext, more multi-way.
// Values are validated and normalized at construction and never change
// afterwards; every language element is canonical by the time a DatasetID
// exists.
type DatasetID struct {
	group   string
	name    string
	version string
	langs   []langtag.Tag
}

// NewDatasetID validates the identifier grammar and normalizes every raw
// language element through norm. It fails with an error wrapping
// errors.ErrInvalidIdentifier when a field is empty, carries a reserved
// character, the name is not lower-case, or a language element cannot be
// canonicalized.
func NewDatasetID(group, name, version string, langs []string, norm langtag.Normalizer) (DatasetID, error) {
	fields := []struct{ field, value string }{
		{"group", group},
		{"name", name},
		{"version", version},
	}
	for _, f := range fields {
		if f.value == "" {
			return DatasetID{}, errors.NewIdentifier(f.field, f.value, "must not be empty")
		}
		for _, ch := range f.value {
			if strings.ContainsRune(reservedChars, ch) {
				return DatasetID{}, errors.NewIdentifier(f.field, f.value,
					"character "+string(ch)+" is not permitted")
			}
		}
	}
	if name != strings.ToLower(name) {
		return DatasetID{}, errors.NewIdentifier("name", name, "has to be lower cased for consistency")
	}
	if len(langs) == 0 {
		return DatasetID{}, errors.NewIdentifier("langs", "", "at least one language is required")
	}

	tags := make([]langtag.Tag, len(langs))
	for i, raw := range langs {
		tag, err := norm.Normalize(raw)
		if err != nil {
			return DatasetID{}, &errors.IdentifierError{
				Field:  "langs",
				Value:  raw,
				Reason: "cannot be canonicalized",
				Err:    err,
			}
		}
		tags[i] = tag
	}

	return DatasetID{group: group, name: name, version: version, langs: tags}, nil
}

// newDatasetIDTags builds an identifier from already-canonical tags. Used by
// the package itself where tags have gone through a Normalizer before.
func newDatasetIDTags(group, name, version string, tags []langtag.Tag) DatasetID {
	owned := make([]langtag.Tag, len(tags))
	copy(owned, tags)
	return DatasetID{group: group, name: name, version: version, langs: owned}
}

// ParseDatasetID is the strict inverse of Format: the input must split into
// exactly 5 delimiter-separated segments (group, name, version, lang1,
// lang2). Any other segment count fails with an error wrapping
// errors.ErrMalformedIdentifier whose message carries the expected template
// and a remediation hint. An empty delim means Delim.
func ParseDatasetID(s, delim string, norm langtag.Normalizer) (DatasetID, error) {
	if delim == "" {
		delim = Delim
	}
	parts := strings.Split(strings.TrimSpace(s), delim)
	if len(parts) != 5 {
		template := strings.Join([]string{"<group>", "<name>", "<version>", "<l1>", "<l2>"}, delim)
		return DatasetID{}, errors.NewParse(s, template, parseHint)
	}
	return NewDatasetID(parts[0], parts[1], parts[2], parts[3:5], norm)
}

// Group returns the publisher group segment.
func (d DatasetID) Group() string { return d.group }

// Name returns the lower-case dataset name segment.
func (d DatasetID) Name() string { return d.name }

// Version returns the version segment.
func (d DatasetID) Version() string { return d.version }

// Langs returns a copy of the canonical language tuple.
func (d DatasetID) Langs() []langtag.Tag {
	out := make([]langtag.Tag, len(d.langs))
	copy(out, d.langs)
	return out
}

// IsZero reports whether the identifier is the invalid zero value.
func (d DatasetID) IsZero() bool { return d.name == "" }

// LangStr returns the language segment of the canonical string, reusable
// for display on its own.
func (d DatasetID) LangStr() string {
	return d.langStr(Delim)
}

func (d DatasetID) langStr(delim string) string {
	parts := make([]string, len(d.langs))
	for i, tag := range d.langs {
		parts[i] = tag.String()
	}
	return strings.Join(parts, delim)
}

// Format renders the canonical string form, all segments joined by delim.
// An empty delim means Delim.
func (d DatasetID) Format(delim string) string {
	if delim == "" {
		delim = Delim
	}
	return strings.Join([]string{d.group, d.name, d.version, d.langStr(delim)}, delim)
}

// String returns the canonical form with the default delimiter.
func (d DatasetID) String() string { return d.Format(Delim) }

// Equal reports structural equality over the normalized fields. Language
// comparison is canonical tag equality, not raw string equality.
func (d DatasetID) Equal(other DatasetID) bool {
	return d.Compare(other) == 0
}

// Compare orders identifiers field-wise: group, name, version, then the
// language tuple element by element.
func (d DatasetID) Compare(other DatasetID) int {
	if c := strings.Compare(d.group, other.group); c != 0 {
		return c
	}
	if c := strings.Compare(d.name, other.name); c != 0 {
		return c
	}
	if c := strings.Compare(d.version, other.version); c != 0 {
		return c
	}
	if c := len(d.langs) - len(other.langs); c != 0 {
		if c < 0 {
			return -1
		}
		return 1
	}
	for i := range d.langs {
		if c := d.langs[i].Compare(other.langs[i]); c != 0 {
			return c
		}
	}
	return 0
}
