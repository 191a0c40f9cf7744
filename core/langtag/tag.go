// Package langtag provides canonical, comparable language tags for dataset
// identifiers and language directions.
//
// Tags follow the structural shape of BCP-47: a primary language subtag,
// an optional script subtag, and an optional region subtag. Normalization
// here is purely structural (subtag shape and letter case); registry-driven
// canonical mapping (e.g. ISO 639-1 to 639-3 promotion) is performed by an
// external service and is out of scope for this package. Callers that need
// a different normalization policy inject their own Normalizer.
package langtag

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/mtcat/mtcat/core/errors"
)

// SubtagSep joins subtags in the canonical string form. A hyphen would
// collide with the dataset identifier delimiter, so tags use underscores
// (e.g. "eng_Latn", "por_BR").
const SubtagSep = "_"

// Tag is a canonical language tag. The zero value is not a valid tag;
// construct tags through a Normalizer.
type Tag struct {
	lang   string // primary subtag, 2-3 lower-case letters
	script string // optional, 4 letters, title case
	region string // optional, 2 upper-case letters or 3 digits
}

// Lang returns the primary language subtag.
func (t Tag) Lang() string { return t.lang }

// Script returns the script subtag, or "" when absent.
func (t Tag) Script() string { return t.script }

// Region returns the region subtag, or "" when absent.
func (t Tag) Region() string { return t.region }

// IsZero reports whether the tag is the invalid zero value.
func (t Tag) IsZero() bool { return t.lang == "" }

// String returns the canonical string form, subtags joined by SubtagSep.
func (t Tag) String() string {
	var sb strings.Builder
	sb.WriteString(t.lang)
	if t.script != "" {
		sb.WriteString(SubtagSep)
		sb.WriteString(t.script)
	}
	if t.region != "" {
		sb.WriteString(SubtagSep)
		sb.WriteString(t.region)
	}
	return sb.String()
}

// Equal reports whether two tags are the same canonical tag.
func (t Tag) Equal(other Tag) bool { return t == other }

// Compare orders tags by their canonical string form.
func (t Tag) Compare(other Tag) int {
	return strings.Compare(t.String(), other.String())
}

// Normalizer turns a raw tag string into a canonical Tag.
// Implementations must be deterministic: the same raw string always yields
// the same Tag. The returned error wraps errors.ErrInvalidTag.
type Normalizer interface {
	Normalize(raw string) (Tag, error)
}

// NormalizerFunc adapts a function to the Normalizer interface.
type NormalizerFunc func(raw string) (Tag, error)

// Normalize implements Normalizer.
func (f NormalizerFunc) Normalize(raw string) (Tag, error) { return f(raw) }

// tagGrammar is the participle grammar for raw language tags.
// Examples: "en", "eng", "en-US", "eng_Latn", "eng-latn-us", "es_419"
//
//nolint:govet // participle grammar tags are not standard struct tags
type tagGrammar struct {
	Lang string   `@Subtag`
	Rest []string `( Sep @Subtag )*`
}

// tagLexer defines the lexer for raw tags. Both "-" and "_" separate subtags.
var tagLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Subtag", Pattern: `[A-Za-z0-9]+`},
	{Name: "Sep", Pattern: `[-_]`},
})

var tagParser = participle.MustBuild[tagGrammar](
	participle.Lexer(tagLexer),
)

// Standard is the default structural Normalizer. It validates subtag shapes
// and canonicalizes letter case: language lower, script title, region upper.
type Standard struct{}

// Normalize implements Normalizer.
func (Standard) Normalize(raw string) (Tag, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Tag{}, errors.NewInvalidTag(raw, "empty tag")
	}

	parsed, err := tagParser.ParseString("", s)
	if err != nil {
		return Tag{}, errors.NewInvalidTag(raw, "not a language tag")
	}

	lang := strings.ToLower(parsed.Lang)
	if len(lang) < 2 || len(lang) > 3 || !isAlpha(lang) {
		return Tag{}, errors.NewInvalidTag(raw, "language subtag must be 2-3 letters")
	}

	tag := Tag{lang: lang}
	for _, sub := range parsed.Rest {
		switch {
		case len(sub) == 4 && isAlpha(sub):
			if tag.script != "" {
				return Tag{}, errors.NewInvalidTag(raw, "multiple script subtags")
			}
			if tag.region != "" {
				return Tag{}, errors.NewInvalidTag(raw, "script subtag must precede region")
			}
			tag.script = titleCase(sub)
		case (len(sub) == 2 && isAlpha(sub)) || (len(sub) == 3 && isDigits(sub)):
			if tag.region != "" {
				return Tag{}, errors.NewInvalidTag(raw, "multiple region subtags")
			}
			tag.region = strings.ToUpper(sub)
		default:
			return Tag{}, errors.NewInvalidTag(raw, "unrecognized subtag "+sub)
		}
	}
	return tag, nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func titleCase(s string) string {
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
