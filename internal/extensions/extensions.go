// Package extensions infers file extensions for catalog entries from
// filenames or download URLs.
package extensions

import "strings"

// Detector resolves an extension (without the leading dot) from a filename
// or URL path. Entry construction accepts a Detector so tests can substitute
// deterministic fakes.
type Detector func(pathOrFilename string) string

// compressionSuffixes are suffixes that stack on top of an inner extension:
// "corpus.tsv.gz" has extension "tsv.gz", not "gz".
var compressionSuffixes = map[string]bool{
	"gz":  true,
	"xz":  true,
	"bz2": true,
}

// Detect returns the extension of the last path segment, without the leading
// dot. Query strings and fragments are ignored, and a trailing compression
// suffix is kept together with the extension beneath it. Returns "" when the
// name carries no extension.
func Detect(pathOrFilename string) string {
	name := pathOrFilename
	for _, sep := range []string{"?", "#"} {
		if i := strings.Index(name, sep); i >= 0 {
			name = name[:i]
		}
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return ""
	}
	last := parts[len(parts)-1]
	if compressionSuffixes[last] && len(parts) >= 3 {
		return parts[len(parts)-2] + "." + last
	}
	return last
}
