// Package registry loads the catalog registry, an XML document listing
// dataset entries and the papers built on them, into a compiled index.
//
// Registry files are catalog metadata, not corpus data; readers for the
// corpus formats the entries point at live elsewhere. Files may be stored
// plain or compressed (.xml, .xml.gz, .xml.xz).
package registry

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/ulikunitz/xz"

	"github.com/mtcat/mtcat/core/catalog"
	"github.com/mtcat/mtcat/core/errors"
	"github.com/mtcat/mtcat/core/langtag"
	"github.com/mtcat/mtcat/internal/extensions"
	"github.com/mtcat/mtcat/internal/index"
	"github.com/mtcat/mtcat/internal/logging"
)

// Compiled XPath queries for the registry document shape.
var (
	entryQuery      = xpath.MustCompile("//catalog/entry")
	paperQuery      = xpath.MustCompile("//catalog/paper")
	experimentQuery = xpath.MustCompile("experiment")
)

// Loader parses registry documents into an index. The normalizer and
// extension detector are injected so tests can substitute fakes.
type Loader struct {
	norm   langtag.Normalizer
	detect extensions.Detector
	log    *slog.Logger
}

// NewLoader returns a loader using the given tag normalizer and the default
// extension detector.
func NewLoader(norm langtag.Normalizer) *Loader {
	return &Loader{
		norm:   norm,
		detect: extensions.Detect,
		log:    logging.ForComponent("registry"),
	}
}

// Load parses a registry document and compiles it into an index. Entries
// are registered first so paper experiments can resolve them by name.
func (l *Loader) Load(r io.Reader) (*index.InMemory, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse registry")
	}

	idx := index.NewInMemory()
	for _, node := range xmlquery.QuerySelectorAll(doc, entryQuery) {
		e, err := l.parseEntry(node)
		if err != nil {
			return nil, err
		}
		if err := idx.Add(e); err != nil {
			return nil, err
		}
	}
	for _, node := range xmlquery.QuerySelectorAll(doc, paperQuery) {
		p, err := l.parsePaper(node, idx)
		if err != nil {
			return nil, err
		}
		idx.AddPaper(p)
	}

	l.log.Info("registry loaded", "entries", idx.Len(), "papers", len(idx.Papers()))
	return idx, nil
}

// LoadFile loads a registry file, transparently decompressing .gz and .xz.
func (l *Loader) LoadFile(path string) (*index.InMemory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open registry")
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "xz reader")
		}
		r = xzr
	case strings.HasSuffix(path, ".gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "gzip reader")
		}
		defer gzr.Close()
		r = gzr
	}
	return l.Load(r)
}

// LoadFileCached loads a registry file through the SQLite index cache at
// cachePath: when the cache holds an index compiled from byte-identical
// registry contents, compilation is skipped.
func (l *Loader) LoadFileCached(path, cachePath string) (*index.InMemory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read registry")
	}
	fingerprint := index.Fingerprint(data)

	cache := index.NewCache(cachePath, l.norm)
	idx, ok, err := cache.Load(fingerprint)
	if err != nil {
		return nil, err
	}
	if ok {
		return idx, nil
	}

	var r io.Reader = bytes.NewReader(data)
	switch {
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "xz reader")
		}
		r = xzr
	case strings.HasSuffix(path, ".gz"):
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "gzip reader")
		}
		defer gzr.Close()
		r = gzr
	}
	idx, err = l.Load(r)
	if err != nil {
		return nil, err
	}
	if err := cache.Store(idx, fingerprint); err != nil {
		return nil, err
	}
	return idx, nil
}

func (l *Loader) parseEntry(node *xmlquery.Node) (*catalog.Entry, error) {
	id := node.SelectAttr("id")
	url := node.SelectAttr("url")
	if id == "" || url == "" {
		return nil, errors.NewEntryShape(id, "", "registry entry requires id and url attributes")
	}

	did, err := catalog.ParseDatasetID(id, catalog.Delim, l.norm)
	if err != nil {
		return nil, err
	}

	spec := catalog.EntrySpec{
		Filename: node.SelectAttr("filename"),
		Ext:      node.SelectAttr("ext"),
		InExt:    node.SelectAttr("in-ext"),
		Detect:   l.detect,
	}
	for _, child := range xmlquery.Find(node, "in-path") {
		spec.InPaths = append(spec.InPaths, strings.TrimSpace(child.InnerText()))
	}
	if cite := xmlquery.FindOne(node, "cite"); cite != nil {
		spec.Cite = strings.TrimSpace(cite.InnerText())
	}
	if cols := xmlquery.FindOne(node, "cols"); cols != nil {
		src, err1 := strconv.Atoi(cols.SelectAttr("src"))
		tgt, err2 := strconv.Atoi(cols.SelectAttr("tgt"))
		if err1 != nil || err2 != nil {
			return nil, errors.NewEntryShape(id, "", "cols attributes must be integers")
		}
		spec.Cols = &[2]int{src, tgt}
	}

	return catalog.NewEntry(did, url, spec)
}

func (l *Loader) parsePaper(node *xmlquery.Node, idx *index.InMemory) (*catalog.Paper, error) {
	name := node.SelectAttr("name")
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidEntryShape, "registry paper requires a name attribute")
	}

	var cite string
	if c := xmlquery.FindOne(node, "cite"); c != nil {
		cite = strings.TrimSpace(c.InnerText())
	}

	var experiments []*catalog.Experiment
	for _, xnode := range xmlquery.QuerySelectorAll(node, experimentQuery) {
		pair, err := langtag.NewPair(xnode.SelectAttr("lang1"), xnode.SelectAttr("lang2"), l.norm)
		if err != nil {
			return nil, err
		}
		var trainNames, testNames []string
		for _, t := range xmlquery.Find(xnode, "train") {
			trainNames = append(trainNames, strings.TrimSpace(t.InnerText()))
		}
		for _, t := range xmlquery.Find(xnode, "test") {
			testNames = append(testNames, strings.TrimSpace(t.InnerText()))
		}
		x, err := catalog.MakeExperiment(idx, pair, trainNames, testNames)
		if err != nil {
			return nil, errors.Wrapf(err, "paper %s", name)
		}
		experiments = append(experiments, x)
	}

	return catalog.NewPaper(name, node.SelectAttr("title"), node.SelectAttr("url"), cite, experiments)
}
