package registry

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/mtcat/mtcat/core/errors"
	"github.com/mtcat/mtcat/core/langtag"
)

var norm = langtag.Standard{}

const sampleRegistry = `<?xml version="1.0" encoding="UTF-8"?>
<catalog>
  <entry id="Statmt-paracrawl-9-eng-deu" url="https://example.org/paracrawl.tsv.gz">
    <cite>@misc{paracrawl}</cite>
    <cols src="0" tgt="1"/>
  </entry>
  <entry id="Statmt-newstest2020-1-eng-deu" url="https://example.org/newstest2020.tsv"/>
  <entry id="OPUS-books-2-eng-deu" url="https://example.org/books.zip" in-ext="txt">
    <in-path>books.en</in-path>
    <in-path>books.de</in-path>
  </entry>
  <paper name="gowda-etal-2021" title="Many-to-English MT" url="https://example.org/paper">
    <cite>@inproceedings{gowda21}</cite>
    <experiment lang1="eng" lang2="deu">
      <train>paracrawl</train>
      <train>books</train>
      <test>newstest2020</test>
    </experiment>
  </paper>
</catalog>
`

func TestLoad(t *testing.T) {
	idx, err := NewLoader(norm).Load(strings.NewReader(sampleRegistry))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3", idx.Len())
	}

	e, ok := idx.Get("Statmt-paracrawl-9-eng-deu")
	if !ok {
		t.Fatal("paracrawl entry missing")
	}
	if e.Ext() != "tsv.gz" {
		t.Errorf("Ext() = %q, want tsv.gz (inferred from url)", e.Ext())
	}
	if e.Cite() != "@misc{paracrawl}" {
		t.Errorf("Cite() = %q", e.Cite())
	}
	if cols := e.Cols(); cols == nil || cols[0] != 0 || cols[1] != 1 {
		t.Errorf("Cols() = %v, want &[0 1]", cols)
	}

	books, ok := idx.Get("OPUS-books-2-eng-deu")
	if !ok {
		t.Fatal("books entry missing")
	}
	if !books.IsArchive() {
		t.Error("books should be an archive entry")
	}
	if got := books.InPaths(); len(got) != 2 || got[0] != "books.en" {
		t.Errorf("InPaths() = %v", got)
	}

	p, ok := idx.GetPaper("gowda-etal-2021")
	if !ok {
		t.Fatal("paper missing")
	}
	exps := p.Experiments()
	if len(exps) != 1 {
		t.Fatalf("experiments = %d, want 1", len(exps))
	}
	if train := exps[0].Train(); len(train) != 2 || train[0].DID().Name() != "paracrawl" || train[1].DID().Name() != "books" {
		t.Errorf("train order not preserved: %v", train)
	}
	if !exps[0].HasPaper(p) {
		t.Error("paper back-reference not populated")
	}
}

func TestLoadRejectsBadEntry(t *testing.T) {
	tests := []struct {
		name, xml string
		sentinel  error
	}{
		{
			name:     "malformed id",
			xml:      `<catalog><entry id="g-n-v-en" url="https://x.org/a.tsv"/></catalog>`,
			sentinel: errors.ErrMalformedIdentifier,
		},
		{
			name:     "archive without members",
			xml:      `<catalog><entry id="g-n-1-en-fr" url="https://x.org/a.zip"/></catalog>`,
			sentinel: errors.ErrArchiveSpec,
		},
		{
			name: "duplicate entry",
			xml: `<catalog>
				<entry id="g-n-1-en-fr" url="https://x.org/a.tsv"/>
				<entry id="g-n-1-en-fr" url="https://x.org/b.tsv"/>
			</catalog>`,
			sentinel: errors.ErrInvalidEntryShape,
		},
		{
			name: "paper over unknown dataset",
			xml: `<catalog>
				<paper name="p"><experiment lang1="en" lang2="fr"><train>ghost</train></experiment></paper>
			</catalog>`,
			sentinel: errors.ErrEntryNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(norm).Load(strings.NewReader(tt.xml))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestLoadFileCompressed(t *testing.T) {
	dir := t.TempDir()

	gzPath := filepath.Join(dir, "catalog.xml.gz")
	f, err := os.Create(gzPath)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	if _, err := gw.Write([]byte(sampleRegistry)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	xzPath := filepath.Join(dir, "catalog.xml.xz")
	f, err = os.Create(xzPath)
	if err != nil {
		t.Fatal(err)
	}
	xw, err := xz.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := xw.Write([]byte(sampleRegistry)); err != nil {
		t.Fatal(err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	plainPath := filepath.Join(dir, "catalog.xml")
	if err := os.WriteFile(plainPath, []byte(sampleRegistry), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{plainPath, gzPath, xzPath} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			idx, err := NewLoader(norm).LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile(%s) failed: %v", path, err)
			}
			if idx.Len() != 3 {
				t.Errorf("Len() = %d, want 3", idx.Len())
			}
		})
	}
}

func TestLoadFileCached(t *testing.T) {
	dir := t.TempDir()
	regPath := filepath.Join(dir, "catalog.xml")
	if err := os.WriteFile(regPath, []byte(sampleRegistry), 0o644); err != nil {
		t.Fatal(err)
	}
	cachePath := filepath.Join(dir, "index.db")
	loader := NewLoader(norm)

	first, err := loader.LoadFileCached(regPath, cachePath)
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	second, err := loader.LoadFileCached(regPath, cachePath)
	if err != nil {
		t.Fatalf("cached load failed: %v", err)
	}
	if second.Len() != first.Len() {
		t.Errorf("cached load: %d entries, want %d", second.Len(), first.Len())
	}
	if _, ok := second.GetPaper("gowda-etal-2021"); !ok {
		t.Error("cached load lost the paper")
	}

	// changing the registry invalidates the cache
	updated := strings.Replace(sampleRegistry,
		"newstest2020.tsv", "newstest2021.tsv", 1)
	if err := os.WriteFile(regPath, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	third, err := loader.LoadFileCached(regPath, cachePath)
	if err != nil {
		t.Fatalf("reload after change failed: %v", err)
	}
	e, ok := third.Get("Statmt-newstest2020-1-eng-deu")
	if !ok {
		t.Fatal("entry missing after reload")
	}
	if !strings.Contains(e.URL(), "newstest2021") {
		t.Error("reload served stale cached contents")
	}
}
