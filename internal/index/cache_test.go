package index

import (
	"path/filepath"
	"testing"

	"github.com/mtcat/mtcat/core/catalog"
)

func buildTestIndex(t *testing.T) *InMemory {
	t.Helper()
	idx := NewInMemory()

	train := testEntry(t, "Statmt", "paracrawl", "9", "eng", "deu")
	test := testEntry(t, "Statmt", "newstest2020", "1", "eng", "deu")

	did, err := catalog.NewDatasetID("OPUS", "books", "2", []string{"eng", "deu"}, norm)
	if err != nil {
		t.Fatal(err)
	}
	archived, err := catalog.NewEntry(did, "https://example.org/books.zip", catalog.EntrySpec{
		InPaths: []string{"books.en", "books.de"},
		InExt:   "txt",
		Cite:    "@misc{books}",
		Cols:    &[2]int{0, 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, e := range []*catalog.Entry{train, test, archived} {
		if err := idx.Add(e); err != nil {
			t.Fatal(err)
		}
	}

	x, err := catalog.NewExperiment(testPair(t, "eng", "deu"),
		[]*catalog.Entry{train}, []*catalog.Entry{test})
	if err != nil {
		t.Fatal(err)
	}
	p, err := catalog.NewPaper("gowda-etal-2021", "Many-to-English MT", "https://example.org/p",
		"@inproceedings{gowda21}", []*catalog.Experiment{x})
	if err != nil {
		t.Fatal(err)
	}
	idx.AddPaper(p)
	return idx
}

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "index.db"), norm)
	idx := buildTestIndex(t)
	fp := Fingerprint([]byte("registry source"))

	if err := cache.Store(idx, fp); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	loaded, ok, err := cache.Load(fp)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("Load reported a miss for the matching fingerprint")
	}
	if loaded.Len() != idx.Len() {
		t.Errorf("loaded %d entries, want %d", loaded.Len(), idx.Len())
	}

	e, ok := loaded.Get("OPUS-books-2-eng-deu")
	if !ok {
		t.Fatal("archived entry missing after reload")
	}
	if !e.IsArchive() {
		t.Error("reloaded entry lost its archive flag")
	}
	if got := e.InPaths(); len(got) != 2 || got[0] != "books.en" || got[1] != "books.de" {
		t.Errorf("InPaths = %v", got)
	}
	if e.InExt() != "txt" || e.Cite() != "@misc{books}" {
		t.Errorf("entry fields lost: in_ext=%q cite=%q", e.InExt(), e.Cite())
	}
	if cols := e.Cols(); cols == nil || cols[0] != 0 || cols[1] != 1 {
		t.Errorf("Cols = %v, want &[0 1]", cols)
	}

	p, ok := loaded.GetPaper("gowda-etal-2021")
	if !ok {
		t.Fatal("paper missing after reload")
	}
	exps := p.Experiments()
	if len(exps) != 1 {
		t.Fatalf("experiments = %d, want 1", len(exps))
	}
	if train := exps[0].Train(); len(train) != 1 || train[0].DID().Name() != "paracrawl" {
		t.Errorf("train = %v", train)
	}
	if tests := exps[0].Tests(); len(tests) != 1 || tests[0].DID().Name() != "newstest2020" {
		t.Errorf("tests = %v", tests)
	}
	// paper construction during reload relinks the back-reference graph
	if !exps[0].HasPaper(p) {
		t.Error("back-reference not rebuilt on reload")
	}
}

func TestCacheFingerprintMismatch(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "index.db"), norm)
	idx := buildTestIndex(t)

	if err := cache.Store(idx, Fingerprint([]byte("v1"))); err != nil {
		t.Fatal(err)
	}
	_, ok, err := cache.Load(Fingerprint([]byte("v2")))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("stale cache must report a miss")
	}
}

func TestCacheEmpty(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "index.db"), norm)
	_, ok, err := cache.Load(Fingerprint([]byte("anything")))
	if err != nil {
		t.Fatalf("Load on empty cache failed: %v", err)
	}
	if ok {
		t.Error("empty cache must report a miss")
	}
}

func TestCacheStoreReplaces(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "index.db"), norm)
	idx := buildTestIndex(t)

	if err := cache.Store(idx, Fingerprint([]byte("v1"))); err != nil {
		t.Fatal(err)
	}

	smaller := NewInMemory()
	if err := smaller.Add(testEntry(t, "Statmt", "paracrawl", "9", "eng", "deu")); err != nil {
		t.Fatal(err)
	}
	fp2 := Fingerprint([]byte("v2"))
	if err := cache.Store(smaller, fp2); err != nil {
		t.Fatal(err)
	}

	loaded, ok, err := cache.Load(fp2)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if loaded.Len() != 1 {
		t.Errorf("Len = %d, want 1; old contents were not replaced", loaded.Len())
	}
}
