// Package index implements the catalog's dataset index: an in-memory map
// from dataset identifiers to entries, resolvable by name and language
// direction, plus a SQLite-backed cache keyed by a fingerprint of the
// registry source.
package index

import (
	"log/slog"
	"sync"

	"github.com/mtcat/mtcat/core/catalog"
	"github.com/mtcat/mtcat/core/errors"
	"github.com/mtcat/mtcat/core/langtag"
	"github.com/mtcat/mtcat/internal/logging"
)

// InMemory is the compiled catalog index. It satisfies catalog.Index.
// Registration and lookup are safe for concurrent use.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]*catalog.Entry   // canonical DID string -> entry
	byName  map[string][]*catalog.Entry // dataset name -> entries, insertion order
	papers  map[string]*catalog.Paper   // citation key -> paper
	log     *slog.Logger
}

// NewInMemory returns an empty index.
func NewInMemory() *InMemory {
	return &InMemory{
		entries: make(map[string]*catalog.Entry),
		byName:  make(map[string][]*catalog.Entry),
		papers:  make(map[string]*catalog.Paper),
		log:     logging.ForComponent("index"),
	}
}

// Add registers an entry under its canonical identifier. Duplicate
// identifiers are catalog-data errors and fail fast.
func (idx *InMemory) Add(e *catalog.Entry) error {
	if e == nil {
		return errors.NewEmptyEntry("entries", len(idx.entries))
	}
	did := e.DID().String()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.entries[did]; ok {
		return errors.Wrapf(errors.ErrInvalidEntryShape, "duplicate entry %s", did)
	}
	idx.entries[did] = e
	name := e.DID().Name()
	idx.byName[name] = append(idx.byName[name], e)
	return nil
}

// AddPaper registers a paper under its citation key, replacing any previous
// registration of the same key.
func (idx *InMemory) AddPaper(p *catalog.Paper) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.papers[p.Name()] = p
}

// Get returns the entry registered under the exact canonical identifier.
func (idx *InMemory) Get(did string) (*catalog.Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.entries[did]
	return e, ok
}

// GetEntry resolves a dataset name for a language direction. Entries
// registered under either direction match; callers use Entry.IsSwap to
// decide whether the columns need swapping. Misses fail with an error
// wrapping errors.ErrEntryNotFound.
func (idx *InMemory) GetEntry(name string, langs langtag.Pair) (*catalog.Entry, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, e := range idx.byName[name] {
		tags := e.DID().Langs()
		if len(tags) != 2 {
			continue
		}
		have := langtag.Pair{tags[0], tags[1]}
		if have.Equal(langs) || have.Equal(langs.Swapped()) {
			return e, nil
		}
	}
	return nil, errors.NewNotFound(name, langs.String())
}

// GetPaper returns the paper registered under the citation key.
func (idx *InMemory) GetPaper(name string) (*catalog.Paper, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	p, ok := idx.papers[name]
	return p, ok
}

// Entries returns all entries in unspecified order.
func (idx *InMemory) Entries() []*catalog.Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]*catalog.Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		out = append(out, e)
	}
	return out
}

// Papers returns all registered papers in unspecified order.
func (idx *InMemory) Papers() []*catalog.Paper {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]*catalog.Paper, 0, len(idx.papers))
	for _, p := range idx.papers {
		out = append(out, p)
	}
	return out
}

// Len returns the number of registered entries.
func (idx *InMemory) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

var _ catalog.Index = (*InMemory)(nil)
