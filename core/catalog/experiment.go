package catalog

import (
	"sync"

	"github.com/mtcat/mtcat/core/errors"
	"github.com/mtcat/mtcat/core/langtag"
)

// Index resolves a dataset name for a language direction into a concrete
// Entry. The catalog index implementation lives outside this package; the
// interface is declared where it is consumed.
type Index interface {
	// GetEntry returns the entry registered under name for the given
	// direction, or an error wrapping errors.ErrEntryNotFound.
	GetEntry(name string, langs langtag.Pair) (*Entry, error)
}

// Experiment is a language-direction-specific bundle of training and test
// entries. One of the test entries may serve as a validation split by
// convention; no field distinguishes it.
//
// The papers set is a back-reference populated by Paper construction, never
// an ownership edge. Access to it is serialized per Experiment so concurrent
// catalog loading cannot lose updates.
type Experiment struct {
	langs langtag.Pair
	train []*Entry
	tests []*Entry

	mu     sync.Mutex
	papers map[*Paper]struct{}
}

// NewExperiment builds an experiment from concrete entries. It fails with an
// error wrapping errors.ErrEmptyEntry when any element of either list is nil.
func NewExperiment(langs langtag.Pair, train, tests []*Entry) (*Experiment, error) {
	for i, e := range train {
		if e == nil {
			return nil, errors.NewEmptyEntry("train", i)
		}
	}
	for i, e := range tests {
		if e == nil {
			return nil, errors.NewEmptyEntry("tests", i)
		}
	}
	return &Experiment{
		langs:  langs,
		train:  append([]*Entry(nil), train...),
		tests:  append([]*Entry(nil), tests...),
		papers: make(map[*Paper]struct{}),
	}, nil
}

// MakeExperiment resolves each name through the index, preserving input
// order. Lookup errors from the index propagate unchanged.
func MakeExperiment(index Index, langs langtag.Pair, trainNames, testNames []string) (*Experiment, error) {
	train := make([]*Entry, 0, len(trainNames))
	for _, name := range trainNames {
		e, err := index.GetEntry(name, langs)
		if err != nil {
			return nil, err
		}
		train = append(train, e)
	}
	tests := make([]*Entry, 0, len(testNames))
	for _, name := range testNames {
		e, err := index.GetEntry(name, langs)
		if err != nil {
			return nil, err
		}
		tests = append(tests, e)
	}
	return NewExperiment(langs, train, tests)
}

// Langs returns the language direction.
func (x *Experiment) Langs() langtag.Pair { return x.langs }

// Train returns a copy of the training entry list.
func (x *Experiment) Train() []*Entry {
	return append([]*Entry(nil), x.train...)
}

// Tests returns a copy of the test entry list.
func (x *Experiment) Tests() []*Entry {
	return append([]*Entry(nil), x.tests...)
}

// Papers returns a snapshot of the papers referencing this experiment.
func (x *Experiment) Papers() []*Paper {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]*Paper, 0, len(x.papers))
	for p := range x.papers {
		out = append(out, p)
	}
	return out
}

// HasPaper reports whether p already references this experiment.
func (x *Experiment) HasPaper(p *Paper) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.papers[p]
	return ok
}

// addPaper inserts a back-reference. Inserting an already-present paper is
// a no-op, which keeps repeated linking idempotent.
func (x *Experiment) addPaper(p *Paper) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.papers[p] = struct{}{}
}
