package catalog

import (
	"github.com/google/uuid"

	"github.com/mtcat/mtcat/core/errors"
	"github.com/mtcat/mtcat/core/langtag"
)

// Paper aggregates experiments under a bibliographic citation.
//
// Papers are compared by identity, never by structure: a Paper holds lists
// of mutable Experiments, so structural equality would make it unusable as a
// set member or map key. Each Paper is assigned a unique ID at construction;
// use pointer identity or ID() for membership. Structural equality is
// intentionally not provided.
type Paper struct {
	id          string
	name        string
	title       string
	url         string
	cite        string
	experiments []*Experiment
	langs       map[langtag.Pair]struct{}
}

// NewPaper builds a paper over its experiments and registers it into each
// experiment's papers back-reference set. When langs is empty it is derived
// as the set of directions across the experiments. The back-reference insert
// is idempotent: constructing again over the same Experiment values adds
// each paper exactly once.
func NewPaper(name, title, url, cite string, experiments []*Experiment, langs ...langtag.Pair) (*Paper, error) {
	for i, x := range experiments {
		if x == nil {
			return nil, errors.NewEmptyEntry("experiments", i)
		}
	}

	langSet := make(map[langtag.Pair]struct{})
	if len(langs) > 0 {
		for _, pair := range langs {
			langSet[pair] = struct{}{}
		}
	} else {
		for _, x := range experiments {
			langSet[x.Langs()] = struct{}{}
		}
	}

	p := &Paper{
		id:          uuid.New().String(),
		name:        name,
		title:       title,
		url:         url,
		cite:        cite,
		experiments: append([]*Experiment(nil), experiments...),
		langs:       langSet,
	}
	for _, x := range p.experiments {
		x.addPaper(p)
	}
	return p, nil
}

// ID returns the unique identity key assigned at construction.
func (p *Paper) ID() string { return p.id }

// Name returns the short citation key, e.g. "author1-etal-year".
func (p *Paper) Name() string { return p.name }

// Title returns the paper title.
func (p *Paper) Title() string { return p.title }

// URL returns the paper URL.
func (p *Paper) URL() string { return p.url }

// Cite returns the bibliographic text.
func (p *Paper) Cite() string { return p.cite }

// Experiments returns a copy of the owned experiment list.
func (p *Paper) Experiments() []*Experiment {
	return append([]*Experiment(nil), p.experiments...)
}

// Langs returns the set of language directions covered by the paper.
func (p *Paper) Langs() map[langtag.Pair]struct{} {
	out := make(map[langtag.Pair]struct{}, len(p.langs))
	for pair := range p.langs {
		out[pair] = struct{}{}
	}
	return out
}

// HasLang reports whether the paper covers the given direction.
func (p *Paper) HasLang(pair langtag.Pair) bool {
	_, ok := p.langs[pair]
	return ok
}
