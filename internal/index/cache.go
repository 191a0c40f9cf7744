package index

import (
	"database/sql"
	"log/slog"
	"strings"

	"github.com/mtcat/mtcat/core/catalog"
	"github.com/mtcat/mtcat/core/errors"
	"github.com/mtcat/mtcat/core/langtag"
	"github.com/mtcat/mtcat/internal/logging"
)

// schemaVersion invalidates cached indexes when the cache layout changes.
const schemaVersion = "1"

// listSep joins multi-valued columns (member paths, entry references).
// Newline cannot appear in identifier segments or member paths.
const listSep = "\n"

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	did      TEXT PRIMARY KEY,
	grp      TEXT NOT NULL,
	name     TEXT NOT NULL,
	version  TEXT NOT NULL,
	langs    TEXT NOT NULL,
	url      TEXT NOT NULL,
	filename TEXT NOT NULL,
	ext      TEXT NOT NULL,
	in_ext   TEXT NOT NULL,
	in_paths TEXT NOT NULL,
	cite     TEXT NOT NULL,
	col_src  INTEGER,
	col_tgt  INTEGER
);
CREATE TABLE IF NOT EXISTS papers (
	name  TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	url   TEXT NOT NULL,
	cite  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS experiments (
	paper TEXT NOT NULL,
	seq   INTEGER NOT NULL,
	lang1 TEXT NOT NULL,
	lang2 TEXT NOT NULL,
	train TEXT NOT NULL,
	tests TEXT NOT NULL,
	PRIMARY KEY (paper, seq)
);
`

// Cache persists a compiled index into a SQLite database so catalog loads
// can skip recompilation when the registry source has not changed. The
// stored index is keyed by a fingerprint of the registry bytes.
//
// The driver is selected at build time: modernc.org/sqlite by default,
// mattn/go-sqlite3 with the cgo_sqlite build tag.
type Cache struct {
	path string
	norm langtag.Normalizer
	log  *slog.Logger
}

// NewCache returns a cache backed by the SQLite database at path. The
// normalizer rebuilds canonical tags when loading; stored tags are already
// canonical, so any deterministic normalizer that accepts its own output
// works.
func NewCache(path string, norm langtag.Normalizer) *Cache {
	return &Cache{
		path: path,
		norm: norm,
		log:  logging.ForComponent("index-cache"),
	}
}

// DriverType reports which SQLite implementation is compiled in:
// "purego" for modernc.org/sqlite, "cgo" for mattn/go-sqlite3.
func DriverType() string { return driverType }

func (c *Cache) open() (*sql.DB, error) {
	db, err := sql.Open(driverName, c.path)
	if err != nil {
		return nil, errors.Wrap(err, "open index cache")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init index cache schema")
	}
	return db, nil
}

// Store writes the compiled index into the cache, replacing any previous
// contents, and records the registry fingerprint it was compiled from.
func (c *Cache) Store(idx *InMemory, fingerprint string) error {
	db, err := c.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin cache store")
	}
	defer tx.Rollback()

	for _, table := range []string{"meta", "entries", "papers", "experiments"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return errors.Wrapf(err, "clear %s", table)
		}
	}
	for key, value := range map[string]string{
		"fingerprint": fingerprint,
		"schema":      schemaVersion,
	} {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return errors.Wrap(err, "store cache meta")
		}
	}

	for _, e := range idx.Entries() {
		did := e.DID()
		var colSrc, colTgt sql.NullInt64
		if cols := e.Cols(); cols != nil {
			colSrc = sql.NullInt64{Int64: int64(cols[0]), Valid: true}
			colTgt = sql.NullInt64{Int64: int64(cols[1]), Valid: true}
		}
		_, err := tx.Exec(
			`INSERT INTO entries (did, grp, name, version, langs, url, filename, ext, in_ext, in_paths, cite, col_src, col_tgt)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			did.String(), did.Group(), did.Name(), did.Version(), tagList(did.Langs()),
			e.URL(), e.Filename(), e.Ext(), e.InExt(),
			strings.Join(e.InPaths(), listSep), e.Cite(), colSrc, colTgt,
		)
		if err != nil {
			return errors.Wrapf(err, "store entry %s", did)
		}
	}

	for _, p := range idx.Papers() {
		if _, err := tx.Exec(
			"INSERT INTO papers (name, title, url, cite) VALUES (?, ?, ?, ?)",
			p.Name(), p.Title(), p.URL(), p.Cite(),
		); err != nil {
			return errors.Wrapf(err, "store paper %s", p.Name())
		}
		for seq, x := range p.Experiments() {
			langs := x.Langs()
			if _, err := tx.Exec(
				"INSERT INTO experiments (paper, seq, lang1, lang2, train, tests) VALUES (?, ?, ?, ?, ?, ?)",
				p.Name(), seq, langs[0].String(), langs[1].String(),
				didList(x.Train()), didList(x.Tests()),
			); err != nil {
				return errors.Wrapf(err, "store experiment %s[%d]", p.Name(), seq)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit cache store")
	}
	c.log.Info("index cached", "path", c.path, "entries", idx.Len(), "fingerprint", fingerprint)
	return nil
}

// Load rebuilds the index from the cache. ok is false, with no error, when
// the cache is empty or was compiled from a registry with a different
// fingerprint; the caller then recompiles from source.
func (c *Cache) Load(fingerprint string) (idx *InMemory, ok bool, err error) {
	db, err := c.open()
	if err != nil {
		return nil, false, err
	}
	defer db.Close()

	var stored string
	row := db.QueryRow("SELECT value FROM meta WHERE key = 'fingerprint'")
	if err := row.Scan(&stored); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "read cache fingerprint")
	}
	if stored != fingerprint {
		c.log.Info("index cache stale", "path", c.path)
		return nil, false, nil
	}
	var version string
	if err := db.QueryRow("SELECT value FROM meta WHERE key = 'schema'").Scan(&version); err != nil || version != schemaVersion {
		return nil, false, nil
	}

	idx = NewInMemory()
	if err := c.loadEntries(db, idx); err != nil {
		return nil, false, err
	}
	if err := c.loadPapers(db, idx); err != nil {
		return nil, false, err
	}
	c.log.Info("index loaded from cache", "path", c.path, "entries", idx.Len())
	return idx, true, nil
}

func (c *Cache) loadEntries(db *sql.DB, idx *InMemory) error {
	rows, err := db.Query(
		"SELECT grp, name, version, langs, url, filename, ext, in_ext, in_paths, cite, col_src, col_tgt FROM entries")
	if err != nil {
		return errors.Wrap(err, "read cached entries")
	}
	defer rows.Close()

	for rows.Next() {
		var grp, name, version, langs, url, filename, ext, inExt, inPaths, cite string
		var colSrc, colTgt sql.NullInt64
		if err := rows.Scan(&grp, &name, &version, &langs, &url, &filename, &ext, &inExt, &inPaths, &cite, &colSrc, &colTgt); err != nil {
			return errors.Wrap(err, "scan cached entry")
		}

		did, err := catalog.NewDatasetID(grp, name, version, splitList(langs), c.norm)
		if err != nil {
			return errors.Wrapf(err, "rebuild identifier %s-%s", grp, name)
		}
		spec := catalog.EntrySpec{
			Filename: filename,
			Ext:      ext,
			InPaths:  splitList(inPaths),
			InExt:    inExt,
			Cite:     cite,
		}
		if colSrc.Valid && colTgt.Valid {
			spec.Cols = &[2]int{int(colSrc.Int64), int(colTgt.Int64)}
		}
		e, err := catalog.NewEntry(did, url, spec)
		if err != nil {
			return errors.Wrapf(err, "rebuild entry %s", did)
		}
		if err := idx.Add(e); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (c *Cache) loadPapers(db *sql.DB, idx *InMemory) error {
	rows, err := db.Query("SELECT name, title, url, cite FROM papers")
	if err != nil {
		return errors.Wrap(err, "read cached papers")
	}
	defer rows.Close()

	type paperRow struct{ name, title, url, cite string }
	var papers []paperRow
	for rows.Next() {
		var r paperRow
		if err := rows.Scan(&r.name, &r.title, &r.url, &r.cite); err != nil {
			return errors.Wrap(err, "scan cached paper")
		}
		papers = append(papers, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range papers {
		experiments, err := c.loadExperiments(db, idx, r.name)
		if err != nil {
			return err
		}
		p, err := catalog.NewPaper(r.name, r.title, r.url, r.cite, experiments)
		if err != nil {
			return errors.Wrapf(err, "rebuild paper %s", r.name)
		}
		idx.AddPaper(p)
	}
	return nil
}

func (c *Cache) loadExperiments(db *sql.DB, idx *InMemory, paper string) ([]*catalog.Experiment, error) {
	rows, err := db.Query(
		"SELECT lang1, lang2, train, tests FROM experiments WHERE paper = ? ORDER BY seq", paper)
	if err != nil {
		return nil, errors.Wrapf(err, "read cached experiments for %s", paper)
	}
	defer rows.Close()

	var out []*catalog.Experiment
	for rows.Next() {
		var lang1, lang2, train, tests string
		if err := rows.Scan(&lang1, &lang2, &train, &tests); err != nil {
			return nil, errors.Wrap(err, "scan cached experiment")
		}
		pair, err := langtag.NewPair(lang1, lang2, c.norm)
		if err != nil {
			return nil, err
		}
		trainEntries, err := c.resolve(idx, train)
		if err != nil {
			return nil, err
		}
		testEntries, err := c.resolve(idx, tests)
		if err != nil {
			return nil, err
		}
		x, err := catalog.NewExperiment(pair, trainEntries, testEntries)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

func (c *Cache) resolve(idx *InMemory, dids string) ([]*catalog.Entry, error) {
	refs := splitList(dids)
	out := make([]*catalog.Entry, 0, len(refs))
	for _, did := range refs {
		e, ok := idx.Get(did)
		if !ok {
			return nil, errors.NewNotFound(did, "")
		}
		out = append(out, e)
	}
	return out, nil
}

func tagList(tags []langtag.Tag) string {
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = tag.String()
	}
	return strings.Join(parts, listSep)
}

func didList(entries []*catalog.Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.DID().String()
	}
	return strings.Join(parts, listSep)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}
