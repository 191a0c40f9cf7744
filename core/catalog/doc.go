// Package catalog is the metadata core of mtcat: canonical dataset
// identifiers, retrievable entries, experiments, and papers.
//
// The types form a bottom-up composition: raw strings become a DatasetID
// (identity), a DatasetID is owned by an Entry (one retrievable unit), an
// Experiment bundles Entries for one language direction, and a Paper
// aggregates Experiments under a bibliographic citation. All validation is
// fail-fast at construction; a violation is a catalog-data error meant to be
// fixed in the registry, never recovered here.
package catalog
