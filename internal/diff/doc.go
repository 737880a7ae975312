// Package diff compares two parsed tables.
//
// Every function in this package is a pure computation over resident data.
// Results are freshly allocated on each call and are never patched
// afterwards, so a caller holding a previous Report never observes a
// partially updated one.
//
// Three comparisons make up a Report:
//   - DiffColumns: header names present in only one table
//   - DiffRows: key values present in only one table
//   - DiffCells: differing values for keys present in both tables
//
// An empty key column means "not yet configured". Row and cell comparisons
// then return zeroed results rather than an error.
package diff
