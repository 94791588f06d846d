// Package query provides lazy, composable queries over in-memory task and
// user collections.
//
// Everything here is built on iter.Seq. Filter functions return a fresh
// sequence on every call, so calling them again restarts the query. An
// Iterator, in contrast, is a single-pass cursor: once exhausted it stays
// exhausted and a new one must be created to iterate again.
//
// Nothing in this package performs I/O or holds state between calls except
// IDSequence, whose counter lives only as long as the value itself.
package query
