// Package filestore provides local-filesystem implementations of the
// persistence interfaces defined in the internal/store package.
//
// A Layout owns the canonical directory tree. StructuredStore writes each
// collection as indented JSON; OpaqueStore writes it as a gob stream that
// keeps native Go types intact. BackupCoordinator takes timestamped
// snapshots, prunes them by age and computes storage statistics.
//
// Every file is opened and closed within a single call. There is no locking:
// two concurrent saves of the same collection may interleave.
package filestore
