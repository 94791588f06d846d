// Package service contains the application-facing use cases of the task
// tracker's persistence layer.
//
// PersistenceService is the single entry point the rest of the application
// uses to save and load collections, take backups, keep the two on-disk
// formats in step and report storage statistics. It depends only on the
// interfaces in internal/store, never on a concrete storage implementation,
// and it never hands raw file paths to its callers.
//
// Error handling:
//   - Failures from the store layer are wrapped in PersistenceServiceError and
//     keep their store sentinel, so errors.Is(err, store.ErrCorruptData) works.
//   - A collection that was never written is reported as found=false by
//     LoadCollection and as store.ErrNoData by the typed helpers.
//   - Best-effort operations (full backup, format synchronization) keep going
//     after a per-collection failure and return every failure joined.
package service
