// Package store defines the vocabulary and interfaces for collection
// persistence: the named collections, the two on-disk formats, snapshots,
// storage statistics and the error taxonomy shared by every implementation.
// These types keep the application independent of how and where the
// collections are actually written.
package store
