package store

import (
	"context"

	"github.com/phrazzld/tasktrack/internal/record"
)

// SaveOptions controls a single Save call.
type SaveOptions struct {
	// SkipBackup suppresses the best-effort backup of an existing file.
	SkipBackup bool
}

// SaveOption mutates SaveOptions.
type SaveOption func(*SaveOptions)

// WithoutBackup suppresses the backup normally taken before an existing
// collection file is overwritten.
func WithoutBackup() SaveOption {
	return func(o *SaveOptions) {
		o.SkipBackup = true
	}
}

// ApplySaveOptions folds opts over the defaults.
func ApplySaveOptions(opts ...SaveOption) SaveOptions {
	var o SaveOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SaveResult reports what a Save call wrote.
type SaveResult struct {
	Path    string
	Records int
	Bytes   int
	// Backup is the snapshot taken before the overwrite, nil when the file
	// did not exist, the backup was suppressed, or the backup failed.
	Backup *Snapshot
	// BackupErr is set when the backup was attempted and failed. The save
	// itself still succeeded.
	BackupErr error
}

// CollectionStore defines the interface for one on-disk format.
// Implementations hold no open handles between calls.
type CollectionStore interface {
	// Format identifies the encoding this store writes.
	Format() Format

	// Path returns the file a collection lives in for this format.
	Path(name CollectionName) string

	// Encode converts items to the bytes Save would write, without touching disk.
	// Returns an error wrapping ErrSerialization when an item cannot be represented.
	Encode(items []record.Recorder) ([]byte, error)

	// Save replaces the whole collection in one write. A backup of the
	// existing file is attempted first unless WithoutBackup is given; a
	// failed backup is reported in SaveResult, never returned as an error.
	// Returns errors wrapping ErrSerialization or ErrStorageIO.
	Save(ctx context.Context, name CollectionName, items []record.Recorder, opts ...SaveOption) (SaveResult, error)

	// Load returns the stored records. found is false when the collection
	// file does not exist, which is not an error. Returns an error wrapping
	// ErrCorruptData when the bytes cannot be parsed, or ErrStorageIO when
	// they cannot be read.
	Load(ctx context.Context, name CollectionName) (records []record.Record, found bool, err error)
}

// BackupManager defines snapshot creation, pruning and statistics.
type BackupManager interface {
	// CreateBackup copies the current collection file of st into the backups
	// directory. found is false when there was nothing to copy.
	CreateBackup(ctx context.Context, name CollectionName, st CollectionStore) (snap Snapshot, found bool, err error)

	// WriteSnapshot stores already-encoded collection bytes as a backup.
	WriteSnapshot(ctx context.Context, name CollectionName, format Format, data []byte) (Snapshot, error)

	// PruneOlderThan removes backups whose modification time is more than
	// days old and returns how many were actually removed.
	PruneOlderThan(ctx context.Context, days int) (int, error)

	// Statistics recomputes the storage aggregate from the filesystem.
	Statistics(ctx context.Context) (StorageStats, error)
}
