package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/phrazzld/tasktrack/internal/events"
	"github.com/phrazzld/tasktrack/internal/store"
)

// BackupCoordinator implements store.BackupManager on top of a Layout.
// Snapshots are plain copies of collection files; their modification time
// is the moment the snapshot was taken, which is what pruning measures.
type BackupCoordinator struct {
	layout *Layout
	opts   options
	logger *slog.Logger
}

// Ensure BackupCoordinator implements store.BackupManager interface
var _ store.BackupManager = (*BackupCoordinator)(nil)

// NewBackupCoordinator creates a BackupCoordinator.
// If logger is nil, a default logger will be used.
func NewBackupCoordinator(layout *Layout, logger *slog.Logger, opts ...Option) *BackupCoordinator {
	if layout == nil {
		panic("layout cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupCoordinator{
		layout: layout,
		opts:   applyOptions(opts),
		logger: logger.With(slog.String("component", "backup_coordinator")),
	}
}

// CreateBackup implements store.BackupManager.CreateBackup
func (c *BackupCoordinator) CreateBackup(
	ctx context.Context,
	name store.CollectionName,
	st store.CollectionStore,
) (store.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return store.Snapshot{}, false, err
	}
	if err := name.Validate(); err != nil {
		return store.Snapshot{}, false, err
	}

	format := st.Format()
	src := st.Path(name)
	info, err := c.layout.Stat(src)
	if err != nil {
		c.reportFailure(ctx, name, format, src, err)
		return store.Snapshot{}, false, err
	}
	if !info.Exists {
		return store.Snapshot{}, false, nil
	}

	snap, err := c.snapshot(name, format, func(w io.Writer) error {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		c.reportFailure(ctx, name, format, snap.Path, err)
		return store.Snapshot{}, false, err
	}

	c.reportCreated(ctx, snap)
	return snap, true, nil
}

// WriteSnapshot implements store.BackupManager.WriteSnapshot
func (c *BackupCoordinator) WriteSnapshot(
	ctx context.Context,
	name store.CollectionName,
	format store.Format,
	data []byte,
) (store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return store.Snapshot{}, err
	}
	if err := name.Validate(); err != nil {
		return store.Snapshot{}, err
	}
	if err := format.Validate(); err != nil {
		return store.Snapshot{}, err
	}

	snap, err := c.snapshot(name, format, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		c.reportFailure(ctx, name, format, snap.Path, err)
		return store.Snapshot{}, err
	}

	c.reportCreated(ctx, snap)
	return snap, nil
}

// snapshot creates the backup file, fills it with write and stamps its
// modification time with the coordinator's clock. On failure the returned
// Snapshot still carries the target path.
func (c *BackupCoordinator) snapshot(
	name store.CollectionName,
	format store.Format,
	write func(io.Writer) error,
) (store.Snapshot, error) {
	now := c.opts.clock().Truncate(time.Second)
	snap := store.Snapshot{
		Collection: name,
		Format:     format,
		Timestamp:  now,
		Path:       c.layout.BackupPath(name, format, now),
	}

	if err := c.layout.EnsureReady(); err != nil {
		return snap, err
	}

	fail := func(err error) (store.Snapshot, error) {
		return snap, store.NewStoreError(store.ErrStorageIO, "backup", name, format, snap.Path, err)
	}

	f, err := os.Create(snap.Path)
	if err != nil {
		return fail(err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fail(err)
	}
	if err := f.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chtimes(snap.Path, now, now); err != nil {
		return fail(err)
	}

	info, err := c.layout.Stat(snap.Path)
	if err != nil {
		return snap, err
	}
	snap.Size = info.Size
	return snap, nil
}

// PruneOlderThan implements store.BackupManager.PruneOlderThan
func (c *BackupCoordinator) PruneOlderThan(ctx context.Context, days int) (int, error) {
	if days < 0 {
		return 0, fmt.Errorf("%w: retention days must be non-negative, got %d", store.ErrInvalidArgument, days)
	}
	cutoff := c.opts.clock().Add(-time.Duration(days) * 24 * time.Hour)
	return c.PruneBefore(ctx, cutoff)
}

// PruneBefore removes every backup last modified before cutoff. A file that
// cannot be removed is logged and skipped; the count covers only files that
// were actually removed.
func (c *BackupCoordinator) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	backups, err := c.layout.Backups()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, b := range backups {
		if !b.ModTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(b.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("failed to remove backup",
				"path", b.Path,
				"error", err)
			continue
		}
		removed++
	}

	c.logger.Info("pruned backups",
		"removed", removed,
		"examined", len(backups),
		"cutoff", cutoff)
	c.opts.emit(ctx, c.logger, events.NewStorageEvent(
		events.EventBackupsPruned, "", "", c.layout.BackupsDir(), removed, nil))

	return removed, nil
}

// Statistics implements store.BackupManager.Statistics
func (c *BackupCoordinator) Statistics(ctx context.Context) (store.StorageStats, error) {
	if err := ctx.Err(); err != nil {
		return store.StorageStats{}, err
	}
	if err := c.layout.EnsureReady(); err != nil {
		return store.StorageStats{}, err
	}

	var stats store.StorageStats

	structured, err := c.layout.List(store.FormatStructured)
	if err != nil {
		return store.StorageStats{}, err
	}
	opaque, err := c.layout.List(store.FormatOpaque)
	if err != nil {
		return store.StorageStats{}, err
	}
	backups, err := c.layout.Backups()
	if err != nil {
		return store.StorageStats{}, err
	}

	stats.StructuredFiles = len(structured)
	stats.OpaqueFiles = len(opaque)
	stats.Backups = len(backups)

	for _, group := range [][]FileInfo{structured, opaque, backups} {
		for _, f := range group {
			stats.TotalBytes += f.Size
		}
	}
	for _, b := range backups {
		if b.ModTime.After(stats.LatestBackup) {
			stats.LatestBackup = b.ModTime
		}
	}

	return stats, nil
}

func (c *BackupCoordinator) reportCreated(ctx context.Context, snap store.Snapshot) {
	c.logger.Info("backup created",
		"collection", snap.Collection,
		"format", snap.Format,
		"path", snap.Path,
		"bytes", snap.Size)
	c.opts.emit(ctx, c.logger, events.NewStorageEvent(
		events.EventBackupCreated, string(snap.Collection), string(snap.Format), snap.Path, 0, nil))
}

func (c *BackupCoordinator) reportFailure(
	ctx context.Context,
	name store.CollectionName,
	format store.Format,
	path string,
	err error,
) {
	c.logger.Warn("backup failed",
		"collection", name,
		"format", format,
		"path", path,
		"error", err)
	c.opts.emit(ctx, c.logger, events.NewStorageEvent(
		events.EventBackupFailed, string(name), string(format), path, 0, err))
}
