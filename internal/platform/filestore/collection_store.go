package filestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/tasktrack/internal/events"
	"github.com/phrazzld/tasktrack/internal/record"
	"github.com/phrazzld/tasktrack/internal/store"
)

// fileStore implements store.CollectionStore for one codec. StructuredStore
// and OpaqueStore embed it.
type fileStore struct {
	format  store.Format
	codec   codec
	layout  *Layout
	backups store.BackupManager
	opts    options
	logger  *slog.Logger
}

func newFileStore(
	format store.Format,
	c codec,
	layout *Layout,
	backups store.BackupManager,
	logger *slog.Logger,
	opts []Option,
) fileStore {
	if layout == nil {
		panic("layout cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return fileStore{
		format:  format,
		codec:   c,
		layout:  layout,
		backups: backups,
		opts:    applyOptions(opts),
		logger:  logger.With(slog.String("component", string(format)+"_store")),
	}
}

// Format implements store.CollectionStore.Format
func (s *fileStore) Format() store.Format {
	return s.format
}

// Path implements store.CollectionStore.Path
func (s *fileStore) Path(name store.CollectionName) string {
	return s.layout.PathFor(name, s.format)
}

// Encode implements store.CollectionStore.Encode
func (s *fileStore) Encode(items []record.Recorder) ([]byte, error) {
	normalized, err := record.NormalizeAll(items, s.codec.fallback)
	if err != nil {
		return nil, err
	}
	return s.codec.encode(normalized)
}

// Save implements store.CollectionStore.Save
// The collection is fully encoded before anything touches disk, so a
// serialization failure leaves both the live file and the backups untouched.
func (s *fileStore) Save(
	ctx context.Context,
	name store.CollectionName,
	items []record.Recorder,
	opts ...store.SaveOption,
) (store.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return store.SaveResult{}, err
	}
	if err := name.Validate(); err != nil {
		return store.SaveResult{}, err
	}
	if err := s.layout.EnsureReady(); err != nil {
		return store.SaveResult{}, err
	}

	path := s.Path(name)
	log := s.logger.With("collection", name, "path", path)

	data, err := s.Encode(items)
	if err != nil {
		log.Error("failed to encode collection", "error", err, "records", len(items))
		return store.SaveResult{}, store.NewStoreError(store.ErrSerialization, "save", name, s.format, path, err)
	}

	result := store.SaveResult{Path: path, Records: len(items), Bytes: len(data)}

	saveOpts := store.ApplySaveOptions(opts...)
	if s.opts.backupOnSave && !saveOpts.SkipBackup && s.backups != nil {
		snap, found, err := s.backups.CreateBackup(ctx, name, s)
		switch {
		case err != nil:
			result.BackupErr = err
			log.Warn("saving without a backup copy", "error", err)
		case found:
			result.Backup = &snap
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Error("failed to write collection", "error", err)
		return result, store.NewStoreError(store.ErrStorageIO, "save", name, s.format, path, err)
	}

	log.Debug("collection saved", "records", result.Records, "bytes", result.Bytes)
	s.opts.emit(ctx, s.logger, events.NewStorageEvent(
		events.EventCollectionSaved, string(name), string(s.format), path, result.Records, nil))

	return result, nil
}

// Load implements store.CollectionStore.Load
// A missing file yields found=false and no error.
func (s *fileStore) Load(ctx context.Context, name store.CollectionName) ([]record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := name.Validate(); err != nil {
		return nil, false, err
	}
	if err := s.layout.EnsureReady(); err != nil {
		return nil, false, err
	}

	path := s.Path(name)
	info, err := s.layout.Stat(path)
	if err != nil {
		return nil, false, err
	}
	if !info.Exists {
		s.logger.Debug("no data for collection", "collection", name, "path", path)
		return nil, false, nil
	}

	r, err := s.codec.open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, store.NewStoreError(store.ErrStorageIO, "load", name, s.format, path, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			s.logger.Warn("failed to close collection file", "path", path, "error", cerr)
		}
	}()

	records, err := s.codec.decode(r)
	if err != nil {
		kind := store.ErrCorruptData
		if isReadError(err) {
			kind = store.ErrStorageIO
		}
		s.logger.Error("failed to load collection", "collection", name, "path", path, "error", err)
		return nil, false, store.NewStoreError(kind, "load", name, s.format, path, fmt.Errorf("decode: %w", err))
	}

	s.logger.Debug("collection loaded", "collection", name, "records", len(records))
	return records, true, nil
}
