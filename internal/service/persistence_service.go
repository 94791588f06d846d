package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/events"
	"github.com/phrazzld/tasktrack/internal/record"
	"github.com/phrazzld/tasktrack/internal/store"
)

// StorageLayout prepares the directory tree the stores write into.
type StorageLayout interface {
	// EnsureReady creates every storage directory. It must be idempotent.
	EnsureReady() error
}

// FullBackupReport lists what CreateFullBackup produced.
type FullBackupReport struct {
	// Snapshots holds one structured snapshot per collection that had data.
	Snapshots []store.Snapshot
	// Skipped lists collections with no data in either format.
	Skipped []store.CollectionName
}

// SyncReport lists the copies SynchronizeFormats made.
type SyncReport struct {
	// ToOpaque lists collections copied from the structured format.
	ToOpaque []store.CollectionName
	// ToStructured lists collections copied from the opaque format because
	// no structured file existed.
	ToStructured []store.CollectionName
}

// Copied returns the number of collection copies written.
func (r SyncReport) Copied() int {
	return len(r.ToOpaque) + len(r.ToStructured)
}

// PersistenceService provides collection persistence and maintenance operations.
type PersistenceService interface {
	// DefaultFormat is the format used when a caller passes an empty Format.
	DefaultFormat() store.Format

	// SaveCollection replaces a whole collection in one format.
	SaveCollection(
		ctx context.Context,
		name store.CollectionName,
		items []record.Recorder,
		format store.Format,
		opts ...store.SaveOption,
	) (store.SaveResult, error)

	// LoadCollection reads a whole collection. found is false when the
	// collection has never been written in that format.
	LoadCollection(ctx context.Context, name store.CollectionName, format store.Format) ([]record.Record, bool, error)

	// SaveUsers persists the users collection.
	SaveUsers(ctx context.Context, users []*domain.User, format store.Format) (store.SaveResult, error)

	// LoadUsers reads the users collection.
	// Returns store.ErrNoData if it has never been written.
	LoadUsers(ctx context.Context, format store.Format) ([]*domain.User, error)

	// SaveTasks persists the tasks collection.
	SaveTasks(ctx context.Context, tasks []*domain.Task, format store.Format) (store.SaveResult, error)

	// LoadTasks reads the tasks collection.
	// Returns store.ErrNoData if it has never been written.
	LoadTasks(ctx context.Context, format store.Format) ([]*domain.Task, error)

	// CreateBackup snapshots the current file of one collection. found is
	// false when there was nothing to copy.
	CreateBackup(ctx context.Context, name store.CollectionName, format store.Format) (store.Snapshot, bool, error)

	// CreateFullBackup takes a structured snapshot of every collection,
	// whichever format currently holds its data.
	CreateFullBackup(ctx context.Context) (FullBackupReport, error)

	// SynchronizeFormats copies collections between the formats for redundancy.
	// It is best-effort and not atomic.
	SynchronizeFormats(ctx context.Context) (SyncReport, error)

	// PruneBackups removes backups older than days and returns how many were removed.
	PruneBackups(ctx context.Context, days int) (int, error)

	// Statistics reports file counts, total size and the newest backup time.
	Statistics(ctx context.Context) (store.StorageStats, error)
}

// persistenceServiceImpl implements the PersistenceService interface
type persistenceServiceImpl struct {
	stores        map[store.Format]store.CollectionStore
	backups       store.BackupManager
	eventEmitter  events.EventEmitter
	defaultFormat store.Format
	logger        *slog.Logger
}

// Ensure persistenceServiceImpl implements PersistenceService interface
var _ PersistenceService = (*persistenceServiceImpl)(nil)

// NewPersistenceService creates a new PersistenceService.
// stores must contain exactly one store per format. The directory tree is
// created before the service is returned; failing to create it is fatal.
// It returns an error if any of the required dependencies are nil.
func NewPersistenceService(
	layout StorageLayout,
	stores []store.CollectionStore,
	backups store.BackupManager,
	eventEmitter events.EventEmitter,
	defaultFormat store.Format,
	logger *slog.Logger,
) (PersistenceService, error) {
	// Validate dependencies
	if layout == nil {
		return nil, &PersistenceServiceError{Operation: "create_service", Message: "layout cannot be nil"}
	}
	if backups == nil {
		return nil, &PersistenceServiceError{Operation: "create_service", Message: "backups cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &PersistenceServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}

	byFormat := make(map[store.Format]store.CollectionStore, len(stores))
	for _, st := range stores {
		if st == nil {
			return nil, &PersistenceServiceError{Operation: "create_service", Message: "stores cannot contain nil"}
		}
		byFormat[st.Format()] = st
	}
	for _, format := range store.Formats() {
		if _, ok := byFormat[format]; !ok {
			return nil, NewPersistenceServiceError("create_service", "missing store",
				fmt.Errorf("%w: %s", ErrStoreNotConfigured, format))
		}
	}

	if defaultFormat == "" {
		defaultFormat = store.FormatStructured
	}
	if err := defaultFormat.Validate(); err != nil {
		return nil, NewPersistenceServiceError("create_service", "invalid default format", err)
	}

	if err := layout.EnsureReady(); err != nil {
		return nil, NewPersistenceServiceError("create_service", "failed to prepare storage directories", err)
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &persistenceServiceImpl{
		stores:        byFormat,
		backups:       backups,
		eventEmitter:  eventEmitter,
		defaultFormat: defaultFormat,
		logger:        logger.With("component", "persistence_service"),
	}, nil
}

// DefaultFormat implements PersistenceService.DefaultFormat
func (s *persistenceServiceImpl) DefaultFormat() store.Format {
	return s.defaultFormat
}

func (s *persistenceServiceImpl) storeFor(format store.Format) (store.CollectionStore, error) {
	if format == "" {
		format = s.defaultFormat
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}
	st, ok := s.stores[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotConfigured, format)
	}
	return st, nil
}

// SaveCollection implements PersistenceService.SaveCollection
func (s *persistenceServiceImpl) SaveCollection(
	ctx context.Context,
	name store.CollectionName,
	items []record.Recorder,
	format store.Format,
	opts ...store.SaveOption,
) (store.SaveResult, error) {
	st, err := s.storeFor(format)
	if err != nil {
		return store.SaveResult{}, NewPersistenceServiceError("save_collection", "invalid format", err)
	}

	result, err := st.Save(ctx, name, items, opts...)
	if err != nil {
		s.logger.Error("failed to save collection",
			"error", err,
			"collection", name,
			"format", st.Format())
		return result, NewPersistenceServiceError("save_collection", "failed to save "+string(name), err)
	}
	if result.BackupErr != nil {
		s.logger.Warn("collection saved without a backup copy",
			"collection", name,
			"format", st.Format(),
			"error", result.BackupErr)
	}

	s.logger.Info("collection saved",
		"collection", name,
		"format", st.Format(),
		"records", result.Records)
	return result, nil
}

// LoadCollection implements PersistenceService.LoadCollection
func (s *persistenceServiceImpl) LoadCollection(
	ctx context.Context,
	name store.CollectionName,
	format store.Format,
) ([]record.Record, bool, error) {
	st, err := s.storeFor(format)
	if err != nil {
		return nil, false, NewPersistenceServiceError("load_collection", "invalid format", err)
	}

	records, found, err := st.Load(ctx, name)
	if err != nil {
		s.logger.Error("failed to load collection",
			"error", err,
			"collection", name,
			"format", st.Format())
		return nil, false, NewPersistenceServiceError("load_collection", "failed to load "+string(name), err)
	}
	return records, found, nil
}

// SaveUsers implements PersistenceService.SaveUsers
func (s *persistenceServiceImpl) SaveUsers(
	ctx context.Context,
	users []*domain.User,
	format store.Format,
) (store.SaveResult, error) {
	return s.SaveCollection(ctx, store.CollectionUsers, record.From(users), format)
}

// LoadUsers implements PersistenceService.LoadUsers
func (s *persistenceServiceImpl) LoadUsers(ctx context.Context, format store.Format) ([]*domain.User, error) {
	return loadEntities(ctx, s, store.CollectionUsers, format, domain.UserFromRecord)
}

// SaveTasks implements PersistenceService.SaveTasks
func (s *persistenceServiceImpl) SaveTasks(
	ctx context.Context,
	tasks []*domain.Task,
	format store.Format,
) (store.SaveResult, error) {
	return s.SaveCollection(ctx, store.CollectionTasks, record.From(tasks), format)
}

// LoadTasks implements PersistenceService.LoadTasks
func (s *persistenceServiceImpl) LoadTasks(ctx context.Context, format store.Format) ([]*domain.Task, error) {
	return loadEntities(ctx, s, store.CollectionTasks, format, domain.TaskFromRecord)
}

// loadEntities loads a collection and decodes every record. Records that do
// not decode are reported as corrupt data.
func loadEntities[T any](
	ctx context.Context,
	s *persistenceServiceImpl,
	name store.CollectionName,
	format store.Format,
	decode func(record.Record) (T, error),
) ([]T, error) {
	records, found, err := s.LoadCollection(ctx, name, format)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrNoData
	}

	out := make([]T, 0, len(records))
	for i, rec := range records {
		entity, err := decode(rec)
		if err != nil {
			s.logger.Error("stored record does not decode",
				"error", err,
				"collection", name,
				"index", i)
			return nil, NewPersistenceServiceError("load_"+string(name), "failed to decode record",
				fmt.Errorf("%w: record %d: %w", store.ErrCorruptData, i, err))
		}
		out = append(out, entity)
	}
	return out, nil
}

// CreateBackup implements PersistenceService.CreateBackup
func (s *persistenceServiceImpl) CreateBackup(
	ctx context.Context,
	name store.CollectionName,
	format store.Format,
) (store.Snapshot, bool, error) {
	st, err := s.storeFor(format)
	if err != nil {
		return store.Snapshot{}, false, NewPersistenceServiceError("create_backup", "invalid format", err)
	}

	snap, found, err := s.backups.CreateBackup(ctx, name, st)
	if err != nil {
		return store.Snapshot{}, false, NewPersistenceServiceError("create_backup", "failed to back up "+string(name), err)
	}
	if !found {
		s.logger.Info("nothing to back up", "collection", name, "format", st.Format())
	}
	return snap, found, nil
}

// CreateFullBackup implements PersistenceService.CreateFullBackup
// The live structured file is copied when it exists. Otherwise the opaque
// data is re-encoded, so the snapshot is always human-readable.
func (s *persistenceServiceImpl) CreateFullBackup(ctx context.Context) (FullBackupReport, error) {
	var (
		report FullBackupReport
		errs   []error
	)
	structured := s.stores[store.FormatStructured]
	opaque := s.stores[store.FormatOpaque]

	for _, name := range store.Collections() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		snap, found, err := s.backups.CreateBackup(ctx, name, structured)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if found {
			report.Snapshots = append(report.Snapshots, snap)
			continue
		}

		records, found, err := opaque.Load(ctx, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if !found {
			report.Skipped = append(report.Skipped, name)
			continue
		}

		data, err := structured.Encode(record.From(records))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, store.NewStoreError(
				store.ErrSerialization, "full_backup", name, store.FormatStructured, "", err)))
			continue
		}
		snap, err = s.backups.WriteSnapshot(ctx, name, store.FormatStructured, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		report.Snapshots = append(report.Snapshots, snap)
	}

	s.logger.Info("full backup finished",
		"snapshots", len(report.Snapshots),
		"skipped", len(report.Skipped),
		"failures", len(errs))

	if err := errors.Join(errs...); err != nil {
		return report, NewPersistenceServiceError("create_full_backup", "some collections were not backed up", err)
	}
	return report, nil
}

// SynchronizeFormats implements PersistenceService.SynchronizeFormats
// Structured data is authoritative: every structured collection is copied
// over its opaque counterpart. A collection that exists only in the opaque
// format is then copied back to the structured format. Both writes keep
// the usual backup-before-overwrite behaviour.
func (s *persistenceServiceImpl) SynchronizeFormats(ctx context.Context) (SyncReport, error) {
	var (
		report SyncReport
		errs   []error
	)
	structured := s.stores[store.FormatStructured]
	opaque := s.stores[store.FormatOpaque]

	var structuredMissing []store.CollectionName
	for _, name := range store.Collections() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		records, found, err := structured.Load(ctx, name)
		if err != nil {
			s.logger.Warn("skipping collection during sync", "collection", name, "error", err)
			errs = append(errs, fmt.Errorf("%s to opaque: %w", name, err))
			continue
		}
		if !found {
			structuredMissing = append(structuredMissing, name)
			continue
		}
		if _, err := opaque.Save(ctx, name, record.From(records)); err != nil {
			s.logger.Warn("failed to copy collection to opaque format", "collection", name, "error", err)
			errs = append(errs, fmt.Errorf("%s to opaque: %w", name, err))
			continue
		}
		report.ToOpaque = append(report.ToOpaque, name)
	}

	for _, name := range structuredMissing {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		records, found, err := opaque.Load(ctx, name)
		if err != nil {
			s.logger.Warn("skipping collection during sync", "collection", name, "error", err)
			errs = append(errs, fmt.Errorf("%s to structured: %w", name, err))
			continue
		}
		if !found {
			continue
		}
		if _, err := structured.Save(ctx, name, record.From(records)); err != nil {
			s.logger.Warn("failed to copy collection to structured format", "collection", name, "error", err)
			errs = append(errs, fmt.Errorf("%s to structured: %w", name, err))
			continue
		}
		report.ToStructured = append(report.ToStructured, name)
	}

	syncErr := errors.Join(errs...)
	event := events.NewStorageEvent(events.EventFormatsSynced, "", "", "", report.Copied(), syncErr)
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("failed to emit sync event", "error", err, "event_id", event.ID)
	}

	s.logger.Info("formats synchronized",
		"to_opaque", len(report.ToOpaque),
		"to_structured", len(report.ToStructured),
		"failures", len(errs))

	if syncErr != nil {
		return report, NewPersistenceServiceError("synchronize_formats", "some collections were not copied", syncErr)
	}
	return report, nil
}

// PruneBackups implements PersistenceService.PruneBackups
func (s *persistenceServiceImpl) PruneBackups(ctx context.Context, days int) (int, error) {
	removed, err := s.backups.PruneOlderThan(ctx, days)
	if err != nil {
		return removed, NewPersistenceServiceError("prune_backups", "failed to prune backups", err)
	}
	return removed, nil
}

// Statistics implements PersistenceService.Statistics
func (s *persistenceServiceImpl) Statistics(ctx context.Context) (store.StorageStats, error) {
	stats, err := s.backups.Statistics(ctx)
	if err != nil {
		return store.StorageStats{}, NewPersistenceServiceError("statistics", "failed to compute statistics", err)
	}
	return stats, nil
}
