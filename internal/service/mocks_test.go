package service

import (
	"context"

	"github.com/phrazzld/tasktrack/internal/events"
	"github.com/phrazzld/tasktrack/internal/record"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockLayout mocks the StorageLayout interface
type MockLayout struct {
	mock.Mock
}

func (m *MockLayout) EnsureReady() error {
	args := m.Called()
	return args.Error(0)
}

// MockCollectionStore mocks the store.CollectionStore interface
type MockCollectionStore struct {
	mock.Mock
	format store.Format
}

func (m *MockCollectionStore) Format() store.Format {
	return m.format
}

func (m *MockCollectionStore) Path(name store.CollectionName) string {
	return string(m.format) + "/" + string(name)
}

func (m *MockCollectionStore) Encode(items []record.Recorder) ([]byte, error) {
	args := m.Called(items)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockCollectionStore) Save(
	ctx context.Context,
	name store.CollectionName,
	items []record.Recorder,
	opts ...store.SaveOption,
) (store.SaveResult, error) {
	args := m.Called(ctx, name, items)
	return args.Get(0).(store.SaveResult), args.Error(1)
}

func (m *MockCollectionStore) Load(ctx context.Context, name store.CollectionName) ([]record.Record, bool, error) {
	args := m.Called(ctx, name)
	records, _ := args.Get(0).([]record.Record)
	return records, args.Bool(1), args.Error(2)
}

// MockBackupManager mocks the store.BackupManager interface
type MockBackupManager struct {
	mock.Mock
}

func (m *MockBackupManager) CreateBackup(
	ctx context.Context,
	name store.CollectionName,
	st store.CollectionStore,
) (store.Snapshot, bool, error) {
	args := m.Called(ctx, name, st)
	return args.Get(0).(store.Snapshot), args.Bool(1), args.Error(2)
}

func (m *MockBackupManager) WriteSnapshot(
	ctx context.Context,
	name store.CollectionName,
	format store.Format,
	data []byte,
) (store.Snapshot, error) {
	args := m.Called(ctx, name, format, data)
	return args.Get(0).(store.Snapshot), args.Error(1)
}

func (m *MockBackupManager) PruneOlderThan(ctx context.Context, days int) (int, error) {
	args := m.Called(ctx, days)
	return args.Int(0), args.Error(1)
}

func (m *MockBackupManager) Statistics(ctx context.Context) (store.StorageStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(store.StorageStats), args.Error(1)
}

// MockEventEmitter mocks the events.EventEmitter interface
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.StorageEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
