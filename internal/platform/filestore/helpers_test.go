package filestore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/events"
	"github.com/phrazzld/tasktrack/internal/platform/filestore"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/record"
	"github.com/phrazzld/tasktrack/internal/store"
)

// testClock is a settable clock for deterministic backup timestamps.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// eventRecorder collects emitted storage events.
type eventRecorder struct {
	mu     sync.Mutex
	events []*events.StorageEvent
}

func (r *eventRecorder) HandleEvent(_ context.Context, event *events.StorageEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) Types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]events.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

type fixture struct {
	layout     *filestore.Layout
	backups    *filestore.BackupCoordinator
	structured *filestore.StructuredStore
	opaque     *filestore.OpaqueStore
	clock      *testClock
	events     *eventRecorder
	logs       *logger.TestLogBuffer
}

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Default().Storage
	cfg.Root = t.TempDir()

	f := &fixture{
		layout: filestore.NewLayout(cfg),
		clock:  newTestClock(baseTime),
		events: &eventRecorder{},
	}

	l, logs := logger.NewTestLogger(t)
	f.logs = logs

	emitter := events.NewInMemoryEventEmitter(logger.Discard())
	emitter.RegisterHandler(f.events)

	opts := []filestore.Option{filestore.WithClock(f.clock.Now), filestore.WithEmitter(emitter)}
	f.backups = filestore.NewBackupCoordinator(f.layout, l, opts...)
	f.structured = filestore.NewStructuredStore(f.layout, f.backups, l, opts...)
	f.opaque = filestore.NewOpaqueStore(f.layout, f.backups, l, opts...)
	return f
}

func (f *fixture) stores() []store.CollectionStore {
	return []store.CollectionStore{f.structured, f.opaque}
}

func sampleRecords() []record.Recorder {
	return []record.Recorder{
		record.Record{
			"id":       "u-1",
			"name":     "José Álvarez 漢字",
			"age":      41,
			"score":    9.5,
			"active":   true,
			"phone":    nil,
			"tags":     []string{"a", "<b>"},
			"address":  map[string]any{"city": "Zürich", "zip": "8001"},
			"nickname": "",
		},
		record.Record{
			"id":   "u-2",
			"name": "Ana",
			"age":  0,
		},
	}
}
