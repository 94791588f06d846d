package filestore

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktrack/internal/events"
)

// Option configures stores and the backup coordinator.
type Option func(*options)

type options struct {
	clock        func() time.Time
	emitter      events.EventEmitter
	backupOnSave bool
}

func defaultOptions() options {
	return options{
		clock:        time.Now,
		backupOnSave: true,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces time.Now as the source of backup timestamps and prune cutoffs.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithEmitter publishes storage events to emitter.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

// WithBackupOnSave controls whether stores back up an existing file before
// overwriting it. It defaults to true.
func WithBackupOnSave(enabled bool) Option {
	return func(o *options) {
		o.backupOnSave = enabled
	}
}

// emit publishes event when an emitter is configured. Handler failures are
// logged and otherwise ignored.
func (o options) emit(ctx context.Context, logger *slog.Logger, event *events.StorageEvent) {
	if o.emitter == nil {
		return
	}
	if err := o.emitter.EmitEvent(ctx, event); err != nil {
		logger.Warn("storage event handler failed",
			"event_type", event.Type,
			"error", err)
	}
}
