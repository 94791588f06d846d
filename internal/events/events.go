package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names the kind of storage activity an event describes.
type EventType string

// Storage event types.
const (
	EventCollectionSaved EventType = "collection.saved"
	EventBackupCreated   EventType = "backup.created"
	EventBackupFailed    EventType = "backup.failed"
	EventBackupsPruned   EventType = "backups.pruned"
	EventFormatsSynced   EventType = "formats.synced"
)

// StorageEvent represents one storage outcome worth reporting.
type StorageEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened
	Type EventType `json:"type"`

	// Collection and Format identify the data involved, when relevant
	Collection string `json:"collection,omitempty"`
	Format     string `json:"format,omitempty"`

	// Path is the file written, copied or removed
	Path string `json:"path,omitempty"`

	// Count carries record counts for saves and removal counts for prunes
	Count int `json:"count,omitempty"`

	// Error holds the failure message for failure events
	Error string `json:"error,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// Failed reports whether the event describes a failure.
func (e *StorageEvent) Failed() bool {
	return e.Error != ""
}

// NewStorageEvent creates a StorageEvent of the given type. err may be nil.
func NewStorageEvent(eventType EventType, collection, format, path string, count int, err error) *StorageEvent {
	event := &StorageEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Collection: collection,
		Format:     format,
		Path:       path,
		Count:      count,
		CreatedAt:  time.Now(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	return event
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *StorageEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the storage layer to publish outcomes without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *StorageEvent) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *StorageEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *StorageEvent) error {
	return f(ctx, event)
}
