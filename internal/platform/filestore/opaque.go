package filestore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktrack/internal/record"
	"github.com/phrazzld/tasktrack/internal/store"
	"golang.org/x/exp/mmap"
)

// opaqueVersion is written at the head of every opaque file.
const opaqueVersion = 1

func init() {
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(time.Time{})
	gob.Register(emptyList{})
}

// RegisterOpaqueType makes a concrete type storable as a field value in the
// opaque format. Values of unregistered non-basic types fail to save with
// store.ErrSerialization.
func RegisterOpaqueType(value any) {
	gob.Register(value)
}

// OpaqueStore implements store.CollectionStore with gob-encoded files read
// through a read-only memory map. Native Go types survive the round trip,
// including the difference between an absent field and an empty one. The
// files are readable only by Go programs. Empty lists stay empty rather than
// coming back nil.
type OpaqueStore struct {
	fileStore
}

// Ensure OpaqueStore implements store.CollectionStore interface
var _ store.CollectionStore = (*OpaqueStore)(nil)

// NewOpaqueStore creates a gob-backed collection store.
// backups may be nil, in which case no backup is taken before overwriting.
// If logger is nil, a default logger will be used.
func NewOpaqueStore(layout *Layout, backups store.BackupManager, logger *slog.Logger, opts ...Option) *OpaqueStore {
	return &OpaqueStore{
		fileStore: newFileStore(store.FormatOpaque, gobCodec{}, layout, backups, logger, opts),
	}
}

// envelope is the top-level gob value. Each item is a map[string]any or nil.
type envelope struct {
	Version int
	Items   []any
}

type gobCodec struct{}

// fallback hands values through untouched and lets gob decide whether
// their type can be encoded.
func (gobCodec) fallback(v any) (any, error) {
	return v, nil
}

func (gobCodec) encode(items []map[string]any) ([]byte, error) {
	env := envelope{Version: opaqueVersion, Items: make([]any, len(items))}
	for i, item := range items {
		if item != nil {
			env.Items[i] = markEmptyLists(item)
		}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type mappedFile struct {
	*io.SectionReader
	m *mmap.ReaderAt
}

func (f *mappedFile) Close() error {
	return f.m.Close()
}

func (gobCodec) open(path string) (io.ReadCloser, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return &mappedFile{SectionReader: io.NewSectionReader(m, 0, int64(m.Len())), m: m}, nil
}

func (gobCodec) decode(r io.Reader) ([]record.Record, error) {
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, err
	}
	if env.Version != opaqueVersion {
		return nil, fmt.Errorf("unsupported opaque format version %d", env.Version)
	}

	records := make([]record.Record, len(env.Items))
	for i, item := range env.Items {
		switch v := item.(type) {
		case nil:
		case map[string]any:
			restoreEmptyLists(v)
			records[i] = record.Record(v)
		default:
			return nil, fmt.Errorf("item %d is %T, want map", i, item)
		}
	}
	return records, nil
}

// emptyList stands in for a non-nil empty []any, which gob decodes as nil.
type emptyList struct {
	Empty bool
}

// markEmptyLists replaces empty lists inside v in place and returns v, or
// the marker when v itself is an empty list.
func markEmptyLists(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = markEmptyLists(e)
		}
	case []any:
		if x != nil && len(x) == 0 {
			return emptyList{Empty: true}
		}
		for i, e := range x {
			x[i] = markEmptyLists(e)
		}
	}
	return v
}

// restoreEmptyLists undoes markEmptyLists in place.
func restoreEmptyLists(v any) any {
	switch x := v.(type) {
	case emptyList:
		return []any{}
	case map[string]any:
		for k, e := range x {
			x[k] = restoreEmptyLists(e)
		}
	case []any:
		for i, e := range x {
			x[i] = restoreEmptyLists(e)
		}
	}
	return v
}
