package filestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/tasktrack/internal/record"
	"github.com/phrazzld/tasktrack/internal/store"
)

// StructuredStore implements store.CollectionStore with indented JSON files.
// Output is UTF-8 with HTML characters left unescaped so files stay legible.
// Values with no JSON form are written as their fmt.Sprint text, and native
// distinctions collapse on the way back: timestamps return as RFC 3339
// strings and every number returns as float64.
type StructuredStore struct {
	fileStore
}

// Ensure StructuredStore implements store.CollectionStore interface
var _ store.CollectionStore = (*StructuredStore)(nil)

// NewStructuredStore creates a JSON-backed collection store.
// backups may be nil, in which case no backup is taken before overwriting.
// If logger is nil, a default logger will be used.
func NewStructuredStore(layout *Layout, backups store.BackupManager, logger *slog.Logger, opts ...Option) *StructuredStore {
	return &StructuredStore{
		fileStore: newFileStore(store.FormatStructured, jsonCodec{}, layout, backups, logger, opts),
	}
}

type jsonCodec struct{}

func (jsonCodec) fallback(v any) (any, error) {
	return fmt.Sprint(v), nil
}

func (jsonCodec) encode(items []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (jsonCodec) open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (jsonCodec) decode(r io.Reader) ([]record.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &readError{err: err}
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	records := make([]record.Record, len(items))
	for i, item := range items {
		if item != nil {
			records[i] = record.Record(item)
		}
	}
	return records, nil
}
