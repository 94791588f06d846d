package filestore

import (
	"errors"
	"io"

	"github.com/phrazzld/tasktrack/internal/record"
)

// codec converts between normalized records and one on-disk encoding.
type codec interface {
	// fallback handles values record.Normalize cannot descend into.
	fallback(v any) (any, error)

	// encode must not write anywhere; a failure means the items cannot be
	// represented in this encoding.
	encode(items []map[string]any) ([]byte, error)

	// open returns a reader over the file at path.
	open(path string) (io.ReadCloser, error)

	// decode parses a whole collection. Failures caused by the reader rather
	// than the bytes are returned as *readError.
	decode(r io.Reader) ([]record.Record, error)
}

// readError marks a decode failure caused by the underlying read.
type readError struct {
	err error
}

func (e *readError) Error() string { return e.err.Error() }

func (e *readError) Unwrap() error { return e.err }

func isReadError(err error) bool {
	var re *readError
	return errors.As(err, &re)
}
