package store

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// CollectionName identifies one of the fixed persisted collections.
type CollectionName string

// Persisted collections.
const (
	CollectionUsers CollectionName = "users"
	CollectionTasks CollectionName = "tasks"
)

// Collections returns every known collection in a stable order.
func Collections() []CollectionName {
	return []CollectionName{CollectionUsers, CollectionTasks}
}

// Validate returns ErrUnknownCollection for names outside the fixed set.
func (c CollectionName) Validate() error {
	switch c {
	case CollectionUsers, CollectionTasks:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, string(c))
}

// Basename is the stable file basename used for the collection in every format.
func (c CollectionName) Basename() string {
	return string(c)
}

// Format is one of the two interchangeable on-disk encodings.
type Format string

// Supported formats.
const (
	// FormatStructured is portable, human-legible text. Some native type
	// distinctions collapse to their textual rendering.
	FormatStructured Format = "structured"

	// FormatOpaque is a compact encoding that keeps native Go types intact
	// but is only readable by Go programs.
	FormatOpaque Format = "opaque"
)

// Formats returns every known format in a stable order.
func Formats() []Format {
	return []Format{FormatStructured, FormatOpaque}
}

// ParseFormat converts a configuration or flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structured", "json":
		return FormatStructured, nil
	case "opaque", "binary", "gob":
		return FormatOpaque, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension (without dot) for the format.
func (f Format) Extension() string {
	switch f {
	case FormatStructured:
		return "json"
	case FormatOpaque:
		return "gob"
	}
	return ""
}

// Validate returns ErrUnknownFormat for formats outside the fixed set.
func (f Format) Validate() error {
	if f.Extension() == "" {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	return nil
}

// Snapshot describes a timestamped copy of a collection file in the backups directory.
type Snapshot struct {
	Collection CollectionName
	Format     Format
	Timestamp  time.Time
	Path       string
	Size       int64
}

// StorageStats is an aggregate recomputed on every call. It is never persisted.
type StorageStats struct {
	StructuredFiles int
	OpaqueFiles     int
	Backups         int
	TotalBytes      int64
	// LatestBackup is the modification time of the newest backup, zero when
	// there are no backups.
	LatestBackup time.Time
}

// TotalMB returns TotalBytes in mebibytes rounded to two decimals.
func (s StorageStats) TotalMB() float64 {
	return math.Round(float64(s.TotalBytes)/(1024*1024)*100) / 100
}

// HasBackups reports whether at least one backup exists.
func (s StorageStats) HasBackups() bool {
	return s.Backups > 0
}
