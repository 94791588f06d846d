package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/store"
)

// BackupTimeLayout is the timestamp embedded in backup file names. It has
// one-second granularity, so two backups of the same collection and format
// taken within one second share a name and the later one wins.
const BackupTimeLayout = "20060102_150405"

// FileInfo describes a file in the layout. A missing file is reported with
// Exists set to false rather than as an error.
type FileInfo struct {
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// Layout resolves every path the persistence layer touches.
type Layout struct {
	root       string
	structured string
	opaque     string
	backups    string

	mu    sync.Mutex
	ready bool
}

// NewLayout creates a Layout from the storage configuration. Nothing is
// created on disk until EnsureReady is called.
func NewLayout(cfg config.StorageConfig) *Layout {
	return &Layout{
		root:       cfg.Root,
		structured: filepath.Join(cfg.Root, cfg.StructuredDir),
		opaque:     filepath.Join(cfg.Root, cfg.OpaqueDir),
		backups:    filepath.Join(cfg.Root, cfg.BackupsDir),
	}
}

// EnsureReady creates the root, structured, opaque and backups directories.
// It is idempotent. A failure wraps store.ErrFilesystem and is the only
// fatal condition in this package.
func (l *Layout) EnsureReady() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return nil
	}
	for _, dir := range []string{l.root, l.structured, l.opaque, l.backups} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return store.NewStoreError(store.ErrFilesystem, "ensure_ready", "", "", dir, err)
		}
	}
	l.ready = true
	return nil
}

// Root returns the base directory.
func (l *Layout) Root() string { return l.root }

// StructuredDir returns the directory holding structured collection files.
func (l *Layout) StructuredDir() string { return l.structured }

// OpaqueDir returns the directory holding opaque collection files.
func (l *Layout) OpaqueDir() string { return l.opaque }

// BackupsDir returns the directory holding snapshots of either format.
func (l *Layout) BackupsDir() string { return l.backups }

// Dir returns the directory for format, or "" for an unknown format.
func (l *Layout) Dir(format store.Format) string {
	switch format {
	case store.FormatStructured:
		return l.structured
	case store.FormatOpaque:
		return l.opaque
	}
	return ""
}

// PathFor returns the live file of a collection in one format:
// {dir}/{collection}.{ext}.
func (l *Layout) PathFor(name store.CollectionName, format store.Format) string {
	return filepath.Join(l.Dir(format), name.Basename()+"."+format.Extension())
}

// BackupPath returns the snapshot path for a collection taken at t:
// {backups}/{collection}_{YYYYMMDD_HHMMSS}.{ext}.
func (l *Layout) BackupPath(name store.CollectionName, format store.Format, t time.Time) string {
	file := fmt.Sprintf("%s_%s.%s", name.Basename(), t.Format(BackupTimeLayout), format.Extension())
	return filepath.Join(l.backups, file)
}

// ParseBackupName extracts the collection, format and timestamp from a
// backup file name produced by BackupPath. ok is false for any other name.
func ParseBackupName(file string) (name store.CollectionName, format store.Format, ts time.Time, ok bool) {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	switch strings.TrimPrefix(ext, ".") {
	case store.FormatStructured.Extension():
		format = store.FormatStructured
	case store.FormatOpaque.Extension():
		format = store.FormatOpaque
	default:
		return "", "", time.Time{}, false
	}

	stem := strings.TrimSuffix(base, ext)
	if len(stem) <= len(BackupTimeLayout)+1 || stem[len(stem)-len(BackupTimeLayout)-1] != '_' {
		return "", "", time.Time{}, false
	}
	ts, err := time.ParseInLocation(BackupTimeLayout, stem[len(stem)-len(BackupTimeLayout):], time.Local)
	if err != nil {
		return "", "", time.Time{}, false
	}
	name = store.CollectionName(stem[:len(stem)-len(BackupTimeLayout)-1])
	if name.Validate() != nil {
		return "", "", time.Time{}, false
	}
	return name, format, ts, true
}

// Stat reports whether path exists along with its size and modification
// time. Errors other than non-existence wrap store.ErrStorageIO.
func (l *Layout) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileInfo{Path: path}, nil
	}
	if err != nil {
		return FileInfo{}, store.NewStoreError(store.ErrStorageIO, "stat", "", "", path, err)
	}
	return FileInfo{Path: path, Exists: true, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// List returns the collection files of one format, sorted by name.
func (l *Layout) List(format store.Format) ([]FileInfo, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	suffix := "." + format.Extension()
	return l.listDir(l.Dir(format), func(name string) bool {
		return strings.HasSuffix(name, suffix)
	})
}

// Backups returns every regular file in the backups directory, sorted by name.
func (l *Layout) Backups() ([]FileInfo, error) {
	return l.listDir(l.backups, func(string) bool { return true })
}

func (l *Layout) listDir(dir string, keep func(name string) bool) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, store.NewStoreError(store.ErrStorageIO, "list", "", "", dir, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !keep(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			// Removed between ReadDir and Info
			continue
		}
		if err != nil {
			return nil, store.NewStoreError(store.ErrStorageIO, "list", "", "", dir, err)
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Exists:  true,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}
