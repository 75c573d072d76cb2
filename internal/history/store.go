// Package history persists the list of finished downloads.
package history

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ytget/ytmux/internal/model"
	"github.com/ytget/ytmux/internal/platform"
)

// Backend names
const (
	BackendMemory = "memory"
	BackendText   = "text"
	BackendSQLite = "sqlite"
)

// Default file names, relative to the configuration directory
const (
	DefaultTextFile   = "download_history.txt"
	DefaultSQLiteFile = "history.db"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name
var ErrUnknownBackend = errors.New("unknown history backend")

// Store keeps finished downloads in completion order
type Store interface {
	Add(entry model.HistoryEntry) error
	List() ([]model.HistoryEntry, error)
	Clear() error
	Close() error
}

// Open creates the store for backend. path is ignored by the memory backend.
func Open(backend, path string, logger zerolog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendText:
		if path == "" {
			return nil, fmt.Errorf("text history needs a file path")
		}
		return NewTextStore(path, logger)
	case BackendSQLite:
		if path == "" {
			return nil, fmt.Errorf("sqlite history needs a file path")
		}
		return NewSQLiteStore(path, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// DefaultPath returns the default file for backend inside dir
func DefaultPath(backend, dir string) string {
	switch backend {
	case BackendText:
		return filepath.Join(dir, DefaultTextFile)
	case BackendSQLite:
		return filepath.Join(dir, DefaultSQLiteFile)
	}
	return ""
}

// Existing drops entries whose file is gone
func Existing(entries []model.HistoryEntry) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if platform.FileExists(e.Path) {
			out = append(out, e)
		}
	}
	return out
}

// Newest returns entries in reverse completion order
func Newest(entries []model.HistoryEntry) []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
