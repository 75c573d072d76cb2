package model

import (
	"path/filepath"
	"strings"
	"time"
)

// HistoryEntry records one finished download
type HistoryEntry struct {
	Filename      string
	Path          string // absolute path of the final file
	ThumbnailPath string // empty when no thumbnail was saved
	URL           string
	CompletedAt   time.Time
}

// NewHistoryEntry derives the display filename from the final path
func NewHistoryEntry(path, thumbnailPath, sourceURL string) HistoryEntry {
	return HistoryEntry{
		Filename:      filepath.Base(path),
		Path:          path,
		ThumbnailPath: thumbnailPath,
		URL:           sourceURL,
		CompletedAt:   time.Now(),
	}
}

// GetDisplayTitle returns filename without extension, falling back to the URL
func (h HistoryEntry) GetDisplayTitle() string {
	name := h.Filename
	if name == "" && h.Path != "" {
		parts := strings.FieldsFunc(h.Path, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			name = parts[len(parts)-1]
		}
	}
	if name != "" {
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
		return name
	}
	return h.URL
}
