package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ytget/ytmux/internal/model"
	"github.com/ytget/ytmux/internal/platform"
)

// fieldSeparator separates filename|path|thumbnail|url
const fieldSeparator = "|"

// minFields is the field count of the oldest line format, without URL
const minFields = 3

// TextStore keeps history in a pipe-delimited text file, one entry per line
type TextStore struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

// NewTextStore opens (and creates the directory of) a text history file
func NewTextStore(path string, logger zerolog.Logger) (*TextStore, error) {
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &TextStore{
		path:   path,
		logger: logger.With().Str("component", "history").Str("backend", BackendText).Logger(),
	}, nil
}

// FormatLine renders an entry as filename|path|thumbnail|url. CompletedAt is
// not stored; List restores it from the file's modification time.
func FormatLine(e model.HistoryEntry) string {
	return strings.Join([]string{e.Filename, e.Path, e.ThumbnailPath, e.URL}, fieldSeparator)
}

// ParseLine parses one history line. Lines with fewer than three fields
// are rejected; the URL field is optional.
func ParseLine(line string) (model.HistoryEntry, bool) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return model.HistoryEntry{}, false
	}
	parts := strings.Split(line, fieldSeparator)
	if len(parts) < minFields {
		return model.HistoryEntry{}, false
	}
	e := model.HistoryEntry{
		Filename:      parts[0],
		Path:          parts[1],
		ThumbnailPath: parts[2],
	}
	if len(parts) > minFields {
		e.URL = parts[3]
	}
	return e, true
}

func (s *TextStore) Add(entry model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(entry) + "\n"); err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}
	return nil
}

func (s *TextStore) List() ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var entries []model.HistoryEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		e, ok := ParseLine(scanner.Text())
		if !ok {
			if strings.TrimSpace(scanner.Text()) != "" {
				s.logger.Debug().Int("line", lineNo).Msg("Skipping malformed history line")
			}
			continue
		}
		if info, err := os.Stat(e.Path); err == nil {
			e.CompletedAt = info.ModTime()
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read history file: %w", err)
	}
	return entries, nil
}

func (s *TextStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Truncate(s.path, 0); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear history file: %w", err)
	}
	return nil
}

func (s *TextStore) Close() error { return nil }
