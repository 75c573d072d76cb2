package history

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/ytget/ytmux/internal/model"
	"github.com/ytget/ytmux/internal/platform"
)

// Table and column names
const (
	tableDownloads = "downloads"

	colID          = "id"
	colFilename    = "filename"
	colPath        = "path"
	colThumbnail   = "thumbnail_path"
	colURL         = "url"
	colCompletedAt = "completed_at"
)

// SQLiteStore keeps history in a SQLite database
type SQLiteStore struct {
	DB     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore opens the database at path and creates its tables
func NewSQLiteStore(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at path %q: %w", path, err)
	}
	// A single connection serializes writers
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		DB:     db,
		logger: logger.With().Str("component", "history").Str("backend", BackendSQLite).Logger(),
	}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return s, nil
}

// initTables initializes the SQL tables.
func (s *SQLiteStore) initTables() error {
	tx, err := s.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
    CREATE TABLE IF NOT EXISTS downloads (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        filename TEXT NOT NULL,
        path TEXT NOT NULL,
        thumbnail_path TEXT,
        url TEXT,
        completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_downloads_completed_at ON downloads(completed_at);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create downloads table: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Add(entry model.HistoryEntry) error {
	completed := entry.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}

	query := squirrel.
		Insert(tableDownloads).
		Columns(colFilename, colPath, colThumbnail, colURL, colCompletedAt).
		Values(entry.Filename, entry.Path, entry.ThumbnailPath, entry.URL, completed.UTC()).
		RunWith(s.DB)

	if _, err := query.Exec(); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	s.logger.Debug().Str("path", entry.Path).Msg("Added history entry")
	return nil
}

func (s *SQLiteStore) List() ([]model.HistoryEntry, error) {
	query := squirrel.
		Select(colFilename, colPath, colThumbnail, colURL, colCompletedAt).
		From(tableDownloads).
		OrderBy(colID + " ASC").
		RunWith(s.DB)

	rows, err := query.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var (
			e          model.HistoryEntry
			thumb, url sql.NullString
			completed  sql.NullTime
		)
		if err := rows.Scan(&e.Filename, &e.Path, &thumb, &url, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.ThumbnailPath = thumb.String
		e.URL = url.String
		if completed.Valid {
			e.CompletedAt = completed.Time.Local()
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Clear() error {
	query := squirrel.
		Delete(tableDownloads).
		RunWith(s.DB)

	if _, err := query.Exec(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
