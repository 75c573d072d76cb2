package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	ytnative "github.com/ytget/ytdlp/v2"

	"github.com/ytget/ytmux/internal/model"
)

// Timeout constants
const (
	DefaultListTimeout = 60 * time.Second
)

// URL parameters
const (
	PlaylistQueryParam = "list"
	PlaylistParam      = PlaylistQueryParam + "="
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title constants
const (
	DefaultPlaylistName = "Unknown Playlist"
	MinPrefixLength     = 10
	PlaylistSuffix      = " Playlist"
)

// nativeItem is the subset of a listed item the lister uses
type nativeItem struct {
	VideoID string
	Title   string
}

// itemsFetcher fetches every item of a playlist by ID
type itemsFetcher func(ctx context.Context, playlistID string) ([]nativeItem, error)

// PlaylistLister lists playlist entries without spawning yt-dlp
type PlaylistLister struct {
	timeout time.Duration
	fetch   itemsFetcher
}

// NewPlaylistLister creates a lister backed by the native YouTube client
func NewPlaylistLister() *PlaylistLister {
	return &PlaylistLister{
		timeout: DefaultListTimeout,
		fetch:   fetchNative,
	}
}

// SetTimeout sets the timeout for listing operations
func (l *PlaylistLister) SetTimeout(timeout time.Duration) {
	l.timeout = timeout
}

// List returns the entries of the playlist referenced by rawURL
func (l *PlaylistLister) List(ctx context.Context, rawURL string) (*model.Resolved, error) {
	playlistID := ExtractPlaylistID(rawURL)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	items, err := l.fetch(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("playlist %s has no items", playlistID)
	}

	entries := make([]model.Entry, 0, len(items))
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		entries = append(entries, model.Entry{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}

	return &model.Resolved{
		Playlist: true,
		ID:       playlistID,
		Title:    playlistTitle(entries),
		Entries:  entries,
	}, nil
}

func fetchNative(ctx context.Context, playlistID string) ([]nativeItem, error) {
	items, err := ytnative.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]nativeItem, 0, len(items))
	for _, it := range items {
		out = append(out, nativeItem{VideoID: it.VideoID, Title: it.Title})
	}
	return out, nil
}

// IsPlaylistURL reports whether the URL carries a list parameter
func IsPlaylistURL(rawURL string) bool {
	return ExtractPlaylistID(rawURL) != ""
}

// ExtractPlaylistID returns the value of the list query parameter
func ExtractPlaylistID(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if id := u.Query().Get(PlaylistQueryParam); id != "" {
			return id
		}
	}
	// Fallback for strings url.Parse rejects
	if i := strings.Index(rawURL, PlaylistParam); i >= 0 {
		id := rawURL[i+len(PlaylistParam):]
		if j := strings.IndexAny(id, "&#"); j >= 0 {
			id = id[:j]
		}
		return id
	}
	return ""
}

// playlistTitle guesses a title from the common prefix of the first entries.
// The native client does not return the playlist's own title.
func playlistTitle(entries []model.Entry) string {
	if len(entries) == 0 {
		return DefaultPlaylistName
	}
	if len(entries) > 1 {
		prefix := commonPrefix(entries[0].Title, entries[1].Title)
		if len(prefix) > MinPrefixLength {
			return strings.TrimSpace(prefix) + PlaylistSuffix
		}
	}
	return entries[0].Title + PlaylistSuffix
}

func commonPrefix(s1, s2 string) string {
	n := min(len(s1), len(s2))
	for i := 0; i < n; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:n]
}
