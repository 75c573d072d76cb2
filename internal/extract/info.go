package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/ytget/ytmux/internal/model"
	"github.com/ytget/ytmux/internal/platform"
)

// infoJSON is the subset of yt-dlp's info dict used here
type infoJSON struct {
	Type       string  `json:"_type"`
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	WebpageURL string  `json:"webpage_url"`
	URL        string  `json:"url"`
	Thumbnail  string  `json:"thumbnail"`
	Duration   float64 `json:"duration"`
	Uploader   string  `json:"uploader"`
	UploadDate string  `json:"upload_date"`
	Thumbnails []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"thumbnails"`
	Entries []*infoJSON `json:"entries"`
}

func decodeInfo(data []byte) (*infoJSON, error) {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return nil, fmt.Errorf("empty metadata output")
	}
	// yt-dlp prints one JSON document; take the last line if warnings leaked
	if i := strings.LastIndex(string(data), "\n{"); i >= 0 {
		data = data[i+1:]
	}
	var info infoJSON
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &info, nil
}

func (i *infoJSON) isPlaylist() bool {
	return i.Type == "playlist" || i.Type == "multi_video"
}

func (i *infoJSON) toMetadata() *model.Metadata {
	m := &model.Metadata{
		ID:         i.ID,
		Title:      i.Title,
		WebpageURL: i.WebpageURL,
		URL:        i.URL,
		Thumbnail:  i.Thumbnail,
		Duration:   time.Duration(i.Duration * float64(time.Second)),
		Uploader:   i.Uploader,
	}
	for _, t := range i.Thumbnails {
		m.Thumbnails = append(m.Thumbnails, model.Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height})
	}
	if i.UploadDate != "" {
		if ts, err := dateparse.ParseAny(i.UploadDate); err == nil {
			m.Uploaded = ts
		}
	}
	return m
}

func (i *infoJSON) toResolved() *model.Resolved {
	if !i.isPlaylist() {
		m := i.toMetadata()
		return &model.Resolved{
			ID:      i.ID,
			Title:   i.Title,
			Entries: []model.Entry{{ID: i.ID, Title: i.Title, URL: m.SourceURL()}},
		}
	}

	r := &model.Resolved{Playlist: true, ID: i.ID, Title: i.Title}
	for _, e := range i.Entries {
		if e == nil || e.ID == "" {
			continue
		}
		r.Entries = append(r.Entries, model.Entry{ID: e.ID, Title: e.Title, URL: entryURL(e)})
	}
	return r
}

// entryURL returns a downloadable URL for a flat playlist entry
func entryURL(e *infoJSON) string {
	for _, u := range []string{e.WebpageURL, e.URL} {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			return u
		}
	}
	return fmt.Sprintf(platform.YouTubeVideoURLTemplate, e.ID)
}
