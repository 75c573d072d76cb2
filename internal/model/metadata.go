package model

import "time"

// Thumbnail is one preview image offered by the extractor
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// Area returns width*height, zero when either dimension is unknown
func (t Thumbnail) Area() int {
	return t.Width * t.Height
}

// Metadata is the read-only description of a single video
type Metadata struct {
	ID         string
	Title      string
	WebpageURL string
	URL        string
	Thumbnail  string // fallback thumbnail URL
	Thumbnails []Thumbnail
	Duration   time.Duration
	Uploader   string
	Uploaded   time.Time
}

// SourceURL returns the page URL to download from, falling back to the raw URL
func (m *Metadata) SourceURL() string {
	if m.WebpageURL != "" {
		return m.WebpageURL
	}
	return m.URL
}

// BestThumbnail picks the thumbnail with the largest pixel area. Entries
// without dimensions only win when no entry has them.
func (m *Metadata) BestThumbnail() string {
	best := -1
	for i, t := range m.Thumbnails {
		if t.URL == "" || t.Area() == 0 {
			continue
		}
		if best < 0 || t.Area() > m.Thumbnails[best].Area() {
			best = i
		}
	}
	if best >= 0 {
		return m.Thumbnails[best].URL
	}
	for _, t := range m.Thumbnails {
		if t.URL != "" {
			return t.URL
		}
	}
	return m.Thumbnail
}

// Entry is one item of a resolved URL; a single video resolves to one entry
type Entry struct {
	ID    string
	Title string
	URL   string
}

// Resolved is the result of expanding a request URL into downloadable entries
type Resolved struct {
	Playlist bool
	ID       string
	Title    string
	Entries  []Entry
}
