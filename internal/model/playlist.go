package model

import (
	"strings"
	"time"
)

// DetailsSeparator joins the parts of PlaylistItem.Details
const DetailsSeparator = " · "

// PlaylistItem tracks one entry of a request while it is processed
type PlaylistItem struct {
	Index      int           `json:"index"` // 1-based position
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	URL        string        `json:"url"`
	Status     TaskStatus    `json:"status"`
	Error      string        `json:"error,omitempty"`
	OutputPath string        `json:"output_path,omitempty"`
	Uploader   string        `json:"uploader,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Uploaded   time.Time     `json:"uploaded,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Details returns "uploader · 03:32 · 2009-10-25", skipping unknown parts
func (it PlaylistItem) Details() string {
	var parts []string
	if it.Uploader != "" {
		parts = append(parts, it.Uploader)
	}
	if it.Duration > 0 {
		parts = append(parts, formatClock(int(it.Duration/time.Second)))
	}
	if !it.Uploaded.IsZero() {
		parts = append(parts, it.Uploaded.Format(time.DateOnly))
	}
	return strings.Join(parts, DetailsSeparator)
}

// Playlist tracks every entry of a resolved request. A single video is a
// playlist of one.
type Playlist struct {
	RequestID string          `json:"request_id"`
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	IsList    bool            `json:"is_list"`
	Items     []*PlaylistItem `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Summary counts items by outcome
type Summary struct {
	Total     int
	Completed int
	Skipped   int
	Failed    int
	Cancelled bool
}

// NewPlaylist creates tracking state for a resolved request
func NewPlaylist(requestID string, resolved *Resolved) *Playlist {
	now := time.Now()
	p := &Playlist{
		RequestID: requestID,
		ID:        resolved.ID,
		Title:     resolved.Title,
		IsList:    resolved.Playlist,
		Items:     make([]*PlaylistItem, 0, len(resolved.Entries)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, e := range resolved.Entries {
		p.Items = append(p.Items, &PlaylistItem{
			Index:     i + 1,
			ID:        e.ID,
			Title:     e.Title,
			URL:       e.URL,
			Status:    TaskStatusPending,
			UpdatedAt: now,
		})
	}
	return p
}

// Len returns the number of items
func (p *Playlist) Len() int {
	return len(p.Items)
}

// Item returns the item at a 1-based index, nil when out of range
func (p *Playlist) Item(index int) *PlaylistItem {
	if index < 1 || index > len(p.Items) {
		return nil
	}
	return p.Items[index-1]
}

// UpdateItemStatus sets the status and error text of an item
func (p *Playlist) UpdateItemStatus(index int, status TaskStatus, errText string) {
	item := p.Item(index)
	if item == nil {
		return
	}
	item.Status = status
	item.Error = errText
	item.UpdatedAt = time.Now()
	p.UpdatedAt = item.UpdatedAt
}

// UpdateItemOutput records the final path of an item
func (p *Playlist) UpdateItemOutput(index int, outputPath string) {
	item := p.Item(index)
	if item == nil {
		return
	}
	item.OutputPath = outputPath
	item.UpdatedAt = time.Now()
	p.UpdatedAt = item.UpdatedAt
}

// UpdateItemMetadata copies the fetched title and details onto an item
func (p *Playlist) UpdateItemMetadata(index int, meta *Metadata) {
	item := p.Item(index)
	if item == nil || meta == nil {
		return
	}
	if meta.Title != "" {
		item.Title = meta.Title
	}
	item.Uploader = meta.Uploader
	item.Duration = meta.Duration
	item.Uploaded = meta.Uploaded
}

// CancelPending marks every unstarted item as cancelled
func (p *Playlist) CancelPending() {
	for _, item := range p.Items {
		if !item.Status.IsFinished() {
			item.Status = TaskStatusCancelled
			item.UpdatedAt = time.Now()
		}
	}
	p.UpdatedAt = time.Now()
}

// Summary counts finished items by outcome
func (p *Playlist) Summary() Summary {
	s := Summary{Total: len(p.Items)}
	for _, item := range p.Items {
		switch item.Status {
		case TaskStatusCompleted:
			s.Completed++
		case TaskStatusSkipped:
			s.Skipped++
		case TaskStatusError:
			s.Failed++
		case TaskStatusCancelled:
			s.Cancelled = true
		}
	}
	return s
}

// GetDownloadProgress returns overall progress as a percentage of finished items
func (p *Playlist) GetDownloadProgress() float64 {
	if len(p.Items) == 0 {
		return 0
	}
	finished := 0
	for _, item := range p.Items {
		if item.Status.IsFinished() {
			finished++
		}
	}
	return float64(finished) / float64(len(p.Items)) * 100
}
