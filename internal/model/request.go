package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaKind selects between a muxed video file and an audio-only file
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// RequestIDPrefix prefixes every generated request ID
const RequestIDPrefix = "req-"

// ParseMediaKind maps user input onto a MediaKind, defaulting to video
func ParseMediaKind(s string) MediaKind {
	if strings.EqualFold(strings.TrimSpace(s), string(KindAudio)) {
		return KindAudio
	}
	return KindVideo
}

// Request describes one user-initiated download. It is not modified after
// submission.
type Request struct {
	ID        string
	URL       string
	Kind      MediaKind
	Quality   string // label from the quality table, e.g. "720p" or "192 kbps"
	Playlist  bool
	Directory string
	CreatedAt time.Time
}

// NewRequest builds a request with a fresh ID and a cleaned URL
func NewRequest(rawURL string, kind MediaKind, quality string, playlist bool, dir string) Request {
	return Request{
		ID:        generateRequestID(),
		URL:       CleanURL(rawURL),
		Kind:      kind,
		Quality:   quality,
		Playlist:  playlist,
		Directory: dir,
		CreatedAt: time.Now(),
	}
}

// Validate checks the request can be handed to the orchestrator
func (r Request) Validate() error {
	if r.URL == "" {
		return errors.New("url is empty")
	}
	if err := ValidateURL(r.URL); err != nil {
		return err
	}
	if r.Directory == "" {
		return errors.New("download directory is empty")
	}
	if r.Kind != KindVideo && r.Kind != KindAudio {
		return fmt.Errorf("unknown media kind: %q", r.Kind)
	}
	return nil
}

// ValidateURL accepts absolute http(s) URLs only
func ValidateURL(input string) error {
	parsedURL, err := url.Parse(input)
	if err != nil {
		return err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("URL has no host: %s", input)
	}
	return nil
}

// CleanURL strips line breaks and surrounding whitespace picked up from the clipboard
func CleanURL(raw string) string {
	cleaned := strings.ReplaceAll(raw, "\n", "")
	cleaned = strings.ReplaceAll(cleaned, "\r", "")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	return strings.TrimSpace(cleaned)
}

// generateRequestID uses UUID v7 so IDs sort by creation time
func generateRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(RequestIDPrefix+"%d", time.Now().UnixNano())
	}
	return RequestIDPrefix + id.String()
}
