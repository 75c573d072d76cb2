package extract

import (
	"context"

	"github.com/ytget/ytmux/internal/model"
)

// ProgressFunc receives byte-count progress of a running download
type ProgressFunc func(model.Progress)

// Job describes one yt-dlp invocation that writes a file
type Job struct {
	URL    string
	Format string // format selector
	Output string // output path, may contain yt-dlp templates

	// Audio extraction, used for audio-only requests
	ExtractAudio bool
	AudioFormat  string
	AudioQuality string

	// MergeFormat is the container yt-dlp merges into when Format selects
	// separate video and audio streams
	MergeFormat string
}

// Extractor is the extraction adapter used by the download orchestrator
type Extractor interface {
	// Resolve expands a URL into entries. Without playlist, a URL carrying a
	// list parameter still resolves to the single referenced video.
	Resolve(ctx context.Context, url string, playlist bool) (*model.Resolved, error)

	// Fetch returns full metadata for a single video
	Fetch(ctx context.Context, url string) (*model.Metadata, error)

	// Download writes the selected format to job.Output
	Download(ctx context.Context, job Job, progress ProgressFunc) error

	// Merge downloads and merges video and audio with yt-dlp itself
	Merge(ctx context.Context, job Job, progress ProgressFunc) error
}

// Lister lists playlist entries without yt-dlp
type Lister interface {
	List(ctx context.Context, url string) (*model.Resolved, error)
}
