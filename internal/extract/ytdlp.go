package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"

	"github.com/ytget/ytmux/internal/model"
	"github.com/ytget/ytmux/internal/platform"
)

// DefaultProgressInterval is how often yt-dlp progress is reported
const DefaultProgressInterval = 500 * time.Millisecond

// YTDLP implements Extractor on top of the yt-dlp executable
type YTDLP struct {
	executable string
	interval   time.Duration
	lister     Lister
	logger     zerolog.Logger

	// dump runs yt-dlp in metadata-only mode and returns its stdout
	dump func(ctx context.Context, url string, playlist bool) (string, error)
	// run executes a download command
	run func(ctx context.Context, cmd *ytdlp.Command, url string) error
}

// Option configures a YTDLP extractor
type Option func(*YTDLP)

// WithExecutable sets the yt-dlp binary path
func WithExecutable(path string) Option {
	return func(y *YTDLP) { y.executable = path }
}

// WithLister sets the native playlist lister tried before yt-dlp
func WithLister(l Lister) Option {
	return func(y *YTDLP) { y.lister = l }
}

// WithProgressInterval sets the progress callback interval
func WithProgressInterval(d time.Duration) Option {
	return func(y *YTDLP) { y.interval = d }
}

// NewYTDLP creates a yt-dlp backed extractor
func NewYTDLP(logger zerolog.Logger, opts ...Option) *YTDLP {
	y := &YTDLP{
		interval: DefaultProgressInterval,
		logger:   logger.With().Str("component", "extract").Logger(),
	}
	for _, opt := range opts {
		opt(y)
	}
	y.dump = y.runDump
	y.run = y.runCommand
	return y
}

// command returns a fresh builder bound to the configured executable
func (y *YTDLP) command() *ytdlp.Command {
	cmd := ytdlp.New()
	if y.executable != "" {
		cmd = cmd.SetExecutable(y.executable)
	}
	return cmd
}

// Resolve expands a URL into one or more entries
func (y *YTDLP) Resolve(ctx context.Context, url string, playlist bool) (*model.Resolved, error) {
	if playlist && platform.IsPlaylistURL(url) && y.lister != nil {
		res, err := y.lister.List(ctx, url)
		if err == nil && len(res.Entries) > 0 {
			y.logger.Debug().Str("url", url).Int("entries", len(res.Entries)).Msg("Playlist listed natively")
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		y.logger.Warn().Err(err).Str("url", url).Msg("Native playlist listing failed, falling back to yt-dlp")
	}

	out, err := y.dump(ctx, url, playlist)
	if err != nil {
		return nil, err
	}
	info, err := decodeInfo([]byte(out))
	if err != nil {
		return nil, err
	}

	res := info.toResolved()
	if len(res.Entries) == 0 {
		return nil, fmt.Errorf("no downloadable entries found for %s", url)
	}
	return res, nil
}

// Fetch returns full metadata for a single video
func (y *YTDLP) Fetch(ctx context.Context, url string) (*model.Metadata, error) {
	out, err := y.dump(ctx, url, false)
	if err != nil {
		return nil, err
	}
	info, err := decodeInfo([]byte(out))
	if err != nil {
		return nil, err
	}
	if info.isPlaylist() {
		return nil, fmt.Errorf("expected a single video, got a playlist: %s", url)
	}
	return info.toMetadata(), nil
}

// Download writes the selected format to job.Output
func (y *YTDLP) Download(ctx context.Context, job Job, progress ProgressFunc) error {
	cmd := y.command().
		NoPlaylist().
		ForceOverwrites().
		Format(job.Format).
		Output(OutputTemplate(job))

	if job.ExtractAudio {
		cmd = cmd.ExtractAudio().AudioFormat(job.AudioFormat)
		if job.AudioQuality != "" {
			cmd = cmd.AudioQuality(job.AudioQuality)
		}
	}
	if job.MergeFormat != "" {
		cmd = cmd.MergeOutputFormat(job.MergeFormat)
	}
	if progress != nil {
		cmd = cmd.ProgressFunc(y.interval, func(update ytdlp.ProgressUpdate) {
			progress(newProgress(int64(update.DownloadedBytes), int64(update.TotalBytes), update.Started, update.ETA()))
		})
	}

	y.logger.Debug().Str("url", job.URL).Str("format", job.Format).Str("output", job.Output).Msg("Starting yt-dlp download")
	return y.run(ctx, cmd, job.URL)
}

// Merge lets yt-dlp fetch and merge video and audio itself
func (y *YTDLP) Merge(ctx context.Context, job Job, progress ProgressFunc) error {
	if job.MergeFormat == "" {
		job.MergeFormat = "mp4"
	}
	return y.Download(ctx, job, progress)
}

func (y *YTDLP) runDump(ctx context.Context, url string, playlist bool) (string, error) {
	cmd := y.command().SkipDownload().DumpSingleJSON()
	if playlist {
		cmd = cmd.YesPlaylist().FlatPlaylist()
	} else {
		cmd = cmd.NoPlaylist()
	}

	res, err := cmd.Run(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classifyError("fetch metadata", err, stderrOf(res))
	}
	return res.Stdout, nil
}

func (y *YTDLP) runCommand(ctx context.Context, cmd *ytdlp.Command, url string) error {
	res, err := cmd.Run(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classifyError("download", err, stderrOf(res))
	}
	return nil
}

func stderrOf(res *ytdlp.Result) string {
	if res == nil {
		return ""
	}
	return res.Stderr
}

// newProgress converts raw byte counts into a progress snapshot
func newProgress(downloaded, total int64, started time.Time, eta time.Duration) model.Progress {
	p := model.Progress{
		Downloaded: downloaded,
		Total:      total,
		ETASec:     -1,
	}
	if total > 0 {
		p.Percent = float64(downloaded) / float64(total) * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}
	if !started.IsZero() {
		if elapsed := time.Since(started).Seconds(); elapsed > 0 {
			p.Speed = FormatSpeed(float64(downloaded) / elapsed)
		}
	}
	if eta > 0 {
		p.ETASec = int(eta.Seconds())
	}
	return p
}

// OutputTemplate turns job.Output into a yt-dlp output template. Literal
// percent signs are escaped; audio extraction lets yt-dlp pick the extension
// so the converted file gets the target one.
func OutputTemplate(job Job) string {
	out := strings.ReplaceAll(job.Output, "%", "%%")
	if job.ExtractAudio {
		out = strings.TrimSuffix(out, filepath.Ext(out)) + ".%(ext)s"
	}
	return out
}

// FormatSpeed renders a byte rate such as "1.2 MB/s"
func FormatSpeed(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(bytesPerSecond)) + "/s"
}

// IsUnavailable reports whether err marks a private or unavailable video
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
