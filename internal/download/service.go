package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/ytget/ytmux/internal/encode"
	"github.com/ytget/ytmux/internal/extract"
	"github.com/ytget/ytmux/internal/history"
	"github.com/ytget/ytmux/internal/model"
	"github.com/ytget/ytmux/internal/platform"
	"github.com/ytget/ytmux/internal/quality"
)

// Status messages
const (
	StatusResolving  = "Getting video information..."
	StatusProcessing = "Processing..."
	StatusMerging    = "Merging video and audio..."
	StatusMergeRetry = "ffmpeg merge failed, trying yt-dlp..."
	StatusCompleted  = "Download completed"
	StatusCancelled  = "Download cancelled"
)

// DefaultHTTPTimeout bounds thumbnail requests
const DefaultHTTPTimeout = 30 * time.Second

var (
	// ErrBusy is returned when a request is submitted while another runs
	ErrBusy = errors.New("a download is already in progress")
	// ErrCancelled is returned when the running request was cancelled
	ErrCancelled = errors.New("download cancelled")
)

// Options tune failure handling of the pipeline
type Options struct {
	// SkipUnavailable reports private or removed videos as skipped
	SkipUnavailable bool
	// ContinueOnError keeps iterating a playlist after an item fails
	ContinueOnError bool
	// MergeFallback lets yt-dlp merge when ffmpeg fails
	MergeFallback bool
	// Thumbnails saves the largest thumbnail of each item
	Thumbnails bool
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		SkipUnavailable: true,
		ContinueOnError: true,
		MergeFallback:   true,
		Thumbnails:      true,
	}
}

// Service handles download operations
type Service struct {
	extractor extract.Extractor
	muxer     encode.Muxer
	store     history.Store
	opts      Options
	client    *http.Client
	logger    zerolog.Logger

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// NewService creates a new download service. A nil store keeps history in memory.
func NewService(ex extract.Extractor, mux encode.Muxer, store history.Store, opts Options, logger zerolog.Logger) *Service {
	if store == nil {
		store = history.NewMemoryStore()
	}
	return &Service{
		extractor: ex,
		muxer:     mux,
		store:     store,
		opts:      opts,
		client:    &http.Client{Timeout: DefaultHTTPTimeout},
		logger:    logger.With().Str("component", "download").Logger(),
	}
}

// SetHTTPClient replaces the client used for thumbnails
func (s *Service) SetHTTPClient(c *http.Client) {
	s.client = c
}

// History returns the store finished items are appended to
func (s *Service) History() history.Store {
	return s.store
}

// Start validates the request and runs it in the background
func (s *Service) Start(req model.Request, obs Observer) error {
	if err := req.Validate(); err != nil {
		return err
	}
	ctx, err := s.begin(context.Background())
	if err != nil {
		return err
	}
	go s.run(ctx, req, observerOrNop(obs))
	return nil
}

// Run runs the request and blocks until it ends
func (s *Service) Run(ctx context.Context, req model.Request, obs Observer) (model.Summary, error) {
	if err := req.Validate(); err != nil {
		return model.Summary{}, err
	}
	ctx, err := s.begin(ctx)
	if err != nil {
		return model.Summary{}, err
	}
	return s.run(ctx, req, observerOrNop(obs))
}

// Cancel stops the running request. In-flight yt-dlp and ffmpeg processes
// are killed through the request context.
func (s *Service) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.cancelled.Store(true)
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info().Msg("Cancellation requested")
	return true
}

// IsRunning reports whether a request is in progress
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) begin(parent context.Context) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(parent)
	s.running = true
	s.cancel = cancel
	s.cancelled.Store(false)
	return ctx, nil
}

func (s *Service) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.running = false
}

// isCancelled reports whether the request should stop before the next step
func (s *Service) isCancelled(ctx context.Context) bool {
	return s.cancelled.Load() || ctx.Err() != nil
}

// run executes the pipeline and releases the busy slot. Done is always the
// last event and is emitted once a new request can be started.
func (s *Service) run(ctx context.Context, req model.Request, obs Observer) (summary model.Summary, err error) {
	log := s.logger.With().Str("request", req.ID).Str("url", req.URL).Str("kind", string(req.Kind)).Logger()
	log.Info().Str("quality", req.Quality).Bool("playlist", req.Playlist).Msg("Download started")

	defer func() {
		if errors.Is(err, ErrCancelled) {
			summary.Cancelled = true
			obs.Status(StatusCancelled)
		}
		log.Info().
			Int("completed", summary.Completed).
			Int("skipped", summary.Skipped).
			Int("failed", summary.Failed).
			Bool("cancelled", summary.Cancelled).
			Msg("Download finished")
		s.end()
		obs.Done(summary)
	}()

	if err := platform.CreateDirectoryIfNotExists(req.Directory); err != nil {
		err = fmt.Errorf("failed to create download directory: %w", err)
		obs.Error(err)
		return summary, err
	}

	obs.Status(StatusResolving)
	resolved, err := s.extractor.Resolve(ctx, req.URL, req.Playlist)
	if err != nil {
		if s.isCancelled(ctx) {
			return summary, ErrCancelled
		}
		log.Error().Err(err).Msg("Failed to resolve URL")
		obs.Error(err)
		return summary, err
	}

	pl := model.NewPlaylist(req.ID, resolved)
	total := pl.Len()
	log.Debug().Int("entries", total).Bool("is_list", pl.IsList).Msg("URL resolved")

	var loopErr error
	for i := 1; i <= total; i++ {
		if s.isCancelled(ctx) {
			loopErr = ErrCancelled
			break
		}

		item := pl.Item(i)
		if pl.IsList {
			obs.PlaylistProgress(i, total, item.Title)
			obs.Status(fmt.Sprintf("Downloading %d/%d (%.0f%%): %s", i, total, pl.GetDownloadProgress(), item.Title))
		}

		entry, itemErr := s.processItem(ctx, req, pl, i, obs)

		switch {
		case itemErr == nil:
			pl.UpdateItemOutput(i, entry.Path)
			s.setItem(pl, obs, i, model.TaskStatusCompleted, "")
			if err := s.store.Add(entry); err != nil {
				log.Warn().Err(err).Msg("Failed to save history entry")
			}
			obs.Finished(entry)
			log.Info().Str("file", entry.Path).Float64("overall", pl.GetDownloadProgress()).Msg("Item completed")

		case s.isCancelled(ctx) || errors.Is(itemErr, context.Canceled):
			s.setItem(pl, obs, i, model.TaskStatusCancelled, "")
			loopErr = ErrCancelled

		case extract.IsUnavailable(itemErr) && s.opts.SkipUnavailable:
			s.setItem(pl, obs, i, model.TaskStatusSkipped, itemErr.Error())
			obs.Status(fmt.Sprintf("Skipping unavailable video: %s", pl.Item(i).Title))
			log.Warn().Err(itemErr).Str("item", item.URL).Msg("Skipping unavailable video")

		default:
			s.setItem(pl, obs, i, model.TaskStatusError, itemErr.Error())
			log.Error().Err(itemErr).Str("item", item.URL).Msg("Item failed")
			if pl.IsList {
				itemErr = fmt.Errorf("%s: %w", pl.Item(i).Title, itemErr)
			}
			obs.Error(itemErr)
			if !pl.IsList || !s.opts.ContinueOnError {
				loopErr = itemErr
			}
		}
		if loopErr != nil {
			break
		}
	}

	if errors.Is(loopErr, ErrCancelled) {
		pl.CancelPending()
	}
	summary = pl.Summary()
	if loopErr == nil && summary.Completed > 0 {
		obs.Status(StatusCompleted)
	}
	return summary, loopErr
}

// setItem updates an item and notifies the observer
func (s *Service) setItem(pl *model.Playlist, obs Observer, index int, status model.TaskStatus, errText string) {
	pl.UpdateItemStatus(index, status, errText)
	obs.ItemUpdated(*pl.Item(index))
}

// processItem downloads entry index of pl and returns its history entry
func (s *Service) processItem(ctx context.Context, req model.Request, pl *model.Playlist, index int, obs Observer) (model.HistoryEntry, error) {
	s.setItem(pl, obs, index, model.TaskStatusResolving, "")
	meta, err := s.extractor.Fetch(ctx, pl.Item(index).URL)
	if err != nil {
		return model.HistoryEntry{}, err
	}
	pl.UpdateItemMetadata(index, meta)

	name := platform.SanitizeFilename(meta.Title)
	if name == "" {
		name = platform.SanitizeFilename(meta.ID)
	}
	paths := platform.NewMediaPaths(req.Directory, name)

	var thumb string
	if s.opts.Thumbnails {
		thumb = s.saveThumbnail(ctx, req.Directory, meta)
	}
	if s.isCancelled(ctx) {
		return model.HistoryEntry{}, ErrCancelled
	}
	s.setItem(pl, obs, index, model.TaskStatusDownloading, "")

	var final string
	if req.Kind == model.KindAudio {
		final, err = s.downloadAudio(ctx, req, meta, paths, obs)
	} else {
		final, err = s.downloadVideo(ctx, req, meta, paths, func() {
			s.setItem(pl, obs, index, model.TaskStatusMerging, "")
		}, obs)
	}
	if err != nil {
		return model.HistoryEntry{}, err
	}
	return model.NewHistoryEntry(final, thumb, meta.SourceURL()), nil
}

// downloadAudio extracts the best audio stream to mp3
func (s *Service) downloadAudio(ctx context.Context, req model.Request, meta *model.Metadata, paths platform.MediaPaths, obs Observer) (string, error) {
	job := extract.Job{
		URL:          meta.SourceURL(),
		Format:       quality.AudioOnlySelector,
		Output:       paths.MP3,
		ExtractAudio: true,
		AudioFormat:  quality.AudioFormat,
		AudioQuality: quality.AudioBitrate(req.Quality),
	}
	if err := s.extractor.Download(ctx, job, s.progressFunc(obs)); err != nil {
		return "", err
	}
	s.fileDone(obs)
	return paths.MP3, nil
}

// downloadVideo fetches video and audio separately and muxes them. merging
// is called before each merge attempt. A cancelled download leaves no
// intermediate files behind.
func (s *Service) downloadVideo(ctx context.Context, req model.Request, meta *model.Metadata, paths platform.MediaPaths, merging func(), obs Observer) (final string, err error) {
	source := meta.SourceURL()
	defer func() {
		if err != nil && (s.isCancelled(ctx) || errors.Is(err, context.Canceled)) {
			removeFiles(paths.Video, paths.Audio, paths.Merged)
		}
	}()

	videoJob := extract.Job{URL: source, Format: quality.VideoSelector(req.Quality), Output: paths.Video}
	if err := s.extractor.Download(ctx, videoJob, s.progressFunc(obs)); err != nil {
		return "", err
	}
	s.fileDone(obs)
	if s.isCancelled(ctx) {
		return "", ErrCancelled
	}

	audioJob := extract.Job{URL: source, Format: quality.AudioForVideo, Output: paths.Audio}
	if err := s.extractor.Download(ctx, audioJob, s.progressFunc(obs)); err != nil {
		return "", err
	}
	s.fileDone(obs)
	if s.isCancelled(ctx) {
		return "", ErrCancelled
	}

	if !platform.FileExists(paths.Video) || !platform.FileExists(paths.Audio) {
		// Nothing to merge, e.g. the video selector already included audio
		s.logger.Debug().Str("video", paths.Video).Str("audio", paths.Audio).Msg("Skipping merge, a stream is missing")
		if platform.FileExists(paths.Video) {
			return paths.Video, nil
		}
		return "", fmt.Errorf("download produced no video file: %s", paths.Video)
	}

	merging()
	obs.Status(StatusMerging)
	muxErr := s.muxer.Mux(ctx, paths.Video, paths.Audio, paths.Merged, func(pct float64) {
		obs.Status(fmt.Sprintf("%s %d%%", StatusMerging, int(pct)))
	})
	if muxErr == nil {
		return paths.Video, s.finalizeMerge(paths)
	}
	if s.isCancelled(ctx) || errors.Is(muxErr, context.Canceled) {
		return "", ErrCancelled
	}
	if !s.opts.MergeFallback {
		return "", muxErr
	}

	s.logger.Warn().Err(muxErr).Msg("ffmpeg merge failed, falling back to yt-dlp merge")
	obs.Status(StatusMergeRetry)
	removeFiles(paths.Video, paths.Audio, paths.Merged)
	merging()

	mergeJob := extract.Job{
		URL:         source,
		Format:      quality.CombinedSelector(req.Quality),
		Output:      paths.Video,
		MergeFormat: quality.MergeFormat,
	}
	if err := s.extractor.Merge(ctx, mergeJob, s.progressFunc(obs)); err != nil {
		return "", fmt.Errorf("both ffmpeg and yt-dlp merging failed: %w", errors.Join(muxErr, err))
	}
	s.fileDone(obs)
	return paths.Video, nil
}

// finalizeMerge deletes the intermediates and moves the merged file to the
// canonical name
func (s *Service) finalizeMerge(paths platform.MediaPaths) error {
	if !platform.FileExists(paths.Merged) {
		return fmt.Errorf("merged file missing: %s", paths.Merged)
	}
	removeFiles(paths.Video, paths.Audio)
	if err := os.Rename(paths.Merged, paths.Video); err != nil {
		return fmt.Errorf("failed to rename merged file: %w", err)
	}
	return nil
}

// progressFunc forwards transfer progress and a status line
func (s *Service) progressFunc(obs Observer) extract.ProgressFunc {
	return func(p model.Progress) {
		obs.Progress(p)
		if msg := ProgressStatus(p); msg != "" {
			obs.Status(msg)
		}
	}
}

// fileDone reports a finished file transfer
func (s *Service) fileDone(obs Observer) {
	obs.Progress(model.Progress{Percent: 100, ETASec: -1})
	obs.Status(StatusProcessing)
}

// ProgressStatus renders "Downloading... 3.4 MB/10 MB (1.2 MB/s) ETA 00:05"
func ProgressStatus(p model.Progress) string {
	var msg string
	switch {
	case p.Total > 0:
		msg = fmt.Sprintf("Downloading... %s/%s", humanize.Bytes(uint64(p.Downloaded)), humanize.Bytes(uint64(p.Total)))
		if p.Speed != "" {
			msg += fmt.Sprintf(" (%s)", p.Speed)
		}
	case p.Percent > 0:
		msg = strings.TrimSpace(fmt.Sprintf("Downloading... %.1f%% %s", p.Percent, p.Speed))
	default:
		return ""
	}
	if p.ETASec > 0 {
		msg += " ETA " + p.GetETAString()
	}
	return msg
}

func removeFiles(paths ...string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

func observerOrNop(obs Observer) Observer {
	if obs == nil {
		return NopObserver{}
	}
	return obs
}
