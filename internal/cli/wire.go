package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ytget/ytmux/internal/download"
	"github.com/ytget/ytmux/internal/encode"
	"github.com/ytget/ytmux/internal/extract"
	"github.com/ytget/ytmux/internal/history"
	"github.com/ytget/ytmux/internal/platform"
)

// openHistory opens the configured history store
func (e *env) openHistory() (history.Store, error) {
	store, err := history.Open(e.cfg.HistoryBackend, e.cfg.HistoryPath, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

// resolveBinaries locates the external tools. A missing yt-dlp is returned
// as an error; a missing ffmpeg only degrades merging and is logged.
func (e *env) resolveBinaries() (platform.Binaries, error) {
	bins, errs := platform.ResolveBinaries(e.cfg.YTDLPPath, e.cfg.FFmpegPath, e.cfg.FFprobePath)
	for _, err := range errs {
		e.logger.Warn().Err(err).Msg("External tool not found")
	}
	if bins.FFmpeg != "" {
		// yt-dlp looks up ffmpeg on PATH for audio extraction and merging
		if err := platform.PrependPath(filepath.Dir(bins.FFmpeg)); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to extend PATH")
		}
	}
	if bins.YTDLP == "" {
		return bins, errors.Join(errs...)
	}
	e.logger.Debug().
		Str("ytdlp", bins.YTDLP).
		Str("ffmpeg", bins.FFmpeg).
		Str("ffprobe", bins.FFprobe).
		Msg("External tools resolved")
	return bins, nil
}

// newService wires the extractor, muxer and history into a download service
func (e *env) newService(bins platform.Binaries, store history.Store) *download.Service {
	lister := platform.NewPlaylistLister()
	lister.SetTimeout(e.cfg.ListTimeout)

	extractor := extract.NewYTDLP(e.logger,
		extract.WithExecutable(bins.YTDLP),
		extract.WithLister(lister),
	)
	muxer := encode.NewFFmpeg(bins.FFmpeg, bins.FFprobe, e.logger)

	opts := download.Options{
		SkipUnavailable: e.cfg.SkipUnavailable,
		ContinueOnError: e.cfg.ContinueOnError,
		MergeFallback:   e.cfg.MergeFallback,
		Thumbnails:      e.cfg.Thumbnails,
	}
	return download.NewService(extractor, muxer, store, opts, e.logger)
}
