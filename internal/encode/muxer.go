package encode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// FFmpeg constants for the mux template
const (
	VideoCodec = "copy"
	AudioCodec = "aac"
	VideoMap   = "0:v:0"
	AudioMap   = "1:a:0"

	// Executable and I/O constants
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	ProgressEndLine     = "progress=end"
)

// maxStderrTail bounds the ffmpeg output kept for error messages
const maxStderrTail = 20

// ErrMuxFailed is returned when ffmpeg cannot produce the merged file
var ErrMuxFailed = errors.New("ffmpeg merge failed")

// ProgressFunc receives mux progress as a percentage
type ProgressFunc func(percent float64)

// Muxer is the encoder adapter used by the download orchestrator
type Muxer interface {
	Mux(ctx context.Context, videoPath, audioPath, outputPath string, progress ProgressFunc) error
}

// FFmpeg implements Muxer with the ffmpeg executable
type FFmpeg struct {
	ffmpeg  string
	ffprobe string
	logger  zerolog.Logger
}

// NewFFmpeg creates a muxer. Empty paths fall back to the command names.
func NewFFmpeg(ffmpegPath, ffprobePath string, logger zerolog.Logger) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = FFmpegCommand
	}
	if ffprobePath == "" {
		ffprobePath = FFprobeCommand
	}
	return &FFmpeg{
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		logger:  logger.With().Str("component", "encode").Logger(),
	}
}

// BuildMuxArgs builds the ffmpeg command arguments
func BuildMuxArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", videoPath, // Video input
		"-i", audioPath, // Audio input
		"-c:v", VideoCodec,
		"-c:a", AudioCodec,
		"-map", VideoMap,
		"-map", AudioMap,
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats",
		outputPath,
	}
}

// Mux merges videoPath and audioPath into outputPath. A partial output is
// removed on failure or cancellation.
func (f *FFmpeg) Mux(ctx context.Context, videoPath, audioPath, outputPath string, progress ProgressFunc) error {
	for _, p := range []string{videoPath, audioPath} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%w: input file does not exist: %s", ErrMuxFailed, p)
		}
	}

	// Progress is best effort; an unknown duration only disables percentages
	duration, err := f.ProbeDuration(ctx, videoPath)
	if err != nil {
		f.logger.Warn().Err(err).Str("file", videoPath).Msg("Failed to get video duration")
	}

	cmd := exec.CommandContext(ctx, f.ffmpeg, BuildMuxArgs(videoPath, audioPath, outputPath)...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: failed to create stderr pipe: %v", ErrMuxFailed, err)
	}

	f.logger.Debug().Str("video", videoPath).Str("audio", audioPath).Str("output", outputPath).Msg("Starting ffmpeg")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start ffmpeg: %v", ErrMuxFailed, err)
	}

	// stderr must be drained before Wait
	tail := monitorProgress(stderr, duration, progress)
	err = cmd.Wait()

	if ctx.Err() != nil {
		os.Remove(outputPath)
		return ctx.Err()
	}
	if err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("%w: %v: %s", ErrMuxFailed, err, strings.Join(tail, "; "))
	}
	if _, statErr := os.Stat(outputPath); statErr != nil {
		return fmt.Errorf("%w: output missing: %s", ErrMuxFailed, outputPath)
	}

	if progress != nil {
		progress(100)
	}
	return nil
}

// ProbeDuration returns the duration in seconds using ffprobe
func (f *FFmpeg) ProbeDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobe, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}
	return parseDuration(string(output))
}

func parseDuration(s string) (float64, error) {
	duration, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// monitorProgress reads ffmpeg -progress output and reports percentages.
// Lines that are not progress keys are returned as a bounded tail.
func monitorProgress(r io.Reader, totalDuration float64, progress ProgressFunc) []string {
	scanner := bufio.NewScanner(r)
	var tail []string
	last := -1

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Parse progress line: out_time_us=123456
		if strings.HasPrefix(line, ProgressTimePrefix) {
			us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
			if err != nil || totalDuration <= 0 || progress == nil {
				continue
			}
			pct := float64(us) / 1e6 / totalDuration * 100
			if pct > 100 {
				pct = 100
			}
			if pct < 0 {
				pct = 0
			}
			if int(pct) != last {
				last = int(pct)
				progress(pct)
			}
			continue
		}
		if strings.Contains(line, "=") && !strings.Contains(line, " ") {
			continue
		}

		tail = append(tail, line)
		if len(tail) > maxStderrTail {
			tail = tail[1:]
		}
	}
	return tail
}
