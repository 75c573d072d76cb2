// Package quality maps user-facing quality labels to yt-dlp format
// selectors and audio bitrates.
package quality

import (
	"fmt"
	"strings"

	"github.com/ytget/ytmux/internal/model"
)

// Video labels
const (
	LabelBest = "Best Quality"
	// LabelBestTR is the label used by the Turkish interface of earlier releases
	LabelBestTR = "En İyi Kalite"
)

// Format selectors
const (
	BestVideoSelector = "bestvideo[ext=mp4]/best[ext=mp4]"
	AudioForVideo     = "bestaudio[ext=m4a]/best[ext=m4a]"
	AudioOnlySelector = "bestaudio/best"
	DefaultBitrate    = "192"
	DefaultAudioLabel = "192 kbps"
	AudioFormat       = "mp3"
	MergeFormat       = "mp4"
)

// videoHeights lists the capped heights offered, best first
var videoHeights = []int{1080, 720, 480, 360, 240}

// audioBitrates lists the bitrates offered, best first
var audioBitrates = []string{"320", "256", "192", "128", "96"}

var (
	videoSelectors = buildVideoSelectors()
	audioLabels    = buildAudioLabels()
)

func heightSelector(h int) string {
	return fmt.Sprintf("bestvideo[height<=%d][ext=mp4]/best[height<=%d][ext=mp4]", h, h)
}

func buildVideoSelectors() map[string]string {
	m := map[string]string{
		LabelBest:   BestVideoSelector,
		LabelBestTR: BestVideoSelector,
	}
	for _, h := range videoHeights {
		m[fmt.Sprintf("%dp", h)] = heightSelector(h)
	}
	return m
}

func buildAudioLabels() map[string]string {
	m := make(map[string]string, len(audioBitrates))
	for _, b := range audioBitrates {
		m[b+" kbps"] = b
	}
	return m
}

// VideoLabels returns the video quality labels in display order
func VideoLabels() []string {
	labels := []string{LabelBest}
	for _, h := range videoHeights {
		labels = append(labels, fmt.Sprintf("%dp", h))
	}
	return labels
}

// AudioLabels returns the audio quality labels in display order
func AudioLabels() []string {
	labels := make([]string, 0, len(audioBitrates))
	for _, b := range audioBitrates {
		labels = append(labels, b+" kbps")
	}
	return labels
}

// Labels returns the labels offered for a media kind
func Labels(kind model.MediaKind) []string {
	if kind == model.KindAudio {
		return AudioLabels()
	}
	return VideoLabels()
}

// DefaultLabel returns the preselected label for a media kind
func DefaultLabel(kind model.MediaKind) string {
	if kind == model.KindAudio {
		return DefaultAudioLabel
	}
	return LabelBest
}

// VideoSelector returns the video format selector for a label.
// Unknown labels fall back to the best quality selector.
func VideoSelector(label string) string {
	if s, ok := videoSelectors[label]; ok {
		return s
	}
	return BestVideoSelector
}

// AudioBitrate returns the mp3 bitrate in kbps for a label.
// Unknown labels fall back to 192.
func AudioBitrate(label string) string {
	if b, ok := audioLabels[label]; ok {
		return b
	}
	return DefaultBitrate
}

// CombinedSelector returns the video+audio selector used when yt-dlp merges
// the streams itself. '+' binds tighter than '/', so the merged pair is tried
// first and a single progressive file is the fallback.
func CombinedSelector(label string) string {
	video, single, _ := strings.Cut(VideoSelector(label), "/")
	audio, _, _ := strings.Cut(AudioForVideo, "/")
	return video + "+" + audio + "/" + single
}

// IsKnown reports whether label is offered for the media kind
func IsKnown(kind model.MediaKind, label string) bool {
	if kind == model.KindAudio {
		_, ok := audioLabels[label]
		return ok
	}
	_, ok := videoSelectors[label]
	return ok
}
