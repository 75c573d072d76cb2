package config

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"

	"github.com/ytget/ytmux/internal/model"
	"github.com/ytget/ytmux/internal/platform"
	"github.com/ytget/ytmux/internal/quality"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir        = "download_directory"
	KeyMediaKind          = "media_kind"
	KeyVideoQuality       = "video_quality"
	KeyAudioQuality       = "audio_quality"
	KeyPlaylist           = "playlist"
	KeyDarkTheme          = "dark_theme"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// Default values
const (
	DefaultMediaKind          = model.KindVideo
	DefaultLanguage           = "system"
	DefaultDarkTheme          = false
	DefaultAutoRevealComplete = false
)

// Settings persists GUI state between runs
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = filepath.Join(os.TempDir(), "downloads")
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetMediaKind returns the last selected media kind
func (s *Settings) GetMediaKind() model.MediaKind {
	return model.ParseMediaKind(s.app.Preferences().StringWithFallback(KeyMediaKind, string(DefaultMediaKind)))
}

// SetMediaKind sets the media kind
func (s *Settings) SetMediaKind(kind model.MediaKind) {
	s.app.Preferences().SetString(KeyMediaKind, string(kind))
}

// GetQuality returns the last quality label used for a media kind.
// Stored labels that are no longer offered fall back to the default.
func (s *Settings) GetQuality(kind model.MediaKind) string {
	label := s.app.Preferences().String(qualityKey(kind))
	if label == "" || !quality.IsKnown(kind, label) {
		return quality.DefaultLabel(kind)
	}
	return label
}

// SetQuality stores the quality label for a media kind
func (s *Settings) SetQuality(kind model.MediaKind, label string) {
	s.app.Preferences().SetString(qualityKey(kind), label)
}

func qualityKey(kind model.MediaKind) string {
	if kind == model.KindAudio {
		return KeyAudioQuality
	}
	return KeyVideoQuality
}

// GetPlaylist returns whether playlist mode was enabled
func (s *Settings) GetPlaylist() bool {
	return s.app.Preferences().Bool(KeyPlaylist)
}

// SetPlaylist sets playlist mode
func (s *Settings) SetPlaylist(enabled bool) {
	s.app.Preferences().SetBool(KeyPlaylist, enabled)
}

// GetDarkTheme returns whether the dark theme is enabled
func (s *Settings) GetDarkTheme() bool {
	return s.app.Preferences().BoolWithFallback(KeyDarkTheme, DefaultDarkTheme)
}

// SetDarkTheme enables or disables the dark theme
func (s *Settings) SetDarkTheme(enabled bool) {
	s.app.Preferences().SetBool(KeyDarkTheme, enabled)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetAutoRevealOnComplete returns whether to reveal finished files
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to reveal finished files
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"tr":     "Türkçe",
		"ru":     "Русский",
		"pt":     "Português",
	}
}
