package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ytget/ytmux/internal/history"
	"github.com/ytget/ytmux/internal/platform"
)

// AppName names the configuration directory and environment prefix
const AppName = "ytmux"

// EnvPrefix prefixes environment overrides, e.g. YTMUX_DOWNLOAD_DIR
const EnvPrefix = "YTMUX"

// DefaultEnvFile is loaded from the working directory when present
const DefaultEnvFile = ".env"

// Configuration keys
const (
	KeyAppDownloadDir     = "download_dir"
	KeyYTDLPPath          = "ytdlp_path"
	KeyFFmpegPath         = "ffmpeg_path"
	KeyFFprobePath        = "ffprobe_path"
	KeyHistoryBackend     = "history.backend"
	KeyHistoryPath        = "history.path"
	KeySkipUnavailable    = "skip_unavailable"
	KeyContinueOnError    = "continue_on_error"
	KeyMergeFallback      = "merge_fallback"
	KeyThumbnails         = "thumbnails"
	KeyListTimeout        = "list_timeout"
	KeyLogLevel           = "log_level"
	DefaultHistoryBackend = history.BackendMemory
	DefaultLogLevel       = "info"
)

// AppConfig is the process-wide configuration shared by the GUI and CLI
type AppConfig struct {
	DownloadDir     string
	YTDLPPath       string
	FFmpegPath      string
	FFprobePath     string
	HistoryBackend  string
	HistoryPath     string
	SkipUnavailable bool
	ContinueOnError bool
	MergeFallback   bool
	Thumbnails      bool
	ListTimeout     time.Duration
	LogLevel        string
	ConfigDir       string
}

// LoadOptions points Load at explicit files
type LoadOptions struct {
	ConfigFile string // empty searches config.{yaml,toml,json} in the config dir
	EnvFile    string // empty uses DefaultEnvFile
}

// NewViper returns a viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAppDownloadDir, "")
	v.SetDefault(KeyYTDLPPath, "")
	v.SetDefault(KeyFFmpegPath, "")
	v.SetDefault(KeyFFprobePath, "")
	v.SetDefault(KeyHistoryBackend, DefaultHistoryBackend)
	v.SetDefault(KeyHistoryPath, "")
	v.SetDefault(KeySkipUnavailable, true)
	v.SetDefault(KeyContinueOnError, true)
	v.SetDefault(KeyMergeFallback, true)
	v.SetDefault(KeyThumbnails, true)
	v.SetDefault(KeyListTimeout, platform.DefaultListTimeout)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Dir returns the per-user configuration directory
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, AppName)
}

// Load builds the configuration from defaults, a .env file, the config file,
// YTMUX_* variables and whatever flags were bound to v.
func Load(v *viper.Viper, opts LoadOptions) (*AppConfig, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	configDir := Dir()
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(configDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &AppConfig{
		DownloadDir:     v.GetString(KeyAppDownloadDir),
		YTDLPPath:       v.GetString(KeyYTDLPPath),
		FFmpegPath:      v.GetString(KeyFFmpegPath),
		FFprobePath:     v.GetString(KeyFFprobePath),
		HistoryBackend:  strings.ToLower(v.GetString(KeyHistoryBackend)),
		HistoryPath:     v.GetString(KeyHistoryPath),
		SkipUnavailable: v.GetBool(KeySkipUnavailable),
		ContinueOnError: v.GetBool(KeyContinueOnError),
		MergeFallback:   v.GetBool(KeyMergeFallback),
		Thumbnails:      v.GetBool(KeyThumbnails),
		ListTimeout:     v.GetDuration(KeyListTimeout),
		LogLevel:        v.GetString(KeyLogLevel),
		ConfigDir:       configDir,
	}

	if cfg.HistoryPath == "" {
		cfg.HistoryPath = history.DefaultPath(cfg.HistoryBackend, configDir)
	}
	if cfg.DownloadDir == "" {
		if dir, err := platform.GetHomeDownloadsDir(); err == nil {
			cfg.DownloadDir = dir
		}
	}
	return cfg, cfg.Validate()
}

// Validate rejects unusable values
func (c *AppConfig) Validate() error {
	if c.ListTimeout <= 0 {
		return fmt.Errorf("invalid list timeout %s, must be positive", c.ListTimeout)
	}
	switch c.HistoryBackend {
	case history.BackendMemory, history.BackendText, history.BackendSQLite:
	default:
		return fmt.Errorf("invalid history backend %q (memory, text or sqlite)", c.HistoryBackend)
	}
	return nil
}
