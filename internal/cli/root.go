// Package cli holds the cobra command tree of the ytmux binary.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ytget/ytmux/internal/config"
	"github.com/ytget/ytmux/internal/logging"
)

// Flag names. Flags that mirror a configuration key are bound to it.
const (
	FlagConfig         = "config"
	FlagLogLevel       = "log-level"
	FlagHistoryBackend = "history-backend"
	FlagHistoryPath    = "history-path"
	FlagYTDLP          = "ytdlp"
	FlagFFmpeg         = "ffmpeg"

	FlagAudio    = "audio"
	FlagQuality  = "quality"
	FlagPlaylist = "playlist"
	FlagDir      = "dir"
)

// env is the state shared by all commands of one invocation
type env struct {
	version string
	v       *viper.Viper
	cfg     *config.AppConfig
	logger  zerolog.Logger
	out     io.Writer
	errOut  io.Writer
}

// NewRootCommand builds the command tree. Running it without a subcommand
// opens the GUI.
func NewRootCommand(version string) *cobra.Command {
	e := &env{
		version: version,
		v:       config.NewViper(),
		logger:  zerolog.Nop(),
		out:     os.Stdout,
		errOut:  os.Stderr,
	}

	rootCmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Download YouTube videos and audio with yt-dlp and ffmpeg",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e.out = cmd.OutOrStdout()
			e.errOut = cmd.ErrOrStderr()
			return e.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runGUI()
		},
	}

	if err := initPersistentFlags(rootCmd, e.v); err != nil {
		// Binding only fails for unknown flags, which is a programming error
		panic(err)
	}

	rootCmd.AddCommand(
		newGUICommand(e),
		newGetCommand(e),
		newHistoryCommand(e),
		newVersionCommand(e),
	)
	return rootCmd
}

// Execute runs the command tree against os.Args
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

// initPersistentFlags registers the global flags and binds them to v
func initPersistentFlags(rootCmd *cobra.Command, v *viper.Viper) error {
	flags := rootCmd.PersistentFlags()
	flags.String(FlagConfig, "", "Config file (default: config.{yaml,toml} in the user config directory)")

	flags.String(FlagLogLevel, config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	if err := v.BindPFlag(config.KeyLogLevel, flags.Lookup(FlagLogLevel)); err != nil {
		return err
	}

	flags.String(FlagHistoryBackend, config.DefaultHistoryBackend, "History backend (memory, text or sqlite)")
	if err := v.BindPFlag(config.KeyHistoryBackend, flags.Lookup(FlagHistoryBackend)); err != nil {
		return err
	}

	flags.String(FlagHistoryPath, "", "History file (default depends on the backend)")
	if err := v.BindPFlag(config.KeyHistoryPath, flags.Lookup(FlagHistoryPath)); err != nil {
		return err
	}

	flags.String(FlagYTDLP, "", "Path to the yt-dlp executable")
	if err := v.BindPFlag(config.KeyYTDLPPath, flags.Lookup(FlagYTDLP)); err != nil {
		return err
	}

	flags.String(FlagFFmpeg, "", "Path to the ffmpeg executable")
	if err := v.BindPFlag(config.KeyFFmpegPath, flags.Lookup(FlagFFmpeg)); err != nil {
		return err
	}
	return nil
}

// load reads the configuration and sets up logging
func (e *env) load(cmd *cobra.Command) error {
	configFile, err := cmd.Flags().GetString(FlagConfig)
	if err != nil {
		return err
	}

	cfg, err := config.Load(e.v, config.LoadOptions{ConfigFile: configFile})
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = logging.Setup(cfg.LogLevel, e.errOut)
	e.logger.Debug().
		Str("history_backend", cfg.HistoryBackend).
		Str("history_path", cfg.HistoryPath).
		Str("download_dir", cfg.DownloadDir).
		Msg("Configuration loaded")
	return nil
}

func newVersionCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(e.out, "%s %s\n", config.AppName, e.version)
			return err
		},
	}
}

func newGUICommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop window (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runGUI()
		},
	}
}
