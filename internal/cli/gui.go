package cli

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/ytmux/internal/config"
	"github.com/ytget/ytmux/internal/platform"
	"github.com/ytget/ytmux/internal/ui"
)

const (
	AppID = "com.ytget.ytmux"

	WindowWidth  = 800
	WindowHeight = 600
)

// runGUI opens the main window and blocks until it is closed
func (e *env) runGUI() error {
	e.logger.Info().Str("version", e.version).Msg("Starting GUI")

	// Missing tools are reported when a download starts
	bins, err := e.resolveBinaries()
	if err != nil {
		e.logger.Error().Err(err).Msg("yt-dlp not found, downloads will fail")
	}

	store, err := e.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	svc := e.newService(bins, store)

	a := app.NewWithID(AppID)
	seedPreferences(a, e.cfg)

	w := a.NewWindow(fmt.Sprintf("%s %s", config.AppName, e.version))
	w.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	ui.NewRootUI(w, a, svc, store, e.logger)

	w.ShowAndRun()
	return nil
}

// seedPreferences copies configured values into empty GUI preferences so a
// first start honours the config file
func seedPreferences(a fyne.App, cfg *config.AppConfig) {
	if cfg.DownloadDir == "" || a.Preferences().String(config.KeyDownloadDir) != "" {
		return
	}
	if err := platform.CreateDirectoryIfNotExists(cfg.DownloadDir); err != nil {
		return
	}
	config.NewSettings(a).SetDownloadDirectory(cfg.DownloadDir)
}
