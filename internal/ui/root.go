package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/ytget/ytmux/internal/config"
	"github.com/ytget/ytmux/internal/download"
	"github.com/ytget/ytmux/internal/history"
	"github.com/ytget/ytmux/internal/model"
	"github.com/ytget/ytmux/internal/platform"
	"github.com/ytget/ytmux/internal/quality"
)

// RootUI is the main download form
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	downloader   download.Downloader
	settings     *config.Settings
	localization *Localization
	logger       zerolog.Logger

	urlEntry      *widget.Entry
	kindRadio     *widget.RadioGroup
	qualityLabel  *widget.Label
	qualitySelect *widget.Select
	playlistCheck *widget.Check
	dirLabel      *widget.Label
	dirEntry      *widget.Entry
	browseBtn     *widget.Button
	startBtn      *widget.Button
	cancelBtn     *widget.Button
	progressBar   *widget.ProgressBar
	statusLabel   *widget.Label
	tabs          *container.AppTabs
	itemsTab      *container.TabItem
	historyTab    *container.TabItem

	playlistPanel *PlaylistPanel
	historyPanel  *HistoryPanel
}

// NewRootUI builds the form, installs it as the window content and loads
// the history from store
func NewRootUI(window fyne.Window, app fyne.App, downloader download.Downloader, store history.Store, logger zerolog.Logger) *RootUI {
	settings := config.NewSettings(app)

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		app:          app,
		downloader:   downloader,
		settings:     settings,
		localization: localization,
		logger:       logger.With().Str("component", "ui").Logger(),
	}

	ApplyTheme(app, settings.GetDarkTheme())
	window.SetTitle(localization.GetText(KeyAppTitle))

	ui.setupUI(store)
	window.SetOnClosed(func() {
		if ui.downloader.Cancel() {
			ui.logger.Info().Msg("Window closed, download cancelled")
		}
	})
	return ui
}

func (ui *RootUI) setupUI(store history.Store) {
	t := ui.localization.GetText
	ui.createMenu()

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(t(KeyEnterURL))
	ui.urlEntry.Validator = validateURLInput
	ui.urlEntry.OnSubmitted = func(string) { ui.onStart() }

	ui.kindRadio = widget.NewRadioGroup(ui.kindOptions(), ui.onKindChanged)
	ui.kindRadio.Horizontal = true
	ui.kindRadio.Required = true

	ui.qualityLabel = widget.NewLabel(t(KeyQuality) + ":")
	ui.qualitySelect = widget.NewSelect(nil, func(label string) {
		if label != "" {
			ui.settings.SetQuality(ui.currentKind(), label)
		}
	})

	ui.playlistCheck = widget.NewCheck(t(KeyPlaylist), ui.settings.SetPlaylist)
	ui.playlistCheck.SetChecked(ui.settings.GetPlaylist())

	ui.dirLabel = widget.NewLabel(t(KeyDownloadDirectory) + ":")
	ui.dirEntry = widget.NewEntry()
	ui.dirEntry.SetText(ui.settings.GetDownloadDirectory())
	ui.browseBtn = widget.NewButton(t(KeyBrowse), ui.onBrowse)

	ui.startBtn = widget.NewButton(t(KeyDownload), ui.onStart)
	ui.startBtn.Importance = widget.HighImportance
	ui.cancelBtn = widget.NewButton(t(KeyCancel), ui.onCancel)
	ui.cancelBtn.Disable()

	ui.progressBar = widget.NewProgressBar()
	ui.statusLabel = widget.NewLabel(t(KeyReady))
	ui.statusLabel.Truncation = fyne.TextTruncateEllipsis

	// Selecting the kind fills the quality options
	ui.kindRadio.SetSelected(ui.kindOption(ui.settings.GetMediaKind()))

	ui.playlistPanel = NewPlaylistPanel(ui.localization)
	ui.historyPanel = NewHistoryPanel(ui.window, ui.localization, store, ui.logger)
	ui.historyPanel.SetCallbacks(ui.onOpenFile, ui.onRevealFile, ui.onCopyPath)

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	left := container.NewHBox(settingsBtn)
	if logo, err := LoadLogoResource(); err == nil {
		img := canvas.NewImageFromResource(logo)
		img.SetMinSize(fyne.NewSize(LogoSize, LogoSize))
		img.FillMode = canvas.ImageFillContain
		left = container.NewHBox(img, settingsBtn)
	}

	urlRow := container.NewBorder(nil, nil, left, nil, ui.urlEntry)
	optionsRow := container.NewHBox(ui.kindRadio, ui.qualityLabel, ui.qualitySelect, ui.playlistCheck)
	dirRow := container.NewBorder(nil, nil, ui.dirLabel, ui.browseBtn, ui.dirEntry)
	actionRow := container.NewBorder(nil, nil, nil, container.NewHBox(ui.startBtn, ui.cancelBtn), ui.progressBar)

	top := container.NewVBox(urlRow, optionsRow, dirRow, actionRow, ui.statusLabel)

	ui.itemsTab = container.NewTabItem(t(KeyItemsTab), ui.playlistPanel.Container())
	ui.historyTab = container.NewTabItem(t(KeyHistoryTab), ui.historyPanel.Container())
	ui.tabs = container.NewAppTabs(ui.itemsTab, ui.historyTab)

	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, ui.tabs))
}

func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	names := ui.localization.GetAvailableLanguages()
	for _, code := range ui.localization.LanguageCodes() {
		langCode := code
		item := fyne.NewMenuItem(names[code], func() {
			ui.onLanguageChange(langCode)
		})
		item.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

func (ui *RootUI) onLanguageChange(code string) {
	ui.localization.SetLanguage(code)
	ui.settings.SetLanguage(code)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts re-applies every localized string
func (ui *RootUI) refreshUITexts() {
	t := ui.localization.GetText
	kind := ui.currentKind()

	ui.window.SetTitle(t(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(t(KeyEnterURL))
	ui.qualityLabel.SetText(t(KeyQuality) + ":")
	ui.playlistCheck.Text = t(KeyPlaylist)
	ui.playlistCheck.Refresh()
	ui.dirLabel.SetText(t(KeyDownloadDirectory) + ":")
	ui.browseBtn.SetText(t(KeyBrowse))
	ui.startBtn.SetText(t(KeyDownload))
	ui.cancelBtn.SetText(t(KeyCancel))

	ui.kindRadio.Options = ui.kindOptions()
	ui.kindRadio.Selected = ui.kindOption(kind)
	ui.kindRadio.Refresh()

	ui.itemsTab.Text = t(KeyItemsTab)
	ui.historyTab.Text = t(KeyHistoryTab)
	ui.tabs.Refresh()

	ui.historyPanel.clearBtn.SetText(t(KeyClearHistory))
	ui.historyPanel.emptyLabel.SetText(t(KeyNoHistory))

	if !ui.downloader.IsRunning() {
		ui.statusLabel.SetText(t(KeyReady))
	}
}

func (ui *RootUI) kindOptions() []string {
	return []string{ui.localization.GetText(KeyVideo), ui.localization.GetText(KeyAudio)}
}

func (ui *RootUI) kindOption(kind model.MediaKind) string {
	if kind == model.KindAudio {
		return ui.localization.GetText(KeyAudio)
	}
	return ui.localization.GetText(KeyVideo)
}

func (ui *RootUI) currentKind() model.MediaKind {
	if ui.kindRadio != nil && ui.kindRadio.Selected == ui.localization.GetText(KeyAudio) {
		return model.KindAudio
	}
	return model.KindVideo
}

// onKindChanged swaps the quality options for the selected media kind
func (ui *RootUI) onKindChanged(string) {
	kind := ui.currentKind()
	ui.settings.SetMediaKind(kind)

	ui.qualitySelect.Options = quality.Labels(kind)
	ui.qualitySelect.SetSelected(ui.settings.GetQuality(kind))
}

func validateURLInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	return model.ValidateURL(model.CleanURL(input))
}

func (ui *RootUI) onBrowse() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		ui.dirEntry.SetText(uri.Path())
		ui.settings.SetDownloadDirectory(uri.Path())
	}, ui.window)
}

// newRequest builds a request from the form, or returns a localized error
func (ui *RootUI) newRequest() (model.Request, error) {
	t := ui.localization.GetText

	rawURL := model.CleanURL(ui.urlEntry.Text)
	if rawURL == "" {
		return model.Request{}, errors.New(t(KeyPleaseEnterURL))
	}
	if err := model.ValidateURL(rawURL); err != nil {
		return model.Request{}, fmt.Errorf("%s: %w", t(KeyInvalidURL), err)
	}

	dir := strings.TrimSpace(ui.dirEntry.Text)
	if dir == "" {
		dir = ui.settings.GetDownloadDirectory()
		ui.dirEntry.SetText(dir)
	}

	kind := ui.currentKind()
	label := ui.qualitySelect.Selected
	if label == "" {
		label = quality.DefaultLabel(kind)
	}

	return model.NewRequest(rawURL, kind, label, ui.playlistCheck.Checked, dir), nil
}

func (ui *RootUI) onStart() {
	if ui.downloader.IsRunning() {
		ui.statusLabel.SetText(ui.localization.GetText(KeyAlreadyRunning))
		return
	}

	req, err := ui.newRequest()
	if err != nil {
		ui.statusLabel.SetText(err.Error())
		dialog.ShowError(err, ui.window)
		return
	}
	ui.settings.SetDownloadDirectory(req.Directory)

	ui.playlistPanel.Reset()
	ui.progressBar.SetValue(0)
	ui.tabs.Select(ui.itemsTab)

	ui.logger.Info().Str("request", req.ID).Str("url", req.URL).Msg("Starting download")
	if err := ui.downloader.Start(req, &formObserver{ui: ui}); err != nil {
		if errors.Is(err, download.ErrBusy) {
			ui.statusLabel.SetText(ui.localization.GetText(KeyAlreadyRunning))
			return
		}
		ui.logger.Error().Err(err).Msg("Failed to start download")
		ui.statusLabel.SetText(err.Error())
		dialog.ShowError(err, ui.window)
		return
	}
	ui.setRunning(true)
}

func (ui *RootUI) onCancel() {
	if ui.downloader.Cancel() {
		ui.cancelBtn.Disable()
		ui.statusLabel.SetText(ui.localization.GetText(KeyCancelling))
	}
}

// setRunning toggles the form between idle and busy
func (ui *RootUI) setRunning(running bool) {
	widgets := []fyne.Disableable{ui.startBtn, ui.urlEntry, ui.kindRadio, ui.qualitySelect, ui.playlistCheck, ui.dirEntry, ui.browseBtn}
	for _, w := range widgets {
		if running {
			w.Disable()
		} else {
			w.Enable()
		}
	}
	if running {
		ui.cancelBtn.Enable()
	} else {
		ui.cancelBtn.Disable()
	}
}

// onFinished records a completed item
func (ui *RootUI) onFinished(entry model.HistoryEntry) {
	ui.historyPanel.Add(entry)
	ui.app.SendNotification(fyne.NewNotification(ui.localization.GetText(KeyDownloadCompleted), entry.GetDisplayTitle()))
	if ui.settings.GetAutoRevealOnComplete() {
		ui.onRevealFile(entry.Path)
	}
}

// onDone returns the form to idle and summarizes the request
func (ui *RootUI) onDone(summary model.Summary) {
	ui.setRunning(false)
	if summary.Cancelled {
		ui.progressBar.SetValue(0)
		return
	}
	if summary.Total > 1 || summary.Failed > 0 || summary.Skipped > 0 {
		ui.statusLabel.SetText(fmt.Sprintf(ui.localization.GetText(KeySummary), summary.Completed, summary.Skipped, summary.Failed))
	}
	if summary.Completed > 0 {
		ui.showToastNotification(summary)
	}
}

func (ui *RootUI) onError(err error) {
	ui.statusLabel.SetText(err.Error())
	dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyDownloadFailed), err), ui.window)
}

func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, ui.onSettingsSaved)
}

func (ui *RootUI) onSettingsSaved() {
	ApplyTheme(ui.app, ui.settings.GetDarkTheme())
	ui.localization.SetLanguage(ui.settings.GetLanguage())
	ui.dirEntry.SetText(ui.settings.GetDownloadDirectory())
	ui.refreshUITexts()
	ui.createMenu()
	ui.statusLabel.SetText(ui.localization.GetText(KeySettingsSaved))
}

func (ui *RootUI) onRevealFile(filePath string) {
	if err := platform.OpenFileInManager(filePath); err != nil {
		ui.logger.Warn().Err(err).Str("path", filePath).Msg("Failed to reveal file")
		dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFile), err), ui.window)
	}
}

func (ui *RootUI) onOpenFile(filePath string) {
	if err := platform.OpenFileWithDefaultApp(filePath); err != nil {
		ui.logger.Warn().Err(err).Str("path", filePath).Msg("Failed to open file")
		dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFile), err), ui.window)
	}
}

func (ui *RootUI) onCopyPath(filePath string) {
	ui.app.Clipboard().SetContent(filePath)
	ui.statusLabel.SetText(ui.localization.GetText(KeyPathCopied))
}

// showToastNotification shows a short-lived summary in the top-right corner
func (ui *RootUI) showToastNotification(summary model.Summary) {
	titleLabel := widget.NewLabel(ui.localization.GetText(KeyDownloadCompleted))
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	messageLabel := widget.NewLabel(fmt.Sprintf(ui.localization.GetText(KeySummary), summary.Completed, summary.Skipped, summary.Failed))

	var toast *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() { toast.Hide() })
	closeBtn.Importance = widget.LowImportance

	historyBtn := widget.NewButton(ui.localization.GetText(KeyHistoryTab), func() {
		ui.tabs.Select(ui.historyTab)
		toast.Hide()
	})

	content := container.NewVBox(
		container.NewBorder(nil, nil, titleLabel, closeBtn),
		messageLabel,
		container.NewHBox(historyBtn),
	)
	toast = widget.NewPopUp(content, ui.window.Canvas())

	canvasSize := ui.window.Canvas().Size()
	toast.Resize(fyne.NewSize(ToastWidth, ToastHeight))
	toast.ShowAtPosition(fyne.NewPos(canvasSize.Width-ToastWidth-ToastMargin, ToastMargin))

	time.AfterFunc(ToastAutoHide, func() {
		fyne.Do(toast.Hide)
	})
}

// formObserver forwards orchestrator events to the form on the main thread
type formObserver struct {
	ui *RootUI
}

func (o *formObserver) Status(message string) {
	fyne.Do(func() { o.ui.statusLabel.SetText(message) })
}

func (o *formObserver) Progress(p model.Progress) {
	fyne.Do(func() { o.ui.progressBar.SetValue(p.Fraction()) })
}

func (o *formObserver) PlaylistProgress(current, total int, title string) {
	fyne.Do(func() {
		o.ui.playlistPanel.SetProgress(current, total, title)
		o.ui.progressBar.SetValue(0)
	})
}

func (o *formObserver) ItemUpdated(item model.PlaylistItem) {
	fyne.Do(func() { o.ui.playlistPanel.SetItem(item) })
}

func (o *formObserver) Finished(entry model.HistoryEntry) {
	fyne.Do(func() { o.ui.onFinished(entry) })
}

func (o *formObserver) Error(err error) {
	fyne.Do(func() { o.ui.onError(err) })
}

func (o *formObserver) Done(summary model.Summary) {
	fyne.Do(func() { o.ui.onDone(summary) })
}
