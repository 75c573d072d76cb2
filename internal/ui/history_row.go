package ui

import (
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytmux/internal/model"
)

// HistoryRow shows one finished download with open/reveal/copy actions
type HistoryRow struct {
	widget.BaseWidget

	entry        model.HistoryEntry
	localization *Localization

	titleLabel *widget.Label
	pathLabel  *widget.Label

	openBtn   *widget.Button // open with the default player
	revealBtn *widget.Button // reveal in file manager
	copyBtn   *widget.Button

	onOpen     func(filePath string)
	onReveal   func(filePath string)
	onCopyPath func(filePath string)
}

// NewHistoryRow creates a new history row widget
func NewHistoryRow(entry model.HistoryEntry, localization *Localization) *HistoryRow {
	hr := &HistoryRow{
		entry:        entry,
		localization: localization,
	}
	hr.ExtendBaseWidget(hr)
	hr.createUI()
	hr.updateFromEntry()
	return hr
}

// SetCallbacks sets the action callbacks
func (hr *HistoryRow) SetCallbacks(onOpen, onReveal, onCopyPath func(filePath string)) {
	hr.onOpen = onOpen
	hr.onReveal = onReveal
	hr.onCopyPath = onCopyPath
}

// SetEntry updates the row with a new entry
func (hr *HistoryRow) SetEntry(entry model.HistoryEntry) {
	hr.entry = entry
	hr.updateFromEntry()
	hr.Refresh()
}

func (hr *HistoryRow) createUI() {
	hr.titleLabel = widget.NewLabel("")
	hr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	hr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	hr.pathLabel = widget.NewLabel("")
	hr.pathLabel.Truncation = fyne.TextTruncateEllipsis
	hr.pathLabel.Importance = widget.LowImportance

	hr.openBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		hr.invoke(hr.onOpen)
	})
	hr.revealBtn = widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {
		hr.invoke(hr.onReveal)
	})
	hr.copyBtn = widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		hr.invoke(hr.onCopyPath)
	})
}

// invoke calls an action with the current path; rows are recycled by the
// list so the entry must be read at click time
func (hr *HistoryRow) invoke(action func(string)) {
	if action == nil || hr.entry.Path == "" {
		return
	}
	action(hr.entry.Path)
}

func (hr *HistoryRow) updateFromEntry() {
	title := hr.entry.GetDisplayTitle()
	if strings.EqualFold(filepath.Ext(hr.entry.Filename), ".mp3") {
		title = IconMusic + " " + title
	}
	hr.titleLabel.SetText(title)

	detail := hr.entry.Path
	if !hr.entry.CompletedAt.IsZero() {
		detail = hr.entry.CompletedAt.Format("2006-01-02 15:04") + MiddleDotSeparator + detail
	}
	hr.pathLabel.SetText(detail)

	if hr.entry.Path == "" {
		hr.openBtn.Disable()
		hr.revealBtn.Disable()
		hr.copyBtn.Disable()
	} else {
		hr.openBtn.Enable()
		hr.revealBtn.Enable()
		hr.copyBtn.Enable()
	}
}

// CreateRenderer creates the widget renderer
func (hr *HistoryRow) CreateRenderer() fyne.WidgetRenderer {
	actions := container.NewHBox(hr.openBtn, hr.revealBtn, hr.copyBtn)
	text := container.NewVBox(hr.titleLabel, hr.pathLabel)
	return &historyRowRenderer{
		row:    hr,
		layout: container.NewBorder(nil, nil, nil, actions, text),
	}
}

type historyRowRenderer struct {
	row    *HistoryRow
	layout *fyne.Container
}

func (r *historyRowRenderer) Layout(size fyne.Size) {
	r.layout.Resize(size)
}

func (r *historyRowRenderer) MinSize() fyne.Size {
	size := r.layout.MinSize()
	if size.Width < RowMinWidth {
		size.Width = RowMinWidth
	}
	if size.Height < RowMinHeight {
		size.Height = RowMinHeight
	}
	return size
}

func (r *historyRowRenderer) Refresh() {
	r.layout.Refresh()
}

func (r *historyRowRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.layout}
}

func (r *historyRowRenderer) Destroy() {}
