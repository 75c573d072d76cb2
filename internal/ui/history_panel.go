package ui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/ytget/ytmux/internal/history"
	"github.com/ytget/ytmux/internal/model"
)

// HistoryPanel lists finished downloads, newest first
type HistoryPanel struct {
	window       fyne.Window
	localization *Localization
	store        history.Store
	logger       zerolog.Logger

	mu      sync.Mutex
	entries []model.HistoryEntry

	list       *widget.List
	emptyLabel *widget.Label
	clearBtn   *widget.Button
	container  *fyne.Container

	onOpen     func(filePath string)
	onReveal   func(filePath string)
	onCopyPath func(filePath string)
}

// NewHistoryPanel creates the panel and loads the stored entries
func NewHistoryPanel(window fyne.Window, localization *Localization, store history.Store, logger zerolog.Logger) *HistoryPanel {
	hp := &HistoryPanel{
		window:       window,
		localization: localization,
		store:        store,
		logger:       logger,
	}
	hp.createUI()
	hp.Reload()
	return hp
}

// SetCallbacks sets the row action callbacks
func (hp *HistoryPanel) SetCallbacks(onOpen, onReveal, onCopyPath func(filePath string)) {
	hp.onOpen = onOpen
	hp.onReveal = onReveal
	hp.onCopyPath = onCopyPath
}

func (hp *HistoryPanel) createUI() {
	hp.list = widget.NewList(
		hp.Len,
		func() fyne.CanvasObject {
			return NewHistoryRow(model.HistoryEntry{}, hp.localization)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			entry, ok := hp.At(id)
			if !ok {
				return
			}
			if row, ok := obj.(*HistoryRow); ok {
				row.SetCallbacks(hp.onOpen, hp.onReveal, hp.onCopyPath)
				row.SetEntry(entry)
			}
		},
	)

	hp.emptyLabel = widget.NewLabel(hp.localization.GetText(KeyNoHistory))
	hp.emptyLabel.Alignment = fyne.TextAlignCenter
	hp.emptyLabel.Importance = widget.LowImportance

	hp.clearBtn = widget.NewButtonWithIcon(hp.localization.GetText(KeyClearHistory), theme.DeleteIcon(), hp.onClear)
	hp.clearBtn.Importance = widget.LowImportance

	hp.container = container.NewBorder(nil, container.NewHBox(hp.clearBtn), nil, nil, container.NewStack(hp.emptyLabel, hp.list))
}

// Container returns the root object of the panel
func (hp *HistoryPanel) Container() *fyne.Container {
	return hp.container
}

// Reload reads the store again. Entries whose file was moved or deleted
// are not shown.
func (hp *HistoryPanel) Reload() {
	entries, err := hp.store.List()
	if err != nil {
		hp.logger.Warn().Err(err).Msg("Failed to load history")
		entries = nil
	}
	entries = history.Newest(history.Existing(entries))

	hp.mu.Lock()
	hp.entries = entries
	hp.mu.Unlock()
	hp.refresh()
}

// Add shows a newly finished entry at the top
func (hp *HistoryPanel) Add(entry model.HistoryEntry) {
	hp.mu.Lock()
	hp.entries = append([]model.HistoryEntry{entry}, hp.entries...)
	hp.mu.Unlock()
	hp.refresh()
}

// Len returns the number of listed entries
func (hp *HistoryPanel) Len() int {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	return len(hp.entries)
}

// At returns the entry at list position i
func (hp *HistoryPanel) At(i int) (model.HistoryEntry, bool) {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	if i < 0 || i >= len(hp.entries) {
		return model.HistoryEntry{}, false
	}
	return hp.entries[i], true
}

func (hp *HistoryPanel) onClear() {
	dialog.ShowConfirm(
		hp.localization.GetText(KeyClearHistory),
		hp.localization.GetText(KeyClearHistoryAsk),
		func(confirmed bool) {
			if confirmed {
				hp.Clear()
			}
		},
		hp.window,
	)
}

// Clear empties the store and the list
func (hp *HistoryPanel) Clear() {
	if err := hp.store.Clear(); err != nil {
		hp.logger.Error().Err(err).Msg("Failed to clear history")
		dialog.ShowError(err, hp.window)
		return
	}
	hp.mu.Lock()
	hp.entries = nil
	hp.mu.Unlock()
	hp.refresh()
}

func (hp *HistoryPanel) refresh() {
	if hp.Len() == 0 {
		hp.emptyLabel.Show()
		hp.clearBtn.Disable()
	} else {
		hp.emptyLabel.Hide()
		hp.clearBtn.Enable()
	}
	hp.list.Refresh()
}
