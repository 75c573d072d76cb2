package ui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/ytmux/internal/model"
)

// PlaylistPanel lists the items of the running request with their status.
// A single video shows as a one-item list.
type PlaylistPanel struct {
	localization *Localization

	mu    sync.Mutex
	items []model.PlaylistItem

	header    *widget.Label
	list      *widget.List
	container *fyne.Container
}

// NewPlaylistPanel creates a new playlist panel
func NewPlaylistPanel(localization *Localization) *PlaylistPanel {
	pp := &PlaylistPanel{localization: localization}
	pp.createUI()
	return pp
}

func (pp *PlaylistPanel) createUI() {
	pp.header = widget.NewLabel("")
	pp.header.TextStyle = fyne.TextStyle{Bold: true}
	pp.header.Hide()

	pp.list = widget.NewList(
		pp.Len,
		func() fyne.CanvasObject {
			return NewItemRow()
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			item, ok := pp.At(id)
			if !ok {
				return
			}
			if row, ok := obj.(*ItemRow); ok {
				row.SetItem(item)
			}
		},
	)

	pp.container = container.NewBorder(pp.header, nil, nil, nil, pp.list)
}

// Container returns the root object of the panel
func (pp *PlaylistPanel) Container() *fyne.Container {
	return pp.container
}

// Reset clears the items for a new request
func (pp *PlaylistPanel) Reset() {
	pp.mu.Lock()
	pp.items = nil
	pp.mu.Unlock()

	pp.header.SetText("")
	pp.header.Hide()
	pp.list.Refresh()
}

// SetProgress shows which item of how many is being processed
func (pp *PlaylistPanel) SetProgress(current, total int, title string) {
	pp.header.SetText(fmt.Sprintf("%d/%d%s%s", current, total, MiddleDotSeparator, title))
	pp.header.Show()
}

// SetItem inserts or replaces the item with the same index
func (pp *PlaylistPanel) SetItem(item model.PlaylistItem) {
	pp.mu.Lock()
	replaced := false
	for i := range pp.items {
		if pp.items[i].Index == item.Index {
			pp.items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		pp.items = append(pp.items, item)
	}
	pp.mu.Unlock()

	pp.list.Refresh()
}

// Len returns the number of listed items
func (pp *PlaylistPanel) Len() int {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return len(pp.items)
}

// At returns the item at list position i
func (pp *PlaylistPanel) At(i int) (model.PlaylistItem, bool) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	if i < 0 || i >= len(pp.items) {
		return model.PlaylistItem{}, false
	}
	return pp.items[i], true
}

// ItemRow renders one playlist item
type ItemRow struct {
	widget.BaseWidget

	indexLabel  *widget.Label
	titleLabel  *widget.Label
	statusLabel *widget.Label
}

// NewItemRow creates an empty item row
func NewItemRow() *ItemRow {
	r := &ItemRow{
		indexLabel:  widget.NewLabel(""),
		titleLabel:  widget.NewLabel(""),
		statusLabel: widget.NewLabel(""),
	}
	r.titleLabel.Truncation = fyne.TextTruncateEllipsis
	r.statusLabel.Alignment = fyne.TextAlignTrailing
	r.ExtendBaseWidget(r)
	return r
}

// SetItem updates the row with an item
func (r *ItemRow) SetItem(item model.PlaylistItem) {
	r.indexLabel.SetText(fmt.Sprintf(PlaylistIndexFormat, item.Index))

	title := item.Title
	if title == "" {
		title = item.URL
	}
	if details := item.Details(); details != "" {
		title += MiddleDotSeparator + details
	}
	if item.Error != "" {
		title += MiddleDotSeparator + item.Error
	}
	r.titleLabel.SetText(title)

	switch {
	case item.Status.IsActive():
		r.statusLabel.Importance = widget.HighImportance
		r.statusLabel.SetText(item.Status.String())
	case item.Status == model.TaskStatusError:
		r.statusLabel.Importance = widget.DangerImportance
		r.statusLabel.SetText(IconError + " " + item.Status.String())
	case item.Status == model.TaskStatusCompleted:
		r.statusLabel.Importance = widget.SuccessImportance
		r.statusLabel.SetText(IconDone + " " + item.Status.String())
	case item.Status == model.TaskStatusSkipped:
		r.statusLabel.Importance = widget.WarningImportance
		r.statusLabel.SetText(IconSkipped + " " + item.Status.String())
	default:
		r.statusLabel.Importance = widget.MediumImportance
		r.statusLabel.SetText(item.Status.String())
	}
	r.Refresh()
}

// CreateRenderer creates the widget renderer
func (r *ItemRow) CreateRenderer() fyne.WidgetRenderer {
	index := container.NewGridWrap(fyne.NewSize(IndexLabelWidth, RowMinHeight/2), r.indexLabel)
	status := container.NewGridWrap(fyne.NewSize(StatusLabelWidth+IndexLabelWidth, RowMinHeight/2), r.statusLabel)
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, index, status, r.titleLabel))
}
