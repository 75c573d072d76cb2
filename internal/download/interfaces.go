package download

import (
	"context"

	"github.com/ytget/ytmux/internal/model"
)

// Observer receives pipeline events. Calls happen on the worker goroutine;
// UI implementations must hop to their main thread.
type Observer interface {
	// Status reports a human readable status line
	Status(message string)
	// Progress reports the transfer of the current file
	Progress(p model.Progress)
	// PlaylistProgress reports which item (1-based) of how many is starting
	PlaylistProgress(current, total int, title string)
	// ItemUpdated reports a status change of one item
	ItemUpdated(item model.PlaylistItem)
	// Finished reports a completed item
	Finished(entry model.HistoryEntry)
	// Error reports a failure
	Error(err error)
	// Done is always the last event of a request
	Done(summary model.Summary)
}

// Downloader defines the interface for the download service.
type Downloader interface {
	// Start runs the request in the background
	Start(req model.Request, obs Observer) error
	// Run runs the request and blocks until it ends
	Run(ctx context.Context, req model.Request, obs Observer) (model.Summary, error)
	// Cancel stops the running request, reporting whether one was running
	Cancel() bool
	// IsRunning reports whether a request is in progress
	IsRunning() bool
}

// NopObserver ignores every event. Embed it to implement only some events.
type NopObserver struct{}

func (NopObserver) Status(string) {}
func (NopObserver) Progress(model.Progress) {}
func (NopObserver) PlaylistProgress(int, int, string) {}
func (NopObserver) ItemUpdated(model.PlaylistItem) {}
func (NopObserver) Finished(model.HistoryEntry) {}
func (NopObserver) Error(error) {}
func (NopObserver) Done(model.Summary) {}
