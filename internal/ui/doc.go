// Package ui contains the Fyne desktop form. It turns user input into
// download requests, renders orchestrator events (status, progress, playlist
// items) and lists the download history. All UI strings are localized via
// Localization.
package ui
