package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconFile     = "📄"
	IconCopy     = "📋"
	IconClose    = "×"
	IconError    = "❌"
	IconSkipped  = "⤼"
	IconDone     = "✔"
	IconMusic    = "🎵"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
	PlaylistIndexFormat = "%d."
)

// Layout sizing
const (
	StatusLabelWidth float32 = 84
	IndexLabelWidth  float32 = 36

	RowMinWidth  float32 = 400
	RowMinHeight float32 = 48

	SettingsDialogWidth  float32 = 500
	SettingsDialogHeight float32 = 360

	LogoSize float32 = 32
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 300
	ToastHeight   float32 = 120
	ToastMargin   float32 = 20
	ToastAutoHide         = 5 * time.Second
)
