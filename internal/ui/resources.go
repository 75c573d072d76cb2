package ui

import (
	"path/filepath"

	"fyne.io/fyne/v2"

	"github.com/ytget/ytmux/internal/platform"
)

const (
	AppIcon = "ytmux.png"
)

// LoadLogoResource loads the logo shipped next to the executable, falling
// back to the working directory
func LoadLogoResource() (fyne.Resource, error) {
	if dir, err := platform.ExecutableDir(); err == nil {
		path := filepath.Join(dir, AppIcon)
		if platform.FileExists(path) {
			return fyne.LoadResourceFromPath(path)
		}
	}
	return fyne.LoadResourceFromPath(AppIcon)
}
