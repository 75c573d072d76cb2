package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
	CmdCommand      = "cmd"
	StartCommand    = "start"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
	WindowsCmdFlag     = "/c"
)

// Directory names
const (
	DownloadsDirName  = "Downloads"
	ThumbnailsDirName = "thumbnails"
	ThumbnailExt      = ".jpg"
)

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// forbiddenFilenameChars are replaced by SanitizeFilename
const forbiddenFilenameChars = `<>:"/\|?*`

// filenameReplacer maps every forbidden character to an underscore
var filenameReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, len(forbiddenFilenameChars)*2)
	for _, r := range forbiddenFilenameChars {
		pairs = append(pairs, string(r), "_")
	}
	return strings.NewReplacer(pairs...)
}()

// ErrFileNotFound is returned when a file to open or reveal is missing
var ErrFileNotFound = errors.New("file does not exist")

// SanitizeFilename replaces each of < > : " / \ | ? * with an underscore.
// Everything else is left as is, so applying it twice changes nothing.
func SanitizeFilename(name string) string {
	return filenameReplacer.Replace(name)
}

// OpenFileInManager opens the system file manager with the file highlighted
func OpenFileInManager(filePath string) error {
	absPath, err := existingAbsPath(filePath)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, WindowsSelectParam+absPath).Run()
	case OSLinux:
		return openFileInManagerLinux(absPath)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// openFileInManagerLinux opens the directory containing the file.
// File selection is not standardized on Linux.
func openFileInManagerLinux(filePath string) error {
	dir := filepath.Dir(filePath)

	if err := exec.Command(XDGOpenCommand, dir).Run(); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.Command(fm, dir).Run()
		}
	}

	return fmt.Errorf("no suitable file manager found")
}

// OpenFileWithDefaultApp opens the file with the default system application
func OpenFileWithDefaultApp(filePath string) error {
	absPath, err := existingAbsPath(filePath)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, absPath).Run()
	case OSWindows:
		return exec.Command(CmdCommand, WindowsCmdFlag, StartCommand, "", absPath).Run()
	case OSLinux:
		return exec.Command(XDGOpenCommand, absPath).Run()
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// existingAbsPath checks that a file exists and returns its absolute path
func existingAbsPath(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("%w: empty path", ErrFileNotFound)
	}
	if !FileExists(filePath) {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absPath, nil
}

// FileExists reports whether a regular file exists at path
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DownloadsDirName), nil
}

// ThumbnailPath returns <dir>/thumbnails/<id>.jpg
func ThumbnailPath(dir, videoID string) string {
	return filepath.Join(dir, ThumbnailsDirName, SanitizeFilename(videoID)+ThumbnailExt)
}

// MediaPaths holds the file names used while producing one item
type MediaPaths struct {
	Video  string // <dir>/<name>.mp4
	Audio  string // <dir>/<name>.m4a
	Merged string // <dir>/<name>_merged.mp4
	MP3    string // <dir>/<name>.mp3
}

// NewMediaPaths derives every intermediate and final path for a sanitized name
func NewMediaPaths(dir, name string) MediaPaths {
	base := filepath.Join(dir, name)
	return MediaPaths{
		Video:  base + ".mp4",
		Audio:  base + ".m4a",
		Merged: base + "_merged.mp4",
		MP3:    base + ".mp3",
	}
}
