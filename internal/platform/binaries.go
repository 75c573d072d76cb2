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

// Executable names
const (
	YTDLPBinary   = "yt-dlp"
	FFmpegBinary  = "ffmpeg"
	FFprobeBinary = "ffprobe"
)

// ErrBinaryNotFound is returned when an external tool cannot be located
var ErrBinaryNotFound = errors.New("binary not found")

// Binaries holds resolved paths of the external tools
type Binaries struct {
	YTDLP   string
	FFmpeg  string
	FFprobe string
}

// ResolveBinaries locates yt-dlp, ffmpeg and ffprobe. Explicit paths win,
// then a binary next to the running executable, then PATH. A missing tool
// is left empty so the caller can decide whether it is fatal.
func ResolveBinaries(ytdlpPath, ffmpegPath, ffprobePath string) (Binaries, []error) {
	dirs := localDirs()
	var errs []error

	resolve := func(name, configured string) string {
		p, err := ResolveBinary(name, configured, dirs...)
		if err != nil {
			errs = append(errs, err)
		}
		return p
	}

	b := Binaries{
		YTDLP:   resolve(YTDLPBinary, ytdlpPath),
		FFmpeg:  resolve(FFmpegBinary, ffmpegPath),
		FFprobe: resolve(FFprobeBinary, ffprobePath),
	}
	return b, errs
}

// ResolveBinary finds one executable. configured may be a name on PATH or a
// path; when empty, each of localDirs is searched before PATH.
func ResolveBinary(name, configured string, localDirs ...string) (string, error) {
	configured = strings.TrimSpace(configured)
	if configured != "" && configured != name {
		if resolved, err := exec.LookPath(configured); err == nil {
			return resolved, nil
		}
		if isExecutableFile(configured) {
			return configured, nil
		}
		return "", fmt.Errorf("%w: configured %s %q", ErrBinaryNotFound, name, configured)
	}

	for _, dir := range localDirs {
		candidate := filepath.Join(dir, executableName(name))
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}

	if resolved, err := exec.LookPath(name); err == nil {
		return resolved, nil
	}
	return "", fmt.Errorf("%w: %s (install it or place it next to the application)", ErrBinaryNotFound, name)
}

// PrependPath puts dir at the front of PATH unless it is already listed,
// so child processes such as yt-dlp find a bundled ffmpeg.
func PrependPath(dir string) error {
	if dir == "" {
		return nil
	}
	current := os.Getenv("PATH")
	for _, p := range filepath.SplitList(current) {
		if p == dir {
			return nil
		}
	}
	if current == "" {
		return os.Setenv("PATH", dir)
	}
	return os.Setenv("PATH", dir+string(os.PathListSeparator)+current)
}

// ExecutableDir returns the directory of the running executable
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// localDirs returns directories searched before PATH
func localDirs() []string {
	dir, err := ExecutableDir()
	if err != nil {
		return nil
	}
	return []string{dir}
}

func executableName(name string) string {
	if runtime.GOOS == OSWindows && filepath.Ext(name) == "" {
		return name + ".exe"
	}
	return name
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == OSWindows {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}
