package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable marks private, sign-in gated or removed videos
var ErrUnavailable = errors.New("video unavailable")

// unavailableMarkers are matched against yt-dlp error output
var unavailableMarkers = []string{
	"Private video",
	"Sign in to confirm",
	"Video unavailable",
}

// IsUnavailableMessage reports whether yt-dlp output names a private or
// unavailable video
func IsUnavailableMessage(msg string) bool {
	for _, m := range unavailableMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// classifyError wraps a yt-dlp failure with its most useful stderr line
func classifyError(op string, err error, stderr string) error {
	detail := lastErrorLine(stderr)
	full := stderr + "\n" + err.Error()

	if IsUnavailableMessage(full) {
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("%s: %w: %s", op, ErrUnavailable, detail)
	}
	if detail != "" {
		return fmt.Errorf("%s: %w: %s", op, err, detail)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// lastErrorLine returns the last "ERROR:" line of stderr, or its last
// non-empty line
func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	last := ""
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
		if last == "" {
			last = line
		}
	}
	return last
}
