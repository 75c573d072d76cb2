package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ytget/ytmux/internal/download"
	"github.com/ytget/ytmux/internal/model"
	"github.com/ytget/ytmux/internal/quality"
)

// defaultTermWidth is used when the terminal size cannot be read
const defaultTermWidth = 80

func newGetCommand(e *env) *cobra.Command {
	var (
		audio    bool
		label    string
		playlist bool
		dir      string
	)

	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Download a video, its audio or a playlist without the GUI",
		Example: "  ytmux get https://youtu.be/dQw4w9WgXcQ --quality 720p\n" +
			"  ytmux get --audio --quality \"320 kbps\" --playlist https://www.youtube.com/playlist?list=...",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := model.KindVideo
			if audio {
				kind = model.KindAudio
			}
			if label == "" {
				label = quality.DefaultLabel(kind)
			} else if !quality.IsKnown(kind, label) {
				e.logger.Warn().Str("quality", label).Strs("known", quality.Labels(kind)).Msg("Unknown quality, using the default")
			}
			if dir == "" {
				dir = e.cfg.DownloadDir
			}

			req := model.NewRequest(args[0], kind, label, playlist, dir)
			if err := req.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return e.runGet(ctx, req)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&audio, FlagAudio, false, "Download audio only and convert it to mp3")
	flags.StringVarP(&label, FlagQuality, "q", "", "Quality label, e.g. 720p or \"192 kbps\" (default: best video, 192 kbps audio)")
	flags.BoolVar(&playlist, FlagPlaylist, false, "Download every entry of a playlist URL")
	flags.StringVarP(&dir, FlagDir, "d", "", "Download directory (default: download_dir setting)")
	return cmd
}

// runGet runs one request to completion. Cancelling ctx kills the running
// yt-dlp or ffmpeg process.
func (e *env) runGet(ctx context.Context, req model.Request) error {
	bins, err := e.resolveBinaries()
	if err != nil {
		return err
	}

	store, err := e.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	svc := e.newService(bins, store)
	obs := newTermObserver(e.out)

	summary, err := svc.Run(ctx, req, obs)
	obs.close()
	if errors.Is(err, download.ErrCancelled) || (err != nil && ctx.Err() != nil) {
		return download.ErrCancelled
	}
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", summary.Failed, summary.Total)
	}
	return nil
}

// termObserver prints pipeline events. On a terminal the transient status
// is redrawn on one line; otherwise every distinct status gets its own line.
type termObserver struct {
	mu        sync.Mutex
	w         io.Writer
	tty       bool
	width     int
	transient bool
	last      string
}

func newTermObserver(w io.Writer) *termObserver {
	o := &termObserver{w: w, width: defaultTermWidth}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		o.tty = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			o.width = width
		}
	}
	return o
}

// status shows a line that the next status replaces
func (o *termObserver) status(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if line == o.last {
		return
	}
	o.last = line

	if !o.tty {
		fmt.Fprintln(o.w, line)
		return
	}
	fmt.Fprintf(o.w, "\r%-*s", o.width-1, truncate(line, o.width-1))
	o.transient = true
}

// persist prints a line that stays on screen
func (o *termObserver) persist(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.clearLocked()
	fmt.Fprintln(o.w, line)
	o.last = ""
}

func (o *termObserver) clearLocked() {
	if o.tty && o.transient {
		fmt.Fprintf(o.w, "\r%s\r", strings.Repeat(" ", o.width-1))
		o.transient = false
	}
}

// close leaves the cursor on a fresh line
func (o *termObserver) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clearLocked()
}

func (o *termObserver) Status(message string) {
	o.status(message)
}

// Progress is rendered through the status line the service emits with it
func (o *termObserver) Progress(model.Progress) {}

func (o *termObserver) PlaylistProgress(current, total int, title string) {
	o.persist(fmt.Sprintf("[%d/%d] %s", current, total, title))
}

func (o *termObserver) ItemUpdated(item model.PlaylistItem) {
	switch item.Status {
	case model.TaskStatusDownloading:
		if details := item.Details(); details != "" {
			o.persist(fmt.Sprintf("%s (%s)", displayTitle(item), details))
		}
	case model.TaskStatusSkipped:
		o.persist(fmt.Sprintf("Skipped: %s (%s)", displayTitle(item), item.Error))
	case model.TaskStatusError:
		o.persist(fmt.Sprintf("Failed: %s", displayTitle(item)))
	}
}

func (o *termObserver) Finished(entry model.HistoryEntry) {
	o.persist("Saved: " + entry.Path)
}

func (o *termObserver) Error(err error) {
	o.persist("Error: " + err.Error())
}

func (o *termObserver) Done(summary model.Summary) {
	line := fmt.Sprintf("Done: %d completed, %d skipped, %d failed", summary.Completed, summary.Skipped, summary.Failed)
	if summary.Cancelled {
		line += " (cancelled)"
	}
	o.persist(line)
}

func displayTitle(item model.PlaylistItem) string {
	if item.Title != "" {
		return item.Title
	}
	return item.URL
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
