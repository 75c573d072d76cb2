package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/ytmux/internal/encode"
	"github.com/ytget/ytmux/internal/extract"
	"github.com/ytget/ytmux/internal/history"
	"github.com/ytget/ytmux/internal/model"
)

// fakeExtractor writes placeholder files instead of running yt-dlp
type fakeExtractor struct {
	mu         sync.Mutex
	resolved   *model.Resolved
	resolveErr error
	meta       map[string]*model.Metadata
	fetchErr   map[string]error
	jobs       []extract.Job
	merges     []extract.Job
	// started is signalled on each Download; block makes Download wait for ctx
	started chan struct{}
	block   bool
	// blockSuffix blocks only the download whose output has this suffix
	blockSuffix string
	// skipAudioFile leaves the m4a out to simulate a progressive format
	skipAudioFile bool
}

func newFakeExtractor(entries ...model.Entry) *fakeExtractor {
	f := &fakeExtractor{
		meta:     map[string]*model.Metadata{},
		fetchErr: map[string]error{},
	}
	f.resolved = &model.Resolved{Playlist: len(entries) > 1, ID: "PL", Title: "List", Entries: entries}
	for _, e := range entries {
		f.meta[e.URL] = &model.Metadata{ID: e.ID, Title: e.Title, WebpageURL: e.URL}
	}
	return f
}

func (f *fakeExtractor) Resolve(ctx context.Context, url string, playlist bool) (*model.Resolved, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.resolved, nil
}

func (f *fakeExtractor) Fetch(ctx context.Context, url string) (*model.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fetchErr[url]; err != nil {
		return nil, err
	}
	m, ok := f.meta[url]
	if !ok {
		return nil, fmt.Errorf("no metadata for %s", url)
	}
	return m, nil
}

func (f *fakeExtractor) Download(ctx context.Context, job extract.Job, progress extract.ProgressFunc) error {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block || (f.blockSuffix != "" && strings.HasSuffix(job.Output, f.blockSuffix)) {
		<-ctx.Done()
		return ctx.Err()
	}
	if progress != nil {
		progress(model.Progress{Percent: 50, Downloaded: 500_000, Total: 1_000_000, Speed: "1.0 MB/s", ETASec: 1})
	}
	if f.skipAudioFile && strings.HasSuffix(job.Output, ".m4a") {
		return nil
	}
	return os.WriteFile(job.Output, []byte(job.Format), 0644)
}

func (f *fakeExtractor) Merge(ctx context.Context, job extract.Job, progress extract.ProgressFunc) error {
	f.mu.Lock()
	f.merges = append(f.merges, job)
	f.mu.Unlock()
	return os.WriteFile(job.Output, []byte("yt-dlp merged"), 0644)
}

func (f *fakeExtractor) Jobs() []extract.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]extract.Job(nil), f.jobs...)
}

// fakeMuxer only produces the output file
type fakeMuxer struct {
	err   error
	calls int
}

func (m *fakeMuxer) Mux(ctx context.Context, video, audio, out string, progress encode.ProgressFunc) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	if progress != nil {
		progress(50)
		progress(100)
	}
	return os.WriteFile(out, []byte("merged"), 0644)
}

// recorder collects observer events
type recorder struct {
	mu        sync.Mutex
	statuses  []string
	progress  []model.Progress
	playlist  []string
	items     []model.PlaylistItem
	finished  []model.HistoryEntry
	errs      []error
	summaries []model.Summary
	done      chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 1)}
}

func (r *recorder) Status(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, msg)
}

func (r *recorder) Progress(p model.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, p)
}

func (r *recorder) PlaylistProgress(current, total int, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playlist = append(r.playlist, fmt.Sprintf("%d/%d %s", current, total, title))
}

func (r *recorder) ItemUpdated(item model.PlaylistItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
}

func (r *recorder) Finished(e model.HistoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, e)
}

func (r *recorder) Error(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) Done(s model.Summary) {
	r.mu.Lock()
	r.summaries = append(r.summaries, s)
	r.mu.Unlock()
	r.done <- struct{}{}
}

// itemStatuses returns the recorded statuses of the item at index
func (r *recorder) itemStatuses(index int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, it := range r.items {
		if it.Index == index {
			out = append(out, it.Status.String())
		}
	}
	return out
}

func (r *recorder) hasStatus(prefix string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.statuses {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func entry(id, title string) model.Entry {
	return model.Entry{ID: id, Title: title, URL: "https://www.youtube.com/watch?v=" + id}
}

func newTestService(ex extract.Extractor, mux encode.Muxer, opts Options) *Service {
	opts.Thumbnails = false
	return NewService(ex, mux, history.NewMemoryStore(), opts, zerolog.Nop())
}

func videoRequest(dir, url string) model.Request {
	return model.NewRequest(url, model.KindVideo, "720p", false, dir)
}

func assertMissing(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", p)
		}
	}
}

func TestRun_SingleVideo(t *testing.T) {
	dir := t.TempDir()
	ex := newFakeExtractor(entry("a1", "AC/DC: Live?"))
	mux := &fakeMuxer{}
	svc := newTestService(ex, mux, DefaultOptions())
	rec := newRecorder()

	summary, err := svc.Run(context.Background(), videoRequest(dir, "https://www.youtube.com/watch?v=a1"), rec)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Completed != 1 || summary.Total != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	final := filepath.Join(dir, "AC_DC_ Live_.mp4")
	data, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("Expected final file: %v", err)
	}
	if string(data) != "merged" {
		t.Errorf("Expected muxed content, got %q", data)
	}
	assertMissing(t, filepath.Join(dir, "AC_DC_ Live_.m4a"), filepath.Join(dir, "AC_DC_ Live__merged.mp4"))

	jobs := ex.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 downloads, got %d", len(jobs))
	}
	if jobs[0].Format != "bestvideo[height<=720][ext=mp4]/best[height<=720][ext=mp4]" || !strings.HasSuffix(jobs[0].Output, ".mp4") {
		t.Errorf("Unexpected video job: %+v", jobs[0])
	}
	if jobs[1].Format != "bestaudio[ext=m4a]/best[ext=m4a]" || !strings.HasSuffix(jobs[1].Output, ".m4a") {
		t.Errorf("Unexpected audio job: %+v", jobs[1])
	}
	if mux.calls != 1 {
		t.Errorf("Expected one mux, got %d", mux.calls)
	}

	if len(rec.finished) != 1 || rec.finished[0].Path != final || rec.finished[0].Filename != "AC_DC_ Live_.mp4" {
		t.Errorf("Unexpected finished events: %+v", rec.finished)
	}
	if len(rec.playlist) != 0 {
		t.Errorf("Single videos must not emit playlist progress: %v", rec.playlist)
	}
	if len(rec.summaries) != 1 {
		t.Errorf("Expected exactly one Done event, got %d", len(rec.summaries))
	}
	for _, want := range []string{StatusResolving, "Downloading... 500 kB/1.0 MB (1.0 MB/s)", StatusProcessing, StatusMerging + " 50%", StatusCompleted} {
		if !rec.hasStatus(want) {
			t.Errorf("Missing status %q in %v", want, rec.statuses)
		}
	}

	hist, _ := svc.History().List()
	if len(hist) != 1 || hist[0].URL != "https://www.youtube.com/watch?v=a1" {
		t.Errorf("Unexpected history: %+v", hist)
	}
}

func TestRun_Audio(t *testing.T) {
	dir := t.TempDir()
	ex := newFakeExtractor(entry("b2", "Song"))
	mux := &fakeMuxer{}
	svc := newTestService(ex, mux, DefaultOptions())

	req := model.NewRequest("https://youtu.be/b2", model.KindAudio, "320 kbps", false, dir)
	summary, err := svc.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Completed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	jobs := ex.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 download, got %d", len(jobs))
	}
	j := jobs[0]
	if j.Format != "bestaudio/best" || !j.ExtractAudio || j.AudioFormat != "mp3" || j.AudioQuality != "320" {
		t.Errorf("Unexpected audio job: %+v", j)
	}
	if j.Output != filepath.Join(dir, "Song.mp3") {
		t.Errorf("Unexpected output %q", j.Output)
	}
	if mux.calls != 0 {
		t.Error("Audio downloads must not mux")
	}
}

func TestRun_PlaylistIteratesAll(t *testing.T) {
	dir := t.TempDir()
	ex := newFakeExtractor(entry("a", "One"), entry("b", "Two"), entry("c", "Three"))
	svc := newTestService(ex, &fakeMuxer{}, DefaultOptions())
	rec := newRecorder()

	req := model.NewRequest("https://www.youtube.com/playlist?list=PL", model.KindVideo, "Best Quality", true, dir)
	summary, err := svc.Run(context.Background(), req, rec)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Total != 3 || summary.Completed != 3 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	want := []string{"1/3 One", "2/3 Two", "3/3 Three"}
	if strings.Join(rec.playlist, ",") != strings.Join(want, ",") {
		t.Errorf("Expected playlist events %v, got %v", want, rec.playlist)
	}
	for _, name := range []string{"One", "Two", "Three"} {
		if _, err := os.Stat(filepath.Join(dir, name+".mp4")); err != nil {
			t.Errorf("Expected %s.mp4: %v", name, err)
		}
	}
}

func TestRun_SkipsUnavailable(t *testing.T) {
	dir := t.TempDir()
	ex := newFakeExtractor(entry("a", "One"), entry("b", "Private"), entry("c", "Three"))
	ex.fetchErr[entry("b", "").URL] = fmt.Errorf("fetch metadata: %w: Private video", extract.ErrUnavailable)
	svc := newTestService(ex, &fakeMuxer{}, DefaultOptions())
	rec := newRecorder()

	req := model.NewRequest("https://www.youtube.com/playlist?list=PL", model.KindVideo, "", true, dir)
	summary, err := svc.Run(context.Background(), req, rec)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Completed != 2 || summary.Skipped != 1 || summary.Failed != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if len(rec.errs) != 0 {
		t.Errorf("Skipped items must not raise errors: %v", rec.errs)
	}
	if !rec.hasStatus("Skipping unavailable video") {
		t.Error("Expected a skip status")
	}
}

func TestRun_UnavailableAbortsWhenNotSkipping(t *testing.T) {
	dir := t.TempDir()
	ex := newFakeExtractor(entry("a", "One"), entry("b", "Private"), entry("c", "Three"))
	ex.fetchErr[entry("b", "").URL] = fmt.Errorf("%w: Sign in to confirm your age", extract.ErrUnavailable)
	opts := DefaultOptions()
	opts.SkipUnavailable = false
	svc := newTestService(ex, &fakeMuxer{}, opts)

	req := model.NewRequest("https://www.youtube.com/playlist?list=PL", model.KindVideo, "", true, dir)
	summary, err := svc.Run(context.Background(), req, nil)
	if !errors.Is(err, extract.ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
	if summary.Completed != 1 || summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
}

func TestRun_PlaylistErrorPolicy(t *testing.T) {
	boom := errors.New("HTTP Error 403")

	tests := []struct {
		name          string
		continueOnErr bool
		wantCompleted int
		wantErr       bool
	}{
		{"default", DefaultOptions().ContinueOnError, 2, false},
		{"abort", false, 1, true},
		{"continue", true, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := newFakeExtractor(entry("a", "One"), entry("b", "Two"), entry("c", "Three"))
			ex.fetchErr[entry("b", "").URL] = boom
			opts := DefaultOptions()
			opts.ContinueOnError = tt.continueOnErr
			svc := newTestService(ex, &fakeMuxer{}, opts)
			rec := newRecorder()

			req := model.NewRequest("https://www.youtube.com/playlist?list=PL", model.KindAudio, "", true, t.TempDir())
			summary, err := svc.Run(context.Background(), req, rec)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Run error = %v, wantErr %v", err, tt.wantErr)
			}
			if summary.Completed != tt.wantCompleted || summary.Failed != 1 {
				t.Errorf("Unexpected summary: %+v", summary)
			}
			if len(rec.errs) != 1 || !errors.Is(rec.errs[0], boom) || !strings.Contains(rec.errs[0].Error(), "Two") {
				t.Errorf("Unexpected error events: %v", rec.errs)
			}
		})
	}
}

func TestRun_MergeFallback(t *testing.T) {
	dir := t.TempDir()
	ex := newFakeExtractor(entry("a", "Clip"))
	mux := &fakeMuxer{err: fmt.Errorf("%w: exit status 1", encode.ErrMuxFailed)}
	svc := newTestService(ex, mux, DefaultOptions())
	rec := newRecorder()

	summary, err := svc.Run(context.Background(), videoRequest(dir, "https://youtu.be/a"), rec)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Completed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	if len(ex.merges) != 1 {
		t.Fatalf("Expected one yt-dlp merge, got %d", len(ex.merges))
	}
	m := ex.merges[0]
	if m.Format != "bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]/best[height<=720][ext=mp4]" || m.MergeFormat != "mp4" {
		t.Errorf("Unexpected merge job: %+v", m)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Clip.mp4"))
	if err != nil || string(data) != "yt-dlp merged" {
		t.Errorf("Expected yt-dlp merged output, got %q %v", data, err)
	}
	assertMissing(t, filepath.Join(dir, "Clip.m4a"))
	if !rec.hasStatus(StatusMergeRetry) {
		t.Error("Expected merge retry status")
	}
}

func TestRun_MergeFailureWithoutFallback(t *testing.T) {
	ex := newFakeExtractor(entry("a", "Clip"))
	mux := &fakeMuxer{err: encode.ErrMuxFailed}
	opts := DefaultOptions()
	opts.MergeFallback = false
	svc := newTestService(ex, mux, opts)
	rec := newRecorder()

	summary, err := svc.Run(context.Background(), videoRequest(t.TempDir(), "https://youtu.be/a"), rec)
	if !errors.Is(err, encode.ErrMuxFailed) {
		t.Fatalf("Expected ErrMuxFailed, got %v", err)
	}
	if summary.Failed != 1 || len(rec.errs) != 1 {
		t.Errorf("Unexpected summary %+v / errors %v", summary, rec.errs)
	}
	if len(ex.merges) != 0 {
		t.Error("Fallback merge must not run when disabled")
	}
}

func TestRun_NoMergeWhenAudioMissing(t *testing.T) {
	dir := t.TempDir()
	ex := newFakeExtractor(entry("a", "Progressive"))
	ex.skipAudioFile = true
	mux := &fakeMuxer{}
	svc := newTestService(ex, mux, DefaultOptions())

	if _, err := svc.Run(context.Background(), videoRequest(dir, "https://youtu.be/a"), nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if mux.calls != 0 {
		t.Error("Mux must be skipped when the audio stream is missing")
	}
	if _, err := os.Stat(filepath.Join(dir, "Progressive.mp4")); err != nil {
		t.Errorf("Expected video file to be kept: %v", err)
	}
}

func TestRun_ResolveError(t *testing.T) {
	ex := newFakeExtractor()
	ex.resolveErr = errors.New("unsupported URL")
	svc := newTestService(ex, &fakeMuxer{}, DefaultOptions())
	rec := newRecorder()

	_, err := svc.Run(context.Background(), videoRequest(t.TempDir(), "https://example.com/x"), rec)
	if err == nil {
		t.Fatal("Expected resolve error")
	}
	if len(rec.errs) != 1 || len(rec.summaries) != 1 {
		t.Errorf("Expected one error and one Done event, got %v / %v", rec.errs, rec.summaries)
	}
}

func TestRun_InvalidRequest(t *testing.T) {
	svc := newTestService(newFakeExtractor(), &fakeMuxer{}, DefaultOptions())
	rec := newRecorder()

	if _, err := svc.Run(context.Background(), videoRequest("", "https://youtu.be/a"), rec); err == nil {
		t.Error("Expected error for missing directory")
	}
	if _, err := svc.Run(context.Background(), videoRequest(t.TempDir(), "ftp://x"), rec); err == nil {
		t.Error("Expected error for non-http URL")
	}
	if len(rec.summaries) != 0 {
		t.Error("Rejected requests must not emit Done")
	}
}

func TestStart_BusyAndCancel(t *testing.T) {
	ex := newFakeExtractor(entry("a", "One"), entry("b", "Two"))
	ex.block = true
	ex.started = make(chan struct{}, 4)
	svc := newTestService(ex, &fakeMuxer{}, DefaultOptions())
	rec := newRecorder()

	req := model.NewRequest("https://www.youtube.com/playlist?list=PL", model.KindVideo, "", true, t.TempDir())
	if err := svc.Start(req, rec); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	select {
	case <-ex.started:
	case <-time.After(5 * time.Second):
		t.Fatal("Download never started")
	}

	if !svc.IsRunning() {
		t.Error("Expected service to be running")
	}
	if err := svc.Start(req, newRecorder()); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}

	if !svc.Cancel() {
		t.Error("Cancel should report a running download")
	}

	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Done was not emitted after cancel")
	}

	rec.mu.Lock()
	summary := rec.summaries[0]
	rec.mu.Unlock()
	if !summary.Cancelled || summary.Completed != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if len(ex.Jobs()) != 1 {
		t.Errorf("No further steps should run after cancel, got %d downloads", len(ex.Jobs()))
	}
	if len(rec.errs) != 0 {
		t.Errorf("Cancellation must not raise errors: %v", rec.errs)
	}

	if svc.IsRunning() {
		t.Error("The slot must be released before Done")
	}
	if svc.Cancel() {
		t.Error("Cancel should report false when idle")
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	ex := newFakeExtractor(entry("a", "One"))
	svc := newTestService(ex, &fakeMuxer{}, DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := svc.Run(ctx, videoRequest(t.TempDir(), "https://youtu.be/a"), nil)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Expected ErrCancelled, got %v", err)
	}
	if !summary.Cancelled {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if len(ex.Jobs()) != 0 {
		t.Error("No download should start on a cancelled context")
	}
}

func TestRun_SavesLargestThumbnail(t *testing.T) {
	var (
		mu        sync.Mutex
		requested []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	ex := newFakeExtractor(entry("a", "Thumb"), entry("b", "NoThumb"))
	ex.meta[entry("a", "").URL].Thumbnails = []model.Thumbnail{
		{URL: srv.URL + "/small.jpg", Width: 120, Height: 90},
		{URL: srv.URL + "/large.jpg", Width: 1280, Height: 720},
	}
	ex.meta[entry("b", "").URL].Thumbnail = srv.URL + "/missing.jpg"

	svc := NewService(ex, &fakeMuxer{}, nil, DefaultOptions(), zerolog.Nop())
	svc.SetHTTPClient(srv.Client())
	rec := newRecorder()

	req := model.NewRequest("https://www.youtube.com/playlist?list=PL", model.KindVideo, "", true, dir)
	if _, err := svc.Run(context.Background(), req, rec); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := filepath.Join(dir, "thumbnails", "a.jpg")
	if len(rec.finished) != 2 {
		t.Fatalf("Expected 2 finished items, got %d", len(rec.finished))
	}
	if rec.finished[0].ThumbnailPath != want {
		t.Errorf("Expected thumbnail %s, got %q", want, rec.finished[0].ThumbnailPath)
	}
	if rec.finished[1].ThumbnailPath != "" {
		t.Errorf("Failed thumbnail must leave an empty path, got %q", rec.finished[1].ThumbnailPath)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(requested) == 0 || requested[0] != "/large.jpg" {
		t.Errorf("Expected the largest thumbnail to be fetched first, got %v", requested)
	}
}

func TestProgressStatus(t *testing.T) {
	tests := []struct {
		p    model.Progress
		want string
	}{
		{model.Progress{Downloaded: 3_400_000, Total: 10_000_000, Speed: "1.2 MB/s"}, "Downloading... 3.4 MB/10 MB (1.2 MB/s)"},
		{model.Progress{Downloaded: 1000, Total: 2000}, "Downloading... 1.0 kB/2.0 kB"},
		{model.Progress{Percent: 12.5, Speed: "5 kB/s"}, "Downloading... 12.5% 5 kB/s"},
		{model.Progress{Downloaded: 1000, Total: 2000, Speed: "1 kB/s", ETASec: 65}, "Downloading... 1.0 kB/2.0 kB (1 kB/s) ETA 01:05"},
		{model.Progress{Percent: 40, ETASec: 3700}, "Downloading... 40.0% ETA 01:01:40"},
		{model.Progress{}, ""},
	}
	for _, tt := range tests {
		if got := ProgressStatus(tt.p); got != tt.want {
			t.Errorf("ProgressStatus(%+v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestRun_ItemStateSequence(t *testing.T) {
	tests := []struct {
		name  string
		kind  model.MediaKind
		muxer *fakeMuxer
		want  []string
	}{
		{"video", model.KindVideo, &fakeMuxer{}, []string{"Resolving", "Downloading", "Merging", "Completed"}},
		{"audio", model.KindAudio, &fakeMuxer{}, []string{"Resolving", "Downloading", "Completed"}},
		{"merge fallback", model.KindVideo, &fakeMuxer{err: encode.ErrMuxFailed}, []string{"Resolving", "Downloading", "Merging", "Merging", "Completed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := newFakeExtractor(entry("a", "Clip"))
			svc := newTestService(ex, tt.muxer, DefaultOptions())
			rec := newRecorder()

			req := model.NewRequest("https://youtu.be/a", tt.kind, "", false, t.TempDir())
			if _, err := svc.Run(context.Background(), req, rec); err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			got := rec.itemStatuses(1)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Expected item states %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRun_ItemCarriesMetadata(t *testing.T) {
	ex := newFakeExtractor(entry("a", "Listed"))
	m := ex.meta[entry("a", "").URL]
	m.Title = "Fetched"
	m.Uploader = "Chan"
	m.Duration = 90 * time.Second
	svc := newTestService(ex, &fakeMuxer{}, DefaultOptions())
	rec := newRecorder()

	if _, err := svc.Run(context.Background(), videoRequest(t.TempDir(), "https://youtu.be/a"), rec); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	last := rec.items[len(rec.items)-1]
	if last.Title != "Fetched" || last.Details() != "Chan · 01:30" {
		t.Errorf("Unexpected item: title %q details %q", last.Title, last.Details())
	}
}

func TestStart_CancelRemovesIntermediates(t *testing.T) {
	dir := t.TempDir()
	ex := newFakeExtractor(entry("a", "Clip"))
	ex.blockSuffix = ".m4a"
	ex.started = make(chan struct{}, 4)
	svc := newTestService(ex, &fakeMuxer{}, DefaultOptions())
	rec := newRecorder()

	if err := svc.Start(videoRequest(dir, "https://youtu.be/a"), rec); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-ex.started:
		case <-time.After(5 * time.Second):
			t.Fatal("Download never started")
		}
	}
	svc.Cancel()

	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Done was not emitted after cancel")
	}
	assertMissing(t, filepath.Join(dir, "Clip.mp4"), filepath.Join(dir, "Clip.m4a"), filepath.Join(dir, "Clip_merged.mp4"))
}

// restartObserver starts a new request from its Done handler
type restartObserver struct {
	NopObserver
	svc  *Service
	req  model.Request
	next *recorder
	err  chan error
}

func (o *restartObserver) Done(model.Summary) {
	o.err <- o.svc.Start(o.req, o.next)
}

func TestStart_FromDoneHandler(t *testing.T) {
	ex := newFakeExtractor(entry("a", "One"))
	svc := newTestService(ex, &fakeMuxer{}, DefaultOptions())
	req := videoRequest(t.TempDir(), "https://youtu.be/a")
	obs := &restartObserver{svc: svc, req: req, next: newRecorder(), err: make(chan error, 1)}

	if err := svc.Start(req, obs); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	select {
	case err := <-obs.err:
		if err != nil {
			t.Fatalf("Start from Done returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Done was not emitted")
	}
	select {
	case <-obs.next.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Second request never finished")
	}
}
