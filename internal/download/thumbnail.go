package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ytget/ytmux/internal/model"
	"github.com/ytget/ytmux/internal/platform"
)

// maxThumbnailSize caps a thumbnail download
const maxThumbnailSize = 10 << 20

// saveThumbnail stores the largest thumbnail under <dir>/thumbnails and
// returns its path. Failures are logged and yield an empty path.
func (s *Service) saveThumbnail(ctx context.Context, dir string, meta *model.Metadata) string {
	thumbURL := meta.BestThumbnail()
	if thumbURL == "" || meta.ID == "" {
		return ""
	}

	target := platform.ThumbnailPath(dir, meta.ID)
	if err := s.fetchToFile(ctx, thumbURL, target); err != nil {
		s.logger.Warn().Err(err).Str("url", thumbURL).Msg("Failed to save thumbnail")
		return ""
	}
	return target
}

func (s *Service) fetchToFile(ctx context.Context, url, target string) error {
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(target)); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp := target + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, io.LimitReader(resp.Body, maxThumbnailSize)); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, target)
}
