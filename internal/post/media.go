package post

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// MediaResolver turns configured image references (local paths or
// http(s) URLs) into platform media IDs. A failed image is logged and
// skipped; it never blocks the text post.
type MediaResolver struct {
	uploader   MediaUploader
	httpClient *http.Client
	log        *slog.Logger
}

func NewMediaResolver(uploader MediaUploader, log *slog.Logger) *MediaResolver {
	return &MediaResolver{
		uploader:   uploader,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// Resolve uploads every resolvable reference and returns the media IDs
// in order. Remote URLs are fetched to a temp file that is removed
// after the upload.
func (m *MediaResolver) Resolve(ctx context.Context, refs []string) []string {
	var ids []string
	for _, ref := range refs {
		id, err := m.resolveOne(ctx, ref)
		if err != nil {
			m.log.Error("skipping image", "ref", ref, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (m *MediaResolver) resolveOne(ctx context.Context, ref string) (string, error) {
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		path, err := m.download(ctx, ref)
		if err != nil {
			return "", err
		}
		defer os.Remove(path)
		return m.uploader.Upload(ctx, path)
	}

	if _, err := os.Stat(ref); err != nil {
		return "", fmt.Errorf("image file not found: %w", err)
	}
	return m.uploader.Upload(ctx, ref)
}

func (m *MediaResolver) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching image: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "wxpost-media-*.png")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("saving image: %w", err)
	}
	return tmp.Name(), nil
}
