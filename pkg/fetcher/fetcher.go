package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"igdigest/pkg/config"
	"igdigest/pkg/errors"
	"igdigest/pkg/logger"
	"igdigest/pkg/models"
	"igdigest/pkg/repository"
)

// StorageKey derives the blob key for a post's media from its assigned ID.
// IDs are zero-padded so the repository's key-sorted blob listing keeps
// the posts' insertion order.
func StorageKey(postID int64, kind models.MediaKind) string {
	return fmt.Sprintf("%04d%s", postID, kind.Ext())
}

// HashKey derives a stable key from the media URL for records that have no
// assigned ID yet.
func HashKey(url string, kind models.MediaKind) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8]) + kind.Ext()
}

// Fetcher downloads post media over HTTP and stores the bytes as blobs.
// Instagram's CDN rejects bare clients, so every request carries browser
// headers.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	repo       repository.ContentRepository
	logger     logger.Logger
}

func New(cfg *config.DownloadConfig, repo repository.ContentRepository, log logger.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		repo:       repo,
		logger:     log,
	}
}

// FetchAndStore downloads the record's media and writes it to the
// repository, returning a ref for the stored blob. Records with no media
// URL return a nil ref and no error. Download failures are network errors;
// only the final store step can surface a storage error.
func (f *Fetcher) FetchAndStore(ctx context.Context, record models.PostRecord) (*models.BlobRef, error) {
	url, kind, ok := record.MediaURL()
	if !ok {
		f.logger.DebugWithFields("post has no media", map[string]interface{}{
			"post_id": record.ID,
		})
		return nil, nil
	}

	key := StorageKey(record.ID, kind)
	if record.ID == 0 {
		key = HashKey(url, kind)
	}

	data, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := f.repo.PutBlob(ctx, key, data, kind.MIME()); err != nil {
		return nil, err
	}

	f.logger.InfoWithFields("stored media", map[string]interface{}{
		"post_id": record.ID,
		"key":     key,
		"bytes":   len(data),
	})

	return &models.BlobRef{Key: key, Size: int64(len(data))}, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "failed to create download request: %v", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Referer", "https://www.instagram.com/")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "download failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.WithCode(errors.ErrorTypeNetwork, resp.StatusCode,
			fmt.Sprintf("download returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "failed to read download body: %v", err)
	}

	f.logger.DebugWithFields("downloaded media", map[string]interface{}{
		"bytes":    len(data),
		"duration": time.Since(start),
	})

	return data, nil
}
