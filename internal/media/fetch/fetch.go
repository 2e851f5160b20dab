// Package fetch downloads remote illustration images so they can be stored
// as blobs at save time.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// maxImageSize limits download size to prevent memory exhaustion.
	maxImageSize = 10 * 1024 * 1024 // 10MB

	// downloadTimeout is the maximum time for a single image download.
	downloadTimeout = 30 * time.Second
)

// Fetcher downloads remote images with bounded size and time.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Fetcher with the default timeout.
func New(logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: downloadTimeout},
		logger:     logger,
	}
}

// Fetch downloads the image at url and returns its bytes and MIME type.
// The MIME type comes from the Content-Type header when it names an image,
// otherwise from sniffing the payload.
func (f *Fetcher) Fetch(ctx context.Context, url string) (data []byte, mime string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image body: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, "", fmt.Errorf("image exceeds %d byte limit", maxImageSize)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image response")
	}

	mime = resp.Header.Get("Content-Type")
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}

	if f.logger != nil {
		f.logger.Debug("fetched remote image",
			"url", url,
			"size", len(data),
			"mime", mime,
		)
	}
	return data, mime, nil
}
