package services

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"os"

	"github.com/Jamestownkid/dontgoogleme/internal/config"
	httputil "github.com/Jamestownkid/dontgoogleme/internal/http"
)

// ImageFetcher downloads candidate image URLs to disk. It rejects anything
// that is not a plain 200 or is too small to be a real image.
type ImageFetcher struct {
	client *nethttp.Client
	retry  httputil.RetryConfig
}

func NewImageFetcher() *ImageFetcher {
	return &ImageFetcher{
		client: httputil.ImageClient,
		retry:  httputil.DefaultRetryConfig(),
	}
}

// NewImageFetcherWithClient is used by tests to inject a client.
func NewImageFetcherWithClient(client *nethttp.Client) *ImageFetcher {
	return &ImageFetcher{client: client, retry: httputil.DefaultRetryConfig()}
}

// FetchToFile downloads url into destPath and returns the byte count.
// The file is only written when the response passes validation.
func (f *ImageFetcher) FetchToFile(ctx context.Context, url, destPath string) (int, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", config.BrowserUserAgent)

	resp, err := httputil.DoWithRetryContext(ctx, f.client, req, f.retry)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return 0, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", url, err)
	}
	if len(data) <= config.MinImageBytes {
		return 0, fmt.Errorf("response for %s too small (%d bytes)", url, len(data))
	}

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", destPath, err)
	}
	return len(data), nil
}
