package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"time"

	apperrors "go-fracture-classifier/internal/errors"
)

// httpImageFetcher downloads and decodes images over HTTP(S).
type httpImageFetcher struct {
	client *http.Client
}

// NewHTTPImageFetcher creates an HTTP fetcher with the given per-request
// timeout.
func NewHTTPImageFetcher(timeout time.Duration) ImageFetcher {
	return &httpImageFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *httpImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to build image request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("image fetch returned status %d", resp.StatusCode), nil)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, apperrors.NewDecodeError("failed to decode fetched image", err)
	}
	return img, nil
}
