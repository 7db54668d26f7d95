// Package storage fetches and decodes raw images from the supported
// sources: the local filesystem for pipelines and HTTP for the API surface.
package storage

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	apperrors "go-fracture-classifier/internal/errors"
)

// ImageFetcher retrieves a decoded image from a reference (file path or URL,
// depending on the implementation).
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) (image.Image, error)
}

// fileImageFetcher decodes images from local paths.
type fileImageFetcher struct{}

// NewFileImageFetcher creates a filesystem-backed fetcher.
func NewFileImageFetcher() ImageFetcher {
	return &fileImageFetcher{}
}

// FetchImage decodes the file at path. A missing or corrupt file yields a
// decode error the caller can distinguish from everything else.
func (f *fileImageFetcher) FetchImage(_ context.Context, path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDecodeError("failed to open image "+path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, apperrors.NewDecodeError("failed to decode image "+path, err)
	}
	return img, nil
}
