package repository

import (
	"context"
	"image"

	"go-plate-inspector/internal/storage"
	"go-plate-inspector/pkg/validation"
)

// HTTPImageRepository implements ImageRepository using HTTP storage
type HTTPImageRepository struct {
	fetcher   storage.ImageFetcher
	validator *validation.URLValidator
}

// NewHTTPImageRepository creates a new HTTP-based image repository
func NewHTTPImageRepository(fetcher storage.ImageFetcher, validator *validation.URLValidator) ImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &HTTPImageRepository{
		fetcher:   fetcher,
		validator: validator,
	}
}

// FetchImage validates imageURL and downloads it
func (r *HTTPImageRepository) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}
	return r.fetcher.FetchImage(ctx, imageURL)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *HTTPImageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}
