package repository

import (
	"context"
	"image"

	"go-plate-inspector/pkg/models"
)

// ImageRepository defines the interface for remote frame access
type ImageRepository interface {
	// FetchImage retrieves an image from a URL
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// DetectionRepository stores the history of recognitions
type DetectionRepository interface {
	// Save stores a record, assigning an ID and timestamp when missing
	Save(ctx context.Context, record *models.DetectionRecord) error

	// Get retrieves a record by ID
	Get(ctx context.Context, id string) (*models.DetectionRecord, error)

	// List returns the most recent records first, at most limit of them
	List(ctx context.Context, limit int) ([]*models.DetectionRecord, error)

	// Close releases the underlying connection
	Close() error
}
