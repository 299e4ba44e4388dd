package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrAllowListNotFound indicates the allow-list file does not exist
	ErrAllowListNotFound = errors.New("allow-list not found")

	// ErrDetectionNotFound indicates the detection record was not found
	ErrDetectionNotFound = errors.New("detection record not found")

	// ErrRepositoryUnavailable indicates the repository is unavailable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
