package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrImageNotFound is returned when a stored image does not exist
var ErrImageNotFound = errors.New("image not found")

// ErrInvalidName is returned for names that are empty or contain path elements
var ErrInvalidName = errors.New("invalid image name")

// ImageStore persists captured and processed frames under flat names
type ImageStore interface {
	Save(ctx context.Context, name string, img image.Image) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// ValidateName rejects names that could escape the store
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ContentType returns the MIME type for a stored image name
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}

// Encode renders img in the format implied by name's extension
func Encode(name string, img image.Image) ([]byte, error) {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported image format for %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

// LocalStore keeps images in a directory on disk
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the backing directory
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes img to <dir>/<name>
func (s *LocalStore) Save(ctx context.Context, name string, img image.Image) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := imaging.Save(img, filepath.Join(s.dir, name), imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// Open returns a reader for <dir>/<name>
func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
