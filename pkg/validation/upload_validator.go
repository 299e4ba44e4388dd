package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "go-plate-inspector/internal/errors"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
}

// ValidateUpload checks an uploaded frame's file name and size
func ValidateUpload(filename string, size, maxSize int64) error {
	if strings.TrimSpace(filename) == "" {
		return apperrors.NewValidationError("image file is required", nil)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExtensions[ext] {
		return apperrors.NewValidationError(fmt.Sprintf("unsupported image type %q", ext), nil)
	}
	if size <= 0 {
		return apperrors.NewValidationError("image file is empty", nil)
	}
	if maxSize > 0 && size > maxSize {
		return apperrors.NewValidationError(
			fmt.Sprintf("image file too large: %d bytes (limit %d)", size, maxSize), nil)
	}
	return nil
}
