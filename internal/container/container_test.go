//go:build !gocv

package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-plate-inspector/internal/config"
	apperrors "go-plate-inspector/internal/errors"
	"go-plate-inspector/internal/repository"
)

func TestNewCore_MissingAllowList(t *testing.T) {
	cfg := &config.Config{AllowListPath: filepath.Join(t.TempDir(), "check.txt")}

	_, err := NewCore(cfg)
	assert.ErrorIs(t, err, repository.ErrAllowListNotFound)
}

func TestNewCore_UnknownSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check.txt")
	require.NoError(t, os.WriteFile(path, []byte("MH12AB1234\n"), 0o644))
	cfg := &config.Config{
		AllowListPath:     path,
		ScaleFactor:       1.1,
		SelectionStrategy: "random",
	}

	_, err := NewCore(cfg)
	assert.Error(t, err)
}

func TestNewCore_WithoutOpenCV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check.txt")
	require.NoError(t, os.WriteFile(path, []byte("MH12AB1234\n"), 0o644))
	cfg := &config.Config{
		AllowListPath:     path,
		ScaleFactor:       1.1,
		MinNeighbors:      4,
		MinPlateArea:      500,
		SelectionStrategy: "first_fit",
		Preprocessor:      "native",
		CascadePath:       "model/haarcascade_russian_plate_number.xml",
	}

	_, err := NewCore(cfg)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeModelLoad))
}
