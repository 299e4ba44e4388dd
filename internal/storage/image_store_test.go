package storage

import (
	"context"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"captured_20240101_120000.jpg", false},
		{"processed_captured_20240101_120000.jpg", false},
		{"", true},
		{"..", true},
		{"../etc/passwd", true},
		{"sub/dir.jpg", true},
		{`..\win.jpg`, true},
	}

	for _, tt := range tests {
		err := ValidateName(tt.name)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidName, tt.name)
		} else {
			assert.NoError(t, err, tt.name)
		}
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("a.jpg"))
	assert.Equal(t, "image/png", ContentType("a.PNG"))
	assert.Equal(t, "image/jpeg", ContentType("noext"))
}

func TestLocalStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plates")
	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	img := imaging.New(6, 4, color.NRGBA{B: 255, A: 255})
	require.NoError(t, store.Save(context.Background(), "patch_1.png", img))

	rc, err := store.Open(context.Background(), "patch_1.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	decoded, err := imaging.Open(filepath.Join(dir, "patch_1.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 4), decoded.Bounds())

	_, err = store.Open(context.Background(), "missing.jpg")
	assert.ErrorIs(t, err, ErrImageNotFound)

	_, err = store.Open(context.Background(), "../secret")
	assert.ErrorIs(t, err, ErrInvalidName)
}
