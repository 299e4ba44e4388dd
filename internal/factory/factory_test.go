package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-plate-inspector/internal/config"
	"go-plate-inspector/internal/plate"
	"go-plate-inspector/internal/storage"
	"go-plate-inspector/internal/strategy"
)

func TestCreateSelection(t *testing.T) {
	f := NewSelectionFactory()

	tests := []struct {
		name     string
		input    string
		wantName string
		wantErr  bool
	}{
		{"default", "", strategy.FirstFitName, false},
		{"first fit", "first_fit", strategy.FirstFitName, false},
		{"largest area mixed case", "Largest_Area", strategy.LargestAreaName, false},
		{"unknown", "random", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := f.CreateSelection(tt.input, 500)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.GetStrategyName())
		})
	}
}

func TestCreatePreprocessor(t *testing.T) {
	f := NewPreprocessorFactory()

	p, err := f.CreatePreprocessor(NativePreprocessor, plate.DefaultOptions())
	require.NoError(t, err)
	assert.IsType(t, &plate.NativePreprocessor{}, p)

	_, err = f.CreatePreprocessor("fancy", plate.DefaultOptions())
	assert.Error(t, err)
}

func TestCreateStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plates")
	f := NewStorageFactory(&config.Config{PlatesDir: dir})

	s, err := f.CreateStorage(context.Background(), LocalStorage)
	require.NoError(t, err)
	local, ok := s.(*storage.LocalStore)
	require.True(t, ok)
	assert.Equal(t, dir, local.Dir())

	_, err = f.CreateStorage(context.Background(), "ftp")
	assert.Error(t, err)
}
