package factory

import (
	"context"
	"fmt"
	"strings"

	"go-plate-inspector/internal/config"
	"go-plate-inspector/internal/plate"
	"go-plate-inspector/internal/storage"
	"go-plate-inspector/internal/strategy"
	"go-plate-inspector/internal/vision"
)

// PreprocessorType represents the available plate preprocessors
type PreprocessorType string

const (
	// NativePreprocessor runs the bilateral filter and Otsu threshold in Go
	NativePreprocessor PreprocessorType = "native"
	// OpenCVPreprocessor delegates to gocv, only available with the gocv build tag
	OpenCVPreprocessor PreprocessorType = "opencv"
)

// StorageType represents different types of image storage backends
type StorageType string

const (
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// SelectionFactory creates region selection strategies
type SelectionFactory interface {
	CreateSelection(name string, minArea int) (strategy.SelectionStrategy, error)
}

// PreprocessorFactory creates plate preprocessors
type PreprocessorFactory interface {
	CreatePreprocessor(preprocessorType PreprocessorType, opts plate.Options) (plate.Preprocessor, error)
}

// StorageFactory creates image stores
type StorageFactory interface {
	CreateStorage(ctx context.Context, storageType StorageType) (storage.ImageStore, error)
}

type selectionFactory struct{}

// NewSelectionFactory creates a new selection factory
func NewSelectionFactory() SelectionFactory {
	return &selectionFactory{}
}

// CreateSelection creates a strategy by its configured name
func (f *selectionFactory) CreateSelection(name string, minArea int) (strategy.SelectionStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", strategy.FirstFitName:
		return strategy.NewFirstFitStrategy(minArea), nil
	case strategy.LargestAreaName:
		return strategy.NewLargestAreaStrategy(minArea), nil
	default:
		return nil, fmt.Errorf("unsupported selection strategy: %s", name)
	}
}

type preprocessorFactory struct{}

// NewPreprocessorFactory creates a new preprocessor factory
func NewPreprocessorFactory() PreprocessorFactory {
	return &preprocessorFactory{}
}

// CreatePreprocessor creates a preprocessor based on the specified type
func (f *preprocessorFactory) CreatePreprocessor(preprocessorType PreprocessorType, opts plate.Options) (plate.Preprocessor, error) {
	switch preprocessorType {
	case NativePreprocessor, "":
		return plate.NewNativePreprocessor(opts), nil
	case OpenCVPreprocessor:
		p, err := vision.NewPreprocessor(opts)
		if err != nil {
			return nil, fmt.Errorf("opencv preprocessor: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported preprocessor type: %s", preprocessorType)
	}
}

// storageFactory builds stores from configuration
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(ctx context.Context, storageType StorageType) (storage.ImageStore, error) {
	switch storageType {
	case LocalStorage, "":
		store, err := storage.NewLocalStore(f.cfg.PlatesDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case AzureStorage:
		store, err := storage.NewAzureStore(ctx,
			f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.cfg.AzureStorageContainer)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	SelectionFactory    SelectionFactory
	PreprocessorFactory PreprocessorFactory
	StorageFactory      StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		SelectionFactory:    NewSelectionFactory(),
		PreprocessorFactory: NewPreprocessorFactory(),
		StorageFactory:      NewStorageFactory(cfg),
	}
}
