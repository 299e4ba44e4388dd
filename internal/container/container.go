package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-plate-inspector/internal/camera"
	"go-plate-inspector/internal/config"
	"go-plate-inspector/internal/factory"
	"go-plate-inspector/internal/logger"
	"go-plate-inspector/internal/observer"
	"go-plate-inspector/internal/ocr"
	"go-plate-inspector/internal/plate"
	"go-plate-inspector/internal/repository"
	"go-plate-inspector/internal/service"
	"go-plate-inspector/internal/storage"
	"go-plate-inspector/internal/transport"
	"go-plate-inspector/internal/vision"
)

const (
	eventWorkers    = 4
	historyCapacity = 1000
)

// Core holds the recognition components shared by the server and the CLI.
// Models and the allow-list are loaded once here.
type Core struct {
	AllowList *plate.AllowList
	Detector  plate.RegionDetector
	Pipeline  *plate.Pipeline
	Publisher *observer.EventPublisher
	Metrics   *observer.MetricsObserver

	closers []func() error
}

// NewCore loads the allow-list, cascade and OCR models and builds the pipeline
func NewCore(cfg *config.Config) (*Core, error) {
	entries, err := repository.LoadAllowList(cfg.AllowListPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load allow-list: %w", err)
	}
	allowList := plate.NewAllowList(entries)
	logger.WithField("entries", allowList.Len()).Info("Allow-list loaded")

	opts := plate.DefaultOptions().
		WithDetection(cfg.ScaleFactor, cfg.MinNeighbors).
		WithSelection(cfg.SelectionStrategy, cfg.MinPlateArea)
	opts.OCRLanguage = cfg.OCRLanguage

	components := factory.NewComponentFactory(cfg)
	selector, err := components.SelectionFactory.CreateSelection(opts.SelectionStrategy, opts.MinArea)
	if err != nil {
		return nil, err
	}
	preprocessor, err := components.PreprocessorFactory.CreatePreprocessor(factory.PreprocessorType(cfg.Preprocessor), opts)
	if err != nil {
		return nil, err
	}

	c := &Core{AllowList: allowList}

	detector, err := vision.NewCascadeDetector(cfg.CascadePath, opts)
	if err != nil {
		return nil, err
	}
	c.Detector = detector
	c.closers = append(c.closers, detector.Close)

	engine, err := ocr.NewTesseractEngine(cfg.OCRLanguage)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.closers = append(c.closers, engine.Close)

	c.Metrics = observer.NewMetricsObserver()
	c.Publisher = observer.NewEventPublisher(eventWorkers)
	c.Publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	c.Publisher.Subscribe(c.Metrics)
	if cfg.NotificationsEnabled() {
		sender := observer.NewSMTPSender(observer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.NotifyFrom,
			To:       cfg.NotifyTo,
		})
		c.Publisher.Subscribe(observer.NewEmailObserver(sender, logger.Logger))
		logger.WithField("recipients", len(cfg.NotifyTo)).Info("Email notifications enabled")
	}
	// Drain queued notifications before the models go away
	c.closers = append(c.closers, func() error {
		c.Publisher.Close()
		return nil
	})

	pipeline, err := plate.NewPipeline(plate.Dependencies{
		Detector:     detector,
		Selector:     selector,
		Preprocessor: preprocessor,
		OCR:          ocr.WithTimeout(engine, cfg.OCRTimeout),
		Evaluator:    allowList,
		Events:       c.Publisher,
	}, opts)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Pipeline = pipeline

	return c, nil
}

// Close releases the models, last loaded first
func (c *Core) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Container holds all application dependencies
type Container struct {
	*Core

	config  *config.Config
	camera  *camera.Camera
	history repository.DetectionRepository
	service service.PlateService
	handler http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	core, err := NewCore(cfg)
	if err != nil {
		return nil, err
	}
	c := &Container{Core: core, config: cfg}

	store, err := factory.NewStorageFactory(cfg).CreateStorage(context.Background(), factory.StorageType(cfg.StorageBackend))
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to create image store: %w", err)
	}

	c.history, err = newHistory(cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	core.closers = append(core.closers, c.history.Close)

	c.camera = newCamera(cfg)
	if c.camera != nil {
		core.closers = append(core.closers, c.camera.Release)
	}

	fetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxRequestBodySize)

	deps := service.Dependencies{
		Recognizer: core.Pipeline,
		Images:     repository.NewHTTPImageRepository(fetcher, nil),
		Store:      store,
		History:    c.history,
		Events:     core.Publisher,
		Label:      core.Pipeline.Options().Label,
	}
	if c.camera != nil {
		deps.Camera = c.camera
	}
	if cfg.LiveAnnotation {
		deps.LiveDetector = core.Detector
	}

	c.service, err = service.NewPlateService(deps)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.handler = transport.NewHandler(c.service, core.Metrics, cfg)

	return c, nil
}

// newHistory uses PostgreSQL when a DSN is configured and memory otherwise
func newHistory(cfg *config.Config) (repository.DetectionRepository, error) {
	if cfg.DatabaseDSN == "" {
		return repository.NewMemoryDetectionRepository(historyCapacity), nil
	}
	repo, err := repository.NewGormDetectionRepository(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open detection history: %w", err)
	}
	logger.Info("Detection history stored in PostgreSQL")
	return repo, nil
}

// newCamera opens the configured frame source. A missing webcam is not fatal:
// the server still serves uploads and URL recognition.
func newCamera(cfg *config.Config) *camera.Camera {
	var device camera.Device
	switch cfg.CameraSource {
	case "file":
		device = camera.NewFileDevice(cfg.CameraFile)
	default:
		webcam, err := vision.OpenWebcam(cfg.CameraDevice)
		if err != nil {
			logger.WithError(err).Warn("Camera unavailable, capture endpoints disabled")
			return nil
		}
		device = webcam
	}
	return camera.New(device, cfg.ReleaseCameraAfterCapture)
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the plate service
func (c *Container) Service() service.PlateService {
	return c.service
}
