package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-plate-inspector/internal/errors"
	"go-plate-inspector/internal/logger"
	"go-plate-inspector/internal/observer"
	"go-plate-inspector/internal/plate"
	"go-plate-inspector/internal/repository"
	"go-plate-inspector/internal/storage"
	"go-plate-inspector/pkg/models"
)

const (
	// SourceCamera names frames taken by the capture endpoint
	SourceCamera = "camera"
	// SourceUpload names frames posted by clients
	SourceUpload = "upload"
	// SourceURL names frames downloaded from a URL
	SourceURL = "url"
	// SourceFile names frames read from disk by the CLI
	SourceFile = "file"

	// ImagePathPrefix is where stored images are served from
	ImagePathPrefix = "/plates/"

	timestampLayout = "20060102_150405"
)

// FrameSource hands out camera frames
type FrameSource interface {
	Capture(ctx context.Context) (image.Image, error)
	Stream(ctx context.Context, interval time.Duration, fn func(image.Image) error) error
}

// Recognizer runs the plate pipeline on one frame
type Recognizer interface {
	Run(ctx context.Context, source string, frame image.Image) (*models.PlateResult, error)
}

// PlateService defines the plate recognition use cases
type PlateService interface {
	// Capture grabs one camera frame, stores it and recognizes its plate
	Capture(ctx context.Context) (*models.RecognitionResponse, error)

	// RecognizeImage stores img and recognizes its plate
	RecognizeImage(ctx context.Context, source string, img image.Image) (*models.RecognitionResponse, error)

	// RecognizeURL downloads an image and recognizes its plate
	RecognizeURL(ctx context.Context, imageURL string) (*models.RecognitionResponse, error)

	// StreamFrames feeds camera frames to fn, with detected regions marked when enabled
	StreamFrames(ctx context.Context, interval time.Duration, fn func(image.Image) error) error

	// History lists recent recognitions, newest first
	History(ctx context.Context, limit int) ([]*models.DetectionRecord, error)

	// OpenImage opens a stored image and returns its content type
	OpenImage(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// Dependencies are the collaborators of the plate service.
// Camera, Images, Events and LiveDetector are optional.
type Dependencies struct {
	Recognizer   Recognizer
	Camera       FrameSource
	Images       repository.ImageRepository
	Store        storage.ImageStore
	History      repository.DetectionRepository
	Events       observer.Subject
	LiveDetector plate.RegionDetector
	Label        string
	Now          func() time.Time
}

type plateService struct {
	deps Dependencies
}

// NewPlateService creates a new plate service
func NewPlateService(deps Dependencies) (PlateService, error) {
	if deps.Recognizer == nil {
		return nil, apperrors.NewInternalError("plate service requires a recognizer", nil)
	}
	if deps.Store == nil {
		return nil, apperrors.NewInternalError("plate service requires an image store", nil)
	}
	if deps.History == nil {
		deps.History = repository.NewMemoryDetectionRepository(100)
	}
	if deps.Label == "" {
		deps.Label = plate.DefaultOptions().Label
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &plateService{deps: deps}, nil
}

func (s *plateService) Capture(ctx context.Context) (*models.RecognitionResponse, error) {
	if s.deps.Camera == nil {
		return nil, apperrors.NewCaptureError("no camera configured", nil)
	}

	start := time.Now()
	frame, err := s.deps.Camera.Capture(ctx)
	if err != nil {
		s.publish(ctx, observer.PlateEvent{
			EventType:      observer.CaptureFailed,
			Timestamp:      time.Now(),
			Source:         SourceCamera,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}
	s.publish(ctx, observer.PlateEvent{
		EventType:      observer.FrameCaptured,
		Timestamp:      time.Now(),
		Source:         SourceCamera,
		ProcessingTime: time.Since(start),
		Metadata: map[string]interface{}{
			"width":  frame.Bounds().Dx(),
			"height": frame.Bounds().Dy(),
		},
	})

	return s.recognize(ctx, SourceCamera, s.uniqueName("captured"), frame)
}

func (s *plateService) RecognizeImage(ctx context.Context, source string, img image.Image) (*models.RecognitionResponse, error) {
	if img == nil {
		return nil, apperrors.NewValidationError("image is required", nil)
	}
	if source == "" {
		source = SourceUpload
	}
	return s.recognize(ctx, source, s.uniqueName(source), img)
}

func (s *plateService) RecognizeURL(ctx context.Context, imageURL string) (*models.RecognitionResponse, error) {
	if s.deps.Images == nil {
		return nil, apperrors.NewInternalError("URL recognition is not configured", nil)
	}

	start := time.Now()
	img, err := s.deps.Images.FetchImage(ctx, imageURL)
	if err != nil {
		err = fetchError(err)
		s.publish(ctx, observer.PlateEvent{
			EventType:      observer.ImageFetchFailed,
			Timestamp:      time.Now(),
			Source:         SourceURL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
			Metadata:       map[string]interface{}{"url": imageURL},
		})
		return nil, err
	}
	s.publish(ctx, observer.PlateEvent{
		EventType:      observer.ImageFetched,
		Timestamp:      time.Now(),
		Source:         SourceURL,
		ProcessingTime: time.Since(start),
		Metadata:       map[string]interface{}{"url": imageURL},
	})

	return s.recognize(ctx, SourceURL, s.uniqueName(SourceURL), img)
}

func (s *plateService) StreamFrames(ctx context.Context, interval time.Duration, fn func(image.Image) error) error {
	if s.deps.Camera == nil {
		return apperrors.NewCaptureError("no camera configured", nil)
	}
	return s.deps.Camera.Stream(ctx, interval, func(frame image.Image) error {
		return fn(s.annotateLive(frame))
	})
}

// annotateLive marks every detected candidate without any area filtering
func (s *plateService) annotateLive(frame image.Image) image.Image {
	if s.deps.LiveDetector == nil {
		return frame
	}
	marked := imaging.Clone(frame)
	candidates, err := s.deps.LiveDetector.Detect(plate.Grayscale(marked))
	if err != nil {
		logger.WithError(err).Debug("Live detection failed")
		return frame
	}
	for _, c := range candidates {
		plate.DrawRegion(marked, c, s.deps.Label)
	}
	return marked
}

func (s *plateService) History(ctx context.Context, limit int) ([]*models.DetectionRecord, error) {
	records, err := s.deps.History.List(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list detections", err)
	}
	return records, nil
}

func (s *plateService) OpenImage(ctx context.Context, name string) (io.ReadCloser, string, error) {
	rc, err := s.deps.Store.Open(ctx, name)
	switch {
	case err == nil:
		return rc, storage.ContentType(name), nil
	case errors.Is(err, storage.ErrInvalidName):
		return nil, "", apperrors.NewValidationError("invalid image name", err)
	case errors.Is(err, storage.ErrImageNotFound):
		return nil, "", apperrors.NewNotFoundError("image not found", err)
	default:
		return nil, "", apperrors.NewInternalError("failed to open image", err)
	}
}

// recognize stores the frame, runs the pipeline, stores its outputs and
// records the detection
func (s *plateService) recognize(ctx context.Context, source, name string, frame image.Image) (*models.RecognitionResponse, error) {
	log := logger.WithFields(logrus.Fields{"source": source, "image": name})

	if err := s.deps.Store.Save(ctx, name, frame); err != nil {
		return nil, apperrors.NewInternalError("failed to store frame", err)
	}

	result, err := s.deps.Recognizer.Run(ctx, source, frame)
	if err != nil {
		return nil, err
	}

	processedName := "processed_" + name
	if err := s.deps.Store.Save(ctx, processedName, result.Annotated); err != nil {
		return nil, apperrors.NewInternalError("failed to store annotated frame", err)
	}

	var patchName string
	if result.Processed != nil {
		patchName = "patch_" + strings.TrimSuffix(name, path.Ext(name)) + ".png"
		if err := s.deps.Store.Save(ctx, patchName, result.Processed); err != nil {
			log.WithError(err).Warn("Failed to store plate patch")
			patchName = ""
		}
	}

	record := &models.DetectionRecord{
		Source:            source,
		Text:              result.Text,
		Status:            result.Status,
		PlateFound:        result.PlateFound,
		CapturedImage:     name,
		ProcessedImage:    processedName,
		ProcessingTimeSec: result.ProcessingTimeSec,
		CreatedAt:         result.Timestamp.UTC(),
	}
	if err := s.deps.History.Save(ctx, record); err != nil {
		// History is best effort, the caller still gets the result
		log.WithError(err).Warn("Failed to record detection")
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
	}

	return toResponse(record.ID, result, name, processedName, patchName), nil
}

func (s *plateService) uniqueName(source string) string {
	return fmt.Sprintf("%s_%s_%s.jpg", source, s.deps.Now().Format(timestampLayout), uuid.NewString()[:8])
}

func (s *plateService) publish(ctx context.Context, event observer.PlateEvent) {
	if s.deps.Events != nil {
		s.deps.Events.NotifyObservers(ctx, event)
	}
}

func fetchError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timeout", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

func toResponse(id string, result *models.PlateResult, captured, processed, patch string) *models.RecognitionResponse {
	resp := &models.RecognitionResponse{
		ID:                id,
		Text:              result.Text,
		Status:            result.Status,
		MatchStatus:       result.Status.Label(),
		PlateFound:        result.PlateFound,
		Region:            result.Region,
		Nearest:           result.Nearest,
		Quality:           result.Quality,
		UploadedImageURL:  ImagePathPrefix + captured,
		ProcessedImageURL: ImagePathPrefix + processed,
		Timestamp:         result.Timestamp.Format(time.RFC3339),
		ProcessingTimeSec: result.ProcessingTimeSec,
	}
	if patch != "" {
		resp.PatchImageURL = ImagePathPrefix + patch
	}
	return resp
}
