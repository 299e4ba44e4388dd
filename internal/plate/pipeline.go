package plate

import (
	"context"
	stderrors "errors"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	apperrors "go-plate-inspector/internal/errors"
	"go-plate-inspector/internal/logger"
	"go-plate-inspector/internal/observer"
	"go-plate-inspector/internal/strategy"
	"go-plate-inspector/pkg/models"
)

// State is a step of a pipeline run
type State string

const (
	StateAwaitingFrame  State = "awaiting_frame"
	StateRegionDetected State = "region_detected"
	StateRegionSelected State = "region_selected"
	StateNoRegionFound  State = "no_region_found"
	StatePatchReady     State = "patch_ready"
	StateTextExtracted  State = "text_extracted"
	StateNormalized     State = "normalized"
	StateEvaluated      State = "evaluated"
)

// Dependencies are the collaborators of a Pipeline. Events is optional.
type Dependencies struct {
	Detector     RegionDetector
	Selector     strategy.SelectionStrategy
	Preprocessor Preprocessor
	OCR          OCREngine
	Evaluator    Evaluator
	Events       observer.Subject
}

type nearestFinder interface {
	Closest(text string) (models.NearestEntry, bool)
}

// Pipeline runs detection, selection, preprocessing, OCR, normalization and
// matching on one frame at a time. Runs are serialized because the loaded
// cascade and OCR models are not safe for concurrent use.
type Pipeline struct {
	deps Dependencies
	opts Options
	mu   sync.Mutex
}

// NewPipeline validates the dependencies and builds a pipeline
func NewPipeline(deps Dependencies, opts Options) (*Pipeline, error) {
	switch {
	case deps.Detector == nil:
		return nil, apperrors.NewInternalError("pipeline requires a region detector", nil)
	case deps.Selector == nil:
		return nil, apperrors.NewInternalError("pipeline requires a selection strategy", nil)
	case deps.Preprocessor == nil:
		return nil, apperrors.NewInternalError("pipeline requires a preprocessor", nil)
	case deps.OCR == nil:
		return nil, apperrors.NewInternalError("pipeline requires an OCR engine", nil)
	case deps.Evaluator == nil:
		return nil, apperrors.NewInternalError("pipeline requires an evaluator", nil)
	}
	return &Pipeline{deps: deps, opts: opts}, nil
}

// Options returns the options the pipeline was built with
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run processes frame and returns the terminal result. source names where the
// frame came from and is only used for events. The frame is never modified.
func (p *Pipeline) Run(ctx context.Context, source string, frame image.Image) (*models.PlateResult, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, apperrors.NewValidationError("frame is empty", nil)
	}

	p.mu.Lock()
	result, event, err := p.run(ctx, source, frame)
	p.mu.Unlock()

	// Published after unlocking so observers never hold up the next run
	if p.deps.Events != nil {
		p.deps.Events.NotifyObservers(ctx, event)
	}
	return result, err
}

// run does the work of Run under p.mu and returns the event describing the outcome
func (p *Pipeline) run(ctx context.Context, source string, frame image.Image) (*models.PlateResult, observer.PlateEvent, error) {
	start := time.Now()
	result := &models.PlateResult{
		Timestamp: start,
		States:    []string{string(StateAwaitingFrame)},
	}
	log := logger.WithFields(logrus.Fields{"source": source})

	src := imaging.Clone(frame)
	result.Annotated = src

	candidates, err := p.deps.Detector.Detect(Grayscale(src))
	if err != nil {
		return p.fail(source, start, apperrors.NewProcessingError("plate detection failed", err))
	}
	result.Candidates = len(candidates)
	result.States = append(result.States, string(StateRegionDetected))

	region, ok := p.deps.Selector.Select(candidates)
	if !ok {
		result.States = append(result.States, string(StateNoRegionFound))
		result.Text = models.NoPlateText
		result.Status = models.NoMatch
		log.WithField("candidates", len(candidates)).Debug("No candidate region qualified")
		return result, p.finish(source, start, result), nil
	}
	result.PlateFound = true
	result.Region = &region
	result.States = append(result.States, string(StateRegionSelected))

	crop := imaging.Crop(src, region.Rect())
	DrawRegion(src, region, p.opts.Label)

	patch := p.deps.Preprocessor.Preprocess(crop)
	result.Processed = patch
	result.States = append(result.States, string(StatePatchReady))

	if p.opts.ComputeQuality {
		gray := Grayscale(crop)
		q := MeasureQuality(gray, OtsuThreshold(gray))
		result.Quality = &q
	}

	raw, err := ExtractText(ctx, p.deps.OCR, patch)
	if err != nil {
		return p.fail(source, start, ocrError(err))
	}
	result.RawText = raw
	result.States = append(result.States, string(StateTextExtracted))

	result.Text = Normalize(raw)
	result.States = append(result.States, string(StateNormalized))

	result.Status = p.deps.Evaluator.Evaluate(result.Text)
	result.States = append(result.States, string(StateEvaluated))

	if result.Status == models.NoMatch && p.opts.SuggestNearest {
		if nf, ok := p.deps.Evaluator.(nearestFinder); ok {
			if nearest, found := nf.Closest(result.Text); found {
				result.Nearest = &nearest
			}
		}
	}

	log.WithFields(logrus.Fields{
		"raw_text": raw,
		"text":     result.Text,
		"status":   result.Status,
	}).Debug("Plate evaluated")
	return result, p.finish(source, start, result), nil
}

func (p *Pipeline) finish(source string, start time.Time, result *models.PlateResult) observer.PlateEvent {
	result.ProcessingTimeSec = time.Since(start).Seconds()
	return observer.NewResultEvent(source, result)
}

func (p *Pipeline) fail(source string, start time.Time, err error) (*models.PlateResult, observer.PlateEvent, error) {
	return nil, observer.PlateEvent{
		EventType:      observer.PipelineFailed,
		Timestamp:      time.Now(),
		Source:         source,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	}, err
}

func ocrError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return err
	case stderrors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("text recognition timed out", err)
	default:
		return apperrors.NewProcessingError("text recognition failed", err)
	}
}
