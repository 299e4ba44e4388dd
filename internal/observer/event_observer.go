package observer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"go-plate-inspector/pkg/models"
)

// PlateEvent describes something that happened while capturing or recognizing a plate
type PlateEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Source         string                 `json:"source,omitempty"`
	Text           string                 `json:"text,omitempty"`
	Status         models.MatchStatus     `json:"status,omitempty"`
	PlateFound     bool                   `json:"plate_found"`
	ProcessingTime time.Duration          `json:"processing_time"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of plate event
type EventType string

const (
	// FrameCaptured when a frame was acquired from the camera
	FrameCaptured EventType = "frame_captured"
	// CaptureFailed when no frame could be acquired
	CaptureFailed EventType = "capture_failed"
	// PlateEvaluated when a plate was read and checked against the allow-list
	PlateEvaluated EventType = "plate_evaluated"
	// PlateNotFound when no candidate region qualified
	PlateNotFound EventType = "plate_not_found"
	// PipelineFailed when a stage returned an error
	PipelineFailed EventType = "pipeline_failed"
	// ImageFetched when a remote image was downloaded
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a remote image could not be downloaded
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Completed reports whether the event ends a recognition with a result
func (e PlateEvent) Completed() bool {
	return e.EventType == PlateEvaluated || e.EventType == PlateNotFound
}

// NewResultEvent builds the terminal event for a pipeline result
func NewResultEvent(source string, result *models.PlateResult) PlateEvent {
	eventType := PlateEvaluated
	if !result.PlateFound {
		eventType = PlateNotFound
	}
	return PlateEvent{
		EventType:      eventType,
		Timestamp:      result.Timestamp,
		Source:         source,
		Text:           result.Text,
		Status:         result.Status,
		PlateFound:     result.PlateFound,
		ProcessingTime: time.Duration(result.ProcessingTimeSec * float64(time.Second)),
		Metadata: map[string]interface{}{
			"candidates": result.Candidates,
		},
	}
}

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event PlateEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event PlateEvent)
}

// LoggingObserver logs plate events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles plate events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event PlateEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"source":          event.Source,
		"processing_time": event.ProcessingTime,
	}
	if event.Completed() {
		fields["text"] = event.Text
		fields["status"] = event.Status
		fields["plate_found"] = event.PlateFound
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case FrameCaptured:
		entry.Debug("Frame captured")
	case CaptureFailed:
		entry.Error("Frame capture failed")
	case PlateEvaluated:
		entry.Info("Plate evaluated")
	case PlateNotFound:
		entry.Info("No plate detected")
	case PipelineFailed:
		entry.Error("Plate recognition failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	default:
		entry.Info("Plate event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from plate events
type MetricsObserver struct {
	mu                  sync.RWMutex
	captures            int64
	captureFailures     int64
	recognitions        int64
	matches             int64
	noMatches           int64
	platesNotFound      int64
	failures            int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles plate events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event PlateEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case FrameCaptured:
		o.captures++
	case CaptureFailed:
		o.captureFailures++
	case PlateEvaluated:
		o.recognitions++
		o.totalProcessingTime += event.ProcessingTime
		if event.Status == models.Match {
			o.matches++
		} else {
			o.noMatches++
		}
	case PlateNotFound:
		o.recognitions++
		o.platesNotFound++
		o.totalProcessingTime += event.ProcessingTime
	case PipelineFailed:
		o.failures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.recognitions > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.recognitions)
	}

	return map[string]interface{}{
		"captures":                o.captures,
		"capture_failures":        o.captureFailures,
		"recognitions":            o.recognitions,
		"matches":                 o.matches,
		"no_matches":              o.noMatches,
		"plates_not_found":        o.platesNotFound,
		"failures":                o.failures,
		"avg_processing_time_sec": avgProcessingTime.Seconds(),
	}
}

// EventPublisher implements the Subject interface. Observers run on a
// worker pool so a slow observer (SMTP) never blocks a recognition: when the
// queue is full the event is dropped for that observer.
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	pool      *WorkerPool
	dropped   atomic.Int64
}

// NewEventPublisher creates a new event publisher backed by a pool of the given size
func NewEventPublisher(workers int) *EventPublisher {
	pool := NewWorkerPool(workers)
	pool.Start()
	return &EventPublisher{
		observers: make([]Observer, 0),
		pool:      pool,
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers hands the event to every observer. The request context is
// detached because observers outlive the request that produced the event.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event PlateEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	detached := context.WithoutCancel(ctx)

	for _, observer := range observers {
		obs := observer
		if !p.pool.TrySubmit(func() { obs.OnEvent(detached, event) }) {
			p.dropped.Add(1)
			logrus.WithFields(logrus.Fields{
				"observer": obs.GetObserverName(),
				"event":    event.EventType,
			}).Warn("Event queue full or publisher closed, dropping event")
		}
	}
}

// Dropped reports how many observer callbacks were discarded
func (p *EventPublisher) Dropped() int64 {
	return p.dropped.Load()
}

// Flush waits for all queued observer callbacks to finish
func (p *EventPublisher) Flush() {
	p.pool.Wait()
}

// Close drains pending events and stops the workers
func (p *EventPublisher) Close() {
	p.pool.Close()
	p.pool.Wait()
}
