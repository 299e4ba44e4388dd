package camera

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	apperrors "go-plate-inspector/internal/errors"
	"go-plate-inspector/internal/logger"
)

// ErrReleased is returned when capturing from a camera that was already released
var ErrReleased = errors.New("camera has been released")

// Device is a source of frames such as a webcam or an image file
type Device interface {
	Read() (image.Image, error)
	Close() error
}

// State is the lifecycle state of a Camera
type State int

const (
	StateOpen State = iota
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Camera owns a Device exclusively. At most one read is in flight at a time.
// With releaseAfterCapture set the device is closed after the first
// successful Capture and every later Capture fails with ErrReleased.
type Camera struct {
	mu                  sync.Mutex
	device              Device
	state               State
	releaseAfterCapture bool
}

// New wraps device in an open Camera
func New(device Device, releaseAfterCapture bool) *Camera {
	return &Camera{
		device:              device,
		state:               StateOpen,
		releaseAfterCapture: releaseAfterCapture,
	}
}

// State returns the current lifecycle state
func (c *Camera) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Capture reads one frame. A failed read is a capture error and is never retried.
func (c *Camera) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCaptureError("capture cancelled", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	frame, err := c.readLocked()
	if err != nil {
		return nil, err
	}
	if c.releaseAfterCapture {
		_ = c.releaseLocked()
	}
	return frame, nil
}

func (c *Camera) readLocked() (image.Image, error) {
	if c.state == StateReleased {
		return nil, apperrors.NewCaptureError("camera has been released", ErrReleased)
	}
	frame, err := c.device.Read()
	if err != nil {
		return nil, apperrors.NewCaptureError("Failed to capture image from webcam", err)
	}
	if frame == nil || frame.Bounds().Empty() {
		return nil, apperrors.NewCaptureError("Failed to capture image from webcam", errors.New("empty frame"))
	}
	return frame, nil
}

// Stream reads frames until ctx is done, fn returns an error or a read
// fails, waiting at least interval between reads. Stream never releases the
// camera.
func (c *Camera) Stream(ctx context.Context, interval time.Duration, fn func(image.Image) error) error {
	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.mu.Lock()
		frame, err := c.readLocked()
		c.mu.Unlock()
		if err != nil {
			return err
		}
		if err := fn(frame); err != nil {
			return err
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}

// Release closes the device. Releasing twice is a no-op.
func (c *Camera) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.releaseLocked()
}

func (c *Camera) releaseLocked() error {
	if c.state == StateReleased {
		return nil
	}
	c.state = StateReleased
	if err := c.device.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close camera device")
		return err
	}
	logger.Debug("Camera released")
	return nil
}

// FileDevice serves the image at Path as every frame
type FileDevice struct {
	Path string
}

// NewFileDevice creates a file backed device
func NewFileDevice(path string) *FileDevice {
	return &FileDevice{Path: path}
}

// Read decodes the file, applying its EXIF orientation
func (d *FileDevice) Read() (image.Image, error) {
	return imaging.Open(d.Path, imaging.AutoOrientation(true))
}

// Close is a no-op
func (d *FileDevice) Close() error {
	return nil
}
