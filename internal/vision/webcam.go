//go:build gocv

package vision

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam reads frames from a local video device
type Webcam struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	frame   gocv.Mat
}

// OpenWebcam opens the video device with the given index
func OpenWebcam(device int) (*Webcam, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open video device %d: %w", device, err)
	}
	return &Webcam{capture: capture, frame: gocv.NewMat()}, nil
}

// Read returns the next frame
func (w *Webcam) Read() (image.Image, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ok := w.capture.Read(&w.frame); !ok || w.frame.Empty() {
		return nil, errors.New("failed to read frame from video device")
	}
	return w.frame.ToImage()
}

// Close releases the device
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frame.Close()
	return w.capture.Close()
}
