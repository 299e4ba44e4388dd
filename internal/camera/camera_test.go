package camera

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-plate-inspector/internal/errors"
)

type fakeDevice struct {
	mu     sync.Mutex
	frame  image.Image
	err    error
	reads  int
	closed int
}

func (f *fakeDevice) Read() (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.frame, f.err
}

func (f *fakeDevice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func frame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

func TestCamera_ReleasedAfterFirstCapture(t *testing.T) {
	dev := &fakeDevice{frame: frame()}
	cam := New(dev, true)
	assert.Equal(t, StateOpen, cam.State())

	got, err := cam.Capture(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, StateReleased, cam.State())
	assert.Equal(t, 1, dev.closed)

	_, err = cam.Capture(context.Background())
	assert.ErrorIs(t, err, ErrReleased)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCapture))
	assert.Equal(t, 1, dev.reads, "released camera must not touch the device")
}

func TestCamera_KeepOpen(t *testing.T) {
	dev := &fakeDevice{frame: frame()}
	cam := New(dev, false)

	for i := 0; i < 3; i++ {
		_, err := cam.Capture(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, StateOpen, cam.State())
	assert.Equal(t, 3, dev.reads)

	require.NoError(t, cam.Release())
	require.NoError(t, cam.Release())
	assert.Equal(t, 1, dev.closed)
}

func TestCamera_CaptureFailures(t *testing.T) {
	tests := []struct {
		name string
		dev  *fakeDevice
	}{
		{"device error", &fakeDevice{err: errors.New("no signal")}},
		{"nil frame", &fakeDevice{}},
		{"empty frame", &fakeDevice{frame: image.NewRGBA(image.Rectangle{})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(tt.dev, true)
			_, err := cam.Capture(context.Background())
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCapture))
			assert.Equal(t, StateOpen, cam.State(), "failed capture does not release")
		})
	}
}

func TestCamera_CaptureCancelled(t *testing.T) {
	dev := &fakeDevice{frame: frame()}
	cam := New(dev, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cam.Capture(ctx)
	assert.Error(t, err)
	assert.Zero(t, dev.reads)
}

func TestCamera_Stream(t *testing.T) {
	dev := &fakeDevice{frame: frame()}
	cam := New(dev, true)

	stop := errors.New("enough")
	count := 0
	err := cam.Stream(context.Background(), time.Millisecond, func(image.Image) error {
		count++
		if count == 3 {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, count)
	assert.Equal(t, StateOpen, cam.State(), "streaming never releases")
}

func TestCamera_StreamContextDone(t *testing.T) {
	cam := New(&fakeDevice{frame: frame()}, false)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := cam.Stream(ctx, 5*time.Millisecond, func(image.Image) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFileDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	src := imaging.New(8, 6, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	require.NoError(t, imaging.Save(src, path))

	dev := NewFileDevice(path)
	img, err := dev.Read()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
	assert.NoError(t, dev.Close())

	_, err = NewFileDevice(filepath.Join(t.TempDir(), "missing.png")).Read()
	assert.Error(t, err)
}
