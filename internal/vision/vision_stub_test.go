//go:build !gocv

package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "go-plate-inspector/internal/errors"
	"go-plate-inspector/internal/plate"
)

func TestStubsFailAtConstruction(t *testing.T) {
	_, err := NewCascadeDetector("model/haarcascade_russian_plate_number.xml", plate.DefaultOptions())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeModelLoad))

	_, err = NewPreprocessor(plate.DefaultOptions())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = OpenWebcam(0)
	assert.ErrorIs(t, err, ErrUnavailable)
}
