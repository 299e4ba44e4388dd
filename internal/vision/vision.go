// Package vision holds the OpenCV backed pieces of the plate pipeline: the
// Haar cascade region detector, the OpenCV preprocessor and the webcam
// device. They are compiled only with the "gocv" build tag; other builds get
// stubs that fail at construction time.
package vision

import "errors"

// ErrUnavailable is returned by the stubs when the binary was built without OpenCV
var ErrUnavailable = errors.New("OpenCV support not compiled in (build with -tags gocv)")
