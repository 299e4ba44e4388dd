package models

import (
	"image"
	"time"
)

// NoPlateText is reported as the plate text when no candidate region qualifies
const NoPlateText = "No plate detected"

// Region is an axis-aligned rectangle within a frame
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RegionFromRect converts an image.Rectangle into a Region
func RegionFromRect(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Area returns width × height
func (r Region) Area() int {
	return r.Width * r.Height
}

// Rect returns the region as an image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// MatchStatus is the outcome of comparing plate text against the allow-list
type MatchStatus string

const (
	Match   MatchStatus = "match"
	NoMatch MatchStatus = "no_match"
)

// Label returns the human readable status shown to operators
func (s MatchStatus) Label() string {
	if s == Match {
		return "Match Found!"
	}
	return "No Match Found!"
}

// PatchQuality holds diagnostics computed on the grayscale plate region
type PatchQuality struct {
	LaplacianVar float64 `json:"laplacian_variance"`
	Brightness   float64 `json:"brightness"`
	Threshold    uint8   `json:"otsu_threshold"`
}

// NearestEntry is the allow-list entry closest to the recognized text
type NearestEntry struct {
	Entry    string `json:"entry"`
	Distance int    `json:"distance"`
}

// PlateResult is the terminal output of one pipeline run
type PlateResult struct {
	Text       string        `json:"text"`
	RawText    string        `json:"raw_text,omitempty"`
	Status     MatchStatus   `json:"status"`
	PlateFound bool          `json:"plate_found"`
	Region     *Region       `json:"region,omitempty"`
	Candidates int           `json:"candidates"`
	Quality    *PatchQuality `json:"quality,omitempty"`
	Nearest    *NearestEntry `json:"nearest,omitempty"`
	States     []string      `json:"states"`
	Timestamp  time.Time     `json:"timestamp"`

	ProcessingTimeSec float64 `json:"processing_time_sec"`

	// Annotated is a copy of the input frame with the selected region marked
	Annotated image.Image `json:"-"`
	// Processed is the binarized plate patch fed to OCR, nil when no plate was found
	Processed image.Image `json:"-"`
}

// DetectionRecord is the persisted summary of a recognition
type DetectionRecord struct {
	ID                string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Source            string      `json:"source" gorm:"type:varchar(32);index"`
	Text              string      `json:"text" gorm:"type:varchar(64);index"`
	Status            MatchStatus `json:"status" gorm:"type:varchar(16)"`
	PlateFound        bool        `json:"plate_found"`
	CapturedImage     string      `json:"captured_image,omitempty"`
	ProcessedImage    string      `json:"processed_image,omitempty"`
	ProcessingTimeSec float64     `json:"processing_time_sec"`
	CreatedAt         time.Time   `json:"created_at" gorm:"index"`
}

// TableName pins the gorm table name
func (DetectionRecord) TableName() string {
	return "plate_detections"
}
