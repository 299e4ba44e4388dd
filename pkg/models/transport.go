package models

// RecognizeURLRequest asks the service to fetch an image and read its plate
type RecognizeURLRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RecognitionResponse is returned by the capture and recognize endpoints
type RecognitionResponse struct {
	ID                string        `json:"id"`
	Text              string        `json:"extracted_text"`
	Status            MatchStatus   `json:"status"`
	MatchStatus       string        `json:"match_status"`
	PlateFound        bool          `json:"plate_found"`
	Region            *Region       `json:"region,omitempty"`
	Nearest           *NearestEntry `json:"nearest,omitempty"`
	Quality           *PatchQuality `json:"quality,omitempty"`
	UploadedImageURL  string        `json:"uploaded_image_url,omitempty"`
	ProcessedImageURL string        `json:"processed_image_url,omitempty"`
	PatchImageURL     string        `json:"patch_image_url,omitempty"`
	Timestamp         string        `json:"timestamp"`
	ProcessingTimeSec float64       `json:"processing_time_sec"`
}
