package validation

import (
	"testing"

	apperrors "go-plate-inspector/internal/errors"
)

func TestNewURLValidator(t *testing.T) {
	validator := NewURLValidator()
	if validator == nil {
		t.Fatal("Expected non-nil URL validator")
	}

	expectedSchemes := []string{"http", "https"}
	if len(validator.allowedSchemes) != len(expectedSchemes) {
		t.Errorf("Expected %d schemes, got %d", len(expectedSchemes), len(validator.allowedSchemes))
	}
}

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		name      string
		validator *URLValidator
		url       string
		wantErr   bool
	}{
		{"plain http", NewURLValidator(), "http://example.com/gate/frame.jpg", false},
		{"https with port", NewURLValidator(), "https://cam.example.com:8443/snapshot.png", false},
		{"ip host", NewURLValidator(), "http://192.168.1.20/capture.jpg", false},
		{"empty", NewURLValidator(), "   ", true},
		{"bad format", NewURLValidator(), "http://[::1", true},
		{"no host", NewURLValidator(), "http:///frame.jpg", true},
		{"ftp scheme", NewURLValidator(), "ftp://example.com/frame.jpg", true},
		{"file scheme", NewURLValidator(), "file:///etc/passwd", true},
		{
			"allowed host ignores port and case",
			NewURLValidatorWithOptions([]string{"https"}, []string{"cam.example.com"}),
			"https://CAM.example.com:8443/frame.jpg",
			false,
		},
		{
			"host not allowed",
			NewURLValidatorWithOptions([]string{"https"}, []string{"cam.example.com"}),
			"https://evil.example.com/frame.jpg",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator.ValidateImageURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.url)
				}
				if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
					t.Errorf("Expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected %q to pass validation, got: %v", tt.url, err)
			}
		})
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"jpeg", "frame.jpg", 1024, false},
		{"upper case png", "FRAME.PNG", 1024, false},
		{"missing name", "", 1024, true},
		{"unsupported type", "frame.pdf", 1024, true},
		{"empty file", "frame.jpg", 0, true},
		{"too large", "frame.jpg", 11 << 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.size, 10<<20)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpload(%q, %d) error = %v, wantErr %v", tt.filename, tt.size, err, tt.wantErr)
			}
		})
	}
}
