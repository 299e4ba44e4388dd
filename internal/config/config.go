package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64

	// Models and inputs
	CascadePath   string
	AllowListPath string
	OCRLanguage   string
	OCRTimeout    time.Duration

	// Frame source
	CameraSource              string // "device" or "file"
	CameraDevice              int
	CameraFile                string
	ReleaseCameraAfterCapture bool
	LiveAnnotation            bool

	// Detection
	ScaleFactor       float64
	MinNeighbors      int
	MinPlateArea      int
	SelectionStrategy string
	Preprocessor      string // "native" or "opencv"

	// Persistence
	PlatesDir             string
	StorageBackend        string // "local" or "azure"
	AzureStorageAccount   string
	AzureStorageKey       string
	AzureStorageContainer string
	DatabaseDSN           string

	// Notification
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	NotifyFrom   string
	NotifyTo     []string

	LogLevel  string
	LogFormat string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// NotificationsEnabled reports whether enough SMTP settings exist to send mail
func (c *Config) NotificationsEnabled() bool {
	return c.SMTPHost != "" && c.NotifyFrom != "" && len(c.NotifyTo) > 0
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// A missing file is not an error; variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		CascadePath:   getEnvOrDefault("CASCADE_PATH", "model/haarcascade_russian_plate_number.xml"),
		AllowListPath: getEnvOrDefault("ALLOWLIST_PATH", "check.txt"),
		OCRLanguage:   getEnvOrDefault("OCR_LANGUAGE", "eng"),
		OCRTimeout:    parseDurationOrDefault("OCR_TIMEOUT", 0),

		CameraSource:              strings.ToLower(getEnvOrDefault("CAMERA_SOURCE", "device")),
		CameraDevice:              int(parseIntOrDefault("CAMERA_DEVICE", 0)),
		CameraFile:                os.Getenv("CAMERA_FILE"),
		ReleaseCameraAfterCapture: parseBoolOrDefault("RELEASE_CAMERA_AFTER_CAPTURE", true),
		LiveAnnotation:            parseBoolOrDefault("LIVE_ANNOTATION", true),

		ScaleFactor:       parseFloatOrDefault("DETECT_SCALE_FACTOR", 1.1),
		MinNeighbors:      int(parseIntOrDefault("DETECT_MIN_NEIGHBORS", 4)),
		MinPlateArea:      int(parseIntOrDefault("MIN_PLATE_AREA", 500)),
		SelectionStrategy: strings.ToLower(getEnvOrDefault("SELECTION_STRATEGY", "first_fit")),
		Preprocessor:      strings.ToLower(getEnvOrDefault("PREPROCESSOR", "native")),

		PlatesDir:             getEnvOrDefault("PLATES_DIR", "plates"),
		StorageBackend:        strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", "local")),
		AzureStorageAccount:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:       os.Getenv("AZURE_STORAGE_KEY"),
		AzureStorageContainer: getEnvOrDefault("AZURE_STORAGE_CONTAINER", "plates"),
		DatabaseDSN:           os.Getenv("DATABASE_DSN"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     int(parseIntOrDefault("SMTP_PORT", 587)),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		NotifyFrom:   os.Getenv("NOTIFY_FROM"),
		NotifyTo:     parseListOrDefault("NOTIFY_TO", nil),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			c.RequestTimeout, c.ImageFetchTimeout)
	}
	if c.OCRTimeout < 0 {
		return fmt.Errorf("OCR_TIMEOUT must be >= 0 (got %s)", c.OCRTimeout)
	}
	if c.ScaleFactor <= 1.0 {
		return fmt.Errorf("DETECT_SCALE_FACTOR must be > 1 (got %g)", c.ScaleFactor)
	}
	if c.MinNeighbors < 0 {
		return fmt.Errorf("DETECT_MIN_NEIGHBORS must be >= 0 (got %d)", c.MinNeighbors)
	}
	if c.MinPlateArea < 0 {
		return fmt.Errorf("MIN_PLATE_AREA must be >= 0 (got %d)", c.MinPlateArea)
	}
	switch c.CameraSource {
	case "device":
	case "file":
		if c.CameraFile == "" {
			return fmt.Errorf("CAMERA_FILE is required when CAMERA_SOURCE=file")
		}
	default:
		return fmt.Errorf("invalid CAMERA_SOURCE: %q", c.CameraSource)
	}
	if c.StorageBackend == "azure" && (c.AzureStorageAccount == "" || c.AzureStorageKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY are required when STORAGE_BACKEND=azure")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration >= 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
