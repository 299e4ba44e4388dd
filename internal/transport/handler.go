package transport

import (
	"context"
	"errors"
	"fmt"
	"image"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-plate-inspector/internal/config"
	apperrors "go-plate-inspector/internal/errors"
	"go-plate-inspector/internal/logger"
	"go-plate-inspector/internal/service"
	"go-plate-inspector/pkg/models"
	"go-plate-inspector/pkg/validation"
)

const (
	// videoBoundary separates MJPEG parts on /video_feed
	videoBoundary      = "frame"
	videoFrameInterval = 66 * time.Millisecond
	defaultHistorySize = 20
)

// MetricsProvider exposes aggregated pipeline counters
type MetricsProvider interface {
	GetMetrics() map[string]interface{}
}

// NewHandler builds the HTTP routes. metrics may be nil.
func NewHandler(svc service.PlateService, metrics MetricsProvider, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/capture", capturePlate(svc, cfg))
	r.GET("/video_feed", videoFeed(svc))
	r.GET("/plates/:filename", serveImage(svc))
	r.POST("/recognize", recognizeUpload(svc, cfg))
	r.POST("/recognize/url", recognizeURL(svc, cfg))
	r.GET("/detections", listDetections(svc))
	r.GET("/metrics", metricsSnapshot(metrics))

	return r
}

func capturePlate(svc service.PlateService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c).Info("Processing capture request")

		resp, err := svc.Capture(ctx)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeCapture) {
				respondError(c, http.StatusInternalServerError, "Failed to capture image from webcam", err)
				return
			}
			respondError(c, apperrors.GetStatusCode(err), "plate recognition failed", err)
			return
		}

		logCompleted(resp)
		c.JSON(http.StatusOK, resp)
	}
}

func recognizeUpload(svc service.PlateService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c).Info("Processing upload recognition request")

		fh, err := c.FormFile("image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format",
				apperrors.NewValidationError("multipart field \"image\" is required", err))
			return
		}
		if err := validation.ValidateUpload(fh.Filename, fh.Size, cfg.MaxRequestBodySize); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid upload", err)
			return
		}

		img, err := decodeUpload(fh)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid upload", err)
			return
		}

		resp, err := svc.RecognizeImage(ctx, service.SourceUpload, img)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "plate recognition failed", err)
			return
		}

		logCompleted(resp)
		c.JSON(http.StatusOK, resp)
	}
}

func decodeUpload(fh *multipart.FileHeader) (image.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("cannot read uploaded file", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.NewValidationError("uploaded file is not a decodable image", err)
	}
	return img, nil
}

func recognizeURL(svc service.PlateService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c).Info("Processing URL recognition request")

		var req models.RecognizeURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.RecognizeURL(ctx, req.URL)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "plate recognition failed", err)
			return
		}

		logCompleted(resp)
		c.JSON(http.StatusOK, resp)
	}
}

// videoFeed streams camera frames as multipart/x-mixed-replace JPEG parts
// until the client disconnects or the camera stops delivering
func videoFeed(svc service.PlateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logRequest(c).Info("Starting video feed")

		mw := multipart.NewWriter(c.Writer)
		if err := mw.SetBoundary(videoBoundary); err != nil {
			respondError(c, http.StatusInternalServerError, "video feed unavailable", err)
			return
		}
		header := textproto.MIMEHeader{"Content-Type": {"image/jpeg"}}

		started := false
		err := svc.StreamFrames(c.Request.Context(), videoFrameInterval, func(frame image.Image) error {
			if !started {
				c.Header("Content-Type", "multipart/x-mixed-replace; boundary="+videoBoundary)
				c.Header("Cache-Control", "no-cache")
				c.Status(http.StatusOK)
				started = true
			}
			part, err := mw.CreatePart(header)
			if err != nil {
				return err
			}
			if err := imaging.Encode(part, frame, imaging.JPEG); err != nil {
				return err
			}
			c.Writer.Flush()
			return nil
		})

		switch {
		case !started && err != nil:
			respondError(c, apperrors.GetStatusCode(err), "video feed unavailable", err)
		case err != nil && !errors.Is(err, context.Canceled):
			logger.WithError(err).Warn("Video feed ended")
		default:
			logger.Debug("Video feed closed")
		}
	}
}

func serveImage(svc service.PlateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("filename")
		rc, contentType, err := svc.OpenImage(c.Request.Context(), name)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "image unavailable", err)
			return
		}
		defer rc.Close()
		c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
	}
}

func listDetections(svc service.PlateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultHistorySize
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				respondError(c, http.StatusBadRequest, "invalid limit",
					apperrors.NewValidationError(fmt.Sprintf("limit must be a positive integer, got %q", raw), err))
				return
			}
			limit = n
		}

		records, err := svc.History(c.Request.Context(), limit)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to list detections", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"count":      len(records),
			"detections": records,
		})
	}
}

func metricsSnapshot(metrics MetricsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func logRequest(c *gin.Context) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	})
}

func logCompleted(resp *models.RecognitionResponse) {
	logger.WithFields(logrus.Fields{
		"id":                  resp.ID,
		"plate_found":         resp.PlateFound,
		"text":                resp.Text,
		"status":              resp.Status,
		"processing_time_sec": resp.ProcessingTimeSec,
	}).Info("Plate recognition completed successfully")
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
