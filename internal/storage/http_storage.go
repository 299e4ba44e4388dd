package storage

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
)

// ImageFetcher downloads a frame from a remote URL
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)
}

const fetchAttempts = 3

// HTTPImageFetcher downloads images over HTTP with bounded retries.
// 4xx responses are final; network errors and 5xx responses are retried
// with a linear backoff.
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
	backoff  time.Duration
}

// NewHTTPImageFetcher creates a fetcher. maxBytes caps the downloaded body.
func NewHTTPImageFetcher(timeout time.Duration, maxBytes int64) *HTTPImageFetcher {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
		backoff:  time.Second,
	}
}

// FetchImage downloads and decodes the image at imageURL
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/gif, image/bmp, image/tiff, */*")
	req.Header.Set("User-Agent", "go-plate-inspector/1.0")

	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		img, retry, err := h.fetchOnce(req)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", fetchAttempts, lastErr)
}

// fetchOnce performs one request and reports whether a failure is worth retrying
func (h *HTTPImageFetcher) fetchOnce(req *http.Request) (image.Image, bool, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, req.Context().Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if h.maxBytes > 0 {
		if resp.ContentLength > h.maxBytes {
			return nil, false, fmt.Errorf("image too large: %d bytes (limit %d)", resp.ContentLength, h.maxBytes)
		}
		body = io.LimitReader(resp.Body, h.maxBytes)
	}

	img, err := imaging.Decode(body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, false, nil
}
