package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/soko-labs/storefront-backend/internal/apperr"
)

// Asset is a stored image as reported by the media service.
type Asset struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

// Uploader pushes image bytes to the external media service.
type Uploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// Options tunes the HTTP uploader's retry behaviour.
type Options struct {
	BaseURL     string
	APIKey      string
	MaxAttempts int
	RetryDelay  time.Duration
}

type httpUploader struct {
	client *http.Client
	opts   Options
	logger zerolog.Logger
}

// NewHTTPUploader creates an uploader backed by the configured media
// service. Transient failures are retried with exponential backoff.
func NewHTTPUploader(opts Options, logger zerolog.Logger) Uploader {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	return &httpUploader{
		client: &http.Client{Timeout: 30 * time.Second},
		opts:   opts,
		logger: logger.With().Str("component", "media").Logger(),
	}
}

func (u *httpUploader) Upload(ctx context.Context, filename string, body io.Reader) (*Asset, error) {
	// The request body is consumed on every attempt, so buffer it once.
	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, apperr.Dependency("failed to read upload body", err)
	}

	var asset *Asset
	err = u.withRetry(ctx, "upload", func() error {
		var attemptErr error
		asset, attemptErr = u.doUpload(ctx, filename, payload)
		return attemptErr
	})
	return asset, err
}

func (u *httpUploader) doUpload(ctx context.Context, filename string, payload []byte) (*Asset, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, apperr.Dependency("failed to build upload form", err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, apperr.Dependency("failed to build upload form", err)
	}
	if err := mw.Close(); err != nil {
		return nil, apperr.Dependency("failed to build upload form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.opts.BaseURL+"/upload", &buf)
	if err != nil {
		return nil, apperr.Dependency("failed to build upload request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+u.opts.APIKey)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, apperr.Dependency("media service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, apperr.Dependency(fmt.Sprintf("media service returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		return nil, apperr.Validationf("media service rejected upload with status %d", resp.StatusCode)
	}

	var asset Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, apperr.Dependency("failed to decode media response", err)
	}
	if asset.PublicID == "" || asset.URL == "" {
		return nil, apperr.Dependency("media service returned an incomplete asset", nil)
	}
	return &asset, nil
}

func (u *httpUploader) Delete(ctx context.Context, publicID string) error {
	return u.withRetry(ctx, "delete", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u.opts.BaseURL+"/assets/"+publicID, nil)
		if err != nil {
			return apperr.Dependency("failed to build delete request", err)
		}
		req.Header.Set("Authorization", "Bearer "+u.opts.APIKey)

		resp, err := u.client.Do(req)
		if err != nil {
			return apperr.Dependency("media service unreachable", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return apperr.Dependency(fmt.Sprintf("media service returned %d", resp.StatusCode), nil)
		case resp.StatusCode == http.StatusNotFound:
			return apperr.NotFound("media asset not found")
		case resp.StatusCode >= 400:
			return apperr.Validationf("media service rejected delete with status %d", resp.StatusCode)
		}
		return nil
	})
}

// withRetry runs fn with exponential backoff, retrying only Dependency
// failures. The delay doubles per attempt and is capped at 8x the base.
func (u *httpUploader) withRetry(ctx context.Context, op string, fn func() error) error {
	delay := u.opts.RetryDelay
	maxDelay := 8 * u.opts.RetryDelay

	var err error
	for attempt := 1; attempt <= u.opts.MaxAttempts; attempt++ {
		err = fn()
		if err == nil || !apperr.IsKind(err, apperr.KindDependency) {
			return err
		}
		if attempt == u.opts.MaxAttempts {
			break
		}

		u.logger.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("media call failed, retrying")
		select {
		case <-ctx.Done():
			return apperr.Dependency("media "+op+" cancelled", ctx.Err())
		case <-time.After(delay):
		}
		if delay < maxDelay {
			delay *= 2
		}
	}
	return err
}
