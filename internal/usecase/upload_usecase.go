package usecase

import (
	"context"
	"fmt"
	"net/http"

	"expressivart/internal/infrastructure/metrics"
	"expressivart/internal/infrastructure/ratelimit"
	"expressivart/internal/infrastructure/storage"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

var uploadFolders = map[string]bool{
	"artworks": true,
	"profiles": true,
}

type UploadUseCase struct {
	store       ImageStore
	maxBytes    int64
	rateLimiter RateLimiter
}

func NewUploadUseCase(store ImageStore, maxBytes int64, rateLimiter RateLimiter) *UploadUseCase {
	if rateLimiter == nil {
		rateLimiter = noLimit{}
	}
	return &UploadUseCase{store: store, maxBytes: maxBytes, rateLimiter: rateLimiter}
}

type UploadResult struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// UploadImage stores an image under <userID>/<folder>/ and returns its public URL.
func (uc *UploadUseCase) UploadImage(ctx context.Context, userID, folder string, data []byte) (*UploadResult, error) {
	if uc.store == nil {
		return nil, errors.New(errors.CodeInternal, "Uploads are not configured", http.StatusServiceUnavailable, nil)
	}
	if folder == "" {
		folder = "artworks"
	}
	if !uploadFolders[folder] {
		return nil, errors.BadRequest("Invalid upload folder", nil)
	}
	if len(data) == 0 {
		return nil, errors.BadRequest("File is empty", nil)
	}
	if int64(len(data)) > uc.maxBytes {
		metrics.UploadsTotal.WithLabelValues("unknown", "too_large").Inc()
		return nil, errors.BadRequest(fmt.Sprintf("File exceeds %d bytes", uc.maxBytes), nil)
	}
	if allowed, wait := uc.rateLimiter.Allow(userID, ratelimit.ActionUpload); !allowed {
		return nil, errors.TooManyRequests("Upload limit reached. Please wait", wait)
	}

	contentType, ext, err := storage.DetectImage(data)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("unknown", "rejected").Inc()
		return nil, errors.BadRequest("Only JPEG, PNG, WebP and GIF images are allowed", err)
	}

	url, err := uc.store.Upload(ctx, storage.ObjectName(userID, folder, ext), contentType, data)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(contentType, "failed").Inc()
		logger.Error("Upload for %s failed: %v", userID, err)
		return nil, errors.Internal("Failed to upload file", err)
	}

	metrics.UploadsTotal.WithLabelValues(contentType, "ok").Inc()
	metrics.UploadBytesTotal.Add(float64(len(data)))
	return &UploadResult{URL: url, ContentType: contentType, Size: len(data)}, nil
}
