package service

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/repository"
	"github.com/prn-tf/storefront/internal/storage"
)

// Upload URL lifetime bounds.
const (
	MinUploadExpiry     = time.Minute
	MaxUploadExpiry     = 12 * time.Hour
	DefaultUploadExpiry = 15 * time.Minute
)

// ImageService issues presigned upload URLs for product images.
type ImageService struct {
	products      repository.ProductLookup
	store         storage.ImageStore
	defaultExpiry time.Duration
	logger        zerolog.Logger
}

// ImageConfig contains configuration for the image service.
type ImageConfig struct {
	// DefaultExpiry is the upload URL lifetime used when none is requested.
	DefaultExpiry time.Duration
}

// NewImageService creates a new ImageService. A nil store disables uploads.
func NewImageService(products repository.ProductLookup, store storage.ImageStore, config ImageConfig, logger zerolog.Logger) *ImageService {
	expiry := config.DefaultExpiry
	if expiry < MinUploadExpiry || expiry > MaxUploadExpiry {
		expiry = DefaultUploadExpiry
	}
	return &ImageService{
		products:      products,
		store:         store,
		defaultExpiry: expiry,
		logger:        logger.With().Str("service", "image").Logger(),
	}
}

// UploadInput describes an image a client wants to upload.
type UploadInput struct {
	ProductID   int64
	Filename    string
	ContentType string

	// Expiry is the URL lifetime. If zero, the default expiry is used.
	Expiry time.Duration
}

// Enabled reports whether an image store is configured.
func (s *ImageService) Enabled() bool {
	return s.store != nil
}

// PresignUpload returns a URL the client can PUT the image to.
func (s *ImageService) PresignUpload(ctx context.Context, input UploadInput) (*storage.PresignedUpload, error) {
	if s.store == nil {
		return nil, storage.ErrDisabled
	}

	contentType, err := validateImageContentType(input.ContentType)
	if err != nil {
		return nil, err
	}

	expiry := input.Expiry
	if expiry == 0 {
		expiry = s.defaultExpiry
	}
	if expiry < MinUploadExpiry || expiry > MaxUploadExpiry {
		return nil, domain.NewValidationError("expires_in", fmt.Sprintf("must be between %s and %s", MinUploadExpiry, MaxUploadExpiry))
	}

	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		if domain.IsNotFound(err, "") {
			return nil, domain.NewNotFoundError(domain.EntityProduct, input.ProductID)
		}
		s.logger.Error().Err(err).Int64("product_id", input.ProductID).Msg("failed to look up product")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	key := storage.ProductImageKey(input.ProductID, input.Filename)
	upload, err := s.store.PresignUpload(ctx, key, contentType, expiry)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to presign upload")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("product_id", input.ProductID).
		Str("key", key).
		Time("expires_at", upload.ExpiresAt).
		Msg("image upload url issued")

	return upload, nil
}

// validateImageContentType requires an image/* media type and returns it without parameters.
func validateImageContentType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", domain.NewValidationError("content_type", "must be an image media type")
	}
	return mediaType, nil
}
