// Package storage issues upload URLs for product images kept in an
// S3-compatible object store. Image bytes never pass through the server.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled indicates no image store is configured.
var ErrDisabled = errors.New("image storage is disabled")

// PresignedUpload is a time-limited URL a client can PUT an object to.
type PresignedUpload struct {
	// URL is the presigned request URL.
	URL string `json:"url"`

	// Method is the HTTP method the URL is signed for.
	Method string `json:"method"`

	// Headers must be sent with the upload for the signature to match.
	Headers map[string]string `json:"headers,omitempty"`

	// Key is the object key the upload will create.
	Key string `json:"key"`

	// PublicURL is where the object can be read once uploaded.
	PublicURL string `json:"public_url"`

	// ExpiresAt is when the signature stops being accepted.
	ExpiresAt time.Time `json:"expires_at"`
}

// ImageStore creates presigned upload URLs.
type ImageStore interface {
	// PresignUpload signs a PUT of key with the given content type, valid for ttl.
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*PresignedUpload, error)
}
