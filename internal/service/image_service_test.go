package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/storage"
)

var imageKeyPattern = regexp.MustCompile(`^products/5/[0-9a-f-]{36}\.png$`)

func TestImageService_PresignUpload(t *testing.T) {
	products := new(mockProductRepository)
	products.On("GetByID", mock.Anything, int64(5)).Return(&domain.Product{ID: 5}, nil)
	products.On("GetByID", mock.Anything, int64(6)).Return(nil, domain.NewNotFoundError(domain.EntityProduct, 6))

	store := new(mockImageStore)
	store.On("PresignUpload", mock.Anything, mock.MatchedBy(imageKeyPattern.MatchString), "image/png", 15*time.Minute).
		Return(&storage.PresignedUpload{URL: "https://bucket/x", Method: "PUT"}, nil)

	svc := NewImageService(products, store, ImageConfig{}, zerolog.Nop())
	require.True(t, svc.Enabled())

	tests := []struct {
		name    string
		input   UploadInput
		wantErr error
	}{
		{"valid", UploadInput{ProductID: 5, Filename: "front.PNG", ContentType: "image/png; charset=binary"}, nil},
		{"not an image", UploadInput{ProductID: 5, Filename: "notes.txt", ContentType: "text/plain"}, domain.ErrValidation},
		{"missing content type", UploadInput{ProductID: 5, Filename: "a.png"}, domain.ErrValidation},
		{"expiry too long", UploadInput{ProductID: 5, Filename: "a.png", ContentType: "image/png", Expiry: 48 * time.Hour}, domain.ErrValidation},
		{"unknown product", UploadInput{ProductID: 6, Filename: "a.png", ContentType: "image/png"}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upload, err := svc.PresignUpload(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "PUT", upload.Method)
		})
	}
	store.AssertNumberOfCalls(t, "PresignUpload", 1)
}

func TestImageService_Disabled(t *testing.T) {
	svc := NewImageService(new(mockProductRepository), nil, ImageConfig{}, zerolog.Nop())
	require.False(t, svc.Enabled())

	_, err := svc.PresignUpload(context.Background(), UploadInput{ProductID: 1, ContentType: "image/png"})
	require.ErrorIs(t, err, storage.ErrDisabled)
}

func TestImageService_StoreFailure(t *testing.T) {
	products := new(mockProductRepository)
	products.On("GetByID", mock.Anything, int64(5)).Return(&domain.Product{ID: 5}, nil)
	store := new(mockImageStore)
	store.On("PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("no credentials"))

	svc := NewImageService(products, store, ImageConfig{DefaultExpiry: 5 * time.Minute}, zerolog.Nop())

	_, err := svc.PresignUpload(context.Background(), UploadInput{ProductID: 5, Filename: "a.png", ContentType: "image/png"})
	require.ErrorIs(t, err, ErrInternalError)
}
