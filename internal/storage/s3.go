package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/prn-tf/storefront/internal/config"
)

// S3ImageStore presigns uploads against an S3 or S3-compatible bucket.
type S3ImageStore struct {
	presigner     *s3.PresignClient
	bucket        string
	publicBaseURL string
	now           func() time.Time
}

// NewS3ImageStore builds an S3 client from the storage configuration.
// Static credentials are used when configured; otherwise the default AWS
// credential chain applies.
func NewS3ImageStore(ctx context.Context, cfg config.StorageConfig) (*S3ImageStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = defaultPublicBaseURL(cfg)
	}

	return &S3ImageStore{
		presigner:     s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL,
		now:           time.Now,
	}, nil
}

// PresignUpload signs a PutObject request for key.
func (s *S3ImageStore) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*PresignedUpload, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	signedAt := s.now()
	req, err := s.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	headers := make(map[string]string)
	for name, values := range req.SignedHeader {
		if strings.EqualFold(name, "Host") || len(values) == 0 {
			continue
		}
		headers[name] = values[0]
	}

	return &PresignedUpload{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   headers,
		Key:       key,
		PublicURL: PublicURL(s.publicBaseURL, key),
		ExpiresAt: signedAt.Add(ttl).UTC(),
	}, nil
}

// defaultPublicBaseURL derives the bucket URL from the endpoint, or the AWS
// virtual-hosted style URL when no endpoint is set.
func defaultPublicBaseURL(cfg config.StorageConfig) string {
	if cfg.Endpoint != "" {
		base := strings.TrimSuffix(cfg.Endpoint, "/")
		if cfg.UsePathStyle {
			return base + "/" + cfg.Bucket
		}
		scheme, host, ok := strings.Cut(base, "://")
		if !ok {
			return base + "/" + cfg.Bucket
		}
		return scheme + "://" + cfg.Bucket + "." + host
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

var _ ImageStore = (*S3ImageStore)(nil)
