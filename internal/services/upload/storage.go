package upload

import (
	"context"
	"fmt"
	"io"
	"path"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appconfig "github.com/aylalah/ag-rms-sub000/internal/config"
)

// ObjectStorage is the narrow contract the pipeline needs from the object
// store: write a stream under a key, get back a public URL, delete a key.
type ObjectStorage interface {
	Store(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Storage implements ObjectStorage on AWS S3.
type S3Storage struct {
	client *s3.Client
	bucket string
	region string
	prefix string
}

// NewS3Storage creates an S3-backed object storage client using the default
// AWS credential chain.
func NewS3Storage(ctx context.Context, cfg appconfig.StorageConfig) (*S3Storage, error) {
	awscfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Storage{
		client: s3.NewFromConfig(awscfg),
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: cfg.Prefix,
	}, nil
}

// Store writes one object and returns its public URL.
func (s *S3Storage) Store(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	fullKey := path.Join(s.prefix, key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(s.bucket),
		Key:         awssdk.String(fullKey),
		Body:        body,
		ContentType: awssdk.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", fullKey, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, fullKey), nil
}

// UnconfiguredStorage fails every write. It stands in when no bucket is
// configured so the upload routes still mount and report per-file failures
// instead of the server refusing to start.
type UnconfiguredStorage struct{}

// Store always fails.
func (UnconfiguredStorage) Store(context.Context, string, string, io.Reader) (string, error) {
	return "", fmt.Errorf("object storage is not configured")
}

// Delete always fails.
func (UnconfiguredStorage) Delete(context.Context, string) error {
	return fmt.Errorf("object storage is not configured")
}

// Delete removes one object.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	fullKey := path.Join(s.prefix, key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: awssdk.String(s.bucket),
		Key:    awssdk.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", fullKey, err)
	}
	return nil
}
