package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gameskins-co/intake/pkg/logging"
)

// BlobStore uploads image bytes to the remote object store.
type BlobStore interface {
	Put(ctx context.Context, bucket, path, contentType string, data []byte) error
}

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store stores uploaded design images in S3 (or an S3-compatible store
// behind an endpoint override).
type S3Store struct {
	client S3API
	logger *logging.Logger
}

// NewS3Store creates an S3-backed blob store.
func NewS3Store(client S3API, logger *logging.Logger) *S3Store {
	if client == nil {
		panic("media: s3 client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Store{client: client, logger: logger}
}

// Put uploads one object. A single attempt, no retries: a failed upload is
// reported to the caller as-is.
func (s *S3Store) Put(ctx context.Context, bucket, path, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("media: s3 put %s/%s: %w", bucket, path, err)
	}
	s.logger.Debug("uploaded image", "bucket", bucket, "path", path, "bytes", len(data))
	return nil
}

// PublicURL derives the public object URL from the bucket base, bucket and
// path. No signing, no expiry: the bucket serves objects publicly.
func PublicURL(base, bucket, path string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + path
}
