package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

const (
	uploadAttempts = 3
	retryBaseDelay = 200 * time.Millisecond
)

// S3ImageStore stores photo bytes in an S3 bucket
type S3ImageStore struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3ImageStore creates an S3-backed image store. An empty endpoint uses
// the default AWS endpoint; otherwise an S3-compatible service is assumed.
func NewS3ImageStore(region, bucket, accessKey, secretKey, endpoint string) (*S3ImageStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3ImageStore{
		client: client,
		bucket: bucket,
		region: region,
	}, nil
}

// Upload stores the object and returns its public URL. Transient failures
// are retried; the call is idempotent for a fixed key.
func (s *S3ImageStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	// PutObject needs a rewindable body for retries
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read photo body: %w", err)
	}

	err = withRetry(ctx, func() error {
		_, putErr := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		return putErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// Delete removes the object. A missing object maps to ErrObjectNotFound so
// callers can treat it as already deleted.
func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	err := withRetry(ctx, func() error {
		_, delErr := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return delErr
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// withRetry runs fn up to uploadAttempts times with a growing delay
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= uploadAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == uploadAttempts {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("Image store call failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBaseDelay * time.Duration(attempt)):
		}
	}
	return err
}
