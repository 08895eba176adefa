package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"classroom-subscription/internal/domain/ports/adapter"
)

// Ensure interface compliance
var _ adapter.ObjectStore = (*S3ObjectStore)(nil)

// S3Config holds the object-store connection settings. EndpointURL is set
// for S3-compatible providers; empty means AWS proper.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	EndpointURL     string
}

// S3ObjectStore deletes class files and submissions from the bucket they
// were uploaded to. Object ids map 1:1 to bucket keys.
type S3ObjectStore struct {
	client *s3.Client
	bucket string
	logger *zerolog.Logger
}

func NewS3ObjectStore(ctx context.Context, cfg S3Config, logger *zerolog.Logger) (*S3ObjectStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	l := logger.With().Str("component", "s3-store").Logger()
	return &S3ObjectStore{client: client, bucket: cfg.Bucket, logger: &l}, nil
}

func (s *S3ObjectStore) DeleteObject(ctx context.Context, objectID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", objectID, err)
	}
	s.logger.Debug().Str("key", objectID).Msg("object deleted")
	return nil
}
