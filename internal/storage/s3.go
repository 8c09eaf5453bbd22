package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/territory-ranker/internal/config"
)

type S3Source struct {
	client *s3.Client
	bucket string
}

// NewS3Source builds an S3 client from static credentials. Without keys the
// client signs nothing, which suits public buckets. A custom endpoint
// switches to path-style addressing for S3-compatible stores.
func NewS3Source(cfg *config.StorageEnvConfig) (*S3Source, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	opts := s3.Options{
		Region: cfg.S3Region,
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		))
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}

	return &S3Source{
		client: s3.New(opts),
		bucket: cfg.S3Bucket,
	}, nil
}

func (s *S3Source) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var respErr *awshttp.ResponseError
		if errors.As(err, &noKey) || (errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrNotFound)
		}
		log.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("s3 get-object failed")
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object %s: %w", key, err)
	}
	log.Debug().Str("bucket", s.bucket).Str("key", key).Int("bytes", len(data)).Msg("fetched s3 object")
	return data, nil
}
