package storage

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putter is the part of the S3 client the store needs.
type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store mirrors artifacts into an S3 bucket under an optional prefix.
type S3Store struct {
	api    putter
	bucket string
	prefix string
}

func NewS3(ctx context.Context, region, bucket, prefix string) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Store{api: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

// Upload implementasi ArtifactStore
func (s *S3Store) Upload(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fullKey := key
	if s.prefix != "" {
		fullKey = path.Join(s.prefix, key)
	}
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fullKey),
		Body:        f,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, fullKey, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, fullKey), nil
}
