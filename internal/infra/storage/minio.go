package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStore struct {
	client     *minio.Client
	bucketName string
	region     string
}

// NewMinio buat koneksi MinIO dan pastikan bucket ada
func NewMinio(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*MinioStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &MinioStore{client: cli, bucketName: bucket, region: region}, nil
}

// Upload implementasi ArtifactStore
func (s *MinioStore) Upload(ctx context.Context, localPath, key string) (string, error) {
	_, err := s.client.FPutObject(ctx, s.bucketName, key, localPath, minio.PutObjectOptions{
		ContentType: contentType(localPath),
	})
	if err != nil {
		return "", err
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucketName, key)
	return url, nil
}

func contentType(path string) string {
	switch filepath.Ext(path) {
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
