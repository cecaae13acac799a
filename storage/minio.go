package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO stores objects in an S3 compatible bucket and returns presigned
// download URLs.
type MinIO struct {
	client    *minio.Client
	bucket    string
	urlExpiry time.Duration
}

func NewMinIO(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIO, error) {
	if endpoint == "" || bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket %q: %w", bucket, err)
		}
	}
	return &MinIO{client: client, bucket: bucket, urlExpiry: 7 * 24 * time.Hour}, nil
}

func (m *MinIO) EnsureFolder(_ context.Context, folder string) (string, error) {
	return cleanFolder(folder)
}

func (m *MinIO) Save(ctx context.Context, folder, name, contentType string, data []byte) (File, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return File{}, err
	}
	if name, err = cleanName(name); err != nil {
		return File{}, err
	}
	objectName := path.Join(folder, name)

	_, err = m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return File{}, fmt.Errorf("minio put %s: %w", objectName, err)
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, m.urlExpiry, nil)
	if err != nil {
		return File{}, fmt.Errorf("minio presign %s: %w", objectName, err)
	}
	return File{URL: u.String(), Name: name}, nil
}
