package s3

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	initTimeout = 5 * time.Second
)

// Store keeps uploaded study documents in object storage
type Store struct {
	client     *minio.Client
	bucketName string
}

// NewClient creates a new MinIO client
func NewClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return client, nil
}

// NewStore wraps a client for a single bucket, creating it if needed
func NewStore(parentCtx context.Context, client *minio.Client, bucketName string) (*Store, error) {
	if err := EnsureBucket(parentCtx, client, bucketName); err != nil {
		return nil, err
	}

	return &Store{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// EnsureBucket makes sure a bucket exists
func EnsureBucket(parentCtx context.Context, client *minio.Client, bucketName string) error {
	ctx, cancel := context.WithTimeout(parentCtx, initTimeout)
	defer cancel()

	exist, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check whether bucket exist: %w", err)
	}

	if !exist {
		err = client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// StorePDF uploads one PDF document under the given object name
func (s *Store) StorePDF(ctx context.Context, objectName string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucketName, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/pdf"},
	)
	if err != nil {
		return fmt.Errorf("failed to store pdf: %w", err)
	}

	return nil
}
