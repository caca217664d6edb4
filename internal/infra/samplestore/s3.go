package samplestore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/cogniwell/internal/domain/detection"
)

const singlePartLimit = 5 * 1024 * 1024

// S3Storage stores detection samples in an S3 compatible bucket (R2, MinIO, S3).
type S3Storage struct {
	client *minio.Client
	bucket string
	logger *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

// NewS3Storage constructs the storage adapter.
func NewS3Storage(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*S3Storage, error) {
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "https://"),
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init sample storage client: %w", err)
	}
	return &S3Storage{client: client, bucket: bucket, logger: logger.With("component", "samplestore.s3")}, nil
}

func (s *S3Storage) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketReady {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil || !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			return err
		}
		s.logger.Info("sample bucket ready", "bucket", s.bucket)
	}
	s.bucketReady = true
	return nil
}

// Put uploads a sample.
func (s *S3Storage) Put(ctx context.Context, key string, data []byte, mimeType string) (detection.StoredObject, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return detection.StoredObject{}, err
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      mimeType,
		DisableMultipart: len(data) < singlePartLimit,
	})
	if err != nil {
		return detection.StoredObject{}, err
	}
	return detection.StoredObject{
		Key:      key,
		Size:     info.Size,
		MimeType: mimeType,
		ETag:     info.ETag,
	}, nil
}

// Delete removes a sample.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

var _ detection.ObjectStorage = (*S3Storage)(nil)

// sanitizeEndpoint strips the scheme and path, which minio.New does not accept.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, found := strings.Cut(raw, "/"); found {
		return host
	}
	return raw
}
