package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/georgemunganga/promoled-directory/internal/config"
)

// ObjectClient is the part of *minio.Client the store needs.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// Store keeps photo images in an S3-compatible bucket. Image references are
// object keys; references that already are http(s) URLs are left alone.
type Store struct {
	client ObjectClient
	bucket string
	expiry time.Duration
}

func NewStore(client ObjectClient, bucket string, expiry time.Duration) *Store {
	return &Store{client: client, bucket: bucket, expiry: expiry}
}

// NewMinioStore connects to the endpoint described by cfg.
func NewMinioStore(cfg config.StorageConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return NewStore(client, cfg.Bucket, cfg.URLExpiry), nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to store object %s: %w", key, err)
	}
	return key, nil
}

func (s *Store) Delete(ctx context.Context, ref string) error {
	if isURL(ref) {
		return nil
	}
	return s.client.RemoveObject(ctx, s.bucket, ref, minio.RemoveObjectOptions{})
}

// URL returns a link the browser can load for ref.
func (s *Store) URL(ctx context.Context, ref string) (string, error) {
	if isURL(ref) {
		return ref, nil
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, ref, s.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", ref, err)
	}
	return u.String(), nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
