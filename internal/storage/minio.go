// internal/storage/minio.go
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps blobs in a MinIO bucket. Object names are dir/name.
type MinioStore struct {
	client *minio.Client
	bucket string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func objectName(dir, name string) string {
	return strings.TrimSuffix(dir, "/") + "/" + name
}

func (s *MinioStore) Save(ctx context.Context, dir, name string, r io.Reader, size int64, contentType string) (string, error) {
	obj := objectName(dir, name)
	_, err := s.client.PutObject(ctx, s.bucket, obj, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}
	return obj, nil
}

func (s *MinioStore) Fetch(ctx context.Context, dir, name, destPath string) error {
	if err := s.client.FGetObject(ctx, s.bucket, objectName(dir, name), destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("failed to download from MinIO: %w", err)
	}
	return nil
}

func (s *MinioStore) Delete(ctx context.Context, dir, name string) (bool, error) {
	obj := objectName(dir, name)
	// RemoveObject succeeds on missing keys, so check first to report absence.
	if _, err := s.client.StatObject(ctx, s.bucket, obj, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, obj, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("failed to delete from MinIO: %w", err)
	}
	return true, nil
}

func (s *MinioStore) Exists(ctx context.Context, dir, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, objectName(dir, name), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

func (s *MinioStore) List(ctx context.Context, dir string) ([]string, error) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		names = append(names, strings.TrimPrefix(obj.Key, prefix))
	}
	return names, nil
}

// LocalPath always reports false: MinIO blobs must be fetched before a local
// consumer such as the scoring processor can read them.
func (s *MinioStore) LocalPath(dir, name string) (string, bool) {
	return "", false
}
