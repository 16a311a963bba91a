package distribution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Source fetches the currently-published Pattern file to a local path
// under destDir and reports an opaque version token (an ETag, ideally)
// the caller can compare against the version it already has open before
// bothering to Open the new file.
type Source interface {
	Fetch(ctx context.Context, destDir string) (path string, version string, err error)
}

// S3Source fetches a Pattern file from an S3-compatible bucket using the
// AWS SDK's managed downloader, which splits the download into
// parallel ranged GETs.
type S3Source struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Source builds a Source that always fetches the same bucket/key
// pair; callers publish updates by overwriting that object in place.
func NewS3Source(client *s3.Client, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Fetch(ctx context.Context, destDir string) (string, string, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return "", "", fmt.Errorf("distribution: head %s/%s: %w", s.bucket, s.key, err)
	}
	version := ""
	if head.ETag != nil {
		version = *head.ETag
	}

	dest := filepath.Join(destDir, "pattern-"+uuid.NewString()+".dat")
	f, err := os.Create(dest)
	if err != nil {
		return "", "", fmt.Errorf("distribution: create %s: %w", dest, err)
	}
	defer f.Close()

	downloader := manager.NewDownloader(s.client)
	if _, err := downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	}); err != nil {
		os.Remove(dest)
		return "", "", fmt.Errorf("distribution: download %s/%s: %w", s.bucket, s.key, err)
	}

	return dest, version, nil
}

// MinioSource is the S3Source equivalent for self-hosted, non-AWS
// S3-compatible endpoints, using the minio-go client.
type MinioSource struct {
	client *minio.Client
	bucket string
	object string
}

// NewMinioSource builds a Source against a MinIO or other
// S3-compatible endpoint.
func NewMinioSource(client *minio.Client, bucket, object string) *MinioSource {
	return &MinioSource{client: client, bucket: bucket, object: object}
}

func (s *MinioSource) Fetch(ctx context.Context, destDir string) (string, string, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.object, minio.StatObjectOptions{})
	if err != nil {
		return "", "", fmt.Errorf("distribution: stat %s/%s: %w", s.bucket, s.object, err)
	}

	dest := filepath.Join(destDir, "pattern-"+uuid.NewString()+".dat")
	if err := s.client.FGetObject(ctx, s.bucket, s.object, dest, minio.GetObjectOptions{}); err != nil {
		return "", "", fmt.Errorf("distribution: fget %s/%s: %w", s.bucket, s.object, err)
	}

	return dest, info.ETag, nil
}
