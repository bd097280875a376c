package objectstore

import (
	"context"
	"fmt"
	"io"
	"log"

	"dga_gateway/internal/ports"

	"github.com/minio/minio-go/v7"
)

type S3Client interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type S3Uploader struct {
	Client S3Client
	Bucket string
}

func NewS3Uploader(cli S3Client, bucket string) *S3Uploader {
	return &S3Uploader{Client: cli, Bucket: bucket}
}

func (s *S3Uploader) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (ports.Meta, error) {
	log.Printf("[UPLOADER][S3][START] bucket=%q key=%q size=%d", s.Bucket, key, size)
	info, err := s.Client.PutObject(ctx, s.Bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		log.Printf("[UPLOADER][S3][ERR] put: %v", err)
		return ports.Meta{}, fmt.Errorf("s3 put: %w", err)
	}
	log.Printf("[UPLOADER][S3][OK] etag=%q size=%d", info.ETag, info.Size)
	return ports.Meta{
		Source:      "s3",
		ContentType: contentType,
		Size:        info.Size,
		Bucket:      s.Bucket,
		Key:         key,
	}, nil
}
