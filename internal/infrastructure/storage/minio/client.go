// Package minio stores pinned parcel metadata in S3-compatible object
// storage.  Objects are content-addressed by SHA-256, so pinning the same
// metadata twice yields the same key and a single stored object.
package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/landwho/landwho/internal/config"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

const connectTimeout = 10 * time.Second

// API is the slice of the MinIO client the content store needs, abstracted
// for testing.
type API interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

// NewClient connects to the object store and makes sure the configured
// bucket exists.
func NewClient(cfg config.ContentConfig, logger logging.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create minio client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := ensureBucket(ctx, client, cfg.Bucket); err != nil {
		return nil, err
	}

	logger.Info("connected to object storage",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL),
	)
	return client, nil
}

func ensureBucket(ctx context.Context, client API, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeServiceUnavailable, "check bucket %s", bucket)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "create bucket %s", bucket)
	}
	return nil
}
