package minio

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/minio/minio-go/v7"

	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

// keyPrefix groups pinned metadata under a single object namespace.
const keyPrefix = "sha256/"

// ContentStore pins parcel metadata and satisfies mint.ContentStore.
type ContentStore struct {
	api    API
	bucket string
	logger logging.Logger
}

var _ mint.ContentStore = (*ContentStore)(nil)

// NewContentStore wraps an established client.
func NewContentStore(api API, bucket string, logger logging.Logger) *ContentStore {
	return &ContentStore{
		api:    api,
		bucket: bucket,
		logger: logger.Named("content"),
	}
}

// Pin stores the metadata under its SHA-256 address and returns the key.
// Pinning bytes that are already stored is a no-op returning the same key.
func (s *ContentStore) Pin(ctx context.Context, metadata []byte) (string, error) {
	if len(metadata) == 0 {
		return "", apperrors.New(apperrors.ErrCodeValidation, "metadata must not be empty")
	}

	sum := sha256.Sum256(metadata)
	key := keyPrefix + hex.EncodeToString(sum[:])

	if _, err := s.api.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err == nil {
		s.logger.Debug("metadata already pinned", logging.String("key", key))
		return key, nil
	} else if !isNotFound(err) {
		return "", apperrors.Wrapf(err, apperrors.ErrCodeServiceUnavailable, "stat object %s", key)
	}

	_, err := s.api.PutObject(ctx, s.bucket, key, bytes.NewReader(metadata), int64(len(metadata)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrCodeServiceUnavailable, "pin object %s", key)
	}

	s.logger.Debug("metadata pinned",
		logging.String("key", key),
		logging.Int("bytes", len(metadata)),
	)
	return key, nil
}

// Unpin removes a pinned object.  Removing a key that does not exist is not
// an error.
func (s *ContentStore) Unpin(ctx context.Context, key string) error {
	if err := s.api.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil && !isNotFound(err) {
		return apperrors.Wrapf(err, apperrors.ErrCodeServiceUnavailable, "remove object %s", key)
	}
	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
