package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
)

// keyPrefix namespaces in-flight claims so the registry can share a Redis
// database with other keys.
const keyPrefix = "landwho:mint:inflight:"

// DefaultEntryTTL is used when the configured TTL is zero.  Claims must
// expire on their own so a crashed process cannot block a fingerprint
// forever.
const DefaultEntryTTL = 10 * time.Minute

// InFlightRegistry is a Redis-backed mint.InFlightRegistry.  Claims are
// SET NX keys with a TTL, which makes acquisition atomic across any number
// of API server instances.
type InFlightRegistry struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

var _ mint.InFlightRegistry = (*InFlightRegistry)(nil)

// NewInFlightRegistry builds a registry on top of an established client.
func NewInFlightRegistry(client *redis.Client, ttl time.Duration, logger logging.Logger) *InFlightRegistry {
	if ttl <= 0 {
		ttl = DefaultEntryTTL
	}
	return &InFlightRegistry{
		client: client,
		ttl:    ttl,
		logger: logger.Named("inflight"),
	}
}

// TryAcquire claims the fingerprint if no other attempt holds it.  The
// claim expires after the configured TTL even if Release is never called.
func (r *InFlightRegistry) TryAcquire(ctx context.Context, fingerprint string) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+fingerprint, time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return false, apperrors.Wrapf(err, apperrors.ErrCodeCacheError, "acquire in-flight claim %s", fingerprint)
	}
	if !ok {
		r.logger.Debug("fingerprint already in flight", logging.String("fingerprint", fingerprint))
	}
	return ok, nil
}

// Release drops the claim.  Releasing a fingerprint that was never acquired
// or has already expired is not an error.
func (r *InFlightRegistry) Release(ctx context.Context, fingerprint string) error {
	if err := r.client.Del(ctx, keyPrefix+fingerprint).Err(); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeCacheError, "release in-flight claim %s", fingerprint)
	}
	return nil
}
