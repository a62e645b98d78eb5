package mint

import (
	"context"
	"sync"
)

// InFlightRegistry tracks fingerprints with a mint attempt currently in
// progress.  TryAcquire is a single atomic check-and-set; Release is
// idempotent.  The registry is advisory: the record store's unique index is
// the durable backstop.
type InFlightRegistry interface {
	// TryAcquire claims the fingerprint.  It returns false when another
	// attempt already holds it.
	TryAcquire(ctx context.Context, fingerprint string) (bool, error)

	// Release frees the fingerprint.  Releasing an unclaimed fingerprint is
	// a no-op.
	Release(ctx context.Context, fingerprint string) error
}

// MemoryRegistry is the default single-process InFlightRegistry: a
// mutex-guarded set.  Multi-replica deployments swap in the redis-backed
// implementation.
type MemoryRegistry struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewMemoryRegistry constructs an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{inFlight: make(map[string]struct{})}
}

// TryAcquire implements InFlightRegistry.  It never returns an error.
func (r *MemoryRegistry) TryAcquire(_ context.Context, fingerprint string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, held := r.inFlight[fingerprint]; held {
		return false, nil
	}
	r.inFlight[fingerprint] = struct{}{}
	return true, nil
}

// Release implements InFlightRegistry.
func (r *MemoryRegistry) Release(_ context.Context, fingerprint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, fingerprint)
	return nil
}

// Len reports the number of fingerprints currently held.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inFlight)
}
