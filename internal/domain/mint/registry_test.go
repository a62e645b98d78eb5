package mint

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistryAcquireRelease(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	ok, err := r.TryAcquire(ctx, "fp-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second acquire of the same fingerprint fails.
	ok, err = r.TryAcquire(ctx, "fp-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Different fingerprints are independent.
	ok, _ = r.TryAcquire(ctx, "fp-2")
	assert.True(t, ok)
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.Release(ctx, "fp-1"))
	ok, _ = r.TryAcquire(ctx, "fp-1")
	assert.True(t, ok)
}

func TestMemoryRegistryReleaseIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	require.NoError(t, r.Release(ctx, "never-acquired"))

	_, _ = r.TryAcquire(ctx, "fp")
	require.NoError(t, r.Release(ctx, "fp"))
	require.NoError(t, r.Release(ctx, "fp"))
	assert.Zero(t, r.Len())
}

func TestMemoryRegistryConcurrentAcquireGrantsOne(t *testing.T) {
	const goroutines = 64
	ctx := context.Background()
	r := NewMemoryRegistry()

	var wins int64
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := r.TryAcquire(ctx, "contended")
			assert.NoError(t, err)
			if ok {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), wins)
	assert.Equal(t, 1, r.Len())
}
