package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/rarediseaseguide/internal/domain/providers"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestMemoryAdapter_LazyExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	adapter := NewMemoryAdapter().WithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "genes:558", []byte(`[]`), 3600))

	clock.now = clock.now.Add(59 * time.Minute)
	value, err := adapter.Get(ctx, "genes:558")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)

	clock.now = clock.now.Add(time.Minute)
	_, err = adapter.Get(ctx, "genes:558")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)

	// expired entries are not swept
	assert.Equal(t, 1, adapter.Len())
}

func TestMemoryAdapter_MissAndDelete(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()

	_, err := adapter.Get(ctx, "details:558:en")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)

	require.NoError(t, adapter.Set(ctx, "details:558:en", []byte(`{}`), 60))
	exists, err := adapter.Exists(ctx, "details:558:en")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, adapter.Delete(ctx, "details:558:en"))
	exists, err = adapter.Exists(ctx, "details:558:en")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryAdapter_OverwriteRestartsWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	adapter := NewMemoryAdapter().WithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "k", []byte("1"), 10))
	clock.now = clock.now.Add(8 * time.Second)
	require.NoError(t, adapter.Set(ctx, "k", []byte("2"), 10))
	clock.now = clock.now.Add(8 * time.Second)

	value, err := adapter.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), value)
}
