package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/store"
)

type countingStore struct {
	*store.MemoryStore
	calls int
}

func (c *countingStore) GetBuilders(ctx context.Context) ([]*models.Builder, error) {
	c.calls++
	return c.MemoryStore.GetBuilders(ctx)
}

func setup(t *testing.T) (*BuilderCache, *countingStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &countingStore{MemoryStore: store.NewMemoryStore([]*models.Builder{
		{ID: "b1", CompanyName: "Spree Messebau", Verified: true, Rating: 4.5},
	}, nil)}

	return New(inner, rdb, time.Minute, zap.NewNop()), inner, mr
}

func TestGetBuildersReadThrough(t *testing.T) {
	c, inner, mr := setup(t)
	ctx := context.Background()

	first, err := c.GetBuilders(ctx)
	require.NoError(t, err)
	second, err := c.GetBuilders(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(BuildersKey))
	assert.Equal(t, time.Minute, mr.TTL(BuildersKey))

	mr.FastForward(2 * time.Minute)
	_, err = c.GetBuilders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestUpsertInvalidates(t *testing.T) {
	c, _, mr := setup(t)
	ctx := context.Background()

	_, err := c.GetBuilders(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(BuildersKey))

	res, err := c.UpsertBuilders(ctx, []*models.Builder{{ID: "b2", CompanyName: "Rhein Stand"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.UpsertedCount)
	assert.False(t, mr.Exists(BuildersKey))

	builders, err := c.GetBuilders(ctx)
	require.NoError(t, err)
	assert.Len(t, builders, 2)
}

func TestCorruptEntryIsReplaced(t *testing.T) {
	c, inner, mr := setup(t)
	require.NoError(t, mr.Set(BuildersKey, "{not json"))

	builders, err := c.GetBuilders(context.Background())
	require.NoError(t, err)
	assert.Len(t, builders, 1)
	assert.Equal(t, 1, inner.calls)
}

func TestRedisOutageFallsBack(t *testing.T) {
	c, inner, mr := setup(t)
	mr.Close()

	builders, err := c.GetBuilders(context.Background())
	require.NoError(t, err)
	assert.Len(t, builders, 1)
	assert.Equal(t, 1, inner.calls)
}

func TestReadOnlyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	c := New(readOnly{}, rdb, time.Minute, zap.NewNop())
	_, err := c.UpsertBuilders(context.Background(), nil)
	assert.ErrorIs(t, err, ErrReadOnly)
}

type readOnly struct{ store.Store }
