package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simal-lang/simal/internal/compiler/lowering"
)

func TestLoweringCacheLocalTierRoundTrip(t *testing.T) {
	lc, err := New(8, "")
	require.NoError(t, err)

	ctx := context.Background()
	key := lc.Key("system { type: microservices }")

	_, ok := lc.Get(ctx, key)
	assert.False(t, ok)

	entry := &Entry{Full: map[string]interface{}{"a": 1}, Simple: lowering.NewOrderedMap().Set("a", 1)}
	require.NoError(t, lc.Set(ctx, key, entry))

	got, ok := lc.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, 1, got.Full["a"])
}

func TestLoweringCacheInvalidate(t *testing.T) {
	lc, err := New(8, "")
	require.NoError(t, err)

	ctx := context.Background()
	key := lc.Key("system {}")
	require.NoError(t, lc.Set(ctx, key, &Entry{Full: map[string]interface{}{}}))

	lc.Invalidate(ctx, key)
	_, ok := lc.Get(ctx, key)
	assert.False(t, ok)
}

func TestLoweringCacheRedisTierServesAcrossInstances(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	producer, err := New(1, mr.Addr())
	require.NoError(t, err)
	consumer, err := New(1, mr.Addr())
	require.NoError(t, err)

	ctx := context.Background()
	key := producer.Key("system { type: microservices }")
	require.NoError(t, producer.Set(ctx, key, &Entry{Full: map[string]interface{}{"type": "microservices"}}))

	got, ok := consumer.Get(ctx, key)
	require.True(t, ok, "a second cache instance should see entries via the shared redis tier")
	assert.Equal(t, "microservices", got.Full["type"])
}

func TestLoweringCacheRedisTierPreservesSimpleKeyOrder(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	producer, err := New(1, mr.Addr())
	require.NoError(t, err)
	consumer, err := New(1, mr.Addr())
	require.NoError(t, err)

	ctx := context.Background()
	key := producer.Key("system { b: 1, a: 2 }")
	simple := lowering.NewOrderedMap().Set("b", "1").Set("a", "2")
	require.NoError(t, producer.Set(ctx, key, &Entry{Simple: simple}))

	got, ok := consumer.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, got.Simple.Keys())
}

func TestKeyIsDeterministic(t *testing.T) {
	lc, err := New(8, "")
	require.NoError(t, err)
	assert.Equal(t, lc.Key("same source"), lc.Key("same source"))
	assert.NotEqual(t, lc.Key("a"), lc.Key("b"))
}
