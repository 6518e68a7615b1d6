// Package cache provides a two-tier cache for compiled lowering output,
// keyed by the SHA-256 of the source text that produced it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"

	"github.com/simal-lang/simal/internal/compiler/lowering"
)

// Entry is a cached pair of lowerings for one source file.
type Entry struct {
	Full      map[string]interface{}
	Simple    *lowering.OrderedMap
	CachedAt  time.Time
	SourceLen int
}

// LoweringCache is an in-memory LRU tier with an optional Redis tier
// behind it, generalizing the teacher's single-map ASTCache into a
// bounded, sharable cache for lowering output rather than raw ASTs.
type LoweringCache struct {
	local  *lru.Cache
	redis  *redis.Client
	hasher *FileHasher
	ttl    time.Duration
}

// New builds a LoweringCache with an LRU tier of the given capacity.
// redisAddr may be empty to run with only the local tier.
func New(lruSize int, redisAddr string) (*LoweringCache, error) {
	if lruSize <= 0 {
		lruSize = 256
	}
	local, err := lru.New(lruSize)
	if err != nil {
		return nil, fmt.Errorf("lowering cache: %w", err)
	}

	lc := &LoweringCache{
		local:  local,
		hasher: NewFileHasher(),
		ttl:    24 * time.Hour,
	}
	if redisAddr != "" {
		lc.redis = redis.NewClient(&redis.Options{Addr: redisAddr})
	}
	return lc, nil
}

// Key returns the SHA-256 cache key for a source string.
func (lc *LoweringCache) Key(source string) string {
	return lc.hasher.HashString(source)
}

// Get looks up a cached entry by key, checking the local LRU first and
// falling back to the shared Redis tier (promoting a hit back into the
// LRU) so a fleet of `simal serve` instances behind a load balancer
// reuse each other's lowerings.
func (lc *LoweringCache) Get(ctx context.Context, key string) (*Entry, bool) {
	if v, ok := lc.local.Get(key); ok {
		return v.(*Entry), true
	}
	if lc.redis == nil {
		return nil, false
	}

	raw, err := lc.redis.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		return nil, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	lc.local.Add(key, &e)
	return &e, true
}

// Set stores an entry under key in the local tier, and in Redis when
// configured.
func (lc *LoweringCache) Set(ctx context.Context, key string, e *Entry) error {
	e.CachedAt = time.Now()
	lc.local.Add(key, e)
	if lc.redis == nil {
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("lowering cache: marshal entry: %w", err)
	}
	return lc.redis.Set(ctx, redisKey(key), data, lc.ttl).Err()
}

// Invalidate removes key from both tiers.
func (lc *LoweringCache) Invalidate(ctx context.Context, key string) {
	lc.local.Remove(key)
	if lc.redis != nil {
		lc.redis.Del(ctx, redisKey(key))
	}
}

// Len returns the number of entries held in the local tier.
func (lc *LoweringCache) Len() int {
	return lc.local.Len()
}

func redisKey(key string) string {
	return "simal:lowering:" + key
}
