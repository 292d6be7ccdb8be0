package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// recordCache is the bounded, expiring read-through cache mapping entry id
// to materialized domain record. Loads are single-flighted per key: any
// number of concurrent misses for one id share a single engine load. The
// LRU only stores results; locking around the load itself stays in the
// singleflight group so invalidation semantics remain explicit.
//
// Invalidation is synchronous with the writer's completion path, but a read
// racing an in-flight write may still observe the prior cached value. That
// stale window is documented behavior, not a bug to paper over here.
type recordCache[D any] struct {
	entries *expirable.LRU[string, D]
	group   singleflight.Group
	load    func(ctx context.Context, id string) (D, error)
	metrics MetricsRecorder
}

func newRecordCache[D any](size int, ttl time.Duration, metrics MetricsRecorder, load func(ctx context.Context, id string) (D, error)) *recordCache[D] {
	if size <= 0 {
		size = 512
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	c := &recordCache[D]{load: load, metrics: metrics}
	c.entries = expirable.NewLRU[string, D](size, func(string, D) {
		metrics.Count(context.Background(), EventCacheEviction)
	}, ttl)
	return c
}

// Get returns the cached record or loads it, blocking until the load
// completes. Cancellation of ctx abandons the wait without touching the
// cache; the shared load itself continues for any other waiter.
func (c *recordCache[D]) Get(ctx context.Context, id string) (D, error) {
	if d, ok := c.entries.Get(id); ok {
		c.metrics.Count(ctx, EventCacheHit)
		return d, nil
	}
	c.metrics.Count(ctx, EventCacheMiss)

	ch := c.group.DoChan(id, func() (any, error) {
		d, err := c.load(ctx, id)
		if err != nil {
			return nil, err
		}
		c.entries.Add(id, d)
		return d, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero D
			return zero, res.Err
		}
		return res.Val.(D), nil
	case <-ctx.Done():
		var zero D
		return zero, fmt.Errorf("loading entry %q interrupted: %w", id, ctx.Err())
	}
}

// Invalidate drops any cached entry for id. Invalidating an absent id is a
// no-op.
func (c *recordCache[D]) Invalidate(id string) {
	c.entries.Remove(id)
	c.group.Forget(id)
}

// Len reports the number of live cache entries.
func (c *recordCache[D]) Len() int { return c.entries.Len() }
