package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ViewCache is a JSON-backed Redis cache for read model projections, bound to
// a concrete view type T. A zero TTL means the keys never expire; projections
// are refreshed on every commit rather than aged out.
type ViewCache[T any] struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewViewCache[T any](client *goredis.Client, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl}
}

// Get returns the cached view for key, or (nil, false) on a miss. A value
// that no longer unmarshals into T is treated as a miss so a stale schema
// falls through to the durable store.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var view T
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, false
	}
	return &view, true
}

// Set stores view under key. A failed cache write is logged and swallowed:
// the durable store stays correct and the next cold read re-warms the entry.
func (c *ViewCache[T]) Set(ctx context.Context, key string, view *T) {
	data, err := json.Marshal(view)
	if err != nil {
		log.Printf("view cache: marshal error for key %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("view cache: write error for key %s: %v", key, err)
	}
}

// Delete drops the cached view for key.
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("view cache: delete error for key %s: %v", key, err)
	}
}
