// Package cache records per-request render outcomes so repeated misses are
// answered without touching storage or the codec.
package cache

import (
	"context"
	"time"
)

// Values stored under a render key.
const (
	Rendered = 0
	Missing  = 1
)

// Store is a TTL key/value store for render outcomes. ok is false when the
// key is absent or expired.
type Store interface {
	Get(ctx context.Context, key string) (value int, ok bool, err error)
	Set(ctx context.Context, key string, value int, ttl time.Duration) error
}
