package cache

import (
	"context"
	"time"
)

// StateCache is best-effort TTL'd memory, not a source of truth. Losing
// an entry early only causes redundant notifications, broadcasts or
// recomputation, never incorrect trip or event data.
type StateCache interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
	// PutIfAbsent atomically stores the value unless the key already
	// exists, returning true when the store happened. Used by the
	// debounce and cooldown gates so a key fires at most once per TTL
	// horizon even under concurrent same-key access.
	PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}
