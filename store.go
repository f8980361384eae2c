package cachecall

import (
	"context"
	"time"
)

// Store is the item store the Invoker reads and writes.
// Implementations must be safe for concurrent use if the Invoker is shared.
type Store[V any] interface {
	// Has reports whether a live entry exists for key.
	Has(ctx context.Context, key string) (bool, error)
	// Get always returns an item for key; a miss is an item with IsHit() == false.
	Get(ctx context.Context, key string) (*Item[V], error)
	// Save persists item using its value and expiry.
	Save(ctx context.Context, item *Item[V]) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// StampedeGuard is an optional Store capability that limits concurrent
// recomputation of the same entry. It is a hint: the Invoker behaves
// correctly without it.
type StampedeGuard[V any] interface {
	// SignalPrecompute asks the store to start refreshing the entry window
	// before it expires once it is saved.
	SignalPrecompute(item *Item[V], window time.Duration)
	// Lock is called before the producer runs on a miss. The returned
	// release func is called once the item has been saved (or the call failed).
	Lock(ctx context.Context, item *Item[V]) (release func(), err error)
}

// KeyConstrained is an optional Store capability. Stores that restrict key
// length or character set return true and get HashKey by default.
type KeyConstrained interface {
	RequiresHashedKeys() bool
}

// Item is a single cache entry as seen by the Invoker.
type Item[V any] struct {
	key        string
	value      V
	hit        bool
	ttl        time.Duration
	precompute time.Duration
}

// NewItem builds an item for key. Store implementations use it to report
// hits (hit=true with the stored value) and misses.
func NewItem[V any](key string, value V, hit bool) *Item[V] {
	return &Item[V]{key: key, value: value, hit: hit}
}

// MissItem returns an empty item for key.
func MissItem[V any](key string) *Item[V] {
	return &Item[V]{key: key}
}

func (it *Item[V]) Key() string { return it.key }
func (it *Item[V]) Value() V    { return it.value }
func (it *Item[V]) IsHit() bool { return it.hit }

// TTL is the expiry set with ExpiresAfter. Zero means the store default.
func (it *Item[V]) TTL() time.Duration { return it.ttl }

// Precompute is the window set with SetPrecompute.
func (it *Item[V]) Precompute() time.Duration { return it.precompute }

// Set replaces the value. The hit flag is left untouched.
func (it *Item[V]) Set(v V) *Item[V] {
	it.value = v
	return it
}

// ExpiresAfter sets the item expiry relative to the time it is saved.
func (it *Item[V]) ExpiresAfter(d time.Duration) *Item[V] {
	it.ttl = d
	return it
}

// SetPrecompute sets how long before expiry the entry becomes eligible for
// early recomputation. Zero disables it.
func (it *Item[V]) SetPrecompute(d time.Duration) *Item[V] {
	if d < 0 {
		d = 0
	}
	it.precompute = d
	return it
}
