// Package provider defines the byte storage abstraction under pool.Pool.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). If a store performs internal transforms
// (e.g., compression), they MUST be fully reversed so that the bytes returned by
// Get are identical to the bytes provided to Set.
//
// Important: the keyspaces "item:<ns>:" and "lock:item:<ns>:" are owned by the
// pool. External code MUST NOT write values under these prefixes. Foreign writes
// fail envelope validation and are deleted on read.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost if unsupported.
	// ttl <= 0 means no expiry. Returns ok=false when the store rejected the
	// write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Locker is an optional capability: an exclusive, expiring lease on a key.
type Locker interface {
	// Lock tries once to take the lease; it never waits. acquired=false with
	// a nil error means someone else holds it. release must be called by
	// the holder and is safe to call after the lease expired.
	Lock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// KeyConstrained is an optional capability for stores that restrict key
// length or character set.
type KeyConstrained interface {
	RequiresHashedKeys() bool
}
