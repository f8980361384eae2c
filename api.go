package cachecall

import (
	"context"
)

// Producer computes the value for id. Its errors reach the caller unchanged.
type Producer[V any] func(ctx context.Context, id any) (V, error)

// Supplier adapts a producer that does not need the identifier.
func Supplier[V any](fn func(ctx context.Context) (V, error)) Producer[V] {
	return func(ctx context.Context, _ any) (V, error) { return fn(ctx) }
}

// Options configure an Invoker.
// Store, Lifetime and Producer are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Store    Store[V]
	Lifetime any // int seconds, time.Duration, Lifetime or LifetimeSource; 0 disables caching
	Producer Producer[V]

	Logger       Logger  // if nil, NopLogger is used
	SuccessLevel Level   // level for hit/miss/stored events; "" => info
	KeyFunc      KeyFunc // nil => HashKey if the store is KeyConstrained, else IdentityKey
	Hooks        Hooks   // nil => NopHooks
}

// New validates opts and returns a ready Invoker.
func New[V any](opts Options[V]) (*Invoker[V], error) {
	return newInvoker(opts)
}
