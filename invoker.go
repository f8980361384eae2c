package cachecall

import (
	"context"
	"fmt"
)

// Invoker runs producers behind a cache-aside decision. It keeps no state
// between calls beyond its configuration and is safe for concurrent use when
// the Store, Logger and Hooks are. The setters are meant for setup and must
// not race with Invoke.
type Invoker[V any] struct {
	store        Store[V]
	lifetime     Lifetime
	producer     Producer[V]
	keyFunc      KeyFunc
	log          Logger
	successLevel Level
	hooks        Hooks
}

func newInvoker[V any](opts Options[V]) (*Invoker[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidArgument)
	}
	if opts.Producer == nil {
		return nil, fmt.Errorf("%w: producer is required", ErrInvalidArgument)
	}
	lt, err := NewLifetime(opts.Lifetime)
	if err != nil {
		return nil, err
	}

	iv := &Invoker[V]{
		store:    opts.Store,
		lifetime: lt,
		producer: opts.Producer,
		keyFunc:  opts.KeyFunc,
	}

	// defaults
	iv.log = coalesce[Logger](opts.Logger, NopLogger{})
	iv.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	iv.successLevel = LevelInfo
	if opts.SuccessLevel != "" {
		if iv.successLevel, err = ParseLevel(string(opts.SuccessLevel)); err != nil {
			return nil, err
		}
	}
	if iv.keyFunc == nil {
		iv.keyFunc = IdentityKey
		if kc, ok := opts.Store.(KeyConstrained); ok && kc.RequiresHashedKeys() {
			iv.keyFunc = HashKey
		}
	}
	return iv, nil
}

// Lifetime returns the default lifetime.
func (iv *Invoker[V]) Lifetime() Lifetime { return iv.lifetime }

// SetKeyFunc replaces the key strategy. nil restores IdentityKey.
func (iv *Invoker[V]) SetKeyFunc(fn KeyFunc) *Invoker[V] {
	if fn == nil {
		fn = IdentityKey
	}
	iv.keyFunc = fn
	return iv
}

// SetLogger replaces the logger. nil disables logging.
func (iv *Invoker[V]) SetLogger(l Logger) *Invoker[V] {
	iv.log = coalesce[Logger](l, NopLogger{})
	return iv
}

// SetSuccessLevel sets the level used for hit, miss and stored events.
func (iv *Invoker[V]) SetSuccessLevel(lvl Level) error {
	parsed, err := ParseLevel(string(lvl))
	if err != nil {
		return err
	}
	iv.successLevel = parsed
	return nil
}

// Invoke returns the value for id using the default producer and lifetime.
func (iv *Invoker[V]) Invoke(ctx context.Context, id any) (V, error) {
	return iv.InvokeWith(ctx, id, nil, nil)
}

// InvokeWith is Invoke with optional overrides. A nil producer or lifetime
// falls back to the Invoker defaults. A lifetime of 0 is an override, not an
// absence: it bypasses the store for this call.
//
// The lifetime is resolved once before anything else runs, so a producer that
// mutates a shared LifetimeSource cannot change this call's caching decision.
func (iv *Invoker[V]) InvokeWith(ctx context.Context, id any, producer Producer[V], lifetime any) (V, error) {
	var zero V
	lt, err := ResolveLifetime(lifetime, iv.lifetime)
	if err != nil {
		return zero, err
	}

	variant := "custom"
	if producer == nil {
		producer = iv.producer
		variant = "default"
	}

	iv.log.Info("request item", Fields{"id": id, "producer": variant})
	defer iv.log.Debug("done", nil)

	key, err := iv.keyFunc(id)
	if err != nil {
		return zero, err
	}

	if !lt.Enabled() {
		return iv.bypass(ctx, key, id, producer)
	}
	iv.log.Debug("caching enabled", Fields{"key": key, "lifetime": lt.Seconds()})

	item, err := iv.store.Get(ctx, key)
	if err != nil {
		iv.log.Warn("store get failed", Fields{"key": key, "err": err})
		return zero, err
	}
	if item.IsHit() {
		logAt(iv.log, iv.successLevel, "found in cache", Fields{"key": key})
		iv.hooks.Hit(key)
		return item.Value(), nil
	}

	logAt(iv.log, iv.successLevel, "not found; content to be created", Fields{"key": key})
	iv.hooks.Miss(key)

	if guard, ok := iv.store.(StampedeGuard[V]); ok {
		guard.SignalPrecompute(item, lt.Duration()/4)
		release, err := guard.Lock(ctx, item)
		if err != nil {
			iv.log.Warn("store lock failed", Fields{"key": key, "err": err})
			return zero, err
		}
		if release != nil {
			defer release()
		}
	}

	v, err := producer(ctx, id)
	if err != nil {
		iv.log.Debug("producer failed", Fields{"key": key, "err": err})
		return zero, err
	}

	item.Set(v).ExpiresAfter(lt.Duration())
	if err := iv.store.Save(ctx, item); err != nil {
		iv.log.Warn("store save failed", Fields{"key": key, "err": err})
		return zero, err
	}
	logAt(iv.log, iv.successLevel, "stored in cache", Fields{"key": key, "lifetime": lt.Seconds()})
	iv.hooks.Stored(key, lt.Duration())
	return v, nil
}

// bypass runs the producer without reading or writing the store. An existing
// entry is deleted first so that a later call that caches again cannot serve
// a value older than the one returned here.
func (iv *Invoker[V]) bypass(ctx context.Context, key string, id any, producer Producer[V]) (V, error) {
	var zero V
	iv.log.Debug("caching disabled", Fields{"key": key})

	exists, err := iv.store.Has(ctx, key)
	if err != nil {
		iv.log.Warn("store has failed", Fields{"key": key, "err": err})
		return zero, err
	}
	if exists {
		iv.log.Debug("delete cached item", Fields{"key": key})
		if err := iv.store.Delete(ctx, key); err != nil {
			iv.log.Warn("store delete failed", Fields{"key": key, "err": err})
			return zero, err
		}
	} else {
		iv.log.Debug("no cached item to delete", Fields{"key": key})
	}
	iv.hooks.Bypassed(key, exists)

	logAt(iv.log, iv.successLevel, "create content", Fields{"key": key})
	v, err := producer(ctx, id)
	if err != nil {
		iv.log.Debug("producer failed", Fields{"key": key, "err": err})
		return zero, err
	}
	return v, nil
}
