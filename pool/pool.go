// Package pool implements cachecall.Store on top of a byte provider.
//
// Values are encoded with a codec.Codec and framed in an envelope carrying the
// item's expiry and precompute deadline. Expiry is checked on read, so per-item
// lifetimes hold on providers with a single global TTL (BigCache, sturdyc).
//
// Keys:
//
//	item:<ns>:<key>       - entries
//	lock:item:<ns>:<key>  - recompute leases (providers implementing provider.Locker)
//
// Stampede protection: when the Invoker signals a precompute window, the entry
// is saved with a deadline at expiry-window. The first reader past that
// deadline that wins the provider lease sees a miss and recomputes; everybody
// else keeps reading the current value until it is replaced.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/unkn0wn-root/cachecall"
	c "github.com/unkn0wn-root/cachecall/codec"
	"github.com/unkn0wn-root/cachecall/internal/wire"
	pr "github.com/unkn0wn-root/cachecall/provider"
)

const defaultLockTTL = 30 * time.Second

// Options configure a Pool. Provider and Codec are required.
type Options[V any] struct {
	Provider  pr.Provider
	Codec     c.Codec[V]
	Namespace string // optional; isolates pools sharing one provider

	HashKeys bool             // declare that keys must be hashed (see cachecall.KeyConstrained)
	LockTTL  time.Duration    // lease length for recompute locks; 0 => 30s
	Logger   cachecall.Logger // if nil, NopLogger is used
	Clock    func() time.Time // nil => time.Now
}

// Pool is safe for concurrent use when its provider is.
type Pool[V any] struct {
	provider pr.Provider
	locker   pr.Locker // nil when the provider cannot lock
	codec    c.Codec[V]
	prefix   string
	hashKeys bool
	lockTTL  time.Duration
	log      cachecall.Logger
	now      func() time.Time

	held sync.Map // storage key -> *lease
}

// lease is a provider lock taken for one item recompute.
type lease struct {
	owner   any // the *cachecall.Item being recomputed
	release func(context.Context) error
}

var (
	_ cachecall.Store[struct{}]         = (*Pool[struct{}])(nil)
	_ cachecall.StampedeGuard[struct{}] = (*Pool[struct{}])(nil)
	_ cachecall.KeyConstrained          = (*Pool[struct{}])(nil)
)

func New[V any](opts Options[V]) (*Pool[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("%w: pool provider is required", cachecall.ErrInvalidArgument)
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("%w: pool codec is required", cachecall.ErrInvalidArgument)
	}

	p := &Pool[V]{
		provider: opts.Provider,
		codec:    opts.Codec,
		prefix:   "item:",
		hashKeys: opts.HashKeys,
		lockTTL:  opts.LockTTL,
		log:      opts.Logger,
		now:      opts.Clock,
	}
	if opts.Namespace != "" {
		p.prefix = "item:" + opts.Namespace + ":"
	}
	if l, ok := opts.Provider.(pr.Locker); ok {
		p.locker = l
	}
	if kc, ok := opts.Provider.(pr.KeyConstrained); ok && kc.RequiresHashedKeys() {
		p.hashKeys = true
	}
	if p.lockTTL <= 0 {
		p.lockTTL = defaultLockTTL
	}
	if p.log == nil {
		p.log = cachecall.NopLogger{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// RequiresHashedKeys implements cachecall.KeyConstrained.
func (p *Pool[V]) RequiresHashedKeys() bool { return p.hashKeys }

// CanLock reports whether the provider supports recompute leases. Without
// them Lock and SignalPrecompute are accepted but have no effect.
func (p *Pool[V]) CanLock() bool { return p.locker != nil }

func (p *Pool[V]) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := p.load(ctx, p.storageKey(key))
	return ok, err
}

func (p *Pool[V]) Get(ctx context.Context, key string) (*cachecall.Item[V], error) {
	k := p.storageKey(key)
	ent, ok, err := p.load(ctx, k)
	if err != nil {
		return nil, err
	}
	if !ok {
		return cachecall.MissItem[V](key), nil
	}

	v, err := p.codec.Decode(ent.Payload)
	if err != nil {
		p.selfHeal(ctx, k, "value_decode")
		return cachecall.MissItem[V](key), nil
	}

	if p.locker != nil && ent.Precomputing(p.now()) {
		miss := cachecall.MissItem[V](key)
		if p.acquire(ctx, k, miss) {
			p.log.Debug("precompute window reached; recomputing early", cachecall.Fields{"key": key})
			return miss, nil
		}
	}
	return cachecall.NewItem(key, v, true), nil
}

func (p *Pool[V]) Save(ctx context.Context, item *cachecall.Item[V]) error {
	k := p.storageKey(item.Key())
	defer p.releaseHeld(ctx, k, item)

	payload, err := p.codec.Encode(item.Value())
	if err != nil {
		return err
	}

	var ent wire.Entry
	ent.Payload = payload
	ttl := item.TTL()
	if ttl > 0 {
		now := p.now()
		ent.ExpiresAt = now.Add(ttl).UnixNano()
		if w := item.Precompute(); w > 0 && w < ttl {
			ent.PrecomputeAt = now.Add(ttl - w).UnixNano()
		}
	}

	b := wire.Encode(ent)
	ok, err := p.provider.Set(ctx, k, b, int64(len(b)), ttl)
	if err != nil {
		return err
	}
	if !ok {
		p.log.Debug("save rejected by provider (pressure)", cachecall.Fields{"key": item.Key()})
	}
	return nil
}

func (p *Pool[V]) Delete(ctx context.Context, key string) error {
	return p.provider.Del(ctx, p.storageKey(key))
}

// SignalPrecompute implements cachecall.StampedeGuard.
func (p *Pool[V]) SignalPrecompute(item *cachecall.Item[V], window time.Duration) {
	if p.locker == nil {
		return
	}
	item.SetPrecompute(window)
}

// Lock implements cachecall.StampedeGuard. It never blocks: when the lease is
// held elsewhere (or the provider cannot lock) the caller proceeds without it.
func (p *Pool[V]) Lock(ctx context.Context, item *cachecall.Item[V]) (func(), error) {
	nop := func() {}
	if p.locker == nil {
		return nop, nil
	}
	k := p.storageKey(item.Key())
	if v, ok := p.held.Load(k); ok {
		if v.(*lease).owner != any(item) {
			return nop, nil // another caller in this process is recomputing
		}
	} else {
		release, acquired, err := p.locker.Lock(ctx, lockKey(k), p.lockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			p.log.Debug("recompute lease held elsewhere", cachecall.Fields{"key": item.Key()})
			return nop, nil
		}
		if _, loaded := p.held.LoadOrStore(k, &lease{owner: item, release: release}); loaded {
			_ = release(ctx)
			return nop, nil
		}
	}
	// Save releases the lease; this covers calls that fail before saving.
	return func() { p.releaseHeld(context.WithoutCancel(ctx), k, item) }, nil
}

// Close releases held leases and closes the provider.
func (p *Pool[V]) Close(ctx context.Context) error {
	p.held.Range(func(k, v any) bool {
		if p.held.CompareAndDelete(k, v) {
			_ = v.(*lease).release(ctx)
		}
		return true
	})
	return p.provider.Close(ctx)
}

// load reads and validates the envelope at storage key k. Corrupt and
// expired entries are deleted and reported as missing.
func (p *Pool[V]) load(ctx context.Context, k string) (wire.Entry, bool, error) {
	raw, ok, err := p.provider.Get(ctx, k)
	if err != nil || !ok {
		return wire.Entry{}, false, err
	}
	ent, err := wire.Decode(raw)
	if err != nil {
		p.selfHeal(ctx, k, "corrupt")
		return wire.Entry{}, false, nil
	}
	if ent.Expired(p.now()) {
		p.selfHeal(ctx, k, "expired")
		return wire.Entry{}, false, nil
	}
	return ent, true, nil
}

// acquire takes the recompute lease for k on behalf of owner. It fails if
// the lease is held, locally or by another process.
func (p *Pool[V]) acquire(ctx context.Context, k string, owner any) bool {
	if _, ok := p.held.Load(k); ok {
		return false
	}
	release, acquired, err := p.locker.Lock(ctx, lockKey(k), p.lockTTL)
	if err != nil {
		p.log.Warn("recompute lease failed", cachecall.Fields{"key": k, "err": err})
		return false
	}
	if !acquired {
		return false
	}
	if _, loaded := p.held.LoadOrStore(k, &lease{owner: owner, release: release}); loaded {
		// lost a local race for the same key; give the lease back
		_ = release(ctx)
		return false
	}
	return true
}

// releaseHeld gives back the lease for k if owner holds it.
func (p *Pool[V]) releaseHeld(ctx context.Context, k string, owner any) {
	v, ok := p.held.Load(k)
	if !ok || v.(*lease).owner != owner {
		return
	}
	if !p.held.CompareAndDelete(k, v) {
		return
	}
	if err := v.(*lease).release(ctx); err != nil {
		p.log.Warn("recompute lease release failed", cachecall.Fields{"key": k, "err": err})
	}
}

func (p *Pool[V]) selfHeal(ctx context.Context, k, reason string) {
	_ = p.provider.Del(ctx, k)
	p.log.Debug("self-healed entry", cachecall.Fields{"key": k, "reason": reason})
}

func (p *Pool[V]) storageKey(key string) string { return p.prefix + key }

func lockKey(storageKey string) string { return "lock:" + storageKey }
