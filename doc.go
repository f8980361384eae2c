// Package cachecall wraps a value-producing function with cache-aside semantics.
// Given an identifier, the Invoker returns a stored value while it is valid,
// otherwise it calls the producer, stores the result for the configured
// Lifetime and returns it.
//
// Components:
//   - Lifetime: whole seconds until expiry. Zero or negative disables caching
//     for a call (and evicts any entry already stored under the key).
//   - KeyFunc: maps an identifier to a backend key. IdentityKey by default,
//     HashKey (MD5 over the canonical form) for stores with key restrictions.
//   - Store[V]: item store consumed by the Invoker (see package pool for the
//     provider-backed implementation).
//   - StampedeGuard[V]: optional store capability. When present the Invoker
//     signals a precompute window of lifetime/4 and takes the store lock
//     before recomputing a missing value.
//
// Usage:
//
//	inv, _ := cachecall.New(cachecall.Options[User]{
//	    Store:    store,
//	    Lifetime: 300,
//	    Producer: func(ctx context.Context, id any) (User, error) { return db.User(ctx, id.(string)) },
//	})
//	u, err := inv.Invoke(ctx, "u:42")
//	u, err = inv.InvokeWith(ctx, "u:42", nil, 0) // bypass + evict
package cachecall
