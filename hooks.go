package cachecall

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The Invoker calls them on hot paths.
type Hooks interface {
	// A stored value was returned without calling the producer.
	Hit(key string)

	// No live entry; the producer is about to run.
	Miss(key string)

	// The produced value was saved with the given ttl.
	Stored(key string, ttl time.Duration)

	// Caching was disabled for the call. evicted reports whether an existing
	// entry was deleted.
	Bypassed(key string, evicted bool)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                   {}
func (NopHooks) Miss(string)                  {}
func (NopHooks) Stored(string, time.Duration) {}
func (NopHooks) Bypassed(string, bool)        {}
