// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/cachecall"
//	asynchook "github.com/unkn0wn-root/cachecall/hooks/async"
//	"github.com/unkn0wn-root/cachecall/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery: 100, // sample logs: ~every 100th hit
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	iv, _ := cachecall.New[User](cachecall.Options[User]{
//	    Store:    store,
//	    Lifetime: 300,
//	    Producer: loadUser,
//	    Hooks:    hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/cachecall"
)

// Hooks forwards events to inner on a worker pool. Events are dropped when
// the queue is full so the invoking goroutine never blocks.
type Hooks struct {
	inner   cachecall.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ cachecall.Hooks = (*Hooks)(nil)

func New(inner cachecall.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events must not be sent
// after Close.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped returns the number of events discarded because the queue was full.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(k string)  { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string) { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) Stored(k string, ttl time.Duration) {
	h.try(func() { h.inner.Stored(k, ttl) })
}
func (h *Hooks) Bypassed(k string, evicted bool) {
	h.try(func() { h.inner.Bypassed(k, evicted) })
}
